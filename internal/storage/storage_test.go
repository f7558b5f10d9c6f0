package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"slices"
)

func TestNewMemoryStorageReturnsDefaultDenominations(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	got, err := store.GetDenominations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultDenominations()
	if !slices.Equal(got, want) {
		t.Fatalf("expected default denominations %v, got %v", want, got)
	}

	// ensure mutation safety
	got[0] = 999
	again, err := store.GetDenominations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Equal(again, got) {
		t.Fatalf("expected defensive copy, got %v", again)
	}
}

func TestSetDenominationsUpdatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	if err := store.SetDenominations([]int{78, 20, 44, 44}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetDenominations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{20, 44, 78}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSetDenominationsRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := [][]int{
		nil,
		{},
		{0, 10},
		{-5, 100},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	}

	for idx, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.SetDenominations(tc); !errors.Is(err, ErrInvalidDenominations) {
				t.Fatalf("expected ErrInvalidDenominations for %v, got %v", tc, err)
			}
		})
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			denominations := []int{20 + offset, 44 + offset}
			if err := store.SetDenominations(denominations); err != nil {
				t.Errorf("SetDenominations failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.GetDenominations(); err != nil {
				t.Errorf("GetDenominations failed: %v", err)
			}
		}()
	}

	wg.Wait()

	// final read should succeed
	if _, err := store.GetDenominations(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
