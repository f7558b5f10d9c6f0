package storage

import (
	"errors"
	"sort"
	"sync"
)

const maxDenominations = 10

var (
	// ErrInvalidDenominations indicates the provided denominations violate validation rules.
	ErrInvalidDenominations = errors.New("denominations must contain between 1 and 10 distinct positive integers")
)

// defaultDenominations mirror a common drawer of US stamps, in cents.
var defaultDenominations = []int{20, 25, 29, 37, 44, 78}

// Storage provides access to the stamp denominations used by the calculator.
type Storage interface {
	GetDenominations() ([]int, error)
	SetDenominations(denominations []int) error
}

// MemoryStorage keeps denominations in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu            sync.RWMutex
	denominations []int
}

// NewMemoryStorage initialises storage with a copy of the default denominations.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		denominations: cloneAndSort(defaultDenominations),
	}
}

// DefaultDenominations returns a copy of the default denomination slice.
func DefaultDenominations() []int {
	return cloneAndSort(defaultDenominations)
}

// GetDenominations returns a defensive copy of the currently configured denominations.
func (s *MemoryStorage) GetDenominations() ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAndSort(s.denominations), nil
}

// SetDenominations validates, normalises, and stores the provided denominations.
func (s *MemoryStorage) SetDenominations(denominations []int) error {
	normalized, err := normalizeDenominations(denominations)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.denominations = normalized
	s.mu.Unlock()

	return nil
}

func cloneAndSort(src []int) []int {
	if len(src) == 0 {
		return []int{}
	}

	out := make([]int, len(src))
	copy(out, src)
	sort.Ints(out)
	return out
}

func normalizeDenominations(denominations []int) ([]int, error) {
	if len(denominations) == 0 {
		return nil, ErrInvalidDenominations
	}

	unique := make(map[int]struct{}, len(denominations))
	for _, value := range denominations {
		if value <= 0 {
			return nil, ErrInvalidDenominations
		}
		unique[value] = struct{}{}
		if len(unique) > maxDenominations {
			return nil, ErrInvalidDenominations
		}
	}

	out := make([]int, 0, len(unique))
	for value := range unique {
		out = append(out, value)
	}
	sort.Ints(out)
	return out, nil
}
