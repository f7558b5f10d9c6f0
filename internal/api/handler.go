package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/oliviagodwin/postage-calculator/internal/combinator"
	"github.com/oliviagodwin/postage-calculator/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultMaxStampsLimit = 10

// Handler wires combinator and storage dependencies into HTTP handlers.
type Handler struct {
	combinator combinator.Combinator
	storage    storage.Storage

	clock          func() time.Time
	maxStampsLimit int

	mu                     sync.RWMutex
	denominationsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxStampsLimit bounds the maxStamps value accepted by the calculate
// endpoint. The limit caps the search space before enumeration starts.
func WithMaxStampsLimit(limit int) HandlerOption {
	return func(h *Handler) {
		if limit >= 1 {
			h.maxStampsLimit = limit
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(comb combinator.Combinator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		combinator: comb,
		storage:    store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		maxStampsLimit: defaultMaxStampsLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.denominationsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetDenominations(w http.ResponseWriter, r *http.Request) {
	_ = r
	denominations, err := h.storage.GetDenominations()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := denominationsResponse{
		Denominations: denominations,
		UpdatedAt:     h.currentDenominationsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutDenominations(w http.ResponseWriter, r *http.Request) {
	var req denominationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Denominations) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid denominations", "denominations must contain at least one value")
		return
	}

	if err := h.storage.SetDenominations(req.Denominations); err != nil {
		if errors.Is(err, storage.ErrInvalidDenominations) {
			writeError(w, http.StatusBadRequest, "Invalid denominations", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markDenominationsUpdated()

	denominations, err := h.storage.GetDenominations()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := denominationsResponse{
		Denominations: denominations,
		UpdatedAt:     h.currentDenominationsUpdatedAt(),
		Message:       "Denominations updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.TargetCents <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "targetCents must be a positive integer")
		return
	}
	if req.MaxPriceCents <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "maxPriceCents must be a positive integer")
		return
	}
	if req.MaxStamps < 1 {
		writeError(w, http.StatusBadRequest, "Invalid request", "maxStamps must be at least 1")
		return
	}
	if req.MaxStamps > h.maxStampsLimit {
		details := fmt.Sprintf("maxStamps must not exceed %d", h.maxStampsLimit)
		writeError(w, http.StatusBadRequest, "Invalid request", details)
		return
	}

	denominations, err := h.storage.GetDenominations()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	constraints := combinator.Constraints{
		TargetCents:   req.TargetCents,
		MaxPriceCents: req.MaxPriceCents,
		MaxStamps:     req.MaxStamps,
	}

	start := time.Now()
	result, calcErr := h.combinator.Calculate(denominations, constraints)
	elapsed := time.Since(start)

	if calcErr != nil {
		switch {
		case errors.Is(calcErr, combinator.ErrInvalidTarget),
			errors.Is(calcErr, combinator.ErrInvalidMaxPrice),
			errors.Is(calcErr, combinator.ErrInvalidMaxStamps):
			writeError(w, http.StatusBadRequest, "Invalid request", calcErr.Error())
		case errors.Is(calcErr, combinator.ErrInvalidDenominations):
			// storage validates denominations on write, so this indicates a server-side fault
			writeError(w, http.StatusInternalServerError, "Internal error", calcErr.Error())
		default:
			writeInternalError(w, calcErr)
		}
		return
	}

	resp := calculateResponse{
		TargetCents:       req.TargetCents,
		MaxPriceCents:     req.MaxPriceCents,
		MaxStamps:         req.MaxStamps,
		Candidates:        candidatePayloads(result.Admissible),
		MinOverpayment:    candidatePayloadRef(result.MinOverpayment),
		MinStamps:         candidatePayloadRef(result.MinStamps),
		Summary:           summaryPayloadFrom(result.Summary),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	if len(result.Admissible) == 0 {
		resp.Suggestion = "No valid combinations found; try raising the maximum price or the maximum number of stamps"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentDenominationsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.denominationsUpdatedAt
}

func (h *Handler) markDenominationsUpdated() {
	h.mu.Lock()
	h.denominationsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type denominationsRequest struct {
	Denominations []int `json:"denominations"`
}

type calculateRequest struct {
	TargetCents   int `json:"targetCents"`
	MaxPriceCents int `json:"maxPriceCents"`
	MaxStamps     int `json:"maxStamps"`
}

type candidatePayload struct {
	Stamps      []int `json:"stamps"`
	TotalValue  int   `json:"totalValue"`
	StampCount  int   `json:"stampCount"`
	Overpayment int   `json:"overpayment"`
}

type summaryPayload struct {
	Count        int  `json:"count"`
	MinTotal     *int `json:"minTotal,omitempty"`
	MaxTotal     *int `json:"maxTotal,omitempty"`
	FewestStamps *int `json:"fewestStamps,omitempty"`
}

type calculateResponse struct {
	TargetCents       int                `json:"targetCents"`
	MaxPriceCents     int                `json:"maxPriceCents"`
	MaxStamps         int                `json:"maxStamps"`
	Candidates        []candidatePayload `json:"candidates"`
	MinOverpayment    *candidatePayload  `json:"minOverpayment,omitempty"`
	MinStamps         *candidatePayload  `json:"minStamps,omitempty"`
	Summary           summaryPayload     `json:"summary"`
	Suggestion        string             `json:"suggestion,omitempty"`
	CalculationTimeMs int64              `json:"calculationTimeMs"`
}

type denominationsResponse struct {
	Denominations []int     `json:"denominations"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Message       string    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func candidatePayloads(candidates []combinator.Candidate) []candidatePayload {
	out := make([]candidatePayload, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, candidatePayload{
			Stamps:      candidate.Stamps,
			TotalValue:  candidate.TotalValue,
			StampCount:  candidate.StampCount,
			Overpayment: candidate.Overpayment,
		})
	}
	return out
}

func candidatePayloadRef(candidate *combinator.Candidate) *candidatePayload {
	if candidate == nil {
		return nil
	}
	return &candidatePayload{
		Stamps:      candidate.Stamps,
		TotalValue:  candidate.TotalValue,
		StampCount:  candidate.StampCount,
		Overpayment: candidate.Overpayment,
	}
}

func summaryPayloadFrom(summary combinator.Summary) summaryPayload {
	payload := summaryPayload{Count: summary.Count}
	if summary.Count == 0 {
		return payload
	}
	minTotal, maxTotal, fewest := summary.MinTotal, summary.MaxTotal, summary.FewestStamps
	payload.MinTotal = &minTotal
	payload.MaxTotal = &maxTotal
	payload.FewestStamps = &fewest
	return payload
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
