package handlers

import (
	"encoding/json"
	"net/http"

	"kidpoints/internal/service"
)

// LedgerHandler serves completion ledger endpoints
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// List returns the account's completion history newest-first. Pass
// ?pending=true to see only completions awaiting approval.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	pendingOnly := r.URL.Query().Get("pending") == "true"

	completions, err := h.ledger.ListCompletions(r.Context(), ownerFromContext(r), pendingOnly)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, completions)
}

// Record logs an activity completion for a child. This is the one write
// children perform themselves, so it sits behind owner auth only.
func (h *LedgerHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID    int64  `json:"child_id"`
		ActivityID int64  `json:"activity_id"`
		Date       string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	completion, err := h.ledger.RecordCompletion(r.Context(), ownerFromContext(r), req.ChildID, req.ActivityID, req.Date)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, completion)
}

// Approve marks a pending completion as reviewed
func (h *LedgerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	completionID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid completion id", nil)
		return
	}

	if err := h.ledger.ApproveCompletion(r.Context(), ownerFromContext(r), completionID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// Discard rejects a pending completion and takes its points back
func (h *LedgerHandler) Discard(w http.ResponseWriter, r *http.Request) {
	completionID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid completion id", nil)
		return
	}

	if err := h.ledger.DiscardCompletion(r.Context(), ownerFromContext(r), completionID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}
