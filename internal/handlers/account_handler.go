package handlers

import (
	"encoding/json"
	"net/http"

	"kidpoints/internal/service"
)

// AccountHandler serves family account endpoints
type AccountHandler struct {
	accounts *service.AccountService
	gate     *service.GateService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *service.AccountService, gate *service.GateService) *AccountHandler {
	return &AccountHandler{accounts: accounts, gate: gate}
}

// Get returns the account profile
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := h.accounts.GetAccount(r.Context(), ownerFromContext(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, owner)
}

// Create registers a new family account. Called by the identity layer after
// it establishes who the user is; the optional email only feeds the welcome
// notification and is never stored.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	owner, err := h.accounts.CreateAccount(r.Context(), req.DisplayName, req.Email)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, owner)
}

// UpdateName changes the family display name
func (h *AccountHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.accounts.UpdateAccountName(r.Context(), ownerFromContext(r), req.DisplayName); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete removes the account and everything it owns
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	// Body is optional; without it the deletion notice is skipped.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.accounts.DeleteAccount(r.Context(), ownerFromContext(r), req.Email); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CheckParentSecret verifies the parent secret and mints a parent-mode token
func (h *AccountHandler) CheckParentSecret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	token, err := h.gate.CheckParentSecret(r.Context(), ownerFromContext(r), req.Secret)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"parent_token": token})
}

// UpdateParentSecret sets a new parent secret
func (h *AccountHandler) UpdateParentSecret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.gate.UpdateParentSecret(r.Context(), ownerFromContext(r), req.Secret); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
