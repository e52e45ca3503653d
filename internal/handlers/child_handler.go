package handlers

import (
	"io"
	"net/http"

	"kidpoints/internal/service"
)

// maxAvatarBytes caps uploaded avatar images. Clients compress before
// uploading; anything larger is rejected outright.
const maxAvatarBytes = 5 << 20

// ChildHandler serves child profile endpoints
type ChildHandler struct {
	family *service.FamilyService
	ledger *service.LedgerService
}

// NewChildHandler creates a new child handler
func NewChildHandler(family *service.FamilyService, ledger *service.LedgerService) *ChildHandler {
	return &ChildHandler{family: family, ledger: ledger}
}

// List returns all children in the account
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.family.GetChildren(r.Context(), ownerFromContext(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, children)
}

// Get returns a single child profile
func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid child id", nil)
		return
	}

	child, err := h.family.GetChild(r.Context(), ownerFromContext(r), childID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, child)
}

// Create adds a child profile. The request is a multipart form with a "name"
// field and an optional "avatar" file.
func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, avatar, ok := parseChildForm(w, r)
	if !ok {
		return
	}

	child, err := h.family.AddChild(r.Context(), ownerFromContext(r), name, avatar)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, child)
}

// Update edits a child's name and optionally replaces the avatar
func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid child id", nil)
		return
	}

	name, avatar, ok := parseChildForm(w, r)
	if !ok {
		return
	}

	child, err := h.family.EditChild(r.Context(), ownerFromContext(r), childID, name, avatar)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, child)
}

// Delete removes a child profile and everything recorded for it
func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid child id", nil)
		return
	}

	if err := h.family.RemoveChild(r.Context(), ownerFromContext(r), childID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Payout redeems a child's accumulated points
func (h *ChildHandler) Payout(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid child id", nil)
		return
	}

	amount, err := h.ledger.Payout(r.Context(), ownerFromContext(r), childID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"points_paid": amount})
}

// parseChildForm extracts the name field and optional avatar file from a
// multipart child create/update request. Writes the error response itself
// when parsing fails.
func parseChildForm(w http.ResponseWriter, r *http.Request) (string, service.AvatarUpload, bool) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid form data", err)
		return "", service.AvatarUpload{}, false
	}

	name := r.FormValue("name")

	var avatar service.AvatarUpload
	file, header, err := r.FormFile("avatar")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
		if readErr != nil || len(data) > maxAvatarBytes {
			respondWithError(w, http.StatusBadRequest, "avatar too large", readErr)
			return "", service.AvatarUpload{}, false
		}
		avatar = service.AvatarUpload{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		}
	}

	return name, avatar, true
}
