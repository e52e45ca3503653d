package handlers

import (
	"encoding/json"
	"net/http"

	"kidpoints/internal/service"
)

// ActivityHandler serves activity catalog endpoints
type ActivityHandler struct {
	catalog *service.CatalogService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(catalog *service.CatalogService) *ActivityHandler {
	return &ActivityHandler{catalog: catalog}
}

type activityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
}

// List returns the account's active activities
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.catalog.ListActivities(r.Context(), ownerFromContext(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, activities)
}

// Create adds a new activity template
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	activity, err := h.catalog.AddActivity(r.Context(), ownerFromContext(r), req.Name, req.Description, req.Icon, req.Points, req.Category)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, activity)
}

// Update edits an activity template
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid activity id", nil)
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.catalog.EditActivity(r.Context(), ownerFromContext(r), activityID, req.Name, req.Description, req.Icon, req.Points, req.Category); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete retires an activity from the catalog
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid activity id", nil)
		return
	}

	if err := h.catalog.RemoveActivity(r.Context(), ownerFromContext(r), activityID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
