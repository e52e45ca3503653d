package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kidpoints/internal/service"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// Middleware holds authentication middleware for the API
type Middleware struct {
	gate *service.GateService
}

// NewMiddleware creates middleware backed by the access gate
func NewMiddleware(gate *service.GateService) *Middleware {
	return &Middleware{gate: gate}
}

// RequireOwner resolves the authenticated account for the request. Session
// authentication lives in the identity layer in front of this service; the
// resolved account id arrives in the X-Owner-ID header it injects.
func (m *Middleware) RequireOwner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Owner-ID")
		if raw == "" {
			respondWithError(w, http.StatusUnauthorized, "not signed in", nil)
			return
		}
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ownerID <= 0 {
			respondWithError(w, http.StatusUnauthorized, "not signed in", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next(w, r.WithContext(ctx))
	}
}

// RequireParent additionally demands a valid parent-mode token, minted by a
// successful parent secret check, presented as a bearer token. The token's
// owner must match the request's owner.
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireOwner(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusForbidden, "parent mode required", nil)
			return
		}

		tokenOwner, err := m.gate.VerifyParentToken(token)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		if tokenOwner != ownerFromContext(r) {
			respondWithError(w, http.StatusForbidden, "parent mode required", nil)
			return
		}

		next(w, r)
	})
}

// Logging logs all HTTP requests with method, path, and duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// ownerFromContext returns the authenticated owner id stored by RequireOwner
func ownerFromContext(r *http.Request) int64 {
	ownerID, _ := r.Context().Value(ownerIDKey).(int64)
	return ownerID
}

// pathID parses the {id} path segment of the request
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
