package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gojo5t5/papertrade/internal/session"
)

type contextKey string

const userIDKey contextKey = "user_id"

// RequireAuth resolves the session cookie to a user ID and stores it on
// the request context. Requests without a valid session get a 401.
func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := h.sessions.Get(r.Context(), cookie.Value)
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "session expired")
			return
		}
		if err != nil {
			h.logger.Error("session lookup failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// userIDFrom returns the authenticated user ID placed on the context by
// RequireAuth.
func userIDFrom(r *http.Request) int {
	userID, _ := r.Context().Value(userIDKey).(int)
	return userID
}
