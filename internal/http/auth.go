package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tally/internal/core"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// requireAuth verifies the bearer token and stores the caller's user id
// in the request context. Requests without a valid token get a 401 and
// never reach the handler.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, core.ErrUnauthenticated)
			return
		}

		userID, err := s.tokens.Verify(token)
		if err != nil {
			writeError(w, r, core.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// callerID returns the authenticated user id placed by requireAuth.
func callerID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDContextKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
