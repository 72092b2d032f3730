package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var actorKey contextKey

// Actor returns the username the request's token was issued to, or ""
// outside an authenticated request.
func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}

// Middleware rejects requests without a valid bearer token and puts the
// actor username in the request context for the handlers.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		actor, err := s.Verify(tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
