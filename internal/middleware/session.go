package middleware

import (
	"context"
	"net/http"

	"go-device-gateway/internal/model"
)

type sessionResolver interface {
	Resolve(r *http.Request) (string, error)
}

type contextKey string

const userIDContextKey contextKey = "user_id"

// SessionMiddleware resolves the session cookie to a user identifier. It
// only proves which user a request claims to be; whether that user still has
// a credential record is decided later, and both failures look identical to
// the client.
type SessionMiddleware struct {
	resolver sessionResolver
}

func NewSessionMiddleware(resolver sessionResolver) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver}
}

func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.resolver.Resolve(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = jsonEncode(w, model.ErrorResponse{Error: 1, Msg: "Not authenticated"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}
