package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/reliefshare/internal/api/httpx"
	"github.com/baharkarakas/reliefshare/internal/auth"
)

const SessionCookie = "sid"

type AuthMiddleware struct {
	Sessions *auth.SessionManager
}

func NewAuthMiddleware(sm *auth.SessionManager) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sm}
}

// Load attaches the session user to the request when the cookie names a live
// session. Requests without one continue anonymously.
func (m *AuthMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		s, err := m.Sessions.Resolve(r.Context(), c.Value)
		switch {
		case errors.Is(err, auth.ErrNoSession):
			next.ServeHTTP(w, r)
		case err != nil:
			slog.Error("resolve session", "err", err, "request_id", RequestIDFrom(r.Context()))
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		default:
			ctx := WithUser(r.Context(), UserCtx{UserID: s.UserID, SessionID: s.ID})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == 0 {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
