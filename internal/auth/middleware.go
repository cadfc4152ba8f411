package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/logging"
)

// SessionCookieName is the cookie carrying the session id in session mode
const SessionCookieName = "wasteless_session"

var errBadAuthHeader = errors.New("invalid authorization header format")

// Authenticator resolves a credential to an identity
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (identity.Identity, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	authenticator Authenticator
}

func NewMiddleware(authenticator Authenticator) *Middleware {
	return &Middleware{authenticator: authenticator}
}

// RequireAuth rejects requests without a valid credential
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return m.handler(next, true)
}

// OptionalAuth attaches the identity when a credential is present and lets
// anonymous requests through. A credential that is present but invalid is
// still rejected.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return m.handler(next, false)
}

func (m *Middleware) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential, err := credentialFromRequest(r)
		if err != nil {
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		if credential == "" {
			if required {
				httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.authenticator.Authenticate(r.Context(), credential)
		if err != nil {
			respondAuthError(w, r, err)
			return
		}

		ctx := identity.WithIdentity(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrExpiredToken):
		httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusForbidden)
	case errors.Is(err, ErrInvalidToken):
		httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusForbidden)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrMissingCredential):
		httputil.RespondErrorWithCode(w, "session expired or invalid", httputil.CodeMissingAuth, http.StatusUnauthorized)
	default:
		logging.GetLoggerFromContext(r.Context()).Error("failed to authenticate request", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to authenticate", httputil.CodeSessionError, http.StatusInternalServerError)
	}
}

// credentialFromRequest reads the bearer credential from the Authorization
// header, falling back to the session cookie.
func credentialFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errBadAuthHeader
		}
		return parts[1], nil
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value, nil
	}

	return "", nil
}
