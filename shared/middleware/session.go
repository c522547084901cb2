package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/siwic-api/shared/auth"
)

type contextKey struct{}

// SessionClaimsKey is the context key holding the verified jwt.MapClaims of
// the request's session cookie.
var SessionClaimsKey = contextKey{}

// NewSessionMiddleware verifies the session cookie, when present, and stores
// its claims in the request context. Requests without a valid cookie pass
// through anonymously; handlers decide whether a session is required.
func NewSessionMiddleware(jwtAuth auth.JWTAuthenticator, secret, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtAuth.Verify(cookie.Value, secret)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("ignoring invalid session cookie")
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), SessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionClaims returns the verified session claims stored by the middleware.
func SessionClaims(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(SessionClaimsKey).(jwt.MapClaims)
	return claims, ok
}
