package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vasapolrittideah/siwic-api/shared/auth"
)

func TestSessionMiddleware(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("siwic", "siwic")
	valid, err := jwtAuth.Issue("abc", map[string]any{"kind": "user"}, time.Hour, "secret")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name      string
		cookie    *http.Cookie
		wantClaim bool
	}{
		{"no cookie", nil, false},
		{"garbage cookie", &http.Cookie{Name: "sid", Value: "not-a-jwt"}, false},
		{"valid cookie", &http.Cookie{Name: "sid", Value: valid}, true},
		{"other cookie name", &http.Cookie{Name: "other", Value: valid}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotClaims bool
			var sub any
			h := NewSessionMiddleware(jwtAuth, "secret", "sid")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := SessionClaims(r.Context())
				gotClaims = ok
				if ok {
					sub = claims["sub"]
				}
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if gotClaims != tc.wantClaim {
				t.Fatalf("claims present = %v, want %v", gotClaims, tc.wantClaim)
			}
			if tc.wantClaim && sub != "abc" {
				t.Fatalf("sub = %v, want abc", sub)
			}
		})
	}
}
