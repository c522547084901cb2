package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// registeredClaims cannot be overridden by the extra claims passed to Issue.
var registeredClaims = map[string]bool{"sub": true, "iss": true, "aud": true, "iat": true, "nbf": true, "exp": true}

// JWTAuthenticator issues and verifies HS256 tokens bound to one audience
// and issuer.
type JWTAuthenticator struct {
	audience string
	issuer   string
}

func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
	}
}

// Issue signs a token for subject that expires after ttl. extra is merged
// into the payload.
func (a *JWTAuthenticator) Issue(subject string, extra map[string]any, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": a.issuer,
		"aud": a.audience,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range extra {
		if !registeredClaims[k] {
			claims[k] = v
		}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry, audience and issuer of tokenString
// and returns its claims.
func (a *JWTAuthenticator) Verify(tokenString, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims, nil
}
