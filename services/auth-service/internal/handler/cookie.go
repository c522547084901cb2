package handler

import (
	"net/http"
	"time"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/usecase"
)

// SessionCookies writes the signed session cookie for a principal.
type SessionCookies struct {
	sessionUsecase usecase.SessionUsecase
	cfg            config.SessionConfig
}

func NewSessionCookies(sessionUsecase usecase.SessionUsecase, cfg config.SessionConfig) *SessionCookies {
	return &SessionCookies{sessionUsecase: sessionUsecase, cfg: cfg}
}

func (c *SessionCookies) Set(w http.ResponseWriter, principal model.Principal) error {
	token, err := c.sessionUsecase.IssueToken(principal)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(c.cfg.TTL),
		MaxAge:   int(c.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
