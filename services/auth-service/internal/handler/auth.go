package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/strategy"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/siwic-api/shared/middleware"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
	"github.com/vasapolrittideah/siwic-api/shared/response"
)

const (
	errUnknownProvider = "unknown_provider"
	errUnauthenticated = "unauthenticated"
	errServer          = "server_error"
)

// AuthHandler serves the provider login flow and the session lookup.
type AuthHandler struct {
	strategies      strategy.Registry
	stateRepo       repository.OAuthStateRepository
	callbackUsecase usecase.CallbackUsecase
	sessionUsecase  usecase.SessionUsecase
	cookies         *SessionCookies
	stateTTL        time.Duration
}

func NewAuthHandler(
	strategies strategy.Registry,
	stateRepo repository.OAuthStateRepository,
	callbackUsecase usecase.CallbackUsecase,
	sessionUsecase usecase.SessionUsecase,
	cookies *SessionCookies,
	stateTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		strategies:      strategies,
		stateRepo:       stateRepo,
		callbackUsecase: callbackUsecase,
		sessionUsecase:  sessionUsecase,
		cookies:         cookies,
		stateTTL:        stateTTL,
	}
}

func (h *AuthHandler) lookupStrategy(w http.ResponseWriter, r *http.Request) (strategy.Strategy, bool) {
	s, ok := h.strategies.Get(chi.URLParam(r, "provider"))
	if !ok {
		response.Error(w, r, http.StatusNotFound, errUnknownProvider)
	}
	return s, ok
}

// Begin redirects to the provider's authorization page.
func (h *AuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupStrategy(w, r)
	if !ok {
		return
	}

	begin, err := s.Begin(r.Context(), uuid.NewString())
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("provider", s.Name()).Msg("failed to start authorization")
		h.redirectToFailure(w, r, s)
		return
	}

	if _, err := h.stateRepo.CreateState(r.Context(), &model.OAuthState{
		Key:       begin.Key,
		Provider:  s.Name(),
		Secret:    begin.Secret,
		ExpiresAt: time.Now().Add(h.stateTTL),
	}); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("provider", s.Name()).Msg("failed to store authorization state")
		response.Error(w, r, http.StatusInternalServerError, errServer)
		return
	}

	http.Redirect(w, r, begin.URL, http.StatusFound)
}

// Callback completes the provider login, sets the session cookie and
// returns the projected profile.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupStrategy(w, r)
	if !ok {
		return
	}
	logger := hlog.FromRequest(r).With().Str("provider", s.Name()).Logger()
	callbackFailed := fmt.Sprintf("%s_callback_failed", s.Name())

	query := r.URL.Query()
	key := s.CallbackKey(query)
	if key == "" {
		logger.Warn().Msg("callback without authorization state")
		h.redirectToFailure(w, r, s)
		return
	}

	state, err := h.stateRepo.ConsumeState(r.Context(), s.Name(), key)
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			logger.Warn().Msg("unknown or expired authorization state")
			h.redirectToFailure(w, r, s)
			return
		}
		logger.Error().Err(err).Msg("failed to load authorization state")
		response.Error(w, r, http.StatusInternalServerError, callbackFailed)
		return
	}

	principal, err := s.Authenticate(r.Context(), provider.CallbackParams{Query: query, Secret: state.Secret})
	if err != nil {
		if errors.Is(err, strategy.ErrProviderAuthentication) {
			logger.Warn().Err(err).Msg("provider authentication failed")
			h.redirectToFailure(w, r, s)
			return
		}
		logger.Error().Err(err).Msg("failed to store provider profile")
		response.Error(w, r, http.StatusInternalServerError, callbackFailed)
		return
	}

	result, err := h.callbackUsecase.Reconcile(r.Context(), principal)
	if err != nil {
		logger.Error().Err(err).Msg("failed to reconcile provider profile")
		response.Error(w, r, http.StatusInternalServerError, callbackFailed)
		return
	}

	if err := h.cookies.Set(w, result.Principal); err != nil {
		logger.Error().Err(err).Msg("failed to issue session")
		response.Error(w, r, http.StatusInternalServerError, callbackFailed)
		return
	}

	response.JSON(w, r, http.StatusOK, payload.CallbackResponse{
		OK:      true,
		Source:  result.Source,
		Profile: result.Profile,
	})
}

// Failure reports a failed provider authorization.
func (h *AuthHandler) Failure(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupStrategy(w, r)
	if !ok {
		return
	}

	response.Error(w, r, http.StatusBadRequest, fmt.Sprintf("%s_auth_failed", s.Name()))
}

func (h *AuthHandler) redirectToFailure(w http.ResponseWriter, r *http.Request, s strategy.Strategy) {
	http.Redirect(w, r, fmt.Sprintf("/auth/%s/failure", s.Name()), http.StatusFound)
}

// Session returns the identity behind the session cookie.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	ref, err := h.sessionUsecase.ParseClaims(claims)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	principal, err := h.sessionUsecase.Deserialize(r.Context(), ref)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to resolve session")
		response.Error(w, r, http.StatusInternalServerError, errServer)
		return
	}

	_, identity, err := usecase.ProjectPrincipal(principal)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to project session identity")
		response.Error(w, r, http.StatusInternalServerError, errServer)
		return
	}

	response.JSON(w, r, http.StatusOK, payload.SessionResponse{
		OK:       true,
		Kind:     string(principal.Kind()),
		Identity: identity,
	})
}
