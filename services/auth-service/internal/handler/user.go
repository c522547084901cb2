package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/siwic-api/shared/response"
	"github.com/vasapolrittideah/siwic-api/shared/validation"
)

const (
	errInvalidRequest     = "invalid_request"
	errInvalidCredentials = "invalid_credentials"
)

// UserHandler serves local account registration, login and availability.
type UserHandler struct {
	accountUsecase usecase.AccountUsecase
	validator      *validation.Validator
	cookies        *SessionCookies
}

func NewUserHandler(
	accountUsecase usecase.AccountUsecase,
	validator *validation.Validator,
	cookies *SessionCookies,
) *UserHandler {
	return &UserHandler{
		accountUsecase: accountUsecase,
		validator:      validator,
		cookies:        cookies,
	}
}

// CheckUser reports whether a username, email or mobile is taken.
func (h *UserHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	exists, err := h.accountUsecase.CheckAvailability(r.Context(), r.URL.Query().Get("value"))
	if err != nil {
		if errors.Is(err, usecase.ErrValueRequired) {
			response.JSON(w, r, http.StatusBadRequest, payload.ErrorResponse{Error: usecase.ErrValueRequired.Error()})
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("check-user failed")
		response.JSON(w, r, http.StatusInternalServerError, payload.ErrorResponse{Error: errServer})
		return
	}

	response.JSON(w, r, http.StatusOK, payload.CheckUserResponse{Exists: exists})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.validateRegister(&req); err != nil {
		h.writeAccountError(w, r, err)
		return
	}

	result, err := h.accountUsecase.Register(r.Context(), usecase.RegisterParams{
		Username:            req.Username,
		Email:               req.Email,
		Mobile:              req.Mobile,
		Password:            req.Password,
		Name:                req.Name,
		Gender:              req.Gender,
		DateOfBirth:         req.DateOfBirth,
		HomeTown:            req.HomeTown,
		Profession:          req.Profession,
		ProofDocument:       req.ProofDocument,
		ProofDocumentNumber: req.ProofDocumentNumber,
		FacebookProfileID:   req.FacebookProfileID,
		FacebookPages:       req.FacebookPages,
		InstaProfileID:      req.InstaProfileID,
		TwitterProfileID:    req.TwitterProfileID,
		GoogleProfileID:     req.GoogleProfileID,
		YoutubeProfileID:    req.YoutubeProfileID,
		YoutubeChannels:     req.YoutubeChannels,
		WhatsappProfileID:   req.WhatsappProfileID,
		WhatsappChannels:    req.WhatsappChannels,
	})
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}

	if err := h.cookies.Set(w, result.Account); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to issue session")
		response.Error(w, r, http.StatusInternalServerError, errServer)
		return
	}

	response.JSON(w, r, http.StatusOK, payload.RegisterResponse{OK: true, User: result.Profile})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	fields, err := h.validator.Struct(&req)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	if len(fields) > 0 {
		h.writeAccountError(w, r, usecase.ErrCredentialsRequired)
		return
	}

	result, err := h.accountUsecase.Login(r.Context(), usecase.LoginParams{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}

	if err := h.cookies.Set(w, result.Account); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to issue session")
		response.Error(w, r, http.StatusInternalServerError, errServer)
		return
	}

	response.JSON(w, r, http.StatusOK, payload.LoginResponse{OK: true, User: result.Profile})
}

// decode reads a JSON body into v. An empty body decodes as an empty object.
func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		hlog.FromRequest(r).Debug().Err(err).Msg("malformed request body")
		response.Error(w, r, http.StatusBadRequest, errInvalidRequest)
		return false
	}
	return true
}

// validateRegister maps the first failed rule to its account error.
func (h *UserHandler) validateRegister(req *payload.RegisterRequest) error {
	fields, err := h.validator.Struct(req)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	switch fields[0].Field {
	case "Password":
		return usecase.ErrPasswordRequired
	default:
		return usecase.ErrIdentifierRequired
	}
}

func (h *UserHandler) writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrIdentifierRequired),
		errors.Is(err, usecase.ErrPasswordRequired),
		errors.Is(err, usecase.ErrCredentialsRequired),
		errors.Is(err, usecase.ErrAccountAlreadyExists),
		errors.Is(err, usecase.ErrInvalidDateOfBirth):
		response.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials):
		response.Error(w, r, http.StatusBadRequest, errInvalidCredentials)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("account request failed")
		response.Error(w, r, http.StatusInternalServerError, errServer)
	}
}
