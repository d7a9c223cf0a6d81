package auth

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/svpay/svpay-api/internal/middleware"
	"github.com/svpay/svpay-api/internal/pkg/response"
	"github.com/svpay/svpay-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /users/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	u, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			response.BadRequest(w, "Username already registered")
		case errors.Is(err, ErrPasswordTooLong):
			response.UnprocessableEntity(w, "Password is too long, maximum 72 bytes (UTF-8)")
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("failed to register user")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, NewUserResponse(u.ID, u.Username, u.CreatedAt))
}

// Login handles POST /token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Incorrect username or password")
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("failed to log in user")
		response.InternalError(w)
		return
	}

	response.OK(w, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())
	if username == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	u, err := h.service.CurrentUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Unauthorized(w, "Unknown user")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("failed to load current user")
		response.InternalError(w)
		return
	}

	response.OK(w, NewUserResponse(u.ID, u.Username, u.CreatedAt))
}
