package server

import (
	"log/slog"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenRequest is the credential payload for the token endpoint. It accepts
// both JSON and form encoding.
type TokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenResponse is the bearer-token envelope returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new account. The password is stored only as a bcrypt
// hash, and a duplicate username yields 409.
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	existing, err := s.users.GetByUsername(c.Context(), req.Username)
	if err != nil {
		return respondStoreError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Username already registered"))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		middleware.Logger.ErrorContext(c.Context(), "password hashing failed", slog.Any("error", err))
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(nil))
	}

	user := &models.User{
		Username: req.Username,
		Password: hash,
	}
	// The pre-check above races with concurrent registrations; the unique
	// index is the authority and still maps to 409 here.
	if err := s.users.Create(c.Context(), user); err != nil {
		return respondStoreError(c, err)
	}

	middleware.Logger.InfoContext(c.Context(), "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username))

	return c.JSON(user)
}

// Token exchanges a username/password pair for a signed bearer token. Both
// unknown usernames and wrong passwords return the same 401.
func (s *Server) Token(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.gate.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			observability.AuthFailures.WithLabelValues("bad_credentials").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		return respondStoreError(c, err)
	}

	token, err := s.gate.Tokens().Issue(user.Username)
	if err != nil {
		middleware.Logger.ErrorContext(c.Context(), "token signing failed", slog.Any("error", err))
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(nil))
	}

	observability.TokensIssued.Inc()
	middleware.Logger.InfoContext(c.Context(), "token issued",
		slog.Uint64("user_id", uint64(user.ID)))

	return c.JSON(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
