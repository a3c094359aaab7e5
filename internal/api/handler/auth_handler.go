package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moviehub/movie-service/internal/api/metrics"
	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

// LoginThrottle tracks failed logins per email. Implementations must be safe
// for concurrent use.
type LoginThrottle interface {
	// Blocked returns how long email stays locked out; zero means it may try.
	Blocked(ctx context.Context, email string) (time.Duration, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type AuthHandler struct {
	identity ports.IdentityService
	tokens   ports.TokenService
	throttle LoginThrottle
	log      zerolog.Logger
}

// NewAuthHandler builds the auth endpoints. throttle may be nil.
func NewAuthHandler(identity ports.IdentityService, tokens ports.TokenService, throttle LoginThrottle, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, tokens: tokens, throttle: throttle, log: log}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.NewValidationError("body", "json", "invalid payload"))
	}

	user, err := h.identity.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	metrics.AuthRequestsTotal.WithLabelValues("register", resultLabel(err)).Inc()
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.NewValidationError("body", "json", "invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	email := domain.NormalizeEmail(req.Email)

	if wait := h.lockedFor(ctx, email); wait > 0 {
		metrics.LoginThrottledTotal.Inc()
		c.Response().Header().Set("Retry-After", retryAfterSeconds(wait))
		return c.JSON(http.StatusTooManyRequests, errorResponse{
			Error: "too many failed login attempts",
			Kind:  "rate_limited",
		})
	}

	user, err := h.identity.Authenticate(ctx, email, req.Password)
	metrics.AuthRequestsTotal.WithLabelValues("login", resultLabel(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.recordFailure(ctx, email)
		}
		return fail(c, err)
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	h.resetFailures(ctx, email)

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Protected confirms the bearer token is valid.
//
// @Summary      Protected probe
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/protected [get]
func (h *AuthHandler) Protected(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "protected route"})
}

// lockedFor fails open: a Redis outage must not lock every user out.
func (h *AuthHandler) lockedFor(ctx context.Context, email string) time.Duration {
	if h.throttle == nil {
		return 0
	}
	wait, err := h.throttle.Blocked(ctx, email)
	if err != nil {
		h.log.Warn().Err(err).Msg("login throttle unavailable")
		return 0
	}
	return wait
}

// retryAfterSeconds renders d as whole seconds, rounded up and at least 1.
func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func (h *AuthHandler) recordFailure(ctx context.Context, email string) {
	if h.throttle == nil {
		return
	}
	if err := h.throttle.RecordFailure(ctx, email); err != nil {
		h.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (h *AuthHandler) resetFailures(ctx context.Context, email string) {
	if h.throttle == nil {
		return
	}
	if err := h.throttle.Reset(ctx, email); err != nil {
		h.log.Warn().Err(err).Msg("failed to reset login failures")
	}
}
