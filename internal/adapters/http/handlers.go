package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a new account
// @Description Create a user and return an access token for it
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.RegisterRequest true "Credentials"
// @Success 201 {object} ports.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password required")
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		requestLogger(h.logger, c, "").WithError(err).Warnw("Register failed", "username", req.Username)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login godoc
// @Summary Log in
// @Description Exchange a username and password for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// getUserIDFromContext returns the id the auth middleware stored for the request
func getUserIDFromContext(c echo.Context) (entities.ID, error) {
	userID, ok := c.Get(UserContextKey).(entities.ID)
	if !ok || userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid token")
	}
	return userID, nil
}

// requestLogger tags log entries with the request id and, once known, the caller
func requestLogger(l *logger.Logger, c echo.Context, userID entities.ID) *logger.Logger {
	l = l.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
	if userID != "" {
		l = l.WithUserID(userID.String())
	}
	return l
}

// UserContextKey is where the auth middleware stores the caller's id
const UserContextKey = "user"

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
