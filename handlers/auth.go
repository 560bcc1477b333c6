package handlers

import (
	"errors"
	"net/http"

	"github.com/cesizen/cesizen/services/logging"
	"github.com/cesizen/cesizen/services/password"
	"github.com/cesizen/cesizen/services/token"
	"github.com/cesizen/cesizen/services/user"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users     *user.Service
	tokens    *token.Service
	passwords *password.Service
	logger    *logging.Service
}

func NewAuthHandler(users *user.Service, tokens *token.Service, passwords *password.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	BirthDate string `json:"birth_date"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	UserID       uint   `json:"user_id"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	User   *user.User       `json:"user"`
	Tokens *token.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	u, err := h.users.Create(user.CreateParams{
		Email:     req.Email,
		Password:  req.Password,
		Role:      user.RoleMember,
		Name:      req.Name,
		FirstName: req.FirstName,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		h.logger.Error("registration failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	pair, err := h.tokens.IssuePair(u, token.DeviceContextFromRequest(c.Request()))
	if err != nil {
		h.logger.Error("token issuance failed after registration",
			zap.Uint("user_id", u.ID),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusCreated, authResponse{
		User:   h.users.DecryptPII(u),
		Tokens: pair,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		h.logger.Error("login failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	if err := h.passwords.Verify(u.PasswordHash, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if !u.Active {
		return echo.NewHTTPError(http.StatusForbidden, "account is deactivated")
	}

	pair, err := h.tokens.IssuePair(u, token.DeviceContextFromRequest(c.Request()))
	if err != nil {
		h.logger.Error("token issuance failed at login",
			zap.Uint("user_id", u.ID),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, authResponse{
		User:   h.users.DecryptPII(u),
		Tokens: pair,
	})
}

// Refresh exchanges a refresh token for a new access token. Rejections
// surface a stable code so the client knows to log in again; internal
// distinctions stay in the server logs.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh token is required")
	}

	device := token.DeviceContextFromRequest(c.Request())

	pair, err := h.tokens.Renew(req.RefreshToken, req.UserID, device.UserAgent)
	if err != nil {
		var renewalErr *token.RenewalError
		if errors.As(err, &renewalErr) {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "refresh token rejected",
				"code":  renewalErr.Reason,
			})
		}
		h.logger.Error("token renewal failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "token renewal failed")
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh token is required")
	}

	if err := h.tokens.DeleteByToken(req.RefreshToken); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	return c.NoContent(http.StatusNoContent)
}
