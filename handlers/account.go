package handlers

import (
	"errors"
	"net/http"
	"strconv"

	jwtmw "github.com/cesizen/cesizen/middleware/jwt"
	"github.com/cesizen/cesizen/services/logging"
	"github.com/cesizen/cesizen/services/token"
	"github.com/cesizen/cesizen/services/user"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AccountHandler struct {
	users  *user.Service
	tokens *token.Service
	logger *logging.Service
}

func NewAccountHandler(users *user.Service, tokens *token.Service, logger *logging.Service) *AccountHandler {
	return &AccountHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

func (h *AccountHandler) Me(c echo.Context) error {
	u, err := h.users.FindByID(jwtmw.GetUserID(c))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
		}
		h.logger.Error("failed to load account", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load account")
	}

	return c.JSON(http.StatusOK, h.users.DecryptPII(u))
}

func (h *AccountHandler) Sessions(c echo.Context) error {
	sessions, err := h.tokens.ActiveSessions(jwtmw.GetUserID(c))
	if err != nil {
		h.logger.Error("failed to list sessions", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list sessions")
	}

	return c.JSON(http.StatusOK, sessions)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetUserActive toggles an account's active flag. Admin only; a
// deactivated account loses token renewal on its next attempt.
func (h *AccountHandler) SetUserActive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.users.SetActive(uint(id), req.Active); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		h.logger.Error("failed to update account status", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update account status")
	}

	return c.NoContent(http.StatusNoContent)
}
