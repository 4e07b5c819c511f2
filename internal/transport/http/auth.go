package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/travel_app/internal/middleware"
	"github.com/Skotchmaster/travel_app/internal/service"
	"github.com/Skotchmaster/travel_app/internal/transport"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func sessionResponse(s *service.Session) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "bearer",
		User:         s.User,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_failed", "invalid body", err)
	}

	sess, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return errorFor(l, "register_failed", err)
	}
	return c.JSON(http.StatusCreated, sessionResponse(sess))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_failed", "invalid body", err)
	}

	sess, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return errorFor(l, "login_failed", err)
	}
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return badRequest(l, "refresh_failed", "refresh_token is required", err)
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return errorFor(l, "refresh_failed", err)
	}
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "bearer",
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return badRequest(l, "logout_failed", "refresh_token is required", err)
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return errorFor(l, "logout_failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) RevokeAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_revoke_all")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.RevokeAll(ctx, userID)
	if err != nil {
		return errorFor(l, "revoke_all_failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"revoked": n})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	u, ok := middleware.User(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	return c.JSON(http.StatusOK, u)
}
