package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/internal/service"
	"github.com/Skotchmaster/travel_app/internal/transport"
	"github.com/Skotchmaster/travel_app/internal/util"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.get")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(ctx, id)
	if err != nil {
		return errorFor(l, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_me")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_user_failed", "invalid body", err)
	}

	u, err := h.Svc.Update(ctx, userID, repo.UserUpdate{
		Email:     req.Email,
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return errorFor(l, "update_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.delete_me")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, userID); err != nil {
		return errorFor(l, "delete_user_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return errorFor(l, "search_users_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}
