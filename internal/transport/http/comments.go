package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/travel_app/internal/service"
	"github.com/Skotchmaster/travel_app/internal/transport"
	"github.com/Skotchmaster/travel_app/internal/util"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

type CommentsHTTP struct {
	Svc *service.CommentService
}

func (h *CommentsHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.create")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.ContentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_comment_failed", "invalid body", err)
	}
	cm, err := h.Svc.Create(ctx, tripID, userID, req.Content)
	if err != nil {
		return errorFor(l, "create_comment_failed", err)
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *CommentsHTTP) ListForTrip(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.list_for_trip")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	list, err := h.Svc.ListForTrip(ctx, tripID, userID, page, size)
	if err != nil {
		return errorFor(l, "list_comments_failed", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CommentsHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.list_mine")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	list, err := h.Svc.ListMine(ctx, userID, page, size)
	if err != nil {
		return errorFor(l, "list_comments_failed", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CommentsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.update")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.ContentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_comment_failed", "invalid body", err)
	}
	cm, err := h.Svc.Update(ctx, id, userID, req.Content)
	if err != nil {
		return errorFor(l, "update_comment_failed", err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *CommentsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.delete")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id, userID); err != nil {
		return errorFor(l, "delete_comment_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
