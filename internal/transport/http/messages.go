package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/travel_app/internal/service"
	"github.com/Skotchmaster/travel_app/internal/transport"
	"github.com/Skotchmaster/travel_app/internal/util"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

type MessagesHTTP struct {
	Svc *service.MessageService
}

func (h *MessagesHTTP) Send(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "messages.send")

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
		return badRequest(l, "send_message_failed", "invalid body", err)
	}
	msg, err := h.Svc.Send(ctx, tripID, userID, req.Content)
	if err != nil {
		return errorFor(l, "send_message_failed", err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessagesHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "messages.list")

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

	msgs, err := h.Svc.List(ctx, tripID, userID, page, size)
	if err != nil {
		return errorFor(l, "list_messages_failed", err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *MessagesHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "messages.history")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	before := util.ParseIntDefault(c.QueryParam("before_id"), 0)
	if before < 0 {
		before = 0
	}
	limit := util.ParseIntDefault(c.QueryParam("limit"), 0)

	msgs, err := h.Svc.History(ctx, tripID, userID, uint(before), limit)
	if err != nil {
		return errorFor(l, "message_history_failed", err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *MessagesHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "messages.search")

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

	msgs, err := h.Svc.Search(ctx, tripID, userID, c.QueryParam("q"), page, size)
	if err != nil {
		return errorFor(l, "search_messages_failed", err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *MessagesHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "messages.update")

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
		return badRequest(l, "update_message_failed", "invalid body", err)
	}
	msg, err := h.Svc.Update(ctx, id, userID, req.Content)
	if err != nil {
		return errorFor(l, "update_message_failed", err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *MessagesHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "messages.delete")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id, userID); err != nil {
		return errorFor(l, "delete_message_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
