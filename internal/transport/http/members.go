package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/travel_app/internal/service"
	"github.com/Skotchmaster/travel_app/internal/transport"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

type MembersHTTP struct {
	Svc *service.MemberService
}

func (h *MembersHTTP) Join(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "members.join")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.Svc.Join(ctx, tripID, userID)
	if err != nil {
		return errorFor(l, "join_trip_failed", err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MembersHTTP) Invite(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "members.invite")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.InviteRequest
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return badRequest(l, "invite_failed", "user_id is required", err)
	}
	m, err := h.Svc.Invite(ctx, tripID, req.UserID, userID)
	if err != nil {
		return errorFor(l, "invite_failed", err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MembersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "members.list")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	members, err := h.Svc.List(ctx, tripID, userID)
	if err != nil {
		return errorFor(l, "list_members_failed", err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *MembersHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "members.set_role")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return err
	}
	var req transport.RoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_role_failed", "invalid body", err)
	}
	m, err := h.Svc.SetRole(ctx, tripID, memberID, req.Role, userID)
	if err != nil {
		return errorFor(l, "set_role_failed", err)
	}
	return c.JSON(http.StatusOK, m)
}

// Remove leaves the trip when the caller removes themselves.
func (h *MembersHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "members.remove")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, tripID, memberID, userID); err != nil {
		return errorFor(l, "remove_member_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
