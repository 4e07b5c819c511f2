package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/travel_app/internal/middleware"
	"github.com/Skotchmaster/travel_app/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindDuplicateEmail:         http.StatusConflict,
	service.KindAlreadyMember:          http.StatusConflict,
	service.KindInvalidCredentials:     http.StatusUnauthorized,
	service.KindInvalidToken:           http.StatusUnauthorized,
	service.KindTokenNotFound:          http.StatusNotFound,
	service.KindNotFound:               http.StatusNotFound,
	service.KindAccessDenied:           http.StatusForbidden,
	service.KindPermissionDenied:       http.StatusForbidden,
	service.KindInvalidRole:            http.StatusBadRequest,
	service.KindValidation:             http.StatusBadRequest,
	service.KindOrganizerRoleImmutable: http.StatusConflict,
	service.KindCannotRemoveOrganizer:  http.StatusConflict,
	service.KindOrganizerCannotLeave:   http.StatusConflict,
}

// errorFor turns a service error into an HTTP error. Infrastructure faults
// get a generic body; the cause only goes to the log.
func errorFor(l *slog.Logger, event string, err error) *echo.HTTPError {
	kind := service.KindOf(err)
	code, ok := kindStatus[kind]
	if !ok {
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	l.Warn(event, "status", code, "reason", kind.String(), "error", err)
	msg := err.Error()
	var se *service.Error
	if code == http.StatusUnauthorized && errors.As(err, &se) {
		msg = se.Msg
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, event, msg string, err error) *echo.HTTPError {
	l.Warn(event, "status", http.StatusBadRequest, "reason", msg, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func paramID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(v), nil
}

func callerID(c echo.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	return id, nil
}
