package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/service"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

const (
	ctxUserID = "user_id"
	ctxUser   = "user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type BearerAuth struct {
	Auth Authenticator
}

func NewBearerAuth(a Authenticator) *BearerAuth {
	return &BearerAuth{Auth: a}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid access token and stores the
// caller in the echo context. Token failures answer 401; any other
// Authenticate error is a server fault and answers 500.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		user, err := m.Auth.Authenticate(ctx, token)
		if err != nil {
			if service.KindOf(err) != service.KindInvalidToken {
				logging.FromContext(ctx).Error("authentication_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			logging.FromContext(ctx).Warn("authentication_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUser, user)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID))))
		return next(c)
	}
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok
}

func User(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(ctxUser).(*models.User)
	return u, ok
}
