package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/travel_app/internal/middleware"
	"github.com/Skotchmaster/travel_app/internal/service"
	loggingmw "github.com/Skotchmaster/travel_app/pkg/middleware/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger      *slog.Logger
	DB          Pinger
	CORSOrigins []string

	Auth     *service.AuthService
	Users    *service.UserService
	Trips    *service.TripService
	Members  *service.MemberService
	Messages *service.MessageService
	Comments *service.CommentService
}

func Register(e *echo.Echo, d *Deps) {
	e.Pre(ecM.RemoveTrailingSlash())
	e.Use(ecM.Recover())
	e.Use(ecM.RequestID())
	e.Use(ecM.Secure())
	if d.Logger != nil {
		e.Use(loggingmw.RequestLogger(d.Logger))
	}
	if len(d.CORSOrigins) > 0 {
		e.Use(ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins: d.CORSOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := d.DB.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authMw := middleware.NewBearerAuth(d.Auth)
	auth := &AuthHTTP{Svc: d.Auth}
	users := &UsersHTTP{Svc: d.Users}
	trips := &TripsHTTP{Svc: d.Trips}
	members := &MembersHTTP{Svc: d.Members}
	messages := &MessagesHTTP{Svc: d.Messages}
	comments := &CommentsHTTP{Svc: d.Comments}

	e.POST("/auth/register", auth.Register)
	e.POST("/auth/login", auth.Login)
	e.POST("/auth/refresh", auth.Refresh)
	e.POST("/auth/logout", auth.Logout)

	private := e.Group("")
	private.Use(authMw.RequireAuth)

	private.POST("/auth/revoke-all", auth.RevokeAll)
	private.GET("/auth/me", auth.Me)

	private.GET("/users/me", auth.Me)
	private.PATCH("/users/me", users.UpdateMe)
	private.DELETE("/users/me", users.DeleteMe)
	private.GET("/users/search", users.Search)
	private.GET("/users/:id", users.Get)

	private.POST("/trips", trips.Create)
	private.GET("/trips", trips.ListMine)
	private.GET("/trips/search", trips.Search)
	private.GET("/trips/:id", trips.Get)
	private.PATCH("/trips/:id", trips.Update)
	private.DELETE("/trips/:id", trips.Delete)
	private.GET("/trips/:id/stats", trips.Stats)

	private.POST("/trips/:id/join", members.Join)
	private.GET("/trips/:id/members", members.List)
	private.POST("/trips/:id/members", members.Invite)
	private.PATCH("/trips/:id/members/:member_id", members.SetRole)
	private.DELETE("/trips/:id/members/:member_id", members.Remove)

	private.POST("/trips/:id/messages", messages.Send)
	private.GET("/trips/:id/messages", messages.List)
	private.GET("/trips/:id/messages/history", messages.History)
	private.GET("/trips/:id/messages/search", messages.Search)
	private.PATCH("/messages/:id", messages.Update)
	private.DELETE("/messages/:id", messages.Delete)

	private.POST("/trips/:id/comments", comments.Create)
	private.GET("/trips/:id/comments", comments.ListForTrip)
	private.GET("/comments/me", comments.ListMine)
	private.PATCH("/comments/:id", comments.Update)
	private.DELETE("/comments/:id", comments.Delete)
}
