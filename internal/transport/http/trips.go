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

type TripsHTTP struct {
	Svc *service.TripService
}

func (h *TripsHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trips.create")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req transport.TripRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_trip_failed", "invalid body", err)
	}
	start, err := transport.ParseDate("start_date", req.StartDate)
	if err != nil {
		return badRequest(l, "create_trip_failed", err.Error(), err)
	}
	end, err := transport.ParseDate("end_date", req.EndDate)
	if err != nil {
		return badRequest(l, "create_trip_failed", err.Error(), err)
	}

	trip, err := h.Svc.Create(ctx, userID, service.TripInput{
		Title:       transport.Deref(req.Title),
		Destination: transport.Deref(req.Destination),
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		BudgetTotal: req.BudgetTotal,
	})
	if err != nil {
		return errorFor(l, "create_trip_failed", err)
	}
	return c.JSON(http.StatusCreated, trip)
}

func (h *TripsHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trips.list_mine")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.ListMine(ctx, userID, page, size)
	if err != nil {
		return errorFor(l, "list_trips_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *TripsHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trips.search")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.Search(ctx, userID, c.QueryParam("q"), page, size)
	if err != nil {
		return errorFor(l, "search_trips_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *TripsHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trips.get")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	trip, err := h.Svc.Get(ctx, tripID, userID)
	if err != nil {
		return errorFor(l, "get_trip_failed", err)
	}
	return c.JSON(http.StatusOK, trip)
}

func (h *TripsHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trips.stats")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	stats, err := h.Svc.Stats(ctx, tripID, userID)
	if err != nil {
		return errorFor(l, "trip_stats_failed", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *TripsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trips.update")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.TripRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_trip_failed", "invalid body", err)
	}
	start, err := transport.ParseDate("start_date", req.StartDate)
	if err != nil {
		return badRequest(l, "update_trip_failed", err.Error(), err)
	}
	end, err := transport.ParseDate("end_date", req.EndDate)
	if err != nil {
		return badRequest(l, "update_trip_failed", err.Error(), err)
	}

	trip, err := h.Svc.Update(ctx, tripID, userID, repo.TripUpdate{
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		BudgetTotal: req.BudgetTotal,
	})
	if err != nil {
		return errorFor(l, "update_trip_failed", err)
	}
	return c.JSON(http.StatusOK, trip)
}

func (h *TripsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trips.delete")

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	tripID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, tripID, userID); err != nil {
		return errorFor(l, "delete_trip_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
