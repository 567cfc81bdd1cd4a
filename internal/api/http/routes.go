package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
	"github.com/i474232898/surfsup-climate-api/internal/logger"
	"github.com/i474232898/surfsup-climate-api/internal/scheduler"
)

// HealthReporter exposes the latest dataset probe.
type HealthReporter interface {
	Last() (scheduler.Status, bool)
}

// precipitationEntry is one element of the precipitation response.
type precipitationEntry struct {
	Date string   `json:"date"`
	Prcp *float64 `json:"prcp"`
}

// tobsEntry is one element of the temperature observations response.
type tobsEntry struct {
	Date string   `json:"date"`
	Tobs *float64 `json:"tobs"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. health may be nil.
func RegisterRoutes(app *fiber.App, service *climate.Service, health HealthReporter, log *logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/", func(c *fiber.Ctx) error {
		var bounds *climate.Bounds
		b, err := service.Bounds(c.UserContext())
		switch {
		case err == nil:
			bounds = &b
		case errors.Is(err, climate.ErrEmptyDataset):
		default:
			return toHTTPError(log, err)
		}

		c.Type("html")
		return c.SendString(welcomePage(bounds))
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"service": "surfsup-climate-api",
		}
		if health == nil {
			return c.JSON(resp)
		}

		last, ok := health.Last()
		if !ok {
			resp["status"] = "starting"
			return c.JSON(resp)
		}
		resp["probe"] = last
		if !last.Healthy {
			resp["status"] = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		return c.JSON(resp)
	})

	v1 := app.Group("/api/v1.0")

	// Static routes must be registered before the date parameter routes.
	v1.Get("/precipitation", func(c *fiber.Ctx) error {
		observations, err := service.PrecipitationSince(c.UserContext())
		if err != nil {
			return toHTTPError(log, err)
		}

		out := make([]precipitationEntry, 0, len(observations))
		for _, o := range observations {
			out = append(out, precipitationEntry{Date: o.Date.String(), Prcp: o.Precipitation})
		}
		return c.JSON(out)
	})

	v1.Get("/stations", func(c *fiber.Ctx) error {
		ids, err := service.StationIDs(c.UserContext())
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(ids)
	})

	v1.Get("/tobs", func(c *fiber.Ctx) error {
		station, series, err := service.MostActiveTemperatures(c.UserContext())
		if err != nil {
			return toHTTPError(log, err)
		}

		out := make([]tobsEntry, 0, len(series))
		for _, p := range series {
			out = append(out, tobsEntry{Date: p.Date.String(), Tobs: p.Value})
		}
		c.Set("X-Station", station)
		return c.JSON(out)
	})

	v1.Get("/:start", func(c *fiber.Ctx) error {
		summary, err := service.TemperatureSummary(c.UserContext(), c.Params("start"), "")
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(summary)
	})

	v1.Get("/:start/:end", func(c *fiber.Ctx) error {
		summary, err := service.TemperatureSummary(c.UserContext(), c.Params("start"), c.Params("end"))
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(summary)
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toHTTPError maps core errors onto HTTP statuses. Store and unexpected
// failures are logged; their details are not returned to the client.
func toHTTPError(log *logger.Logger, err error) error {
	switch {
	case climate.IsDateParseError(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, climate.ErrEmptyDataset):
		return fiber.NewError(fiber.StatusNotFound, "no observations in dataset")
	case climate.IsStoreUnavailable(err):
		log.Error("record store unavailable", "error", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "record store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("query timed out", "error", err)
		return fiber.NewError(fiber.StatusGatewayTimeout, "query timed out")
	default:
		log.Error("query failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to query climate data")
	}
}

func welcomePage(bounds *climate.Bounds) string {
	var b strings.Builder
	b.WriteString("Welcome to the Hawaii Climate API!<br/>Available Routes:<br/><br/>")
	b.WriteString("Precipitation data for the last 12 months:<br/>/api/v1.0/precipitation<br/><br/>")
	b.WriteString("List of Stations:<br/>/api/v1.0/stations<br/><br/>")
	b.WriteString("Temperature observations for most active station for last 12 months:<br/>/api/v1.0/tobs<br/><br/>")

	b.WriteString("Temperature observations from start date(yyyy-mm-dd):<br/>")
	if bounds != nil {
		fmt.Fprintf(&b, "Oldest Date = %s<br/>", bounds.Oldest)
	}
	b.WriteString("/api/v1.0/yyyy-mm-dd<br/><br/>")

	b.WriteString("Temperature observations from start date(yyyy-mm-dd) to end date(yyyy-mm-dd):<br/>")
	if bounds != nil {
		fmt.Fprintf(&b, "Oldest Date = %s, Most Recent Date = %s<br/>", bounds.Oldest, bounds.MostRecent)
	}
	b.WriteString("/api/v1.0/yyyy-mm-dd/yyyy-mm-dd")
	return b.String()
}
