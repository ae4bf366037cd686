// Package httpapi exposes the latest snapshot over HTTP: JSON for other
// presentation backends, plain text for a quick look at the panel itself.
// It reads the refresh loop's last good snapshot and never triggers a
// fetch of its own.
package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/nasharino/weather-forecast-panel/internal/panel"
	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

var validate = validator.New()

// SnapshotSource is the slice of the refresh loop the API reads from.
type SnapshotSource interface {
	Latest() (snap weather.Snapshot, fetchedAt time.Time, ok bool)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. defaultGeo is
// used for panel rendering when the request does not specify a size.
func RegisterRoutes(app *fiber.App, src SnapshotSource, defaultGeo panel.Geometry) {
	v1 := app.Group("/api/v1")

	v1.Get("/snapshot", func(c *fiber.Ctx) error {
		snap, fetchedAt, ok := src.Latest()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no weather data fetched yet")
		}
		return c.JSON(fiber.Map{
			"fetchedAt": fetchedAt,
			"snapshot":  snap,
		})
	})

	v1.Get("/panel", func(c *fiber.Ctx) error {
		q, err := parsePanelQuery(c, defaultGeo)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, _, ok := src.Latest()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no weather data fetched yet")
		}

		lines, err := panel.Render(snap, panel.Geometry{Columns: q.Cols, Rows: q.Rows})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(strings.Join(lines, "\n") + "\n")
	})
}

// panelQuery holds the requested panel size. The bounds keep a hostile
// query from asking for an absurd grid.
type panelQuery struct {
	Cols int `validate:"min=3,max=500"`
	Rows int `validate:"min=2,max=200"`
}

func parsePanelQuery(c *fiber.Ctx, defaultGeo panel.Geometry) (panelQuery, error) {
	q := panelQuery{Cols: defaultGeo.Columns, Rows: defaultGeo.Rows}

	var err error
	if v := c.Query("cols"); v != "" {
		if q.Cols, err = strconv.Atoi(v); err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, "cols must be an integer")
		}
	}
	if v := c.Query("rows"); v != "" {
		if q.Rows, err = strconv.Atoi(v); err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, "rows must be an integer")
		}
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
