// Package httpapi exposes the published device state and poll controls to
// the host over HTTP.
package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wxtools/stationpoll/internal/budget"
	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/scheduler"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, states *device.StateStore, b *budget.CallBudget, sched *scheduler.Scheduler) {
	v1 := app.Group("/api/v1")

	v1.Get("/devices/:id/state", func(c *fiber.Ctx) error {
		st, err := states.Get(c.Params("id"))
		if err != nil {
			if errors.Is(err, device.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no published state for device")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read device state")
		}

		fields := make([]fiber.Map, 0, st.Record.Len())
		for _, f := range st.Record.Fields() {
			fields = append(fields, fiber.Map{
				"key":     f.Key,
				"value":   f.Value,
				"display": f.Display,
			})
		}

		return c.JSON(fiber.Map{
			"deviceId":         c.Params("id"),
			"online":           st.Online,
			"observationEpoch": st.ObservationEpoch,
			"alertActive":      st.AlertActive,
			"updatedAt":        st.UpdatedAt,
			"fields":           fields,
		})
	})

	v1.Get("/devices/:id/digest", func(c *fiber.Ctx) error {
		body, ok := sched.Digest(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no daily summary for device")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(body)
	})

	v1.Get("/budget", func(c *fiber.Ctx) error {
		bs := b.Snapshot()
		return c.JSON(fiber.Map{
			"callsMadeToday": bs.CallsMadeToday,
			"callsMax":       bs.CallsMax,
			"day":            bs.Day,
			"limitReached":   bs.LimitReached,
		})
	})

	v1.Get("/schedule", func(c *fiber.Ctx) error {
		status, lastPollAt, nextPollAt := sched.Status()
		return c.JSON(fiber.Map{
			"status":     status,
			"lastPollAt": lastPollAt,
			"nextPollAt": nextPollAt,
		})
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		go sched.RefreshNow(context.Background())
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "refresh scheduled"})
	})
}
