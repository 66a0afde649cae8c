// Package api exposes aggregation queries and latest-status lookups
// over HTTP.
package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/airband/feed-tracker/internal/aggregate"
	"github.com/airband/feed-tracker/internal/cache"
	"github.com/airband/feed-tracker/internal/store"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app. The cache
// client may be nil, in which case latest-status lookups return 404.
func RegisterRoutes(app *fiber.App, engine *aggregate.Engine, cacheClient *cache.Client) {
	v1 := app.Group("/api/v1")

	v1.Get("/feeds/aggregate", func(c *fiber.Ctx) error {
		query, err := parseAggregateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(engine.Run(query))
	})

	v1.Get("/feeds/latest/:name", func(c *fiber.Ctx) error {
		if cacheClient == nil {
			return fiber.NewError(fiber.StatusNotFound, "latest-status cache is not enabled")
		}

		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid feed name")
		}

		status, err := cacheClient.GetLatest(c.Context(), name)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read latest status")
		}
		if status == nil {
			return fiber.NewError(fiber.StatusNotFound, "no recent observation for feed")
		}
		return c.JSON(status)
	})
}

// parseAggregateQuery binds start, end and feeds query parameters.
// Dates use the partition key format; both bounds are optional.
func parseAggregateQuery(c *fiber.Ctx) (aggregate.Query, error) {
	var q aggregate.Query

	if start := c.Query("start"); start != "" {
		t, err := time.Parse(store.DateLayout, start)
		if err != nil {
			return q, fmt.Errorf("invalid start date %q; use YYYY-MM-DD", start)
		}
		q.Start = t
	}

	if end := c.Query("end"); end != "" {
		t, err := time.Parse(store.DateLayout, end)
		if err != nil {
			return q, fmt.Errorf("invalid end date %q; use YYYY-MM-DD", end)
		}
		q.End = t
	}

	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return q, fmt.Errorf("end date precedes start date")
	}

	if feeds := c.Query("feeds"); feeds != "" {
		q.FeedNames = splitFeeds(feeds)
	}

	return q, nil
}

func splitFeeds(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
