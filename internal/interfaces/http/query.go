package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// parseDateRange lee los query params from/to como fecha (2006-01-02) o
// timestamp RFC3339. Devuelve nil para los ausentes.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("from: %w", err)
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("to: %w", err)
		}
		to = &t
	}
	return from, to, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
