package middleware

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/metrics"
)

// Metrics counts requests by method, matched route and final status.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = apperror.KindOf(err).Status()
			}
		}

		metrics.HTTPRequests.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Inc()
		return err
	}
}
