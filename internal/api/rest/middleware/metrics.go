package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/metrics"
)

// Metrics records request counts and latency labelled by route pattern.
func Metrics() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		metrics.IncrementInFlight()
		defer metrics.DecrementInFlight()

		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		metrics.RecordHTTPRequest(ctx.Method(), ctx.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
