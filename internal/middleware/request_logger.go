package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticketing/internal/logging"
)

// CorrelationHeader carries the request correlation id in and out.
const CorrelationHeader = "X-Correlation-ID"

// RequestLogger seeds every request with a logrus entry carrying a
// correlation id (taken from the inbound header or freshly generated),
// stores it on the request context for logging.FromContext, and logs one
// line per request with status and latency.
func RequestLogger(base *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			cid := req.Header.Get(CorrelationHeader)
			if cid == "" || len(cid) > 128 {
				cid = uuid.NewString()
			}
			c.Response().Header().Set(CorrelationHeader, cid)

			entry := base.WithFields(logrus.Fields{
				"correlation_id": cid,
				"method":         req.Method,
				"path":           c.Path(),
			})
			c.SetRequest(req.WithContext(logging.WithEntry(req.Context(), entry)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  c.RealIP(),
			}
			if id := BuyerID(c); id != "" {
				fields["buyer_id"] = id
			}
			l := entry.WithFields(fields)
			switch s := c.Response().Status; {
			case s >= 500:
				l.Error("request")
			case s >= 400:
				l.Warn("request")
			default:
				l.Info("request")
			}
			return nil
		}
	}
}
