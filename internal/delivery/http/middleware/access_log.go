package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger *log.Logger
}

func NewAccessLogMiddleware(logger *log.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &AccessLogMiddleware{logger: logger}
}

// Middleware logs one line per request. The access log sits outside the
// error middleware, so the status it records is the rendered one.
func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		user := "-"
		if id, ok := UserID(c); ok {
			user = id.String()
		}

		m.logger.Printf(
			"http_access rid=%s ip=%s method=%s path=%s status=%d latency=%s user_id=%s resp_bytes=%d",
			rid, c.IP(), c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start), user, len(c.Response().Body()),
		)
		return err
	}
}
