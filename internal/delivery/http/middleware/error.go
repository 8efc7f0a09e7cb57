package middleware

import (
	"errors"
	"log"

	"hireflow/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// AppError is what handlers return. Data is rendered for 4xx only; 5xx
// responses never expose Message or Cause.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

type ErrorMiddleware struct {
	logger *log.Logger
}

func NewErrorMiddleware(logger *log.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("http_panic method=%s path=%s panic=%v", c.Method(), c.Path(), r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= fiber.StatusInternalServerError {
			m.logger.Printf("http_error method=%s path=%s status=%d err=%v", c.Method(), c.Path(), status, err)
		}
		return response.Error(c, status, msg, data)
	}
}

// normalizeError maps err to the rendered status, message and data. An empty
// message falls back to the response package default for the status.
func normalizeError(err error) (int, string, interface{}) {
	status := fiber.StatusInternalServerError
	msg := ""
	var data interface{}

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		if appErr.StatusCode > 0 {
			status = appErr.StatusCode
		}
		msg, data = appErr.Message, appErr.Data
	case errors.As(err, &fiberErr):
		if fiberErr.Code > 0 {
			status = fiberErr.Code
		}
		msg = fiberErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}
	return status, msg, data
}
