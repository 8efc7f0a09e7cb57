package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(nil).Middleware())
	app.Get("/", h)
	return app
}

func doGet(t *testing.T, app *fiber.App) (int, envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return resp.StatusCode, env
}

func TestErrorMiddleware_AppError(t *testing.T) {
	app := newTestApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "Requirement in use", map[string]string{"id": "r1"}, errors.New("fk"))
	})
	status, env := doGet(t, app)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Requirement in use", env.Message)
	assert.JSONEq(t, `{"id":"r1"}`, string(env.Data))
}

func TestErrorMiddleware_HidesServerErrors(t *testing.T) {
	app := newTestApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusBadGateway, "db password leaked", "secret", nil)
	})
	status, env := doGet(t, app)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", env.Message)
	assert.Equal(t, "null", string(env.Data))
}

func TestErrorMiddleware_FiberErrorDefaultMessage(t *testing.T) {
	app := newTestApp(func(c fiber.Ctx) error {
		return &fiber.Error{Code: fiber.StatusNotFound}
	})
	status, env := doGet(t, app)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not found", env.Message)
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	app := newTestApp(func(c fiber.Ctx) error {
		panic("boom")
	})
	status, env := doGet(t, app)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, fiber.StatusInternalServerError, env.Status)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"Bearer abc": true,
		"bearer abc": true,
		"Basic abc":  false,
		"Bearer   ":  false,
		"":           false,
		"Bearerabc":  false,
	}
	for in, want := range cases {
		_, ok := BearerToken(in)
		assert.Equal(t, want, ok, in)
	}
}
