package routes

import (
	"hireflow/internal/delivery/http/handler"
	v1 "hireflow/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	v1     v1.Handlers
	auth   fiber.Handler
	ws     fiber.Handler
}

// NewRegistry collects the route handlers. auth guards /api/v1 and the
// websocket feed.
func NewRegistry(health *handler.HealthHandler, api v1.Handlers, auth fiber.Handler, ws fiber.Handler) *Registry {
	return &Registry{health: health, v1: api, auth: auth, ws: ws}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerWS(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.ws == nil {
		return
	}
	app.Get("/ws", r.auth, r.ws)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1, r.auth)
}
