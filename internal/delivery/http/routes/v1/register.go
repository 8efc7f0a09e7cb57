package v1

import (
	"hireflow/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// Handlers is everything mounted under /api/v1.
type Handlers struct {
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Jobs         *handler.JobsHandler
	Requirements *handler.RequirementHandler
	Candidates   *handler.CandidateHandler
	Batch        *handler.BatchHandler
	Reports      *handler.ReportHandler
}

// Register mounts the public auth routes and puts every other route behind
// auth.
func Register(r fiber.Router, h Handlers, auth fiber.Handler) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}

	protected := r.Group("", auth)
	RegisterUsers(protected, h.Profile)
	RegisterJobs(protected, h)
}
