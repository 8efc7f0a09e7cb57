package v1

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterJobs mounts the job tree: jobs, requirements, candidates, batch
// runs and reports. Nil handlers are skipped.
func RegisterJobs(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Jobs != nil {
		h.Jobs.RegisterRoutes(r)
	}
	if h.Requirements != nil {
		h.Requirements.RegisterRoutes(r)
	}
	if h.Candidates != nil {
		h.Candidates.RegisterRoutes(r)
	}
	if h.Batch != nil {
		h.Batch.RegisterRoutes(r)
	}
	if h.Reports != nil {
		h.Reports.RegisterRoutes(r)
	}
}
