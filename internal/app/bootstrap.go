package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"hireflow/internal/config"
	"hireflow/internal/delivery/http/handler"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/delivery/http/routes"
	v1 "hireflow/internal/delivery/http/routes/v1"
	"hireflow/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// BodyLimit admits this many maximum-size files in one multipart request.
const maxFilesPerRequest = 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: int(c.Config.App.UploadMaxBytes) * maxFilesPerRequest,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap connects every dependency, migrates the schema and builds the
// HTTP app. cleanup drains running batches before closing resources.
func Bootstrap(cfg config.Config, logger *log.Logger) (*App, func(ctx context.Context) error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := c.Migrate(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, nil, err
	}

	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(logger)
	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	maxBytes := c.Config.App.UploadMaxBytes
	api := v1.Handlers{
		Auth:         handler.NewAuthHandler(c.Auth),
		Profile:      handler.NewProfileHandler(c.Profiles),
		Jobs:         handler.NewJobsHandler(c.Jobs, maxBytes),
		Requirements: handler.NewRequirementHandler(c.Requirements, c.AI),
		Candidates:   handler.NewCandidateHandler(c.Candidates, c.Scoring, c.AI, maxBytes),
		Batch:        handler.NewBatchHandler(c.Batch, c.Jobs, c.AI),
		Reports:      handler.NewReportHandler(c.Reports, c.AI),
	}
	authMw := middleware.NewAuthMiddleware(c.JWT)
	wsHandler := ws.NewHandler(c.Hub, c.Logger)

	routes.NewRegistry(
		handler.NewHealthHandler(c.DB, c.Cache),
		api,
		authMw.Middleware(),
		wsHandler.HandleWS,
	).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
