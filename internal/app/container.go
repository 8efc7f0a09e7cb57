package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"hireflow/internal/config"
	"hireflow/internal/database"
	"hireflow/internal/database/migration"
	dbpostgres "hireflow/internal/database/postgres"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/infrastructure/cache"
	"hireflow/internal/infrastructure/storage"
	"hireflow/internal/pkg/jwt"
	"hireflow/internal/repository"
	ucauth "hireflow/internal/usecase/auth"
	"hireflow/internal/usecase/batch"
	uccandidate "hireflow/internal/usecase/candidate"
	jobuc "hireflow/internal/usecase/job"
	ucprofile "hireflow/internal/usecase/profile"
	ucreport "hireflow/internal/usecase/report"
	ucrequirement "hireflow/internal/usecase/requirement"
	"hireflow/internal/usecase/scoring"
	"hireflow/internal/ws"
)

// Container owns the process-wide dependencies shared by the server and
// the importer.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB      database.DB
	Cache   *cache.Redis
	AI      *ai.Resolver
	Storage *storage.Local
	JWT     *jwt.HMACService
	Hub     *ws.Hub

	Auth         *ucauth.Service
	Profiles     *ucprofile.Service
	Jobs         *jobuc.Service
	Requirements *ucrequirement.Service
	Candidates   *uccandidate.Service
	Scoring      *scoring.Service
	Batch        *batch.Registry
	Reports      *ucreport.Service

	stopHub context.CancelFunc
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.App.UploadsDir, 0o755); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Cache:   cache.NewRedis(cfg.Redis, logger),
		AI:      ai.NewResolver(context.Background(), cfg.AI, logger),
		Storage: storage.NewLocal(cfg.App.UploadsDir),
		JWT:     jwtSvc,
		Hub:     ws.NewHub(logger),
	}
	c.wire()

	hubCtx, stopHub := context.WithCancel(context.Background())
	c.stopHub = stopHub
	go c.Hub.Run(hubCtx)

	return c, nil
}

func (c *Container) wire() {
	jobRepo := repository.NewPostgresJobRepository(c.DB)
	reqRepo := repository.NewPostgresRequirementRepository(c.DB)
	fileRepo := repository.NewPostgresContextFileRepository(c.DB)
	candRepo := repository.NewPostgresCandidateRepository(c.DB)
	reportRepo := repository.NewPostgresReportRepository(c.DB)
	userRepo := repository.NewPostgresUserRepository(c.DB)
	profileRepo := repository.NewPostgresProfileRepository(c.DB)

	c.Auth = ucauth.NewService(userRepo, profileRepo, c.JWT)
	c.Profiles = ucprofile.NewService(profileRepo)
	c.Jobs = jobuc.NewService(jobRepo, reqRepo, fileRepo, candRepo, c.Logger)
	c.Requirements = ucrequirement.NewService(c.Jobs, reqRepo, ucrequirement.NewGenerator(c.Logger))
	c.Candidates = uccandidate.NewService(c.Jobs, candRepo, c.Storage, c.Config.App.UploadMaxBytes, c.Logger)
	c.Scoring = scoring.NewService(c.Jobs, candRepo, c.Storage, c.Logger)
	c.Reports = ucreport.NewService(c.Jobs, candRepo, reportRepo, c.Logger)

	proc := batch.NewProcessor(c.Scoring, candRepo, c.Config.Batch.Delay, c.Logger)
	c.Batch = batch.NewRegistry(proc, c.Cache, c.Hub, c.Logger)
}

// Migrate applies the embedded schema migrations.
func (c *Container) Migrate(ctx context.Context) error {
	r := migration.Runner{FS: migration.Embedded(), Logger: c.Logger}
	if err := r.Run(ctx, c.DB.SQLDB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close waits for running batches up to ctx, then releases every resource.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.Batch != nil {
		if err := c.Batch.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("batch shutdown: %w", err))
		}
	}
	if c.stopHub != nil {
		c.stopHub()
	}
	if err := c.AI.Close(); err != nil {
		errs = append(errs, fmt.Errorf("ai close: %w", err))
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}
