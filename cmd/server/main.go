package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hireflow/internal/app"
	"hireflow/internal/config"
	"hireflow/internal/database/seeder"
)

func main() {
	seed := flag.Bool("seed", false, "insert the demo recruiter and job after migrating")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	bootstrap, cleanup, err := app.Bootstrap(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to bootstrap app: %v", err)
	}

	if *seed {
		if err := runSeeders(bootstrap.Container, cfg.App.DemoPassword, logger); err != nil {
			logger.Fatalf("failed to seed: %v", err)
		}
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		logger.Fatalf("invalid HTTP port: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("http_listen addr=%s env=%s", addr, cfg.App.Environment)
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Printf("server error: %v", err)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			logger.Printf("shutdown error: %v", err)
		}
	}

	// In-flight batches finish their current candidate before resources close.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := cleanup(ctx); err != nil {
		logger.Printf("cleanup error: %v", err)
	}
}

func runSeeders(c *app.Container, password string, logger *log.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	r := seeder.Runner{Seeders: seeder.Defaults(password), Logger: logger}
	return r.Run(ctx, c.DB)
}
