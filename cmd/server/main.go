package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ogurasousui/codex-hr-attendance/internal/platform/app"
	"github.com/ogurasousui/codex-hr-attendance/internal/platform/config"
	"github.com/ogurasousui/codex-hr-attendance/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.Default()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close()

	grpcServer := server.New(cfg.Server.ListenAddr, logger, application.Handlers())

	log.Printf("gRPC server listening on %s (storage=%s)", cfg.Server.ListenAddr, cfg.Storage.Driver)

	if err := grpcServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
