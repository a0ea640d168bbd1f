package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/inference-console/internal/app"
	"github.com/samvad-hq/inference-console/internal/config"
	"github.com/samvad-hq/inference-console/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "inference-console: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.DebugObj("console starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console, err := app.NewConsole(ctx, cfg, log, app.Options{})
	if err != nil {
		log.ErrorObj("failed to initialize console", "error", err)
		return err
	}
	defer func() {
		if err := console.Close(); err != nil {
			log.ErrorObj("console close failed", "error", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		metricsCtx, cancelMetrics := context.WithCancel(ctx)
		defer cancelMetrics()
		go func() {
			if err := console.ServeMetrics(metricsCtx, cfg.MetricsAddr); err != nil {
				log.ErrorObj("metrics server failed", "error", err)
			}
		}()
	}

	if err := console.Run(ctx); err != nil {
		return fmt.Errorf("console run: %w", err)
	}
	return nil
}
