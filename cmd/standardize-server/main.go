package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"factorstd/internal/app"
	"factorstd/internal/config"
	"factorstd/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $FACTORSTD_CONFIG or ./factorstd.yaml)")
	port := flag.Int("port", 0, "listen port, overrides server.port")
	flag.Parse()

	if err := serve(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "standardize-server: %v\n", err)
		os.Exit(1)
	}
}

func serve(configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, os.Stdout)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, os.Stdout, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	telemetry.SetGlobal()

	application, err := app.NewApplication(cfg, logger, telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
