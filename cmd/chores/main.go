package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nemanja-m/chores/internal/household/api/grpc"
	"github.com/nemanja-m/chores/internal/household/api/rest"
	"github.com/nemanja-m/chores/internal/household/core"
	"github.com/nemanja-m/chores/internal/household/events"
	"github.com/nemanja-m/chores/internal/household/service"
	"github.com/nemanja-m/chores/internal/household/storage"
	"github.com/nemanja-m/chores/internal/shared/config"
	"github.com/nemanja-m/chores/internal/shared/logging"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one simulation and returns the process exit code. Every
// resource is released by deferred calls before it returns.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("chores", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to config file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Logging, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Close()

	supervisorCfg, err := service.NewSupervisorConfig(cfg)
	if err != nil {
		logger.Error("Invalid simulation config", "error", err)
		return 1
	}

	publisher := newPublisher(cfg.Events, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", "error", err)
		}
	}()

	supervisor, err := service.NewSupervisor(
		supervisorCfg,
		core.NewGenerator(cfg.Simulation.Seed),
		storage.NewInMemoryLedger(),
		publisher,
		logger,
	)
	if err != nil {
		logger.Error("Failed to create supervisor", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := startAPIs(ctx, cfg.API, supervisor, logger)
	defer shutdown()

	if _, err := supervisor.Run(ctx); err != nil {
		logger.Error("Run failed", "error", err)
		return 1
	}

	if cfg.API.Enabled() {
		linger(ctx, cfg.API.Linger, logger)
	}
	return 0
}

// linger keeps the status endpoints reachable after the run so the final
// result can be read. A zero duration waits for ctx.
func linger(ctx context.Context, d time.Duration, logger logging.Logger) {
	logger.Info("Run finished, status endpoints stay up", "linger", d.String())
	if d <= 0 {
		<-ctx.Done()
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func newPublisher(cfg config.EventsConfig, logger logging.Logger) core.EventPublisher {
	if cfg.NATSURL == "" {
		return events.NewNoopPublisher()
	}
	publisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.SubjectPrefix)
	if err != nil {
		logger.Warn("NATS unavailable, events disabled", "url", cfg.NATSURL, "error", err)
		return events.NewNoopPublisher()
	}
	logger.Info("Publishing events to NATS", "url", cfg.NATSURL, "prefix", cfg.SubjectPrefix)
	return publisher
}

// startAPIs starts the optional status servers and returns a function that
// stops them.
func startAPIs(ctx context.Context, cfg config.APIConfig, supervisor core.SupervisorService, logger logging.Logger) func() {
	var stops []func()

	if cfg.RESTAddr != "" {
		server := rest.NewServer(cfg.RESTAddr, supervisor, logger)
		go func() {
			logger.Info("Starting status API", "addr", cfg.RESTAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Status API failed", "error", err)
			}
		}()
		stops = append(stops, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Status API forced to shut down", "error", err)
			}
		})
	}

	if cfg.GRPCAddr != "" {
		server := grpc.NewServer(cfg.GRPCAddr, supervisor, logger)
		trackCtx, cancel := context.WithCancel(ctx)
		go server.Track(trackCtx, 0)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("gRPC health server failed", "error", err)
			}
		}()
		stops = append(stops, func() {
			cancel()
			server.Stop()
		})
	}

	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}
