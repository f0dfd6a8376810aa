package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/ekisa-team/estimo/internal/backend"
	"github.com/ekisa-team/estimo/internal/backend/forest"
	"github.com/ekisa-team/estimo/internal/backend/linear"
	"github.com/ekisa-team/estimo/internal/config"
	"github.com/ekisa-team/estimo/internal/env"
	"github.com/ekisa-team/estimo/internal/logger"
	"github.com/ekisa-team/estimo/internal/model"
	grpcserver "github.com/ekisa-team/estimo/internal/server/grpc"
	httpserver "github.com/ekisa-team/estimo/internal/server/http"
	"github.com/ekisa-team/estimo/internal/service"
	"github.com/ekisa-team/estimo/internal/xfs"
)

func main() {
	var (
		flagHTTPPort   = flag.Int("http-port", 0, "HTTP port to listen on (overrides config)")
		flagGRPCPort   = flag.Int("grpc-port", 0, "GRPC port to listen on (overrides config)")
		flagConfigPath = flag.String("config", path.Join(config.DefaultConfigPath(), "config.yaml"), "Path to config file")
		flagSchemaPath = flag.String("schema", "", "Path to schema file (defaults to the embedded schema)")
		flagLogToFile  = flag.Bool("log-to-file", false, "Also write logs to logs/estimo.log")
	)
	flag.Parse()

	environment := env.FromEnv()

	slog.SetDefault(
		logger.New(environment,
			logger.WithLogToFile(*flagLogToFile),
			logger.WithLogFile("logs/estimo.log"),
		),
	)

	if err := run(*flagConfigPath, *flagSchemaPath, *flagHTTPPort, *flagGRPCPort); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath, schemaPath string, httpPort, grpcPort int) error {
	decoders, err := backend.NewRegistry(linear.NewDecoder(), forest.NewDecoder())
	if err != nil {
		return fmt.Errorf("failed to register decoders: %w", err)
	}

	// The watcher starts before the manager exists; early reloads are dropped.
	var manager atomic.Pointer[model.Manager]
	cfg := config.Default()

	if xfs.FileExists(configPath) {
		watcher, err := config.NewWatcher(configPath, schemaPath, func(cfg *config.Config, err error) {
			if err != nil {
				slog.Error("Failed to reload config", "error", err)
				return
			}

			if m := manager.Load(); m != nil {
				m.ApplyConfig(cfg)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		defer watcher.Close()

		cfg = watcher.Snapshot()
		slog.Info("Config loaded successfully", "config", configPath, "schema", schemaPath)
	} else {
		if err := config.ApplyEnv(cfg); err != nil {
			return err
		}
		slog.Warn("Config file not found, using defaults", "config", configPath)
	}

	if httpPort > 0 {
		cfg.Server.HTTPPort = httpPort
	}
	if grpcPort > 0 {
		cfg.Server.GRPCPort = grpcPort
	}

	m := model.NewManager(cfg, decoders)
	manager.Store(m)
	registry := m.Registry()
	if cfg.Artifact.Eager {
		registry.Warm()
	} else {
		slog.Info("Model will be resolved on the first prediction request", "path", cfg.Artifact.Path)
	}

	predict := service.NewPredict(registry)

	httpSrv := httpserver.NewServer(cfg.Server.HTTPPort, httpserver.NewHandler(predict, registry))

	grpcSrv := grpc.NewServer()
	grpcserver.Register(grpcSrv, grpcserver.NewServer(predict))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}

		slog.Info("gRPC server listening", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		httpErr := make(chan error, 1)
		go func() {
			httpErr <- httpSrv.Shutdown(shutdownCtx)
		}()

		grpcserver.StopWithin(shutdownCtx, grpcSrv)
		return <-httpErr
	})

	return g.Wait()
}
