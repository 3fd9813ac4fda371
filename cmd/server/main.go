// Command smartfit-server starts the SmartFit REST API and its gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/smartfit/internal/config"
	"github.com/and161185/smartfit/internal/limiter"
	"github.com/and161185/smartfit/internal/logging"
	grpcserver "github.com/and161185/smartfit/internal/server/grpc"
	httpserver "github.com/and161185/smartfit/internal/server/http"
	"github.com/and161185/smartfit/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, wires storage and auth, and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("storage", cfg.StorageDriver),
		zap.String("auth", cfg.AuthMode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	deps, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	checkinSvc := service.NewCheckinService(deps.entries)
	settingsSvc := service.NewSettingsService(deps.settings)
	hasher, err := limiter.NewIPHasher([]byte(cfg.IPHashKey))
	if err != nil {
		return fmt.Errorf("ip hasher: %w", err)
	}
	authSvc := service.NewAuthService(deps.verifier, deps.limiter, service.WithIPHasher(hasher))

	opts := httpserver.Options{
		BasePath:    cfg.BasePath,
		CORSOrigins: cfg.CORSOrigins,
		Location:    cfg.Location,
	}
	api := httpserver.New(checkinSvc, settingsSvc, authSvc, logger, opts)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}

	errCh := make(chan error, 2)
	var health *grpcserver.Health
	if cfg.HealthAddr != "" {
		hlis, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			return fmt.Errorf("listen health: %w", err)
		}
		health = grpcserver.NewHealth(logger)
		go func() {
			logger.Info("health listening", zap.String("addr", cfg.HealthAddr))
			errCh <- health.Serve(hlis)
		}()
		go health.Watch(ctx, 10*time.Second, deps.ping)
	}
	stopHealth := func() {
		if health != nil {
			health.Stop()
		}
	}

	go func() {
		var err error
		if cfg.TLSCert != "" {
			logger.Info("listening (TLS)", zap.String("addr", cfg.HTTPAddr))
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stopHealth()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	stopHealth()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
