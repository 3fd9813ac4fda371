// Package grpcserver runs the grpc.health.v1 endpoint polled by orchestrators.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Health owns a gRPC server exposing only the health service.
type Health struct {
	srv *grpc.Server
	hs  *health.Server
	log *zap.Logger
}

// NewHealth builds the server; it reports NOT_SERVING until SetServing(true).
func NewHealth(log *zap.Logger) *Health {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(RecoverUnary(log), LoggingUnary(log)),
		grpc.ChainStreamInterceptor(RecoverStream(log), LoggingStream(log)),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return &Health{srv: srv, hs: hs, log: log}
}

// SetServing flips the overall status.
func (h *Health) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.hs.SetServingStatus("", st)
}

// Watch runs check every interval and mirrors its result into the status
// until ctx is done.
func (h *Health) Watch(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	probe := func() {
		cctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := check(cctx)
		if err != nil {
			h.log.Warn("readiness check failed", zap.Error(err))
		}
		h.SetServing(err == nil)
	}

	probe()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			probe()
		}
	}
}

// Serve blocks serving on lis.
func (h *Health) Serve(lis net.Listener) error { return h.srv.Serve(lis) }

// Stop marks every service NOT_SERVING and drains the server.
func (h *Health) Stop() {
	h.hs.Shutdown()
	h.srv.GracefulStop()
}
