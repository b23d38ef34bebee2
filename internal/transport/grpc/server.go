package grpc

import (
	"context"
	"log/slog"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger — то, что health-сервер опрашивает для статуса SERVING.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server — gRPC-сервер с health-сервисом.
type Server struct {
	*grpc.Server
	health *health.Server
}

// NewServer собирает сервер с цепочкой интерсепторов и health-сервисом.
// reflect включает grpc reflection (локально и на dev).
func NewServer(log *slog.Logger, timeout time.Duration, reflect bool) *Server {
	grpc_prometheus.EnableHandlingTimeHistogram()

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			Recover(log),
			UnaryLoggingInterceptor(log),
			WithTimeout(timeout),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	if reflect {
		reflection.Register(srv)
	}

	grpc_prometheus.Register(srv)

	return &Server{Server: srv, health: hs}
}

// SetServing переключает общий статус health-сервиса.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", st)
}

// WatchStore периодически пингует хранилище и отражает результат в health-статусе.
// Возвращается по ctx.
func (s *Server) WatchStore(ctx context.Context, store Pinger, every time.Duration) {
	if every <= 0 {
		every = 10 * time.Second
	}

	check := func() {
		pctx, cancel := context.WithTimeout(ctx, every/2)
		defer cancel()

		s.SetServing(store.Ping(pctx) == nil)
	}

	check()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
