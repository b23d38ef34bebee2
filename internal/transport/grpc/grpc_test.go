package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// capHandler — slog.Handler, запоминающий последнюю запись.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func TestUnaryLoggingInterceptor_RequestIDFromMetadata(t *testing.T) {
	h := &capHandler{}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{"x-request-id": "rid-1"}))
	ctx = peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9090}})

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	resp, err := UnaryLoggingInterceptor(slog.New(h))(ctx, "req", info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	require.Equal(t, "grpc", h.lastMsg)
	require.Equal(t, "rid-1", h.attrs["request_id"])
	require.Equal(t, info.FullMethod, h.attrs["method"])
	require.Equal(t, "127.0.0.1:9090", h.attrs["peer"])
	require.Equal(t, "OK", h.attrs["code"])
}

func TestUnaryLoggingInterceptor_GeneratesRequestID(t *testing.T) {
	h := &capHandler{}

	_, err := UnaryLoggingInterceptor(slog.New(h))(context.Background(), "req",
		&grpc.UnaryServerInfo{FullMethod: "/x/Y"},
		func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.Unavailable, "down")
		})
	require.Error(t, err)
	require.Equal(t, "Unavailable", h.attrs["code"])

	rid, _ := h.attrs["request_id"].(string)
	_, parseErr := uuid.Parse(rid)
	require.NoError(t, parseErr)
}

func TestRecover_PanicToInternal(t *testing.T) {
	h := &capHandler{}

	resp, err := Recover(slog.New(h))(context.Background(), "req",
		&grpc.UnaryServerInfo{FullMethod: "/x/Panic"},
		func(ctx context.Context, req any) (any, error) {
			panic("boom")
		})

	require.Nil(t, resp)
	require.Equal(t, codes.Internal, status.Code(err))
	require.Equal(t, slog.LevelError, h.lastLvl)
	require.Equal(t, "panic_recovered", h.lastMsg)
	require.NotEmpty(t, h.attrs["stack"])
}

func TestWithTimeout(t *testing.T) {
	t.Run("sets deadline", func(t *testing.T) {
		_, err := WithTimeout(20*time.Millisecond)(context.Background(), "req", &grpc.UnaryServerInfo{},
			func(ctx context.Context, req any) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("keeps existing deadline", func(t *testing.T) {
		parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
		defer cancel()
		want, _ := parent.Deadline()

		var got time.Time
		_, err := WithTimeout(time.Second)(parent, "req", &grpc.UnaryServerInfo{},
			func(ctx context.Context, req any) (any, error) {
				got, _ = ctx.Deadline()
				return "ok", nil
			})
		require.NoError(t, err)
		require.WithinDuration(t, want, got, time.Millisecond)
	})

	t.Run("zero passes through", func(t *testing.T) {
		var hasDL bool
		_, err := WithTimeout(0)(context.Background(), "req", &grpc.UnaryServerInfo{},
			func(ctx context.Context, req any) (any, error) {
				_, hasDL = ctx.Deadline()
				return "ok", nil
			})
		require.NoError(t, err)
		require.False(t, hasDL)
	})
}

type flakyStore struct{ down atomic.Bool }

func (s *flakyStore) Ping(context.Context) error {
	if s.down.Load() {
		return errors.New("down")
	}
	return nil
}

func TestServer_HealthFollowsStore(t *testing.T) {
	srv := NewServer(slog.New(slog.DiscardHandler), time.Second, false)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	statusOf := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.GetStatus()
	}

	store := &flakyStore{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.WatchStore(ctx, store, 20*time.Millisecond)

	require.Eventually(t, func() bool { return statusOf() == healthpb.HealthCheckResponse_SERVING }, 2*time.Second, 10*time.Millisecond)

	store.down.Store(true)
	require.Eventually(t, func() bool { return statusOf() == healthpb.HealthCheckResponse_NOT_SERVING }, 2*time.Second, 10*time.Millisecond)
}
