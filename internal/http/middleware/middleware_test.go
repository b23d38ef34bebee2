package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/auth"
	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
	"github.com/stretchr/testify/require"
)

// capHandler — тестовый slog.Handler: копит базовые attrs из With(...)
// и attrs последней записи, без реального I/O.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
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

	h.count++
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

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()

	var env apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

// fakeVerifier принимает ровно один токен.
type fakeVerifier struct {
	token    string
	identity *auth.Identity
	err      error
}

func (v fakeVerifier) Verify(token string) (*auth.Identity, error) {
	if token != v.token {
		return nil, v.err
	}
	return v.identity, nil
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-begin")
				next.ServeHTTP(w, r)
				order = append(order, name+"-end")
			})
		}
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	Chain(final, mw("m1"), mw("m2")).ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	t.Parallel()

	var seen string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(HeaderRequestID)
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	got := rr.Header().Get(HeaderRequestID)
	require.Len(t, got, 32)
	require.Equal(t, got, seen)
}

func TestRequestID_UseExistingAndRejectOversized(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	rr := httptest.NewRecorder()
	req := makeReq("/rid")
	req.Header.Set(HeaderRequestID, "abc-123")
	Chain(h, RequestID()).ServeHTTP(rr, req)
	require.Equal(t, "abc-123", rr.Header().Get(HeaderRequestID))

	long := make([]byte, maxRequestIDLen+1)
	for i := range long {
		long[i] = 'x'
	}

	rr = httptest.NewRecorder()
	req = makeReq("/rid")
	req.Header.Set(HeaderRequestID, string(long))
	Chain(h, RequestID()).ServeHTTP(rr, req)
	require.Len(t, rr.Header().Get(HeaderRequestID), 32)
}

func TestTimeout_SetsDeadline_WhenAbsent(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(50*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/t"))
	require.True(t, hasDeadline)
}

func TestTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	t.Parallel()

	var childDL time.Time
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		childDL, _ = r.Context().Deadline()
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	Chain(h, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), makeReq("/t").WithContext(parent))

	parentDL, _ := parent.Deadline()
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/t"))
	require.False(t, hasDeadline)
}

func TestTimeout_LogsExceededDeadline(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	req := makeReq("/slow")
	req = req.WithContext(log.Into(req.Context(), slog.New(h)))

	Chain(slow, Timeout(10*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "request_deadline_exceeded", h.lastMsg)
	require.Equal(t, slog.LevelWarn, h.lastLvl)
	require.Equal(t, 10*time.Millisecond, h.attrs["timeout"])
}

// TestDetach_OutlivesRequestTimeout — обработчик за Detach не видит дедлайн общего Timeout
// и доделывает работу дольше него, сохраняя значения контекста.
func TestDetach_OutlivesRequestTimeout(t *testing.T) {
	t.Parallel()

	var (
		workErr  error
		deadline time.Time
		identity *auth.Identity
	)
	uid := uuid.New()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(60 * time.Millisecond):
		case <-r.Context().Done():
		}
		workErr = r.Context().Err()
		deadline, _ = r.Context().Deadline()
		identity = auth.From(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := makeReq("/admin/ingest")
	req = req.WithContext(auth.Into(req.Context(), &auth.Identity{UserID: uid}))

	start := time.Now()
	rr := httptest.NewRecorder()
	Chain(h, Timeout(10*time.Millisecond), Detach(time.Minute)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, workErr)
	require.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)
	require.NotNil(t, identity)
	require.Equal(t, uid, identity.UserID)
}

func TestDetach_BudgetStillApplies(t *testing.T) {
	t.Parallel()

	var workErr error
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		workErr = r.Context().Err()
	})

	Chain(h, Detach(10*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/t"))
	require.ErrorIs(t, workErr, context.DeadlineExceeded)
}

func TestDetach_IgnoresClientCancel(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	cancel()

	var workErr error
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workErr = r.Context().Err()
	})

	Chain(h, Detach(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/t").WithContext(parent))
	require.NoError(t, workErr)
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("db password leaked") })

	rr := httptest.NewRecorder()
	Chain(h, Recover()).ServeHTTP(rr, makeReq("/panic"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "password")

	env := decodeEnvelope(t, rr)
	require.Equal(t, "internal", env.Error.Code)
}

func TestLogging_WritesRecord(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	})

	req := makeReq("/log")
	req.Header.Set(HeaderRequestID, "rid-456")

	rr := httptest.NewRecorder()
	Chain(final, RequestID(), Logging(slog.New(h))).ServeHTTP(rr, req)

	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)
	require.Equal(t, http.MethodGet, h.attrs["method"])
	require.Equal(t, "/log", h.attrs["path"])
	require.EqualValues(t, http.StatusOK, h.attrs["status"])
	require.EqualValues(t, 10, h.attrs["bytes"])
	require.Equal(t, "rid-456", h.attrs["request_id"])
	require.Contains(t, h.attrs, "dur")
}

func TestLogging_LevelByStatus(t *testing.T) {
	t.Parallel()

	for status, want := range map[int]slog.Level{
		http.StatusNotFound:           slog.LevelWarn,
		http.StatusServiceUnavailable: slog.LevelError,
	} {
		h := &capHandler{}
		final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) })

		Chain(final, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), makeReq("/x"))
		require.Equal(t, want, h.lastLvl)
	}
}

func TestStatusWriter_DefaultStatusAndCount(t *testing.T) {
	t.Parallel()

	sw := newStatusWriter(httptest.NewRecorder())
	require.Equal(t, http.StatusOK, sw.Status())

	_, _ = sw.Write([]byte("abcd"))
	sw.WriteHeader(http.StatusTeapot) // после Write статус уже зафиксирован

	require.Equal(t, http.StatusOK, sw.Status())
	require.Equal(t, 4, sw.count)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	v := fakeVerifier{
		token:    "good",
		identity: &auth.Identity{UserID: uid, Roles: []string{"admin"}},
		err:      auth.ErrInvalidToken,
	}

	var seen *auth.Identity
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.From(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Chain(final, Authenticate(v))

	t.Run("anonymous", func(t *testing.T) {
		seen = nil
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, makeReq("/a"))
		require.Equal(t, http.StatusNoContent, rr.Code)
		require.Nil(t, seen)
	})

	t.Run("valid", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := makeReq("/a")
		req.Header.Set("Authorization", "Bearer good")
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		require.Equal(t, uid, seen.UserID)
	})

	for name, header := range map[string]string{
		"bad_token":  "Bearer bad",
		"bad_scheme": "Basic abc",
		"empty":      "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := makeReq("/a")
			req.Header.Set("Authorization", header)
			h.ServeHTTP(rr, req)
			require.Equal(t, http.StatusUnauthorized, rr.Code)
			require.Equal(t, "unauthenticated", decodeEnvelope(t, rr).Error.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Chain(final, RequireRole("admin"))

	cases := []struct {
		name     string
		identity *auth.Identity
		want     int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"reader", &auth.Identity{UserID: uuid.New(), Roles: []string{"reader"}}, http.StatusForbidden},
		{"admin", &auth.Identity{UserID: uuid.New(), Roles: []string{"admin"}}, http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := makeReq("/admin")
			if tc.identity != nil {
				req = req.WithContext(auth.Into(req.Context(), tc.identity))
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			require.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Parallel()

	v := fakeVerifier{token: "-", err: auth.ErrTokenExpired}

	rr := httptest.NewRecorder()
	req := makeReq("/a")
	req.Header.Set("Authorization", "bearer stale")
	Chain(http.NotFoundHandler(), Authenticate(v)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
