package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
)

// Timeout ограничивает обработку запроса дедлайном d. Уже заданный дедлайн не трогается,
// d <= 0 — без ограничения. Сработавший дедлайн попадает в лог запроса.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				log.From(ctx).Warn("request_deadline_exceeded", slog.Duration("timeout", d))
			}
		})
	}
}

// Detach отвязывает обработчик от отмены и дедлайна запроса: работа вроде
// ручного цикла ингеста доводится до конца даже после общего Timeout или
// обрыва соединения. Значения контекста (логгер, identity) сохраняются.
// budget > 0 — собственный дедлайн работы.
func Detach(budget time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithoutCancel(r.Context())

			var cancel context.CancelFunc
			if budget > 0 {
				ctx, cancel = context.WithTimeout(ctx, budget)
			} else {
				ctx, cancel = context.WithCancel(ctx)
			}
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
