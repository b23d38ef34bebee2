// log — request-scoped *slog.Logger поверх context и общие атрибуты логов pulse-reader.
//
// HTTP- и gRPC-мидлвары кладут в контекст логгер с request_id/method,
// сервисный слой дописывает op/source_id/user_id через With и логирует через From.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст. nil-логгер не кладётся.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}

	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер запроса; вне запроса (планировщик, старт) — slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}

// With дописывает атрибуты к логгеру из контекста и кладёт результат обратно.
func With(ctx context.Context, args ...any) context.Context {
	return Into(ctx, From(ctx).With(args...))
}

// Err — атрибут ошибки под единым ключом "err". nil даёт пустой атрибут, который slog пропускает.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	return slog.String("err", err.Error())
}
