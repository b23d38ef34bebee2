// scheduler запускает периодические задачи (ингест, ретеншн) по тикеру.
// Состояния между тиками нет: каждая задача — stateless вход в сервис.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
)

// Job — одна итерация периодической задачи.
type Job func(ctx context.Context) error

// Run выполняет job сразу и далее каждые interval до отмены ctx.
//
// Особенности:
//   - тики одной задачи не пересекаются: пока итерация идёт, пропущенные тики
//     схлопываются тикером в один;
//   - ошибка итерации логируется и не останавливает цикл.
func Run(ctx context.Context, name string, interval time.Duration, job Job) {
	const op = "scheduler.Run"

	lg := log.From(ctx).With(slog.String("job", name))
	lg.Info("job_start",
		slog.String("op", op),
		slog.Duration("interval", interval),
	)

	tick := func() {
		start := time.Now()
		if err := job(ctx); err != nil {
			lg.Warn("job_tick_error",
				slog.String("op", op),
				slog.Duration("dur", time.Since(start)),
				log.Err(err),
			)
			return
		}

		lg.Debug("job_tick_done",
			slog.String("op", op),
			slog.Duration("dur", time.Since(start)),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick()

	for {
		select {
		case <-ctx.Done():
			lg.Info("job_stop", slog.String("op", op))
			return
		case <-ticker.C:
			// Отмена могла прийти одновременно с тиком.
			if ctx.Err() != nil {
				lg.Info("job_stop", slog.String("op", op))
				return
			}
			tick()
		}
	}
}
