package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
)

const defaultRetentionWindow = 30 * 24 * time.Hour

// RunRetentionSweep удаляет статьи старше окна хранения (по publication_date).
// Идемпотентна: повторный вызов удаляет только то, что успело устареть.
func (s *Service) RunRetentionSweep(ctx context.Context) (int64, error) {
	const op = "service.retention.RunRetentionSweep"

	lg := log.From(ctx)

	window := defaultRetentionWindow
	if s.cfg != nil && s.cfg.Retention.Window > 0 {
		window = s.cfg.Retention.Window
	}
	cutoff := s.now().Add(-window)

	deleted, err := s.storage.DeleteArticlesOlderThan(ctx, cutoff)
	if err != nil {
		lg.Error("retention_failed", slog.String("op", op), log.Err(err))
		return 0, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	s.metrics.AddRetentionDeleted(deleted)
	lg.Info("retention_done",
		slog.String("op", op),
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", deleted),
	)

	return deleted, nil
}
