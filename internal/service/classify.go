package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/classifier"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

// ReclassifyResult — итог добора классификации.
type ReclassifyResult struct {
	Attempted  int
	Classified int
	Failed     int
}

// ReclassifyPending повторно классифицирует до limit статей с пустой тональностью
// (непробованные и давно пробованные первыми) и атомарно заменяет их набор тем.
//
// Поведение:
//   - limit <= 0 — no-op;
//   - сбой классификатора по статье оставляет её неклассифицированной и сдвигает в конец очереди;
//   - первый ErrRateLimited/ErrUnavailable классификатора останавливает проход:
//     следующий запуск продолжит с того же места;
//   - статья, удалённая ретеншном во время прохода, пропускается.
func (s *Service) ReclassifyPending(ctx context.Context, limit int) (ReclassifyResult, error) {
	const op = "service.classify.ReclassifyPending"

	lg := log.From(ctx)

	var res ReclassifyResult
	if limit <= 0 {
		return res, nil
	}

	articles, err := s.storage.UnclassifiedArticles(ctx, limit)
	if err != nil {
		lg.Error("unclassified_lookup_failed", slog.String("op", op), log.Err(err))
		return res, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}

		res.Attempted++

		cls, err := s.classifier.Classify(ctx, a.Title, a.Description)
		if err != nil {
			s.metrics.IncClassifier(classifierResult(err))
			res.Failed++
			lg.Warn("reclassify_failed", slog.String("op", op), slog.String("article_id", a.ID.String()), log.Err(err))

			if stopsReclassify(err) {
				break
			}

			// Статья, на которой классификатор стабильно падает, не должна заслонять остальные.
			if merr := s.storage.MarkClassifyFailed(ctx, a.ID); merr != nil {
				if isFatal(merr) {
					return res, fmt.Errorf("%s: %w", op, storageErr(merr))
				}
				if !errors.Is(merr, storage.ErrNotFound) {
					lg.Warn("mark_classify_failed", slog.String("op", op), log.Err(merr))
				}
			}
			continue
		}
		s.metrics.IncClassifier("ok")

		topics, err := s.upsertTopics(ctx, cls.Topics)
		if isFatal(err) {
			return res, fmt.Errorf("%s: %w", op, storageErr(err))
		}
		if err != nil {
			lg.Warn("topic_upsert_failed", slog.String("op", op), log.Err(err))
		}

		ids := make([]uuid.UUID, 0, len(topics))
		for _, t := range topics {
			ids = append(ids, t.ID)
		}

		err = s.storage.UpdateClassification(ctx, a.ID, models.SentimentPtr(cls.Sentiment), ids)
		switch {
		case err == nil:
			res.Classified++
		case errors.Is(err, storage.ErrNotFound):
			res.Failed++
			lg.Debug("reclassify_article_gone", slog.String("op", op), slog.String("article_id", a.ID.String()))
		case isFatal(err):
			return res, fmt.Errorf("%s: %w", op, storageErr(err))
		default:
			res.Failed++
			lg.Error("update_classification_failed", slog.String("op", op), log.Err(err))
		}
	}

	lg.Info("reclassify_done",
		slog.String("op", op),
		slog.Int("attempted", res.Attempted),
		slog.Int("classified", res.Classified),
		slog.Int("failed", res.Failed),
	)

	return res, nil
}

// stopsReclassify — провайдер недоступен или упёрлись в лимит: дальше в этом проходе бессмысленно.
func stopsReclassify(err error) bool {
	return errors.Is(err, classifier.ErrRateLimited) || errors.Is(err, classifier.ErrUnavailable)
}
