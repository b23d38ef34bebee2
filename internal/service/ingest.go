package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/classifier"
	"github.com/pribylovaa/pulse-reader/internal/metrics"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
	"github.com/pribylovaa/pulse-reader/internal/storage"
	"golang.org/x/sync/errgroup"
)

// sourceStats — счётчики одного источника; сливаются в IngestionSummary после Wait.
type sourceStats struct {
	result       models.SourceResult
	duplicates   int
	unclassified int
	failed       int
}

// RunIngestionCycle выполняет один проход по всем активным источникам.
//
// Поведение:
//   - сначала проверяется доступность хранилища: недоступно — цикл прерывается с ErrUnavailable;
//   - источники обрабатываются пулом из cfg.Fetcher.Workers воркеров, статьи внутри источника — по порядку ленты;
//   - ошибка загрузки или разбора ленты помечает источник неуспешным и не влияет на остальные;
//   - storage.ErrUnavailable из любого вызова хранилища прерывает весь цикл;
//   - прочие ошибки по статье учитываются в ArticlesFailed.
//
// Функция не хранит состояния между вызовами: повторный запуск безопасен.
func (s *Service) RunIngestionCycle(ctx context.Context) (*models.IngestionSummary, error) {
	const op = "service.ingest.RunIngestionCycle"

	lg := log.From(ctx)
	started := s.now()

	summary := &models.IngestionSummary{StartedAt: started}
	abort := func(err error) (*models.IngestionSummary, error) {
		s.metrics.ObserveCycle(true, time.Since(started))
		lg.Error("ingest_aborted", slog.String("op", op), log.Err(err))

		return nil, fmt.Errorf("%s: %w", op, cycleErr(err))
	}

	if err := s.storage.Ping(ctx); err != nil {
		return abort(fmt.Errorf("%w: %w", storage.ErrUnavailable, err))
	}

	sources, err := s.storage.ListSources(ctx, true)
	if err != nil {
		return abort(err)
	}

	lg.Info("ingest_start", slog.String("op", op), slog.Int("sources", len(sources)))

	workers := 1
	if s.cfg != nil && s.cfg.Fetcher.Workers > 0 {
		workers = s.cfg.Fetcher.Workers
	}

	stats := make([]sourceStats, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range sources {
		g.Go(func() error {
			st, err := s.ingestSource(gctx, src)
			stats[i] = st

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return abort(err)
	}

	for _, st := range stats {
		summary.SourcesProcessed++
		if !st.result.Succeeded {
			summary.SourcesFailed++
		}
		summary.ArticlesCreated += st.result.ArticlesCreated
		summary.ArticlesDuplicate += st.duplicates
		summary.ArticlesUnclassified += st.unclassified
		summary.ArticlesFailed += st.failed
		summary.Sources = append(summary.Sources, st.result)
	}

	sort.SliceStable(summary.Sources, func(i, j int) bool {
		return summary.Sources[i].URL < summary.Sources[j].URL
	})

	summary.Duration = time.Since(started)
	s.metrics.ObserveCycle(false, summary.Duration)

	lg.Info("ingest_done",
		slog.String("op", op),
		slog.Int("sources_processed", summary.SourcesProcessed),
		slog.Int("sources_failed", summary.SourcesFailed),
		slog.Int("created", summary.ArticlesCreated),
		slog.Int("duplicates", summary.ArticlesDuplicate),
		slog.Int("unclassified", summary.ArticlesUnclassified),
		slog.Int("failed", summary.ArticlesFailed),
		slog.Duration("took", summary.Duration),
	)

	return summary, nil
}

// ingestSource загружает, разбирает и сохраняет одну ленту.
// Возвращает ошибку только при недоступности хранилища или отмене контекста.
func (s *Service) ingestSource(ctx context.Context, src models.Source) (sourceStats, error) {
	const op = "service.ingest.ingestSource"

	lg := log.From(ctx).With(slog.String("source_id", src.ID.String()), slog.String("url", src.URL))
	ctx = log.Into(ctx, lg)

	st := sourceStats{result: models.SourceResult{SourceID: src.ID, URL: src.URL}}
	now := s.now()

	fail := func(stage string, err error) (sourceStats, error) {
		s.metrics.IncSourceFailed()
		lg.Warn("source_failed", slog.String("op", op), slog.String("stage", stage), log.Err(err))

		st.result.Error = fmt.Sprintf("%s: %v", stage, err)
		if rerr := s.storage.RecordFetch(ctx, src.ID, now, st.result.Error); rerr != nil {
			if isFatal(rerr) {
				return st, rerr
			}
			lg.Error("record_fetch_failed", slog.String("op", op), log.Err(rerr))
		}

		return st, ctx.Err()
	}

	body, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return fail("fetch", err)
	}

	candidates, err := s.parser.Parse(body)
	if err != nil {
		return fail("parse", err)
	}

	for _, c := range candidates {
		article, ok := finalizeCandidate(c, src.ID, now)
		if !ok {
			continue
		}

		outcome, classified, err := s.ingestArticle(ctx, article)
		if isFatal(err) {
			return st, err
		}

		switch outcome {
		case metrics.ArticleCreated:
			st.result.ArticlesCreated++
			if !classified {
				st.unclassified++
				s.metrics.IncArticle(metrics.ArticleUnclassified)
			}
		case metrics.ArticleDuplicate:
			st.duplicates++
		case metrics.ArticleFailed:
			st.failed++
		}
		s.metrics.IncArticle(outcome)
	}

	st.result.Succeeded = true
	if err := s.storage.RecordFetch(ctx, src.ID, now, ""); isFatal(err) {
		return st, err
	}

	lg.Debug("source_done", slog.String("op", op),
		slog.Int("items", len(candidates)),
		slog.Int("created", st.result.ArticlesCreated),
		slog.Int("duplicates", st.duplicates),
	)

	return st, nil
}

// ingestArticle проводит одну статью через дедупликацию, классификацию и сохранение.
// Возвращает исход (metrics.Article*) и признак того, что тональность получена.
func (s *Service) ingestArticle(ctx context.Context, article models.Article) (string, bool, error) {
	const op = "service.ingest.ingestArticle"

	lg := log.From(ctx)

	exists, err := s.storage.ArticleExists(ctx, article.Link)
	if err != nil {
		lg.Error("article_exists_failed", slog.String("op", op), log.Err(err))
		return metrics.ArticleFailed, false, err
	}
	if exists {
		lg.Info("article_duplicate", slog.String("op", op), slog.String("link", article.Link))
		return metrics.ArticleDuplicate, false, nil
	}

	var topicIDs []uuid.UUID

	cls, err := s.classifier.Classify(ctx, article.Title, article.Description)
	if err != nil {
		s.metrics.IncClassifier(classifierResult(err))
		lg.Warn("classify_failed", slog.String("op", op), slog.String("link", article.Link), log.Err(err))
	} else {
		s.metrics.IncClassifier("ok")
		article.Sentiment = models.SentimentPtr(cls.Sentiment)

		topics, terr := s.upsertTopics(ctx, cls.Topics)
		if isFatal(terr) {
			return metrics.ArticleFailed, false, terr
		}
		if terr != nil {
			// Тональность сохраняем, статья уйдёт без тем.
			lg.Warn("topic_upsert_failed", slog.String("op", op), log.Err(terr))
		}
		for _, t := range topics {
			topicIDs = append(topicIDs, t.ID)
		}
	}

	if _, err := s.storage.InsertArticle(ctx, &article, topicIDs); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			// Проверка выше — лишь оптимизация; арбитр — уникальный индекс по link.
			lg.Info("article_duplicate", slog.String("op", op), slog.String("link", article.Link))
			return metrics.ArticleDuplicate, false, nil
		default:
			lg.Error("insert_article_failed", slog.String("op", op), slog.String("link", article.Link), log.Err(err))
			return metrics.ArticleFailed, false, err
		}
	}

	return metrics.ArticleCreated, article.Sentiment != nil, nil
}

// isFatal сообщает, что ошибка должна прервать весь цикл.
func isFatal(err error) bool {
	return err != nil && (errors.Is(err, storage.ErrUnavailable) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded))
}

// cycleErr сохраняет ошибки контекста как есть, остальное переводит в сентинелы сервиса.
func cycleErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return storageErr(err)
}

// classifierResult — метка для метрики classifier_calls_total.
func classifierResult(err error) string {
	switch {
	case errors.Is(err, classifier.ErrTimeout):
		return "timeout"
	case errors.Is(err, classifier.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, classifier.ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
