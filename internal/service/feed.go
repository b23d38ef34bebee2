package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/auth"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

// ListArticles возвращает страницу ленты.
//
// Без персонализации фильтры запроса уходят в хранилище как есть.
//
// С персонализацией:
//   - нужен аутентифицированный пользователь (ErrAuthRequired) и его профиль (ErrProfileRequired);
//   - mood добавляет фильтр по тональности; sentiment запроса, отличный от mood, даёт пустую страницу;
//   - блоклист применяется после выборки: хранилище дочитывается пачками limit×multiplier,
//     не более maxRounds раундов.
//
// HasMore считается по непрочитанным строкам хранилища, NextOffset — курсор
// сразу за последней прочитанной строкой.
func (s *Service) ListArticles(ctx context.Context, identity *auth.Identity, q models.FeedQuery) (*models.FeedPage, error) {
	const op = "service.feed.ListArticles"

	lg := log.From(ctx)

	q, err := s.normalizeFeedQuery(q)
	if err != nil {
		lg.Warn("invalid_feed_query", slog.String("op", op), log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := models.ArticleQuery{
		Filter: models.ArticleFilter{
			Sentiment: q.Sentiment,
			SourceID:  q.SourceID,
			TopicID:   q.TopicID,
		},
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}

	if !q.ApplyPersonalization {
		return s.plainPage(ctx, query)
	}

	if identity == nil || identity.UserID == uuid.Nil {
		lg.Warn("personalization_without_identity", slog.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, ErrAuthRequired)
	}

	profile, err := s.loadProfile(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	zero := 0
	applied := models.FiltersApplied{
		Sentiment:         q.Sentiment,
		Personalization:   true,
		BlockedItemsCount: &zero,
	}

	if profile.Mood != nil {
		if q.Sentiment != nil && *q.Sentiment != *profile.Mood {
			// Взаимоисключающие фильтры: строк заведомо нет.
			return &models.FeedPage{
				Items: []models.Article{},
				Pagination: models.Pagination{
					Limit:      q.Limit,
					Offset:     q.Offset,
					NextOffset: q.Offset,
				},
				FiltersApplied: applied,
			}, nil
		}

		query.Filter.Sentiment = profile.Mood
		applied.Sentiment = profile.Mood
	}

	bl := newBlocklist(profile.Blocklist)
	if len(bl) == 0 {
		page, err := s.plainPage(ctx, query)
		if err != nil {
			return nil, err
		}
		page.FiltersApplied = applied
		s.metrics.ObserveFeed(1, 0)

		return page, nil
	}

	page, rounds, err := s.overfetchPage(ctx, query, bl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	blocked := *page.FiltersApplied.BlockedItemsCount
	page.FiltersApplied.Sentiment = applied.Sentiment
	page.FiltersApplied.Personalization = true
	s.metrics.ObserveFeed(rounds, blocked)

	lg.Debug("feed_personalized",
		slog.String("op", op),
		slog.Int("rounds", rounds),
		slog.Int("blocked", blocked),
		slog.Int("returned", len(page.Items)),
	)

	return page, nil
}

// plainPage — одна выборка без пост-фильтрации.
func (s *Service) plainPage(ctx context.Context, query models.ArticleQuery) (*models.FeedPage, error) {
	const op = "service.feed.plainPage"

	res, err := s.storage.QueryArticles(ctx, query)
	if err != nil {
		log.From(ctx).Error("query_articles_failed", slog.String("op", op), log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	items := res.Items
	if items == nil {
		items = []models.Article{}
	}

	next := query.Offset + len(items)

	return &models.FeedPage{
		Items: items,
		Pagination: models.Pagination{
			Limit:      query.Limit,
			Offset:     query.Offset,
			Total:      res.Total,
			HasMore:    next < res.Total,
			NextOffset: next,
		},
		FiltersApplied: models.FiltersApplied{Sentiment: query.Filter.Sentiment},
	}, nil
}

// overfetchPage дочитывает хранилище, пока не наберёт limit статей вне блоклиста.
// Останавливается при заполнении страницы, на короткой пачке (хранилище исчерпано)
// или после maxRounds раундов. Возвращает страницу и число раундов.
func (s *Service) overfetchPage(ctx context.Context, query models.ArticleQuery, bl blocklist) (*models.FeedPage, int, error) {
	const op = "service.feed.overfetchPage"

	mult, maxRounds := s.overfetch()
	limit := query.Limit
	batch := limit * mult

	items := make([]models.Article, 0, limit)
	start := query.Offset
	cursor := start
	total := 0
	blocked := 0
	rounds := 0

	for rounds < maxRounds && len(items) < limit {
		rounds++

		query.Offset = cursor
		query.Limit = batch

		res, err := s.storage.QueryArticles(ctx, query)
		if err != nil {
			log.From(ctx).Error("query_articles_failed",
				slog.String("op", op),
				slog.Int("round", rounds),
				log.Err(err),
			)
			return nil, rounds, fmt.Errorf("%s: %w", op, storageErr(err))
		}
		total = res.Total

		for _, a := range res.Items {
			cursor++
			if bl.blocks(a) {
				blocked++
				continue
			}

			items = append(items, a)
			if len(items) == limit {
				break
			}
		}

		if len(res.Items) < batch {
			break
		}
	}

	return &models.FeedPage{
		Items: items,
		Pagination: models.Pagination{
			Limit:      limit,
			Offset:     start,
			Total:      total,
			HasMore:    cursor < total,
			NextOffset: cursor,
		},
		FiltersApplied: models.FiltersApplied{BlockedItemsCount: &blocked},
	}, rounds, nil
}

// loadProfile читает профиль через кэш. Сбой кэша не ломает выдачу.
func (s *Service) loadProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "service.feed.loadProfile"

	lg := log.From(ctx)

	if s.cache != nil {
		p, ok, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			lg.Warn("profile_cache_get_failed", slog.String("op", op), log.Err(err))
		case ok:
			return p, nil
		}
	}

	p, err := s.storage.ProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("profile_required", slog.String("op", op), slog.String("user_id", userID.String()))
			return nil, ErrProfileRequired
		}
		lg.Error("profile_lookup_failed", slog.String("op", op), log.Err(err))

		return nil, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			lg.Warn("profile_cache_set_failed", slog.String("op", op), log.Err(err))
		}
	}

	return p, nil
}
