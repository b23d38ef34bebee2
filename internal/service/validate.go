package service

import (
	"fmt"

	"github.com/pribylovaa/pulse-reader/internal/models"
)

const (
	defaultLimit        = 20
	maxLimit            = 100
	defaultOverfetch    = 2
	defaultMaxOverRound = 3
)

// limits возвращает (default, max) лимиты выдачи с учётом конфига.
func (s *Service) limits() (int, int) {
	def, limit := defaultLimit, maxLimit
	if s.cfg != nil {
		if s.cfg.Limits.Default > 0 {
			def = s.cfg.Limits.Default
		}
		if s.cfg.Limits.Max > 0 {
			limit = s.cfg.Limits.Max
		}
	}

	return def, limit
}

// overfetch возвращает (multiplier, maxRounds) цикла дочитывания.
func (s *Service) overfetch() (int, int) {
	mult, rounds := defaultOverfetch, defaultMaxOverRound
	if s.cfg != nil {
		if s.cfg.Personalization.OverfetchMultiplier > 0 {
			mult = s.cfg.Personalization.OverfetchMultiplier
		}
		if s.cfg.Personalization.MaxRounds > 0 {
			rounds = s.cfg.Personalization.MaxRounds
		}
	}

	return mult, rounds
}

// ParseSortField принимает snake_case и camelCase формы. Пустая строка — publication_date.
func ParseSortField(raw string) (models.SortField, bool) {
	switch raw {
	case "", string(models.SortByPublicationDate), "publicationDate":
		return models.SortByPublicationDate, true
	case string(models.SortByCreatedAt), "createdAt":
		return models.SortByCreatedAt, true
	default:
		return "", false
	}
}

// ParseSortOrder принимает asc|desc. Пустая строка — desc.
func ParseSortOrder(raw string) (models.SortOrder, bool) {
	switch raw {
	case "", string(models.SortDesc):
		return models.SortDesc, true
	case string(models.SortAsc):
		return models.SortAsc, true
	default:
		return "", false
	}
}

// normalizeFeedQuery проверяет запрос ленты и подставляет значения по умолчанию.
func (s *Service) normalizeFeedQuery(q models.FeedQuery) (models.FeedQuery, error) {
	verr := &ValidationError{}
	def, limit := s.limits()

	switch {
	case q.Limit == 0:
		q.Limit = def
	case q.Limit < 0 || q.Limit > limit:
		verr.add("limit", fmt.Sprintf("must be between 1 and %d", limit))
	}

	if q.Offset < 0 {
		verr.add("offset", "must be non-negative")
	}

	if q.Sentiment != nil && !q.Sentiment.Valid() {
		verr.add("sentiment", "must be one of positive, neutral, negative")
	}

	if field, ok := ParseSortField(string(q.SortBy)); ok {
		q.SortBy = field
	} else {
		verr.add("sort_by", "must be publication_date or created_at")
	}

	if order, ok := ParseSortOrder(string(q.SortOrder)); ok {
		q.SortOrder = order
	} else {
		verr.add("sort_order", "must be asc or desc")
	}

	return q, verr.err()
}
