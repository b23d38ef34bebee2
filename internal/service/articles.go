package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
)

// ArticleByID возвращает статью вместе с темами.
//
// Валидация: id не должен быть uuid.Nil.
// При отсутствии записи возвращает ErrNotFound.
func (s *Service) ArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	const op = "service.articles.ArticleByID"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("article_id", id.String()))

	if id == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Fields: []FieldError{{Field: "id", Reason: "must be a non-nil uuid"}}})
	}

	article, err := s.storage.ArticleByID(ctx, id)
	if err != nil {
		serr := storageErr(err)
		if serr == ErrNotFound {
			lg.Warn("article_not_found")
		} else {
			lg.Error("article_lookup_failed", log.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, serr)
	}

	return article, nil
}

// DeleteArticle удаляет статью (связи с темами уходят каскадом).
func (s *Service) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	const op = "service.articles.DeleteArticle"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("article_id", id.String()))

	if id == uuid.Nil {
		return fmt.Errorf("%s: %w", op, &ValidationError{Fields: []FieldError{{Field: "id", Reason: "must be a non-nil uuid"}}})
	}

	if err := s.storage.DeleteArticle(ctx, id); err != nil {
		lg.Warn("delete_article_failed", log.Err(err))
		return fmt.Errorf("%s: %w", op, storageErr(err))
	}

	lg.Info("article_deleted")

	return nil
}
