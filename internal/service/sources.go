package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
)

const maxSourceNameLen = 200

// CreateSourceInput — входные данные регистрации источника.
type CreateSourceInput struct {
	URL  string
	Name string
	// Active == nil — источник активен.
	Active *bool
}

// normalizeSourceURL допускает только абсолютные http(s) URL.
func normalizeSourceURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	return u.String(), true
}

func validateSourceName(name string, verr *ValidationError) {
	if len([]rune(name)) > maxSourceNameLen {
		verr.add("name", fmt.Sprintf("must be at most %d characters", maxSourceNameLen))
	}
}

// CreateSource регистрирует RSS/Atom-источник.
//
// Валидация: url — абсолютный http(s); name — до 200 символов (пустое — берётся host).
// Дубликат url — ErrAlreadyExists.
func (s *Service) CreateSource(ctx context.Context, input CreateSourceInput) (*models.Source, error) {
	const op = "service.sources.CreateSource"

	lg := log.From(ctx).With(slog.String("op", op))

	verr := &ValidationError{}
	link, ok := normalizeSourceURL(input.URL)
	if !ok {
		verr.add("url", "must be an absolute http(s) url")
	}
	name := normalizeTopicName(input.Name)
	validateSourceName(name, verr)

	if err := verr.err(); err != nil {
		lg.Warn("invalid_source", log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if name == "" {
		u, _ := url.Parse(link)
		name = u.Host
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	created, err := s.storage.CreateSource(ctx, &models.Source{URL: link, Name: name, Active: active})
	if err != nil {
		serr := storageErr(err)
		if serr == ErrAlreadyExists {
			lg.Warn("source_already_exists", slog.String("url", link))
		} else {
			lg.Error("create_source_failed", log.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, serr)
	}

	lg.Info("source_created", slog.String("source_id", created.ID.String()), slog.String("url", created.URL))

	return created, nil
}

// ListSources возвращает все источники (включая неактивные).
func (s *Service) ListSources(ctx context.Context) ([]models.Source, error) {
	const op = "service.sources.ListSources"

	sources, err := s.storage.ListSources(ctx, false)
	if err != nil {
		log.From(ctx).Error("list_sources_failed", slog.String("op", op), log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	return sources, nil
}

// UpdateSource меняет name/active. Нет записи — ErrNotFound.
func (s *Service) UpdateSource(ctx context.Context, id uuid.UUID, update models.SourceUpdate) (*models.Source, error) {
	const op = "service.sources.UpdateSource"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("source_id", id.String()))

	verr := &ValidationError{}
	if id == uuid.Nil {
		verr.add("id", "must be a non-nil uuid")
	}
	if update.Name != nil {
		name := normalizeTopicName(*update.Name)
		if name == "" {
			verr.add("name", "must not be empty")
		}
		validateSourceName(name, verr)
		update.Name = &name
	}

	if err := verr.err(); err != nil {
		lg.Warn("invalid_source_update", log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.storage.UpdateSource(ctx, id, update)
	if err != nil {
		serr := storageErr(err)
		if serr == ErrNotFound {
			lg.Warn("source_not_found")
		} else {
			lg.Error("update_source_failed", log.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, serr)
	}

	lg.Info("source_updated", slog.Bool("active", updated.Active))

	return updated, nil
}

// DeleteSource удаляет источник. Пока на него ссылаются статьи — ErrReferenced.
func (s *Service) DeleteSource(ctx context.Context, id uuid.UUID) error {
	const op = "service.sources.DeleteSource"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("source_id", id.String()))

	if id == uuid.Nil {
		return fmt.Errorf("%s: %w", op, &ValidationError{Fields: []FieldError{{Field: "id", Reason: "must be a non-nil uuid"}}})
	}

	if err := s.storage.DeleteSource(ctx, id); err != nil {
		lg.Warn("delete_source_failed", log.Err(err))
		return fmt.Errorf("%s: %w", op, storageErr(err))
	}

	lg.Info("source_deleted")

	return nil
}

// EnsureSources заводит источники из конфига, если их ещё нет.
// Идемпотентна: существующие URL пропускаются. Невалидный URL — ошибка старта.
func (s *Service) EnsureSources(ctx context.Context, urls []string) (int, error) {
	const op = "service.sources.EnsureSources"

	lg := log.From(ctx)
	created := 0

	for _, raw := range urls {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		_, err := s.CreateSource(ctx, CreateSourceInput{URL: raw})
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAlreadyExists):
		default:
			return created, fmt.Errorf("%s: %s: %w", op, raw, err)
		}
	}

	lg.Info("sources_ensured", slog.String("op", op), slog.Int("configured", len(urls)), slog.Int("created", created))

	return created, nil
}

// SourceByID возвращает источник со статусом последнего опроса.
func (s *Service) SourceByID(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	const op = "service.sources.SourceByID"

	if id == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Fields: []FieldError{{Field: "id", Reason: "must be a non-nil uuid"}}})
	}

	src, err := s.storage.SourceByID(ctx, id)
	if err != nil {
		serr := storageErr(err)
		if serr != ErrNotFound {
			log.From(ctx).Error("source_lookup_failed", slog.String("op", op), log.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, serr)
	}

	return src, nil
}
