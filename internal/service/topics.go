package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

// maxTopicNameLen — ограничение на длину имени темы в рунах.
const maxTopicNameLen = 100

// normalizeTopicName обрезает края и схлопывает внутренние пробелы.
func normalizeTopicName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// UpsertTopic возвращает тему с заданным именем, создавая её при необходимости.
//
// Поведение:
//   - поиск без учёта регистра: найдено — TopicExisting;
//   - иначе вставка: успех — TopicCreated;
//   - при гонке (уникальный индекс lower(name)) — одно перечитывание и TopicExisting.
//
// Ошибки: пустое имя — *ValidationError; недоступность хранилища — ErrUnavailable.
func (s *Service) UpsertTopic(ctx context.Context, name string) (models.TopicUpsert, error) {
	const op = "service.topics.UpsertTopic"

	lg := log.From(ctx)
	name = normalizeTopicName(name)

	verr := &ValidationError{}
	switch {
	case name == "":
		verr.add("name", "must not be empty")
	case len([]rune(name)) > maxTopicNameLen:
		verr.add("name", fmt.Sprintf("must be at most %d characters", maxTopicNameLen))
	}
	if err := verr.err(); err != nil {
		return models.TopicUpsert{}, fmt.Errorf("%s: %w", op, err)
	}

	topic, err := s.storage.TopicByName(ctx, name)
	switch {
	case err == nil:
		return models.TopicUpsert{Topic: *topic, Outcome: models.TopicExisting}, nil
	case !errors.Is(err, storage.ErrNotFound):
		lg.Error("topic_lookup_failed", slog.String("op", op), log.Err(err))
		return models.TopicUpsert{}, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	topic, err = s.storage.CreateTopic(ctx, name)
	switch {
	case err == nil:
		lg.Debug("topic_created", slog.String("op", op), slog.String("topic", topic.Name))
		return models.TopicUpsert{Topic: *topic, Outcome: models.TopicCreated}, nil
	case !errors.Is(err, storage.ErrConflict):
		lg.Error("topic_create_failed", slog.String("op", op), log.Err(err))
		return models.TopicUpsert{}, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	// Конкурентная вставка выиграла: запись уже есть.
	topic, err = s.storage.TopicByName(ctx, name)
	if err != nil {
		lg.Error("topic_reread_failed", slog.String("op", op), log.Err(err))
		return models.TopicUpsert{}, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	return models.TopicUpsert{Topic: *topic, Outcome: models.TopicExisting}, nil
}

// ListTopics возвращает всю таксономию по алфавиту.
func (s *Service) ListTopics(ctx context.Context) ([]models.Topic, error) {
	const op = "service.topics.ListTopics"

	topics, err := s.storage.ListTopics(ctx)
	if err != nil {
		log.From(ctx).Error("list_topics_failed", slog.String("op", op), log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, storageErr(err))
	}

	return topics, nil
}

// upsertTopics резолвит имена тем классификатора в идентификаторы.
// Невалидные имена пропускаются; иная ошибка прерывает резолв,
// и статья сохранится без тем.
func (s *Service) upsertTopics(ctx context.Context, names []string) ([]models.Topic, error) {
	topics := make([]models.Topic, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		res, err := s.UpsertTopic(ctx, name)
		if errors.Is(err, ErrInvalidArgument) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if _, ok := seen[res.Topic.ID.String()]; ok {
			continue
		}
		seen[res.Topic.ID.String()] = struct{}{}
		topics = append(topics, res.Topic)
	}

	return topics, nil
}
