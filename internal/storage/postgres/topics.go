package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

const topicColumns = `t.id, t.name, t.created_at, t.updated_at`

func scanTopic(row pgx.Row) (*models.Topic, error) {
	var topic models.Topic
	if err := row.Scan(&topic.ID, &topic.Name, &topic.CreatedAt, &topic.UpdatedAt); err != nil {
		return nil, err
	}

	topic.CreatedAt = topic.CreatedAt.UTC()
	topic.UpdatedAt = topic.UpdatedAt.UTC()

	return &topic, nil
}

// TopicByName ищет тему по lower(name), используя уникальный индекс.
func (s *Storage) TopicByName(ctx context.Context, name string) (*models.Topic, error) {
	const op = "storage.postgres.TopicByName"

	row := s.db.QueryRow(ctx, `SELECT `+topicColumns+` FROM topics t WHERE lower(t.name) = lower($1)`, name)

	topic, err := scanTopic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return topic, nil
}

// CreateTopic вставляет тему. Конфликт по lower(name) — storage.ErrConflict.
func (s *Storage) CreateTopic(ctx context.Context, name string) (*models.Topic, error) {
	const op = "storage.postgres.CreateTopic"

	row := s.db.QueryRow(ctx, `
	INSERT INTO topics AS t (name) VALUES ($1)
	RETURNING `+topicColumns, name)

	topic, err := scanTopic(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return topic, nil
}

// ListTopics возвращает все темы по алфавиту.
func (s *Storage) ListTopics(ctx context.Context) ([]models.Topic, error) {
	const op = "storage.postgres.ListTopics"

	rows, err := s.db.Query(ctx, `SELECT `+topicColumns+` FROM topics t ORDER BY lower(t.name)`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	defer rows.Close()

	var out []models.Topic
	for rows.Next() {
		topic, scanErr := scanTopic(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		out = append(out, *topic)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, mapErr(rows.Err()))
	}

	return out, nil
}
