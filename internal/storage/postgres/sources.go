package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

const sourceColumns = `id, url, name, active, last_fetched_at, last_error, created_at, updated_at`

func scanSource(row pgx.Row) (*models.Source, error) {
	var src models.Source
	if err := row.Scan(
		&src.ID,
		&src.URL,
		&src.Name,
		&src.Active,
		&src.LastFetchedAt,
		&src.LastError,
		&src.CreatedAt,
		&src.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if src.LastFetchedAt != nil {
		t := src.LastFetchedAt.UTC()
		src.LastFetchedAt = &t
	}
	src.CreatedAt = src.CreatedAt.UTC()
	src.UpdatedAt = src.UpdatedAt.UTC()

	return &src, nil
}

// CreateSource вставляет источник. Дубликат url — storage.ErrConflict.
func (s *Storage) CreateSource(ctx context.Context, src *models.Source) (*models.Source, error) {
	const op = "storage.postgres.CreateSource"

	id := src.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := s.db.QueryRow(ctx, `
	INSERT INTO sources (id, url, name, active)
	VALUES ($1, $2, $3, $4)
	RETURNING `+sourceColumns, id, src.URL, src.Name, src.Active)

	created, err := scanSource(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return created, nil
}

// SourceByID возвращает источник по идентификатору.
func (s *Storage) SourceByID(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	const op = "storage.postgres.SourceByID"

	src, err := scanSource(s.db.QueryRow(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return src, nil
}

// ListSources возвращает источники в порядке создания.
func (s *Storage) ListSources(ctx context.Context, activeOnly bool) ([]models.Source, error) {
	const op = "storage.postgres.ListSources"

	b := psql.Select(sourceColumns).From("sources").OrderBy("created_at ASC", "id ASC")
	if activeOnly {
		b = b.Where(sq.Eq{"active": true})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	defer rows.Close()

	var out []models.Source
	for rows.Next() {
		src, scanErr := scanSource(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		out = append(out, *src)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, mapErr(rows.Err()))
	}

	return out, nil
}

// UpdateSource обновляет только заданные поля и сдвигает updated_at.
func (s *Storage) UpdateSource(ctx context.Context, id uuid.UUID, update models.SourceUpdate) (*models.Source, error) {
	const op = "storage.postgres.UpdateSource"

	b := psql.Update("sources").Set("updated_at", sq.Expr("now()"))
	if update.Name != nil {
		b = b.Set("name", *update.Name)
	}

	if update.Active != nil {
		b = b.Set("active", *update.Active)
	}

	query, args, err := b.Where(sq.Expr("id = ?", id)).Suffix("RETURNING " + sourceColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	src, err := scanSource(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return src, nil
}

// DeleteSource удаляет источник. Пока на него ссылаются статьи — storage.ErrReferenced.
func (s *Storage) DeleteSource(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteSource"

	tag, err := s.db.Exec(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// RecordFetch фиксирует итог последнего опроса источника.
func (s *Storage) RecordFetch(ctx context.Context, id uuid.UUID, at time.Time, fetchErr string) error {
	const op = "storage.postgres.RecordFetch"

	tag, err := s.db.Exec(ctx, `
	UPDATE sources SET last_fetched_at = $2, last_error = $3 WHERE id = $1
	`, id, at.UTC(), fetchErr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
