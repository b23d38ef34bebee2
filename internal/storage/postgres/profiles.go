package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

// profileColumns — единый список колонок таблицы profiles для SELECT/RETURNING.
const profileColumns = `user_id, mood, blocklist, created_at, updated_at`

// scanProfile сканирует строку профиля; NULL mood превращается в nil.
func scanProfile(row pgx.Row) (*models.Profile, error) {
	var (
		profile models.Profile
		mood    *string
	)

	if err := row.Scan(
		&profile.UserID,
		&mood,
		&profile.Blocklist,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if mood != nil {
		m := models.Sentiment(*mood)
		profile.Mood = &m
	}

	if profile.Blocklist == nil {
		profile.Blocklist = []string{}
	}

	profile.CreatedAt = profile.CreatedAt.UTC()
	profile.UpdatedAt = profile.UpdatedAt.UTC()

	return &profile, nil
}

// CreateProfile вставляет профиль. Повтор по user_id — storage.ErrConflict.
func (s *Storage) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	const op = "storage.postgres.CreateProfile"

	blocklist := profile.Blocklist
	if blocklist == nil {
		blocklist = []string{}
	}

	row := s.db.QueryRow(ctx, `
	INSERT INTO profiles (user_id, mood, blocklist)
	VALUES ($1, $2, $3)
	RETURNING `+profileColumns, profile.UserID, sentimentArg(profile.Mood), blocklist)

	created, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return created, nil
}

// ProfileByUserID возвращает профиль пользователя.
func (s *Storage) ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "storage.postgres.ProfileByUserID"

	profile, err := scanProfile(s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return profile, nil
}

// UpdateProfile выполняет частичный апдейт и всегда сдвигает updated_at = now().
func (s *Storage) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	const op = "storage.postgres.UpdateProfile"

	b := psql.Update("profiles").Set("updated_at", sq.Expr("now()"))
	if update.Mood != nil {
		if *update.Mood == "" {
			b = b.Set("mood", nil)
		} else {
			b = b.Set("mood", string(*update.Mood))
		}
	}

	if update.Blocklist != nil {
		blocklist := *update.Blocklist
		if blocklist == nil {
			blocklist = []string{}
		}
		b = b.Set("blocklist", blocklist)
	}

	query, args, err := b.Where(sq.Expr("user_id = ?", userID)).Suffix("RETURNING " + profileColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	profile, err := scanProfile(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return profile, nil
}
