package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
)

// CreateProfileInput — входные данные создания профиля.
type CreateProfileInput struct {
	UserID uuid.UUID
	// Mood == nil или "" — без фильтра по тональности.
	Mood      *models.Sentiment
	Blocklist []string
}

func validateMood(mood *models.Sentiment, verr *ValidationError) {
	if mood != nil && *mood != "" && !mood.Valid() {
		verr.add("mood", "must be one of positive, neutral, negative or empty")
	}
}

// CreateProfile создаёт профиль персонализации текущего пользователя.
//
// Валидация:
//   - userID обязателен;
//   - mood из перечисления или пустой;
//   - блоклист нормализуется (trim, lower, dedupe), не более 100 терминов по 100 символов.
//
// Повторное создание — ErrAlreadyExists.
func (s *Service) CreateProfile(ctx context.Context, input CreateProfileInput) (*models.Profile, error) {
	const op = "service.profiles.CreateProfile"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("user_id", input.UserID.String()))

	verr := &ValidationError{}
	if input.UserID == uuid.Nil {
		verr.add("user_id", "must be a non-nil uuid")
	}
	validateMood(input.Mood, verr)
	blocklist := normalizeBlocklist(input.Blocklist, verr)

	if err := verr.err(); err != nil {
		lg.Warn("invalid_profile", log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile := &models.Profile{UserID: input.UserID, Blocklist: blocklist}
	if input.Mood != nil && *input.Mood != "" {
		profile.Mood = models.SentimentPtr(*input.Mood)
	}

	created, err := s.storage.CreateProfile(ctx, profile)
	if err != nil {
		serr := storageErr(err)
		if serr == ErrAlreadyExists {
			lg.Warn("profile_already_exists")
		} else {
			lg.Error("create_profile_failed", log.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, serr)
	}

	lg.Info("profile_created")

	return created, nil
}

// ProfileByUserID возвращает профиль. Нет профиля — ErrNotFound.
func (s *Service) ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "service.profiles.ProfileByUserID"

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Fields: []FieldError{{Field: "user_id", Reason: "must be a non-nil uuid"}}})
	}

	profile, err := s.storage.ProfileByUserID(ctx, userID)
	if err != nil {
		serr := storageErr(err)
		if serr != ErrNotFound {
			log.From(ctx).Error("profile_lookup_failed", slog.String("op", op), log.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, serr)
	}

	return profile, nil
}

// UpdateProfile частично обновляет профиль и инвалидирует кэш.
//
// Особенности:
//   - Mood == nil — не трогаем; *Mood == "" — сбрасываем;
//   - Blocklist == nil — не трогаем; пустой срез — очищаем;
//   - пустой апдейт допустим и сдвигает updated_at.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	const op = "service.profiles.UpdateProfile"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("user_id", userID.String()))

	verr := &ValidationError{}
	if userID == uuid.Nil {
		verr.add("user_id", "must be a non-nil uuid")
	}
	validateMood(update.Mood, verr)
	if update.Blocklist != nil {
		normalized := normalizeBlocklist(*update.Blocklist, verr)
		update.Blocklist = &normalized
	}

	if err := verr.err(); err != nil {
		lg.Warn("invalid_profile_update", log.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.storage.UpdateProfile(ctx, userID, update)
	if err != nil {
		serr := storageErr(err)
		if serr == ErrNotFound {
			lg.Warn("profile_not_found")
		} else {
			lg.Error("update_profile_failed", log.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, serr)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, userID); err != nil {
			// Запись протухнет по TTL.
			lg.Warn("profile_cache_invalidate_failed", log.Err(err))
		}
	}

	lg.Info("profile_updated")

	return updated, nil
}
