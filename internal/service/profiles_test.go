package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/mocks"
	"github.com/stretchr/testify/require"
)

// TestCreateProfile_NormalizesAndRejectsDuplicate — блоклист нормализуется, повторное создание — ErrAlreadyExists.
func TestCreateProfile_NormalizesAndRejectsDuplicate(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})
	ctx := context.Background()
	userID := uuid.New()

	p, err := svc.CreateProfile(ctx, CreateProfileInput{
		UserID:    userID,
		Mood:      models.SentimentPtr(models.SentimentPositive),
		Blocklist: []string{" Crypto", "CRYPTO", "war "},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"crypto", "war"}, p.Blocklist)
	require.Equal(t, models.SentimentPositive, *p.Mood)

	_, err = svc.CreateProfile(ctx, CreateProfileInput{UserID: userID})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

// TestCreateProfile_Validation — нулевой user_id и неизвестный mood перечислены в деталях.
func TestCreateProfile_Validation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newSvcForTest(t, Deps{Storage: mocks.NewMockStorage(ctrl)})
	bad := models.Sentiment("furious")

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{Mood: &bad})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
}

// TestProfileByUserID_NotFound — отсутствие профиля — ErrNotFound (а не profile_required).
func TestProfileByUserID_NotFound(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})

	_, err := svc.ProfileByUserID(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrPrecondition)
}

// TestUpdateProfile_ClearsMoodAndInvalidatesCache — "" сбрасывает mood, nil-блоклист не трогается, кэш чистится.
func TestUpdateProfile_ClearsMoodAndInvalidatesCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewMockProfileCache(ctrl)
	svc := newSvcForTest(t, Deps{Storage: newMemory(), Cache: cache})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateProfile(ctx, CreateProfileInput{
		UserID:    userID,
		Mood:      models.SentimentPtr(models.SentimentNegative),
		Blocklist: []string{"sport"},
	})
	require.NoError(t, err)

	cache.EXPECT().Delete(gomock.Any(), userID).Return(nil).Times(2)

	noMood := models.Sentiment("")
	p, err := svc.UpdateProfile(ctx, userID, models.ProfileUpdate{Mood: &noMood})
	require.NoError(t, err)
	require.Nil(t, p.Mood)
	require.Equal(t, []string{"sport"}, p.Blocklist)

	empty := []string{}
	p, err = svc.UpdateProfile(ctx, userID, models.ProfileUpdate{Blocklist: &empty})
	require.NoError(t, err)
	require.Empty(t, p.Blocklist)
}

// TestUpdateProfile_NotFound — апдейт несуществующего профиля кэш не трогает.
func TestUpdateProfile_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newSvcForTest(t, Deps{Storage: newMemory(), Cache: mocks.NewMockProfileCache(ctrl)})

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), models.ProfileUpdate{})
	require.ErrorIs(t, err, ErrNotFound)
}

// TestUpdateProfile_CacheFailureIgnored — сбой инвалидации не ломает апдейт.
func TestUpdateProfile_CacheFailureIgnored(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewMockProfileCache(ctrl)
	svc := newSvcForTest(t, Deps{Storage: newMemory(), Cache: cache})
	userID := uuid.New()

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{UserID: userID})
	require.NoError(t, err)

	cache.EXPECT().Delete(gomock.Any(), userID).Return(errors.New("redis down"))

	_, err = svc.UpdateProfile(context.Background(), userID, models.ProfileUpdate{
		Mood: models.SentimentPtr(models.SentimentNeutral),
	})
	require.NoError(t, err)
}
