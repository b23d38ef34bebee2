package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
	"github.com/pribylovaa/pulse-reader/mocks"
	"github.com/stretchr/testify/require"
)

// TestUpsertTopic_CreatedThenExisting — повторный upsert в другом регистре возвращает ту же тему.
func TestUpsertTopic_CreatedThenExisting(t *testing.T) {
	t.Parallel()

	st := newMemory()
	svc := newSvcForTest(t, Deps{Storage: st})
	ctx := context.Background()

	first, err := svc.UpsertTopic(ctx, "  Artificial   Intelligence ")
	require.NoError(t, err)
	require.Equal(t, models.TopicCreated, first.Outcome)
	require.Equal(t, "Artificial Intelligence", first.Topic.Name)

	second, err := svc.UpsertTopic(ctx, "artificial intelligence")
	require.NoError(t, err)
	require.Equal(t, models.TopicExisting, second.Outcome)
	require.Equal(t, first.Topic.ID, second.Topic.ID)

	topics, err := svc.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 1)
}

// TestUpsertTopic_EmptyName — пустое имя после нормализации — ошибка валидации, хранилище не трогаем.
func TestUpsertTopic_EmptyName(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newSvcForTest(t, Deps{Storage: mocks.NewMockStorage(ctrl)})

	_, err := svc.UpsertTopic(context.Background(), " \t ")
	require.ErrorIs(t, err, ErrInvalidArgument)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Fields[0].Field)
}

// TestUpsertTopic_ConflictRereadsOnce — проигранная гонка вставки даёт TopicExisting после одного перечитывания.
func TestUpsertTopic_ConflictRereadsOnce(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	winner := &models.Topic{ID: uuid.New(), Name: "Climate"}

	gomock.InOrder(
		st.EXPECT().TopicByName(gomock.Any(), "climate").Return(nil, storage.ErrNotFound),
		st.EXPECT().CreateTopic(gomock.Any(), "climate").Return(nil, fmt.Errorf("pg: %w", storage.ErrConflict)),
		st.EXPECT().TopicByName(gomock.Any(), "climate").Return(winner, nil),
	)

	svc := newSvcForTest(t, Deps{Storage: st})

	res, err := svc.UpsertTopic(context.Background(), "climate")
	require.NoError(t, err)
	require.Equal(t, models.TopicExisting, res.Outcome)
	require.Equal(t, winner.ID, res.Topic.ID)
}

// TestUpsertTopic_StorageUnavailable — недоступность хранилища не маскируется.
func TestUpsertTopic_StorageUnavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().TopicByName(gomock.Any(), "x").Return(nil, storage.ErrUnavailable)

	svc := newSvcForTest(t, Deps{Storage: st})

	_, err := svc.UpsertTopic(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnavailable)
}

// TestUpsertTopic_Concurrent — параллельные upsert одного имени дают одну тему и ровно один TopicCreated.
func TestUpsertTopic_Concurrent(t *testing.T) {
	t.Parallel()

	st := newMemory()
	svc := newSvcForTest(t, Deps{Storage: st})

	const n = 16
	results := make([]models.TopicUpsert, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := "Space"
			if i%2 == 0 {
				name = "SPACE"
			}
			results[i], errs[i] = svc.UpsertTopic(context.Background(), name)
		}()
	}
	wg.Wait()

	created := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].Topic.ID, results[i].Topic.ID)
		if results[i].Created() {
			created++
		}
	}
	require.Equal(t, 1, created)
}

// TestUpsertTopics_SkipsInvalidAndDedupes — невалидные имена пропускаются, одинаковые темы схлопываются.
func TestUpsertTopics_SkipsInvalidAndDedupes(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})

	long := make([]byte, maxTopicNameLen+1)
	for i := range long {
		long[i] = 'a'
	}

	topics, err := svc.upsertTopics(context.Background(), []string{"Tech", string(long), "tech", "Finance"})
	require.NoError(t, err)
	require.Len(t, topics, 2)
	require.Equal(t, "Tech", topics[0].Name)
	require.Equal(t, "Finance", topics[1].Name)
}
