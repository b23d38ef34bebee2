package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
	"github.com/pribylovaa/pulse-reader/mocks"
	"github.com/stretchr/testify/require"
)

// TestRunRetentionSweep_DeletesOldAndIsIdempotent — удаляются только статьи старше окна; повторный проход — no-op.
func TestRunRetentionSweep_DeletesOldAndIsIdempotent(t *testing.T) {
	t.Parallel()

	st := newMemory()
	svc := newSvcForTest(t, Deps{Storage: st})
	ctx := context.Background()

	src := seedSource(t, st, "https://feeds.example.com/rss")
	for i, age := range []time.Duration{31 * 24 * time.Hour, 40 * 24 * time.Hour, 24 * time.Hour} {
		_, err := st.InsertArticle(ctx, &models.Article{
			SourceID:        src.ID,
			Title:           titled(i),
			Link:            "https://example.com/r/" + titled(i),
			PublicationDate: testNow.Add(-age),
		}, nil)
		require.NoError(t, err)
	}

	deleted, err := svc.RunRetentionSweep(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	deleted, err = svc.RunRetentionSweep(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted)

	page, err := svc.ListArticles(ctx, nil, models.FeedQuery{})
	require.NoError(t, err)
	require.Equal(t, []string{"article-2"}, titles(page.Items))
}

// TestRunRetentionSweep_Cutoff — cutoff = now − window из конфига.
func TestRunRetentionSweep_Cutoff(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testConfig()
	cfg.Retention.Window = 48 * time.Hour

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().DeleteArticlesOlderThan(gomock.Any(), testNow.Add(-48*time.Hour)).Return(int64(0), nil)

	svc := newSvcForTest(t, Deps{Storage: st, Config: cfg})

	_, err := svc.RunRetentionSweep(context.Background())
	require.NoError(t, err)
}

// TestRunRetentionSweep_Unavailable — ошибка хранилища пробрасывается как ErrUnavailable.
func TestRunRetentionSweep_Unavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().DeleteArticlesOlderThan(gomock.Any(), gomock.Any()).Return(int64(0), storage.ErrUnavailable)

	svc := newSvcForTest(t, Deps{Storage: st})

	_, err := svc.RunRetentionSweep(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}
