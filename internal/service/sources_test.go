package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/stretchr/testify/require"
)

// TestCreateSource_Validation — только абсолютные http(s) URL.
func TestCreateSource_Validation(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})

	for _, raw := range []string{"", "feeds.example.com/rss", "ftp://example.com/rss", "javascript:alert(1)"} {
		_, err := svc.CreateSource(context.Background(), CreateSourceInput{URL: raw})
		require.ErrorIs(t, err, ErrInvalidArgument, raw)
	}
}

// TestCreateSource_DefaultsAndDuplicate — имя по умолчанию — host; URL нормализуется; дубль — ErrAlreadyExists.
func TestCreateSource_DefaultsAndDuplicate(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})
	ctx := context.Background()

	src, err := svc.CreateSource(ctx, CreateSourceInput{URL: " HTTPS://Feeds.Example.com/rss#top "})
	require.NoError(t, err)
	require.Equal(t, "https://feeds.example.com/rss", src.URL)
	require.Equal(t, "feeds.example.com", src.Name)
	require.True(t, src.Active)

	_, err = svc.CreateSource(ctx, CreateSourceInput{URL: "https://feeds.example.com/rss"})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

// TestUpdateSource — частичный апдейт name/active; пустое имя невалидно.
func TestUpdateSource(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})
	ctx := context.Background()

	src, err := svc.CreateSource(ctx, CreateSourceInput{URL: "https://feeds.example.com/rss", Name: "Example"})
	require.NoError(t, err)

	off := false
	updated, err := svc.UpdateSource(ctx, src.ID, models.SourceUpdate{Active: &off})
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, "Example", updated.Name)

	blank := "   "
	_, err = svc.UpdateSource(ctx, src.ID, models.SourceUpdate{Name: &blank})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.UpdateSource(ctx, uuid.New(), models.SourceUpdate{Active: &off})
	require.ErrorIs(t, err, ErrNotFound)
}

// TestDeleteSource_Referenced — источник со статьями удалить нельзя; без статей — можно.
func TestDeleteSource_Referenced(t *testing.T) {
	t.Parallel()

	st := newMemory()
	svc := newSvcForTest(t, Deps{Storage: st})
	ctx := context.Background()

	src := seedSource(t, st, "https://feeds.example.com/rss")
	articles := seedArticles(t, st, src.ID, 1, titled, nil)

	require.ErrorIs(t, svc.DeleteSource(ctx, src.ID), ErrReferenced)

	require.NoError(t, svc.DeleteArticle(ctx, articles[0].ID))
	require.NoError(t, svc.DeleteSource(ctx, src.ID))
	require.ErrorIs(t, svc.DeleteSource(ctx, src.ID), ErrNotFound)
}

// TestEnsureSources_Idempotent — повторный посев не создаёт дублей, невалидный URL — ошибка.
func TestEnsureSources_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})
	ctx := context.Background()
	urls := []string{"https://a.example.com/rss", "", "https://b.example.com/atom"}

	created, err := svc.EnsureSources(ctx, urls)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	created, err = svc.EnsureSources(ctx, urls)
	require.NoError(t, err)
	require.Zero(t, created)

	all, err := svc.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.EnsureSources(ctx, []string{"not a url"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// TestArticleByID_NotFound — чтение и удаление несуществующей статьи.
func TestArticleByID_NotFound(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, Deps{Storage: newMemory()})

	_, err := svc.ArticleByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.DeleteArticle(context.Background(), uuid.New()), ErrNotFound)
	require.ErrorIs(t, svc.DeleteArticle(context.Background(), uuid.Nil), ErrInvalidArgument)
}
