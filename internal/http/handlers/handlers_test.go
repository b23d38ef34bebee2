package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/service"
	"github.com/stretchr/testify/require"
)

func TestFeedQueryFromURL_OK(t *testing.T) {
	t.Parallel()

	topic := uuid.New()
	q, err := feedQueryFromURL(url.Values{
		"limit":                 {"10"},
		"offset":                {"30"},
		"sentiment":             {"Positive"},
		"topic_id":              {topic.String()},
		"apply_personalization": {"true"},
		"sort_by":               {"createdAt"},
		"sort_order":            {"asc"},
	})
	require.NoError(t, err)

	require.Equal(t, 10, q.Limit)
	require.Equal(t, 30, q.Offset)
	require.Equal(t, models.SentimentPositive, *q.Sentiment)
	require.Equal(t, topic, *q.TopicID)
	require.Nil(t, q.SourceID)
	require.True(t, q.ApplyPersonalization)
	// Формы sort_by нормализует сервис.
	require.Equal(t, models.SortField("createdAt"), q.SortBy)
	require.Equal(t, models.SortAsc, q.SortOrder)
}

func TestFeedQueryFromURL_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	_, err := feedQueryFromURL(url.Values{
		"limit":                 {"0"},
		"offset":                {"-1"},
		"source_id":             {"x"},
		"apply_personalization": {"maybe"},
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.ErrorIs(t, err, service.ErrInvalidArgument)

	var fields []string
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	require.Equal(t, []string{"limit", "offset", "source_id", "apply_personalization"}, fields)
}

func TestFeedFromModel_NextOffsetOnlyWhenMore(t *testing.T) {
	t.Parallel()

	blocked := 3
	resp := feedFromModel(&models.FeedPage{
		Pagination:     models.Pagination{Limit: 5, Offset: 0, Total: 20, HasMore: true, NextOffset: 8},
		FiltersApplied: models.FiltersApplied{Personalization: true, BlockedItemsCount: &blocked},
	})
	require.NotNil(t, resp.Data)
	require.Equal(t, 8, *resp.Pagination.NextOffset)
	require.Equal(t, 3, *resp.FiltersApplied.BlockedItemsCount)

	resp = feedFromModel(&models.FeedPage{Pagination: models.Pagination{Limit: 5, Offset: 15, Total: 20, NextOffset: 20}})
	require.Nil(t, resp.Pagination.NextOffset)
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		`{"url":"https://x"}`:             true,
		`{"url":"https://x","extra":1}`:   false,
		`{"url":"https://x"} {"url":"y"}`: false,
		`not json`:                        false,
	}

	for body, ok := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		var dst SourceCreateRequest
		err := decodeStrict(httptest.NewRecorder(), req, &dst)
		if ok {
			require.NoError(t, err, body)
			continue
		}
		require.True(t, errors.Is(err, apierrors.ErrBadRequest), body)
	}
}
