package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/auth"
	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/service"
)

// feedQueryFromURL разбирает параметры GET /articles.
// Синтаксические ошибки собираются по всем полям сразу; диапазоны и
// перечисления проверяет сервис.
func feedQueryFromURL(values url.Values) (models.FeedQuery, error) {
	var (
		q    models.FeedQuery
		errs []service.FieldError
	)

	intParam := func(name string, min int, reason string) int {
		raw := values.Get(name)
		if raw == "" {
			return 0
		}

		n, err := strconv.Atoi(raw)
		if err != nil || n < min {
			errs = append(errs, service.FieldError{Field: name, Reason: reason})
			return 0
		}

		return n
	}

	uuidParam := func(name string) *uuid.UUID {
		raw := values.Get(name)
		if raw == "" {
			return nil
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, service.FieldError{Field: name, Reason: "must be a valid uuid"})
			return nil
		}

		return &id
	}

	q.Limit = intParam("limit", 1, "must be a positive integer")
	q.Offset = intParam("offset", 0, "must be a non-negative integer")
	q.TopicID = uuidParam("topic_id")
	q.SourceID = uuidParam("source_id")

	if raw := values.Get("sentiment"); raw != "" {
		s, err := models.ParseSentiment(raw)
		if err != nil {
			errs = append(errs, service.FieldError{Field: "sentiment", Reason: "must be one of positive, neutral, negative"})
		} else {
			q.Sentiment = &s
		}
	}

	if raw := values.Get("apply_personalization"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, service.FieldError{Field: "apply_personalization", Reason: "must be a boolean"})
		}
		q.ApplyPersonalization = b
	}

	q.SortBy = models.SortField(values.Get("sort_by"))
	q.SortOrder = models.SortOrder(values.Get("sort_order"))

	if len(errs) > 0 {
		return q, &service.ValidationError{Fields: errs}
	}

	return q, nil
}

// ListArticles — GET /articles: лента с фильтрами, сортировкой и персонализацией.
func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	q, err := feedQueryFromURL(r.URL.Query())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.svc.ListArticles(r.Context(), auth.From(r.Context()), q)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, feedFromModel(page))
}

// GetArticle — GET /articles/{id}.
func (h *Handlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	article, err := h.svc.ArticleByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, articleFromModel(*article))
}

// DeleteArticle — DELETE /admin/articles/{id}.
func (h *Handlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteArticle(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
