package handlers

import (
	"net/http"
	"strconv"

	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/service"
)

// RunIngestion — POST /admin/ingest: внеплановый цикл ингеста.
// Частичные сбои источников — 200 с подробностями в sources[].
func (h *Handlers) RunIngestion(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.RunIngestionCycle(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryFromModel(summary))
}

// Reclassify — POST /admin/reclassify?limit=N.
// Без limit используется размер пачки из конфига.
func (h *Handlers) Reclassify(w http.ResponseWriter, r *http.Request) {
	limit := h.reclassifyBatch
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apierrors.WriteError(w, r, invalidField("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	res, err := h.svc.ReclassifyPending(r.Context(), limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reclassifyFromModel(res))
}

// RunRetention — POST /admin/retention.
func (h *Handlers) RunRetention(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.RunRetentionSweep(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RetentionResponse{Deleted: deleted})
}

// ListSources — GET /admin/sources.
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.ListSources(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items := make([]Source, 0, len(sources))
	for _, s := range sources {
		items = append(items, sourceFromModel(s))
	}

	writeJSON(w, http.StatusOK, SourcesResponse{Items: items})
}

// CreateSource — POST /admin/sources.
func (h *Handlers) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req SourceCreateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	src, err := h.svc.CreateSource(r.Context(), service.CreateSourceInput{
		URL:    req.URL,
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sourceFromModel(*src))
}

// UpdateSource — PATCH /admin/sources/{id}.
func (h *Handlers) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req SourceUpdateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	src, err := h.svc.UpdateSource(r.Context(), id, models.SourceUpdate{Name: req.Name, Active: req.Active})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sourceFromModel(*src))
}

// DeleteSource — DELETE /admin/sources/{id}. Источник со статьями — 409 referenced.
func (h *Handlers) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteSource(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
