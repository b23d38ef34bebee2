package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
)

// ListTopics — GET /topics.
func (h *Handlers) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.svc.ListTopics(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items := make([]Topic, 0, len(topics))
	for _, t := range topics {
		items = append(items, topicFromModel(t))
	}

	writeJSON(w, http.StatusOK, TopicsResponse{Items: items})
}
