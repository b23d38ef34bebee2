package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/service"
)

// Профиль всегда принадлежит вызывающему: user_id берётся из токена, не из тела.

// CreateProfile — POST /profile.
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req ProfileCreateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	profile, err := h.svc.CreateProfile(r.Context(), service.CreateProfileInput{
		UserID:    identity.UserID,
		Mood:      moodFromRequest(req.Mood),
		Blocklist: req.Blocklist,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, profileFromModel(profile))
}

// GetProfile — GET /profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	profile, err := h.svc.ProfileByUserID(r.Context(), identity.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileFromModel(profile))
}

// UpdateProfile — PATCH /profile.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req ProfileUpdateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), identity.UserID, models.ProfileUpdate{
		Mood:      moodFromRequest(req.Mood),
		Blocklist: req.Blocklist,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileFromModel(profile))
}
