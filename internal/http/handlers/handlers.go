package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/auth"
	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/service"
)

// maxBodyBytes — предел тела JSON-запроса.
const maxBodyBytes = 1 << 20

// Service — методы сервисного слоя, которые нужны REST-хендлерам.
type Service interface {
	ListArticles(ctx context.Context, identity *auth.Identity, q models.FeedQuery) (*models.FeedPage, error)
	ArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	DeleteArticle(ctx context.Context, id uuid.UUID) error

	ListTopics(ctx context.Context) ([]models.Topic, error)

	CreateProfile(ctx context.Context, input service.CreateProfileInput) (*models.Profile, error)
	ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error)

	CreateSource(ctx context.Context, input service.CreateSourceInput) (*models.Source, error)
	ListSources(ctx context.Context) ([]models.Source, error)
	UpdateSource(ctx context.Context, id uuid.UUID, update models.SourceUpdate) (*models.Source, error)
	DeleteSource(ctx context.Context, id uuid.UUID) error

	RunIngestionCycle(ctx context.Context) (*models.IngestionSummary, error)
	ReclassifyPending(ctx context.Context, limit int) (service.ReclassifyResult, error)
	RunRetentionSweep(ctx context.Context) (int64, error)
}

// Handlers агрегирует зависимости REST-слоя.
type Handlers struct {
	svc Service
	// reclassifyBatch — размер добора по умолчанию для POST /admin/reclassify.
	reclassifyBatch int
}

func New(svc Service, reclassifyBatch int) *Handlers {
	return &Handlers{svc: svc, reclassifyBatch: reclassifyBatch}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля и хвост после объекта.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %s", apierrors.ErrBadRequest, err.Error())
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data", apierrors.ErrBadRequest)
	}

	return nil
}

// pathID разбирает {id} из пути как UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, invalidField("id", "must be a valid uuid")
	}

	return id, nil
}

func invalidField(field, reason string) error {
	return &service.ValidationError{Fields: []service.FieldError{{Field: field, Reason: reason}}}
}

// caller возвращает личность аутентифицированного пользователя или ErrAuthRequired.
func caller(r *http.Request) (*auth.Identity, error) {
	identity := auth.From(r.Context())
	if identity == nil {
		return nil, service.ErrAuthRequired
	}

	return identity, nil
}
