// service содержит бизнес-логику pulse-reader: ингест лент, реестр тем,
// персонализированную выдачу, ретеншн и администрирование источников.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/config"
	"github.com/pribylovaa/pulse-reader/internal/metrics"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

var (
	// ErrNotFound — сущность отсутствует.
	// Транспорт: 404.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности при административной записи.
	// Транспорт: 409.
	ErrAlreadyExists = errors.New("already exists")
	// ErrReferenced — сущность нельзя удалить, пока на неё ссылаются.
	// Транспорт: 409.
	ErrReferenced = errors.New("referenced")
	// ErrInvalidArgument — некорректные входные аргументы.
	// Транспорт: 400. Детали по полям — в *ValidationError.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPrecondition — не выполнено предусловие операции.
	ErrPrecondition = errors.New("precondition failed")
	// ErrAuthRequired — персонализация без аутентифицированного пользователя.
	// Транспорт: 401.
	ErrAuthRequired = &preconditionError{code: "auth_required"}
	// ErrProfileRequired — персонализация без профиля. На гостевую выдачу не откатываемся.
	// Транспорт: 412.
	ErrProfileRequired = &preconditionError{code: "profile_required"}
	// ErrUnavailable — хранилище недоступно.
	// Транспорт: 503.
	ErrUnavailable = errors.New("unavailable")
	// ErrInternal — прочие ошибки.
	ErrInternal = errors.New("internal error")
)

type preconditionError struct {
	code string
}

func (e *preconditionError) Error() string { return e.code }
func (e *preconditionError) Unwrap() error { return ErrPrecondition }

// Code — машинный код предусловия (auth_required, profile_required).
func (e *preconditionError) Code() string { return e.code }

// FieldError — причина отказа по одному полю запроса.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError перечисляет все невалидные поля запроса.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}

	return "invalid argument: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// add копит ошибки; nil-результат err() означает, что всё валидно.
func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

// Fetcher загружает тело ленты. Реализация — rss.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser разбирает RSS/Atom в кандидатов. Реализация — rss.Parser.
type FeedParser interface {
	Parse(data []byte) ([]models.Candidate, error)
}

// Classifier определяет тональность и темы. Реализации — classifier.OpenAI, classifier.Disabled.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (models.Classification, error)
}

// ProfileCache — кэш профилей. nil — кэш выключен.
type ProfileCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error)
	Set(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Deps — зависимости сервиса.
type Deps struct {
	Storage    storage.Storage
	Fetcher    Fetcher
	Parser     FeedParser
	Classifier Classifier
	// Cache и Metrics опциональны.
	Cache   ProfileCache
	Metrics *metrics.Metrics
	Config  *config.Config
}

// Service — бизнес-логика pulse-reader.
// Не хранит состояния между вызовами: циклы ингеста и ретеншна идемпотентны.
type Service struct {
	storage    storage.Storage
	fetcher    Fetcher
	parser     FeedParser
	classifier Classifier
	cache      ProfileCache
	metrics    *metrics.Metrics
	cfg        *config.Config
	now        func() time.Time
}

// New создает новый экземпляр Service.
func New(deps Deps) *Service {
	return &Service{
		storage:    deps.Storage,
		fetcher:    deps.Fetcher,
		parser:     deps.Parser,
		classifier: deps.Classifier,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		cfg:        deps.Config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// storageErr переводит ошибку хранилища в сентинел сервиса.
// Детали хранилища наружу не уходят: они только в логах.
func storageErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrAlreadyExists
	case errors.Is(err, storage.ErrReferenced):
		return ErrReferenced
	case errors.Is(err, storage.ErrUnavailable), errors.Is(err, ErrUnavailable):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
