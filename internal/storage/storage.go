// storage определяет контракты доступа к БД для pulse-reader.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict — нарушение уникальности (link статьи, имя темы, url источника, user_id профиля).
	ErrConflict = errors.New("conflict")
	// ErrReferenced — на сущность ссылаются другие записи (FK RESTRICT).
	ErrReferenced = errors.New("referenced")
	// ErrUnavailable — хранилище недоступно (нет соединения).
	ErrUnavailable = errors.New("storage unavailable")
)

// ArticleStorage описывает операции над статьями и их связями с темами.
type ArticleStorage interface {
	// ArticleExists — дешёвая проверка наличия ссылки.
	// Это оптимизация: источник истины — уникальный индекс по link.
	ArticleExists(ctx context.Context, link string) (bool, error)
	// InsertArticle атомарно создаёт статью и все её связи с темами.
	// Дубликат link — ErrConflict, ничего не записывается.
	InsertArticle(ctx context.Context, article *models.Article, topicIDs []uuid.UUID) (*models.Article, error)
	// QueryArticles возвращает страницу и total с учётом фильтров (без блоклиста).
	QueryArticles(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error)
	// ArticleByID возвращает статью с темами. Если записи нет — ErrNotFound.
	ArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	// DeleteArticle удаляет статью (каскадно — связи). Если записи нет — ErrNotFound.
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	// DeleteArticlesOlderThan удаляет статьи с publication_date < cutoff и возвращает их число.
	DeleteArticlesOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// UnclassifiedArticles возвращает до limit статей с sentiment IS NULL:
	// сначала ни разу не пробованные, затем по давности последней неудачной попытки,
	// при равенстве — старые первыми.
	UnclassifiedArticles(ctx context.Context, limit int) ([]models.Article, error)
	// MarkClassifyFailed фиксирует неудачную попытку классификации. Если записи нет — ErrNotFound.
	MarkClassifyFailed(ctx context.Context, id uuid.UUID) error
	// UpdateClassification атомарно выставляет sentiment и заменяет набор тем.
	UpdateClassification(ctx context.Context, id uuid.UUID, sentiment *models.Sentiment, topicIDs []uuid.UUID) error
}

// TopicStorage описывает операции над таксономией тем.
type TopicStorage interface {
	// TopicByName ищет тему без учёта регистра. Если нет — ErrNotFound.
	TopicByName(ctx context.Context, name string) (*models.Topic, error)
	// CreateTopic создаёт тему. Совпадение lower(name) — ErrConflict.
	CreateTopic(ctx context.Context, name string) (*models.Topic, error)
	// ListTopics возвращает все темы по алфавиту.
	ListTopics(ctx context.Context) ([]models.Topic, error)
}

// SourceStorage описывает операции над RSS-источниками.
type SourceStorage interface {
	// CreateSource создаёт источник. Дубликат url — ErrConflict.
	CreateSource(ctx context.Context, src *models.Source) (*models.Source, error)
	// SourceByID возвращает источник. Если нет — ErrNotFound.
	SourceByID(ctx context.Context, id uuid.UUID) (*models.Source, error)
	// ListSources возвращает источники; activeOnly — только активные.
	ListSources(ctx context.Context, activeOnly bool) ([]models.Source, error)
	// UpdateSource — частичный апдейт. Если нет — ErrNotFound.
	UpdateSource(ctx context.Context, id uuid.UUID, update models.SourceUpdate) (*models.Source, error)
	// DeleteSource удаляет источник. Есть статьи — ErrReferenced, нет записи — ErrNotFound.
	DeleteSource(ctx context.Context, id uuid.UUID) error
	// RecordFetch фиксирует время и ошибку последнего опроса (пустая строка — успех).
	RecordFetch(ctx context.Context, id uuid.UUID, at time.Time, fetchErr string) error
}

// ProfileStorage описывает операции над профилями персонализации.
type ProfileStorage interface {
	// CreateProfile создаёт профиль. Уже есть — ErrConflict.
	CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	// ProfileByUserID возвращает профиль. Если нет — ErrNotFound.
	ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// UpdateProfile — частичный апдейт, сдвигает updated_at. Если нет — ErrNotFound.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error)
}

// Storage задаёт контракт доступа к хранилищу для pulse-reader.
type Storage interface {
	ArticleStorage
	TopicStorage
	SourceStorage
	ProfileStorage
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	Close()
}
