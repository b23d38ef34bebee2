package models

import (
	"time"

	"github.com/google/uuid"
)

// Article — доменная сущность статьи.
//
// Особенности:
//   - ID — UUIDv4;
//   - Link — каноническая ссылка, глобально уникальна (ключ дедупликации);
//   - Sentiment == nil — статья не классифицирована (классификатор был недоступен);
//   - временные метки — в UTC.
type Article struct {
	ID              uuid.UUID
	SourceID        uuid.UUID
	Title           string
	Description     string
	Link            string
	PublicationDate time.Time
	Sentiment       *Sentiment
	// Topics заполняется только при чтении статьи по ID.
	Topics    []Topic
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate — нормализованная запись ленты до сохранения.
type Candidate struct {
	Title       string
	Description string
	Link        string
	// PublishedAt может быть нулевым, если лента не отдала дату.
	PublishedAt time.Time
}

// SortField — поле сортировки выдачи.
type SortField string

const (
	SortByPublicationDate SortField = "publication_date"
	SortByCreatedAt       SortField = "created_at"
)

// SortOrder — направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ArticleFilter — фильтры уровня БД, объединяются через AND.
type ArticleFilter struct {
	Sentiment *Sentiment
	SourceID  *uuid.UUID
	TopicID   *uuid.UUID
}

// ArticleQuery — параметры выборки из хранилища.
type ArticleQuery struct {
	Filter    ArticleFilter
	SortBy    SortField
	SortOrder SortOrder
	Limit     int
	Offset    int
}

// ArticlePage — страница хранилища.
// Total учитывает только фильтры ArticleFilter.
type ArticlePage struct {
	Items []Article
	Total int
}
