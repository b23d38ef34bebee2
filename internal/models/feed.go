package models

import "github.com/google/uuid"

// FeedQuery — команда чтения ленты.
// Опциональные фильтры заданы указателями.
type FeedQuery struct {
	// Limit == 0 — серверный default.
	Limit                int
	Offset               int
	Sentiment            *Sentiment
	TopicID              *uuid.UUID
	SourceID             *uuid.UUID
	ApplyPersonalization bool
	SortBy               SortField
	SortOrder            SortOrder
}

// Pagination — метаданные страницы.
//
// HasMore вычисляется по непрочитанным строкам хранилища, а не по Total:
// при активном блоклисте Total завышает доступный объём.
// NextOffset — смещение, с которого продолжать без пропусков и повторов.
type Pagination struct {
	Limit      int
	Offset     int
	Total      int
	HasMore    bool
	NextOffset int
}

// FiltersApplied — какие фильтры фактически применены.
type FiltersApplied struct {
	Sentiment         *Sentiment
	Personalization   bool
	BlockedItemsCount *int
}

// FeedPage — ответ движка персонализации.
type FeedPage struct {
	Items          []Article
	Pagination     Pagination
	FiltersApplied FiltersApplied
}
