package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceResult — итог обработки одного источника за цикл.
type SourceResult struct {
	SourceID        uuid.UUID
	URL             string
	Succeeded       bool
	ArticlesCreated int
	Error           string
}

// IngestionSummary — агрегированные счётчики цикла ингеста.
type IngestionSummary struct {
	StartedAt            time.Time
	Duration             time.Duration
	SourcesProcessed     int
	SourcesFailed        int
	ArticlesCreated      int
	ArticlesDuplicate    int
	ArticlesUnclassified int
	ArticlesFailed       int
	Sources              []SourceResult
}
