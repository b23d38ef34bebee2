package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
)

// finalizeCandidate доводит кандидата ленты до инвариантов статьи:
//   - Title/Link обязательны (после TrimSpace), иначе запись отбрасывается;
//   - PublicationDate := PublishedAt || nowUTC, всегда в UTC;
//   - дата из будущего обрезается до nowUTC, чтобы не закреплять статью наверху выдачи.
//
// Возвращает (статью, ok=false если запись следует отбросить).
func finalizeCandidate(c models.Candidate, sourceID uuid.UUID, nowUTC time.Time) (models.Article, bool) {
	title := strings.TrimSpace(c.Title)
	link := strings.TrimSpace(c.Link)

	if title == "" || link == "" {
		return models.Article{}, false
	}

	published := c.PublishedAt.UTC()
	if c.PublishedAt.IsZero() || published.After(nowUTC) {
		published = nowUTC
	}

	return models.Article{
		SourceID:        sourceID,
		Title:           title,
		Description:     strings.TrimSpace(c.Description),
		Link:            link,
		PublicationDate: published,
	}, true
}
