package handlers

import (
	"time"

	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/service"
)

// Все даты — RFC 3339 в UTC.

type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Article struct {
	ID              string    `json:"id"`
	SourceID        string    `json:"source_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Link            string    `json:"link"`
	PublicationDate time.Time `json:"publication_date"`
	Sentiment       *string   `json:"sentiment"`
	Topics          []Topic   `json:"topics"`
	CreatedAt       time.Time `json:"created_at"`
}

type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Total      int  `json:"total"`
	HasMore    bool `json:"has_more"`
	NextOffset *int `json:"next_offset,omitempty"`
}

type FiltersApplied struct {
	Sentiment         *string `json:"sentiment,omitempty"`
	Personalization   bool    `json:"personalization,omitempty"`
	BlockedItemsCount *int    `json:"blocked_items_count,omitempty"`
}

type FeedResponse struct {
	Data           []Article      `json:"data"`
	Pagination     Pagination     `json:"pagination"`
	FiltersApplied FiltersApplied `json:"filters_applied"`
}

type TopicsResponse struct {
	Items []Topic `json:"items"`
}

type Profile struct {
	UserID    string    `json:"user_id"`
	Mood      *string   `json:"mood"`
	Blocklist []string  `json:"blocklist"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileCreateRequest — тело POST /profile.
type ProfileCreateRequest struct {
	Mood      *string  `json:"mood"`
	Blocklist []string `json:"blocklist"`
}

// ProfileUpdateRequest — тело PATCH /profile. Отсутствующее поле не меняется,
// "mood": "" сбрасывает фильтр по тональности.
type ProfileUpdateRequest struct {
	Mood      *string   `json:"mood"`
	Blocklist *[]string `json:"blocklist"`
}

type Source struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Name          string     `json:"name"`
	Active        bool       `json:"active"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type SourcesResponse struct {
	Items []Source `json:"items"`
}

type SourceCreateRequest struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

type SourceUpdateRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type SourceResult struct {
	SourceID        string `json:"source_id"`
	URL             string `json:"url"`
	Succeeded       bool   `json:"succeeded"`
	ArticlesCreated int    `json:"articles_created"`
	Error           string `json:"error,omitempty"`
}

type IngestionSummary struct {
	StartedAt            time.Time      `json:"started_at"`
	DurationMS           int64          `json:"duration_ms"`
	SourcesProcessed     int            `json:"sources_processed"`
	SourcesFailed        int            `json:"sources_failed"`
	ArticlesCreated      int            `json:"articles_created"`
	ArticlesDuplicate    int            `json:"articles_duplicate"`
	ArticlesUnclassified int            `json:"articles_unclassified"`
	ArticlesFailed       int            `json:"articles_failed"`
	Sources              []SourceResult `json:"sources"`
}

type ReclassifyResponse struct {
	Attempted  int `json:"attempted"`
	Classified int `json:"classified"`
	Failed     int `json:"failed"`
}

type RetentionResponse struct {
	Deleted int64 `json:"deleted"`
}

func sentimentPtr(s *models.Sentiment) *string {
	if s == nil {
		return nil
	}

	v := string(*s)
	return &v
}

func topicFromModel(t models.Topic) Topic {
	return Topic{ID: t.ID.String(), Name: t.Name}
}

func articleFromModel(a models.Article) Article {
	topics := make([]Topic, 0, len(a.Topics))
	for _, t := range a.Topics {
		topics = append(topics, topicFromModel(t))
	}

	return Article{
		ID:              a.ID.String(),
		SourceID:        a.SourceID.String(),
		Title:           a.Title,
		Description:     a.Description,
		Link:            a.Link,
		PublicationDate: a.PublicationDate.UTC(),
		Sentiment:       sentimentPtr(a.Sentiment),
		Topics:          topics,
		CreatedAt:       a.CreatedAt.UTC(),
	}
}

func feedFromModel(p *models.FeedPage) FeedResponse {
	data := make([]Article, 0, len(p.Items))
	for _, a := range p.Items {
		data = append(data, articleFromModel(a))
	}

	pg := Pagination{
		Limit:   p.Pagination.Limit,
		Offset:  p.Pagination.Offset,
		Total:   p.Pagination.Total,
		HasMore: p.Pagination.HasMore,
	}
	if pg.HasMore {
		next := p.Pagination.NextOffset
		pg.NextOffset = &next
	}

	return FeedResponse{
		Data:       data,
		Pagination: pg,
		FiltersApplied: FiltersApplied{
			Sentiment:         sentimentPtr(p.FiltersApplied.Sentiment),
			Personalization:   p.FiltersApplied.Personalization,
			BlockedItemsCount: p.FiltersApplied.BlockedItemsCount,
		},
	}
}

func profileFromModel(p *models.Profile) Profile {
	var mood *string
	if p.Mood != nil && *p.Mood != "" {
		mood = sentimentPtr(p.Mood)
	}

	blocklist := p.Blocklist
	if blocklist == nil {
		blocklist = []string{}
	}

	return Profile{
		UserID:    p.UserID.String(),
		Mood:      mood,
		Blocklist: blocklist,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func moodFromRequest(raw *string) *models.Sentiment {
	if raw == nil {
		return nil
	}

	s := models.Sentiment(*raw)
	return &s
}

func sourceFromModel(s models.Source) Source {
	out := Source{
		ID:        s.ID.String(),
		URL:       s.URL,
		Name:      s.Name,
		Active:    s.Active,
		LastError: s.LastError,
		CreatedAt: s.CreatedAt.UTC(),
	}
	if s.LastFetchedAt != nil {
		t := s.LastFetchedAt.UTC()
		out.LastFetchedAt = &t
	}

	return out
}

func summaryFromModel(s *models.IngestionSummary) IngestionSummary {
	sources := make([]SourceResult, 0, len(s.Sources))
	for _, r := range s.Sources {
		sources = append(sources, SourceResult{
			SourceID:        r.SourceID.String(),
			URL:             r.URL,
			Succeeded:       r.Succeeded,
			ArticlesCreated: r.ArticlesCreated,
			Error:           r.Error,
		})
	}

	return IngestionSummary{
		StartedAt:            s.StartedAt.UTC(),
		DurationMS:           s.Duration.Milliseconds(),
		SourcesProcessed:     s.SourcesProcessed,
		SourcesFailed:        s.SourcesFailed,
		ArticlesCreated:      s.ArticlesCreated,
		ArticlesDuplicate:    s.ArticlesDuplicate,
		ArticlesUnclassified: s.ArticlesUnclassified,
		ArticlesFailed:       s.ArticlesFailed,
		Sources:              sources,
	}
}

func reclassifyFromModel(r service.ReclassifyResult) ReclassifyResponse {
	return ReclassifyResponse{Attempted: r.Attempted, Classified: r.Classified, Failed: r.Failed}
}
