// memory реализует storage.Storage в памяти процесса.
// Используется для локального запуска (db.driver=memory) и в тестах сервисного слоя.
// Семантика уникальности и каскадов повторяет PostgreSQL-схему из ./migrations.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

type Storage struct {
	mu sync.RWMutex

	articles   map[uuid.UUID]models.Article
	links      map[string]uuid.UUID
	topics     map[uuid.UUID]models.Topic
	topicNames map[string]uuid.UUID
	assoc      map[uuid.UUID]map[uuid.UUID]struct{}
	sources    map[uuid.UUID]models.Source
	sourceURLs map[string]uuid.UUID
	profiles   map[uuid.UUID]models.Profile
	// attempts — время последней неудачной классификации статьи.
	attempts    map[uuid.UUID]time.Time
	now         func() time.Time
	unavailable bool
}

// New возвращает пустое хранилище.
func New() *Storage {
	return &Storage{
		articles:   make(map[uuid.UUID]models.Article),
		links:      make(map[string]uuid.UUID),
		topics:     make(map[uuid.UUID]models.Topic),
		topicNames: make(map[string]uuid.UUID),
		assoc:      make(map[uuid.UUID]map[uuid.UUID]struct{}),
		sources:    make(map[uuid.UUID]models.Source),
		sourceURLs: make(map[string]uuid.UUID),
		profiles:   make(map[uuid.UUID]models.Profile),
		attempts:   make(map[uuid.UUID]time.Time),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetUnavailable переводит хранилище в режим «нет соединения»:
// все операции возвращают storage.ErrUnavailable.
func (s *Storage) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unavailable = v
}

func (s *Storage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.check(ctx)
}

func (s *Storage) Close() {}

func (s *Storage) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.unavailable {
		return storage.ErrUnavailable
	}

	return nil
}

// ArticleExists проверяет наличие ссылки.
func (s *Storage) ArticleExists(ctx context.Context, link string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return false, err
	}

	_, ok := s.links[link]
	return ok, nil
}

// InsertArticle создаёт статью и связи атомарно: все проверки выполняются до записи.
func (s *Storage) InsertArticle(ctx context.Context, article *models.Article, topicIDs []uuid.UUID) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	if _, ok := s.links[article.Link]; ok {
		return nil, storage.ErrConflict
	}

	if _, ok := s.sources[article.SourceID]; !ok {
		return nil, storage.ErrNotFound
	}

	for _, id := range topicIDs {
		if _, ok := s.topics[id]; !ok {
			return nil, storage.ErrReferenced
		}
	}

	now := s.now()
	created := *article
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	if created.Sentiment != nil {
		created.Sentiment = models.SentimentPtr(*created.Sentiment)
	}
	created.PublicationDate = created.PublicationDate.UTC()
	created.Topics = nil
	created.CreatedAt = now
	created.UpdatedAt = now

	s.articles[created.ID] = created
	s.links[created.Link] = created.ID
	s.setLinks(created.ID, topicIDs)

	out := created
	return &out, nil
}

func (s *Storage) setLinks(articleID uuid.UUID, topicIDs []uuid.UUID) {
	if len(topicIDs) == 0 {
		delete(s.assoc, articleID)
		return
	}

	set := make(map[uuid.UUID]struct{}, len(topicIDs))
	for _, id := range topicIDs {
		set[id] = struct{}{}
	}
	s.assoc[articleID] = set
}

func (s *Storage) matches(a models.Article, f models.ArticleFilter) bool {
	if f.Sentiment != nil && (a.Sentiment == nil || *a.Sentiment != *f.Sentiment) {
		return false
	}

	if f.SourceID != nil && a.SourceID != *f.SourceID {
		return false
	}

	if f.TopicID != nil {
		if _, ok := s.assoc[a.ID][*f.TopicID]; !ok {
			return false
		}
	}

	return true
}

// less задаёт тот же порядок, что ORDER BY <field> <dir>, id <dir>.
func less(a, b models.Article, field models.SortField, order models.SortOrder) bool {
	ka, kb := a.PublicationDate, b.PublicationDate
	if field == models.SortByCreatedAt {
		ka, kb = a.CreatedAt, b.CreatedAt
	}

	if !ka.Equal(kb) {
		if order == models.SortAsc {
			return ka.Before(kb)
		}
		return ka.After(kb)
	}

	cmp := strings.Compare(a.ID.String(), b.ID.String())
	if order == models.SortAsc {
		return cmp < 0
	}
	return cmp > 0
}

// QueryArticles фильтрует, сортирует и режет выборку под одной блокировкой.
func (s *Storage) QueryArticles(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	matched := make([]models.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if s.matches(a, q.Filter) {
			matched = append(matched, a)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return less(matched[i], matched[j], q.SortBy, q.SortOrder)
	})

	page := &models.ArticlePage{Total: len(matched)}
	if q.Limit <= 0 || q.Offset >= len(matched) {
		return page, nil
	}

	end := q.Offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = append(page.Items, matched[q.Offset:end]...)

	return page, nil
}

// ArticleByID возвращает статью с темами, отсортированными по имени.
func (s *Storage) ArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	a, ok := s.articles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	for topicID := range s.assoc[id] {
		a.Topics = append(a.Topics, s.topics[topicID])
	}
	sort.Slice(a.Topics, func(i, j int) bool { return a.Topics[i].Name < a.Topics[j].Name })

	return &a, nil
}

func (s *Storage) deleteArticle(id uuid.UUID) {
	a := s.articles[id]
	delete(s.links, a.Link)
	delete(s.assoc, id)
	delete(s.attempts, id)
	delete(s.articles, id)
}

// DeleteArticle удаляет статью вместе со связями.
func (s *Storage) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return err
	}

	if _, ok := s.articles[id]; !ok {
		return storage.ErrNotFound
	}

	s.deleteArticle(id)
	return nil
}

// DeleteArticlesOlderThan удаляет статьи с publication_date < cutoff.
func (s *Storage) DeleteArticlesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return 0, err
	}

	var n int64
	for id, a := range s.articles {
		if a.PublicationDate.Before(cutoff) {
			s.deleteArticle(id)
			n++
		}
	}

	return n, nil
}

// UnclassifiedArticles возвращает статьи без тональности: сначала ни разу не пробованные,
// затем давно пробованные; при равенстве — старые первыми.
func (s *Storage) UnclassifiedArticles(ctx context.Context, limit int) ([]models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	if limit <= 0 {
		return nil, nil
	}

	var out []models.Article
	for _, a := range s.articles {
		if a.Sentiment == nil {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		ti, triedI := s.attempts[out[i].ID]
		tj, triedJ := s.attempts[out[j].ID]
		switch {
		case triedI != triedJ:
			return !triedI
		case triedI && !ti.Equal(tj):
			return ti.Before(tj)
		}

		return less(out[i], out[j], models.SortByCreatedAt, models.SortAsc)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// MarkClassifyFailed запоминает неудачную попытку: статья уходит в конец очереди добора.
func (s *Storage) MarkClassifyFailed(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return err
	}

	if _, ok := s.articles[id]; !ok {
		return storage.ErrNotFound
	}

	s.attempts[id] = s.now()
	return nil
}

// UpdateClassification выставляет тональность и заменяет набор тем.
func (s *Storage) UpdateClassification(ctx context.Context, id uuid.UUID, sentiment *models.Sentiment, topicIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return err
	}

	a, ok := s.articles[id]
	if !ok {
		return storage.ErrNotFound
	}

	for _, topicID := range topicIDs {
		if _, ok := s.topics[topicID]; !ok {
			return storage.ErrReferenced
		}
	}

	a.Sentiment = nil
	if sentiment != nil {
		a.Sentiment = models.SentimentPtr(*sentiment)
	}
	a.UpdatedAt = s.now()

	s.articles[id] = a
	s.setLinks(id, topicIDs)

	return nil
}

// TopicByName ищет тему без учёта регистра.
func (s *Storage) TopicByName(ctx context.Context, name string) (*models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	id, ok := s.topicNames[strings.ToLower(name)]
	if !ok {
		return nil, storage.ErrNotFound
	}

	t := s.topics[id]
	return &t, nil
}

// CreateTopic создаёт тему; совпадение без учёта регистра — storage.ErrConflict.
func (s *Storage) CreateTopic(ctx context.Context, name string) (*models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	key := strings.ToLower(name)
	if _, ok := s.topicNames[key]; ok {
		return nil, storage.ErrConflict
	}

	now := s.now()
	t := models.Topic{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
	s.topics[t.ID] = t
	s.topicNames[key] = t.ID

	return &t, nil
}

// ListTopics возвращает все темы по алфавиту (без учёта регистра).
func (s *Storage) ListTopics(ctx context.Context) ([]models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := make([]models.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	return out, nil
}

// CreateSource создаёт источник; дубликат url — storage.ErrConflict.
func (s *Storage) CreateSource(ctx context.Context, src *models.Source) (*models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	if _, ok := s.sourceURLs[src.URL]; ok {
		return nil, storage.ErrConflict
	}

	now := s.now()
	created := models.Source{
		ID:        src.ID,
		URL:       src.URL,
		Name:      src.Name,
		Active:    src.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}

	s.sources[created.ID] = created
	s.sourceURLs[created.URL] = created.ID

	return &created, nil
}

func (s *Storage) SourceByID(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	src, ok := s.sources[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &src, nil
}

// ListSources возвращает источники в порядке создания.
func (s *Storage) ListSources(ctx context.Context, activeOnly bool) ([]models.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := make([]models.Source, 0, len(s.sources))
	for _, src := range s.sources {
		if activeOnly && !src.Active {
			continue
		}
		out = append(out, src)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	return out, nil
}

func (s *Storage) UpdateSource(ctx context.Context, id uuid.UUID, update models.SourceUpdate) (*models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	src, ok := s.sources[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if update.Name != nil {
		src.Name = *update.Name
	}
	if update.Active != nil {
		src.Active = *update.Active
	}
	src.UpdatedAt = s.now()
	s.sources[id] = src

	return &src, nil
}

// DeleteSource удаляет источник, если на него не ссылается ни одна статья.
func (s *Storage) DeleteSource(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return err
	}

	src, ok := s.sources[id]
	if !ok {
		return storage.ErrNotFound
	}

	for _, a := range s.articles {
		if a.SourceID == id {
			return storage.ErrReferenced
		}
	}

	delete(s.sourceURLs, src.URL)
	delete(s.sources, id)

	return nil
}

func (s *Storage) RecordFetch(ctx context.Context, id uuid.UUID, at time.Time, fetchErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return err
	}

	src, ok := s.sources[id]
	if !ok {
		return storage.ErrNotFound
	}

	at = at.UTC()
	src.LastFetchedAt = &at
	src.LastError = fetchErr
	s.sources[id] = src

	return nil
}

func copyProfile(p models.Profile) *models.Profile {
	out := p
	if p.Mood != nil {
		out.Mood = models.SentimentPtr(*p.Mood)
	}
	out.Blocklist = append([]string{}, p.Blocklist...)

	return &out
}

// CreateProfile создаёт профиль; повтор по user_id — storage.ErrConflict.
func (s *Storage) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	if _, ok := s.profiles[profile.UserID]; ok {
		return nil, storage.ErrConflict
	}

	now := s.now()
	created := *copyProfile(*profile)
	created.CreatedAt = now
	created.UpdatedAt = now
	s.profiles[created.UserID] = created

	return copyProfile(created), nil
}

func (s *Storage) ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	p, ok := s.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return copyProfile(p), nil
}

// UpdateProfile — частичный апдейт с теми же правилами, что у PostgreSQL-реализации.
func (s *Storage) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	p, ok := s.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if update.Mood != nil {
		if *update.Mood == "" {
			p.Mood = nil
		} else {
			p.Mood = models.SentimentPtr(*update.Mood)
		}
	}

	if update.Blocklist != nil {
		p.Blocklist = append([]string{}, (*update.Blocklist)...)
	}

	p.UpdatedAt = s.now()
	s.profiles[userID] = p

	return copyProfile(p), nil
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
