package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/storage"
)

// articleColumns — единый список колонок статьи для SELECT/RETURNING,
// чтобы порядок сканирования в scanArticle всегда совпадал.
const articleColumns = `a.id, a.source_id, a.title, a.description, a.link, a.publication_date, a.sentiment, a.created_at, a.updated_at`

// scanArticle сканирует строку статьи с приведением NULL-полей.
func scanArticle(row pgx.Row) (*models.Article, error) {
	var (
		article     models.Article
		description *string
		sentiment   *string
	)

	if err := row.Scan(
		&article.ID,
		&article.SourceID,
		&article.Title,
		&description,
		&article.Link,
		&article.PublicationDate,
		&sentiment,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if description != nil {
		article.Description = *description
	}

	if sentiment != nil {
		s := models.Sentiment(*sentiment)
		article.Sentiment = &s
	}

	// Нормализация в UTC.
	article.PublicationDate = article.PublicationDate.UTC()
	article.CreatedAt = article.CreatedAt.UTC()
	article.UpdatedAt = article.UpdatedAt.UTC()

	return &article, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}

	return v
}

func sentimentArg(s *models.Sentiment) any {
	if s == nil {
		return nil
	}

	return string(*s)
}

// ArticleExists проверяет наличие статьи с данной ссылкой.
func (s *Storage) ArticleExists(ctx context.Context, link string) (bool, error) {
	const op = "storage.postgres.ArticleExists"

	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE link = $1)`, link).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return exists, nil
}

// InsertArticle создаёт статью и связи с темами в одной транзакции.
//
// Политика:
//   - дубликат link — storage.ErrConflict, статья не перезаписывается;
//   - ошибка на любой связи откатывает и саму статью;
//   - несуществующий source_id — storage.ErrNotFound.
func (s *Storage) InsertArticle(ctx context.Context, article *models.Article, topicIDs []uuid.UUID) (*models.Article, error) {
	const op = "storage.postgres.InsertArticle"

	id := article.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, mapErr(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // после Commit это no-op.

	row := tx.QueryRow(ctx, `
	INSERT INTO articles AS a (id, source_id, title, description, link, publication_date, sentiment)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING `+articleColumns,
		id,
		article.SourceID,
		article.Title,
		nullableString(article.Description),
		article.Link,
		article.PublicationDate.UTC(),
		sentimentArg(article.Sentiment),
	)

	created, err := scanArticle(row)
	if err != nil {
		mapped := mapErr(err)
		if errors.Is(mapped, storage.ErrReferenced) {
			return nil, fmt.Errorf("%s: source: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapped)
	}

	if err := insertTopicLinks(ctx, tx, created.ID, topicIDs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, mapErr(err))
	}

	return created, nil
}

// insertTopicLinks пачкой вставляет связи статья—тема внутри транзакции.
func insertTopicLinks(ctx context.Context, tx pgx.Tx, articleID uuid.UUID, topicIDs []uuid.UUID) error {
	if len(topicIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	seen := make(map[uuid.UUID]struct{}, len(topicIDs))
	for _, topicID := range topicIDs {
		if _, ok := seen[topicID]; ok {
			continue
		}
		seen[topicID] = struct{}{}

		batch.Queue(`INSERT INTO article_topics (article_id, topic_id) VALUES ($1, $2)`, articleID, topicID)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("topic link %d: %w", i, mapErr(err))
		}
	}

	return br.Close()
}

// applyFilter добавляет к выборке фильтры уровня БД (AND).
func applyFilter(b sq.SelectBuilder, f models.ArticleFilter) sq.SelectBuilder {
	if f.Sentiment != nil {
		b = b.Where(sq.Eq{"a.sentiment": string(*f.Sentiment)})
	}

	if f.SourceID != nil {
		// uuid.UUID — массив байт, sq.Eq развернул бы его в IN (...).
		b = b.Where(sq.Expr("a.source_id = ?", *f.SourceID))
	}

	if f.TopicID != nil {
		b = b.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM article_topics l WHERE l.article_id = a.id AND l.topic_id = ?)",
			*f.TopicID,
		))
	}

	return b
}

// orderClause строит ORDER BY с id как tie-breaker для стабильной пагинации.
func orderClause(field models.SortField, order models.SortOrder) []string {
	column := "a.publication_date"
	if field == models.SortByCreatedAt {
		column = "a.created_at"
	}

	dir := "DESC"
	if order == models.SortAsc {
		dir = "ASC"
	}

	return []string{column + " " + dir, "a.id " + dir}
}

// QueryArticles возвращает страницу статей и общее число строк под фильтрами.
// Count и выборка читаются из одного снимка (REPEATABLE READ, read-only).
func (s *Storage) QueryArticles(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
	const op = "storage.postgres.QueryArticles"

	countSQL, countArgs, err := applyFilter(psql.Select("count(*)").From("articles a"), q.Filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build count: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, mapErr(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only транзакция.

	var page models.ArticlePage
	if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, mapErr(err))
	}

	if q.Limit <= 0 || q.Offset >= page.Total {
		return &page, nil
	}

	query, args, err := applyFilter(psql.Select(articleColumns).From("articles a"), q.Filter).
		OrderBy(orderClause(q.SortBy, q.SortOrder)...).
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build select: %w", op, err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	defer rows.Close()

	for rows.Next() {
		article, scanErr := scanArticle(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		page.Items = append(page.Items, *article)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, mapErr(rows.Err()))
	}

	return &page, nil
}

// ArticleByID возвращает статью вместе с темами.
func (s *Storage) ArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	const op = "storage.postgres.ArticleByID"

	row := s.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.id = $1`, id)

	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	rows, err := s.db.Query(ctx, `
	SELECT `+topicColumns+`
	FROM topics t
	JOIN article_topics l ON l.topic_id = t.id
	WHERE l.article_id = $1
	ORDER BY t.name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: topics: %w", op, mapErr(err))
	}
	defer rows.Close()

	for rows.Next() {
		topic, scanErr := scanTopic(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan topic: %w", op, scanErr)
		}

		article.Topics = append(article.Topics, *topic)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, mapErr(rows.Err()))
	}

	return article, nil
}

// DeleteArticle удаляет статью; связи удаляются каскадно.
func (s *Storage) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteArticle"

	tag, err := s.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteArticlesOlderThan удаляет статьи, опубликованные раньше cutoff.
func (s *Storage) DeleteArticlesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.postgres.DeleteArticlesOlderThan"

	tag, err := s.db.Exec(ctx, `DELETE FROM articles WHERE publication_date < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return tag.RowsAffected(), nil
}

// UnclassifiedArticles возвращает статьи без тональности: непробованные первыми,
// затем по давности последней неудачной попытки, при равенстве — старые первыми.
func (s *Storage) UnclassifiedArticles(ctx context.Context, limit int) ([]models.Article, error) {
	const op = "storage.postgres.UnclassifiedArticles"

	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, `
	SELECT `+articleColumns+`
	FROM articles a
	WHERE a.sentiment IS NULL
	ORDER BY a.classify_attempted_at ASC NULLS FIRST, a.created_at ASC, a.id ASC
	LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	defer rows.Close()

	var out []models.Article
	for rows.Next() {
		article, scanErr := scanArticle(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		out = append(out, *article)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, mapErr(rows.Err()))
	}

	return out, nil
}

// MarkClassifyFailed увеличивает счётчик попыток и сдвигает статью в конец очереди добора.
func (s *Storage) MarkClassifyFailed(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.MarkClassifyFailed"

	tag, err := s.db.Exec(ctx, `
	UPDATE articles
	SET classify_attempts = classify_attempts + 1, classify_attempted_at = now()
	WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// UpdateClassification выставляет тональность и заменяет набор тем одной транзакцией.
func (s *Storage) UpdateClassification(ctx context.Context, id uuid.UUID, sentiment *models.Sentiment, topicIDs []uuid.UUID) error {
	const op = "storage.postgres.UpdateClassification"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, mapErr(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // после Commit это no-op.

	tag, err := tx.Exec(ctx, `
	UPDATE articles SET sentiment = $2, updated_at = now() WHERE id = $1
	`, id, sentimentArg(sentiment))
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM article_topics WHERE article_id = $1`, id); err != nil {
		return fmt.Errorf("%s: clear topics: %w", op, mapErr(err))
	}

	if err := insertTopicLinks(ctx, tx, id, topicIDs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, mapErr(err))
	}

	return nil
}
