// cache — кэш профилей персонализации в Redis.
// Источник истины — хранилище; кэш только снимает нагрузку на чтение ленты.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/redis/go-redis/v9"
)

// ProfileCache — контракт кэша профилей.
type ProfileCache interface {
	// Get возвращает профиль и признак его наличия в кэше.
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error)
	// Set сохраняет профиль с TTL кэша.
	Set(ctx context.Context, profile *models.Profile) error
	// Delete инвалидирует запись (после апдейта профиля).
	Delete(ctx context.Context, userID uuid.UUID) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "pulse:profile:", если ttl <= 0 — 5 минут.
func NewRedisCache(ctx context.Context, redisURL, prefix string, ttl time.Duration) (ProfileCache, error) {
	if prefix == "" {
		prefix = "pulse:profile:"
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *redisCache) key(userID uuid.UUID) string { return c.prefix + userID.String() }

// Храним как Redis Hash с полями: mood ("" — не задано), bl (JSON-массив), cat/uat (unix nano).
func (c *redisCache) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	p := &models.Profile{UserID: userID, Blocklist: []string{}}
	if mood := m["mood"]; mood != "" {
		s, err := models.ParseSentiment(mood)
		if err != nil {
			return nil, false, err
		}
		p.Mood = &s
	}

	if bl := m["bl"]; bl != "" {
		if err := json.Unmarshal([]byte(bl), &p.Blocklist); err != nil {
			return nil, false, err
		}
	}

	if p.CreatedAt, err = parseUnixNano(m["cat"]); err != nil {
		return nil, false, err
	}

	if p.UpdatedAt, err = parseUnixNano(m["uat"]); err != nil {
		return nil, false, err
	}

	return p, true, nil
}

func (c *redisCache) Set(ctx context.Context, p *models.Profile) error {
	mood := ""
	if p.Mood != nil {
		mood = string(*p.Mood)
	}

	blocklist := p.Blocklist
	if blocklist == nil {
		blocklist = []string{}
	}

	bl, err := json.Marshal(blocklist)
	if err != nil {
		return err
	}

	kv := map[string]string{
		"mood": mood,
		"bl":   string(bl),
		"cat":  formatUnixNano(p.CreatedAt),
		"uat":  formatUnixNano(p.UpdatedAt),
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(p.UserID), kv)
	pipe.Expire(ctx, c.key(p.UserID), c.ttl)

	_, err = pipe.Exec(ctx)
	return err
}

func (c *redisCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }

func formatUnixNano(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return strconv.FormatInt(t.UnixNano(), 10)
}

func parseUnixNano(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(0, n).UTC(), nil
}
