// classifier определяет тональность и темы статьи через OpenAI-совместимый
// chat-completions эндпоинт. Сбой классификации никогда не блокирует ингест:
// вызывающий сохраняет статью без тональности.
package classifier

import (
	"context"
	"errors"
	"strings"

	"github.com/pribylovaa/pulse-reader/internal/models"
)

var (
	// ErrTimeout — вызов не уложился в таймаут.
	ErrTimeout = errors.New("classifier timeout")
	// ErrMalformedResponse — ответ не соответствует контракту {sentiment, topics}.
	ErrMalformedResponse = errors.New("classifier malformed response")
	// ErrRateLimited — упёрлись в лимит (клиентский или 429 от провайдера).
	ErrRateLimited = errors.New("classifier rate limited")
	// ErrUnavailable — провайдер недоступен или классификатор выключен.
	ErrUnavailable = errors.New("classifier unavailable")
)

// Disabled используется, когда API-ключ не задан: все статьи сохраняются неклассифицированными.
type Disabled struct{}

func (Disabled) Classify(context.Context, string, string) (models.Classification, error) {
	return models.Classification{}, ErrUnavailable
}

// normalizeTopics обрезает пробелы, убирает дубликаты без учёта регистра
// и ограничивает число тем. Порядок первого появления сохраняется.
func normalizeTopics(raw []string, limit int) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, name := range raw {
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out
}
