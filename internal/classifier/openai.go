package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const systemPrompt = `You classify news articles.
Reply with a single JSON object and nothing else:
{"sentiment": "positive" | "neutral" | "negative", "topics": ["short topic name", ...]}
Use at most %d topics. Topic names are 1-3 words in English, Title Case.`

const defaultModel = "gpt-4o-mini"

// Config — параметры клиента классификатора.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout — на один вызов, включая ожидание лимитера.
	Timeout   time.Duration
	RPS       float64
	Burst     int
	MaxTopics int
}

// OpenAI реализует service.Classifier поверх go-openai.
type OpenAI struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	limiter   *rate.Limiter
	maxTopics int
}

// NewOpenAI создаёт клиента. BaseURL опционален (совместимые провайдеры, тесты).
func NewOpenAI(cfg Config) *OpenAI {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	maxTopics := cfg.MaxTopics
	if maxTopics <= 0 {
		maxTopics = 5
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(cc),
		model:     model,
		timeout:   timeout,
		limiter:   rate.NewLimiter(limit, burst),
		maxTopics: maxTopics,
	}
}

type response struct {
	Sentiment string   `json:"sentiment"`
	Topics    []string `json:"topics"`
}

// Classify возвращает тональность и темы статьи.
// Ошибки — только ErrTimeout/ErrMalformedResponse/ErrRateLimited/ErrUnavailable (обёрнутые).
func (c *OpenAI) Classify(ctx context.Context, title, description string) (models.Classification, error) {
	const op = "classifier.OpenAI.Classify"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.Classification{}, fmt.Errorf("%s: wait: %w", op, ErrTimeout)
		}
		// Ожидание превысило бы дедлайн.
		return models.Classification{}, fmt.Errorf("%s: %w: %v", op, ErrRateLimited, err)
	}

	description = strings.TrimSpace(description)
	if r := []rune(description); len(r) > 2000 {
		description = string(r[:2000])
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, c.maxTopics)},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Title: %s\nDescription: %s", title, description)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0,
	})
	if err != nil {
		mapped := mapErr(ctx, err)
		log.From(ctx).Debug("classifier_call_failed",
			slog.String("op", op),
			slog.Duration("duration", time.Since(start)),
			log.Err(err),
		)
		return models.Classification{}, fmt.Errorf("%s: %w: %v", op, mapped, err)
	}

	if len(resp.Choices) == 0 {
		return models.Classification{}, fmt.Errorf("%s: no choices: %w", op, ErrMalformedResponse)
	}

	out, err := c.decode(resp.Choices[0].Message.Content)
	if err != nil {
		return models.Classification{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *OpenAI) decode(content string) (models.Classification, error) {
	content = strings.TrimSpace(content)
	// Некоторые совместимые провайдеры игнорируют json_object и оборачивают ответ в ```json.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var r response
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	sentiment, err := models.ParseSentiment(r.Sentiment)
	if err != nil {
		return models.Classification{}, fmt.Errorf("%w: sentiment %q", ErrMalformedResponse, r.Sentiment)
	}

	return models.Classification{
		Sentiment: sentiment,
		Topics:    normalizeTopics(r.Topics, c.maxTopics),
	}, nil
}

func mapErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return ErrTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	return ErrUnavailable
}
