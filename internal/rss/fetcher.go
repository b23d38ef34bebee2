// rss загружает и разбирает RSS/Atom-ленты в кандидатов на сохранение.
package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
)

// FetchKind — класс ошибки загрузки ленты.
type FetchKind int8

const (
	FetchUnreachable FetchKind = iota
	FetchTimeout
	FetchHTTPStatus
)

func (k FetchKind) String() string {
	switch k {
	case FetchTimeout:
		return "timeout"
	case FetchHTTPStatus:
		return "http_status"
	default:
		return "unreachable"
	}
}

// FetchError — типизированная ошибка загрузки. Status заполнен только для FetchHTTPStatus.
type FetchError struct {
	URL    string
	Kind   FetchKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchHTTPStatus {
		return fmt.Sprintf("fetch %s: status=%d", e.URL, e.Status)
	}

	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

const (
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "pulse-reader/1.0"
	defaultMaxBodyBytes = 10 << 20
)

// Fetcher выполняет HTTP GET ленты с ограничением по времени и размеру тела.
// Повторов внутри одного вызова нет.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewFetcher создаёт загрузчик. Нулевые параметры заменяются значениями по умолчанию.
func NewFetcher(client *http.Client, timeout time.Duration, userAgent string, maxBody int64) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &Fetcher{client: client, userAgent: userAgent, maxBody: maxBody}
}

// Fetch загружает тело ленты. Любая ошибка транспорта возвращается как *FetchError.
// Тело длиннее лимита обрезается, такой документ отклонит парсер.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	const op = "rss.Fetcher.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: FetchUnreachable, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		log.From(ctx).Warn("http_error",
			slog.String("op", op),
			slog.String("url", url),
			log.Err(err),
		)
		return nil, &FetchError{URL: url, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &FetchError{URL: url, Kind: FetchHTTPStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, &FetchError{URL: url, Kind: classify(err), Err: err}
	}

	return body, nil
}

func classify(err error) FetchKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}

	return FetchUnreachable
}
