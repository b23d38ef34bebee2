package rss

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pribylovaa/pulse-reader/internal/models"
)

// ErrParse — документ не удалось разобрать как RSS/Atom.
var ErrParse = errors.New("feed parse failed")

// Parser разбирает RSS 0.9x/1.0/2.0 и Atom через gofeed.
// Результат — нормализованные кандидаты в порядке ленты.
type Parser struct {
	fp *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{fp: gofeed.NewParser()}
}

// Parse возвращает кандидатов. Записи без заголовка или ссылки пропускаются;
// лента без записей — пустой результат без ошибки.
func (p *Parser) Parse(data []byte) ([]models.Candidate, error) {
	const op = "rss.Parser.Parse"

	feed, err := p.fp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrParse, err)
	}

	out := make([]models.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		title := collapseSpaces(plainText(item.Title))
		link := canonicalLink(item.Link, item.GUID)
		if title == "" || link == "" {
			continue
		}

		description := item.Description
		if strings.TrimSpace(description) == "" {
			description = item.Content
		}

		c := models.Candidate{
			Title:       title,
			Description: plainText(description),
			Link:        link,
		}

		switch {
		case item.PublishedParsed != nil:
			c.PublishedAt = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			c.PublishedAt = item.UpdatedParsed.UTC()
		}

		out = append(out, c)
	}

	return out, nil
}
