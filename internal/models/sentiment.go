// models содержит доменные сущности pulse-reader.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"errors"
	"strings"
)

// Sentiment — тональность статьи, полученная от классификатора.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ErrUnknownSentiment — значение вне перечисления.
var ErrUnknownSentiment = errors.New("unknown sentiment")

// Sentiments — все допустимые значения в стабильном порядке.
func Sentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}
}

// Valid сообщает, входит ли значение в перечисление.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

func (s Sentiment) String() string { return string(s) }

// ParseSentiment разбирает строку без учёта регистра и окружающих пробелов.
func ParseSentiment(raw string) (Sentiment, error) {
	s := Sentiment(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrUnknownSentiment
	}

	return s, nil
}

// SentimentPtr — хелпер для опциональных полей.
func SentimentPtr(s Sentiment) *Sentiment {
	return &s
}
