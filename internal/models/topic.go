package models

import (
	"time"

	"github.com/google/uuid"
)

// Topic — тема из таксономии классификатора.
// Имя уникально без учёта регистра.
type Topic struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertOutcome — чем закончился upsert темы.
type UpsertOutcome int8

const (
	TopicExisting UpsertOutcome = iota
	TopicCreated
)

func (o UpsertOutcome) String() string {
	if o == TopicCreated {
		return "created"
	}

	return "existing"
}

// TopicUpsert — результат Service.UpsertTopic.
type TopicUpsert struct {
	Topic   Topic
	Outcome UpsertOutcome
}

// Created — хелпер для логов и счётчиков.
func (u TopicUpsert) Created() bool { return u.Outcome == TopicCreated }

// Classification — ответ классификатора.
type Classification struct {
	Sentiment Sentiment
	Topics    []string
}
