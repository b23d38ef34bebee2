package models

import (
	"time"

	"github.com/google/uuid"
)

// Source — RSS/Atom-источник, который опрашивает оркестратор.
type Source struct {
	ID     uuid.UUID
	URL    string
	Name   string
	Active bool
	// LastFetchedAt/LastError — итог последнего опроса, на будущие циклы не влияют.
	LastFetchedAt *time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SourceUpdate — частичный апдейт источника.
// Обновляются только непустые указатели.
type SourceUpdate struct {
	Name   *string
	Active *bool
}
