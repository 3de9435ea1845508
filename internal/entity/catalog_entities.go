package entity

import (
	"time"

	"github.com/google/uuid"
)

// RecordKind distinguishes the two upstream catalog record shapes.
type RecordKind string

const (
	KindFormation RecordKind = "formation"
	KindSession   RecordKind = "session"
)

// Document is a normalized catalog record: the flattened text used for
// embedding plus the small metadata set surfaced to the UI and the LLM.
type Document struct {
	NaturalId string
	Kind      RecordKind
	Title     string
	Text      string
	Metadata  map[string]string
}

// IndexedVector is one row of the vector index, keyed by (Kind, NaturalId).
type IndexedVector struct {
	Id        uuid.UUID
	NaturalId string
	Kind      RecordKind
	Title     string
	Content   string
	Embedding []float32
	Metadata  map[string]string
	IndexedAt time.Time
}

// IndexStats summarizes the state of the vector index.
type IndexStats struct {
	FormationsIndexed int64
	SessionsIndexed   int64
	LastUpdated       *time.Time
}
