package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// CatalogVector holds one embedded catalog item per (kind, natural_id).
// Re-indexing upserts in place; the composite unique index enforces the
// at-most-one-row invariant.
type CatalogVector struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind      string            `gorm:"type:varchar(16);not null;uniqueIndex:idx_catalog_vectors_kind_natural_id,priority:1"`
	NaturalId string            `gorm:"type:varchar(255);not null;uniqueIndex:idx_catalog_vectors_kind_natural_id,priority:2"`
	Title     string            `gorm:"type:text;not null"`
	Content   string            `gorm:"type:text;not null"`
	Embedding pgvector.Vector   `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	IndexedAt time.Time         `gorm:"not null;index"`
}

func (CatalogVector) TableName() string {
	return "catalog_vectors"
}
