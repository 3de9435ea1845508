package contract

import (
	"context"

	"catalog-assistant-be/internal/entity"
)

// ScoredCatalogVector wraps an index row with its cosine similarity score.
type ScoredCatalogVector struct {
	Vector     *entity.IndexedVector
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type CatalogVectorRepository interface {
	// Upsert replaces any existing row for (Kind, NaturalId).
	Upsert(ctx context.Context, vector *entity.IndexedVector) error

	// SearchSimilarWithScore returns up to limit rows of one kind ordered by
	// descending cosine similarity; ties break on NaturalId for
	// reproducibility. Rows without embeddings are never returned.
	SearchSimilarWithScore(ctx context.Context, kind entity.RecordKind, embedding []float32, limit int) ([]*ScoredCatalogVector, error)

	CountByKind(ctx context.Context, kind entity.RecordKind) (int64, error)

	Stats(ctx context.Context) (*entity.IndexStats, error)
}
