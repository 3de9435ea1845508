package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"catalog-assistant-be/internal/entity"
	"catalog-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
)

// CatalogVectorRepository is a brute-force in-memory implementation of the
// vector index contract. It backs tests and db-less deployments; catalog
// sizes are in the low thousands, so linear scan is fine.
type CatalogVectorRepository struct {
	mu   sync.RWMutex
	rows map[string]*entity.IndexedVector // key: kind + "/" + naturalId
}

func NewCatalogVectorRepository() *CatalogVectorRepository {
	return &CatalogVectorRepository{
		rows: make(map[string]*entity.IndexedVector),
	}
}

func key(kind entity.RecordKind, naturalId string) string {
	return string(kind) + "/" + naturalId
}

func (r *CatalogVectorRepository) Upsert(_ context.Context, vector *entity.IndexedVector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(vector.Kind, vector.NaturalId)
	if existing, ok := r.rows[k]; ok {
		vector.Id = existing.Id
	} else if vector.Id == uuid.Nil {
		vector.Id = uuid.New()
	}

	stored := *vector
	stored.Embedding = append([]float32(nil), vector.Embedding...)
	r.rows[k] = &stored
	return nil
}

func (r *CatalogVectorRepository) SearchSimilarWithScore(_ context.Context, kind entity.RecordKind, embedding []float32, limit int) ([]*contract.ScoredCatalogVector, error) {
	if limit <= 0 {
		limit = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var scored []*contract.ScoredCatalogVector
	for _, row := range r.rows {
		if row.Kind != kind || len(row.Embedding) == 0 {
			continue
		}
		scored = append(scored, &contract.ScoredCatalogVector{
			Vector:     row,
			Similarity: cosineSimilarity(embedding, row.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Vector.NaturalId < scored[j].Vector.NaturalId
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *CatalogVectorRepository) CountByKind(_ context.Context, kind entity.RecordKind) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, row := range r.rows {
		if row.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (r *CatalogVectorRepository) Stats(_ context.Context) (*entity.IndexStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &entity.IndexStats{}
	var last time.Time
	for _, row := range r.rows {
		switch row.Kind {
		case entity.KindFormation:
			stats.FormationsIndexed++
		case entity.KindSession:
			stats.SessionsIndexed++
		}
		if row.IndexedAt.After(last) {
			last = row.IndexedAt
		}
	}
	if !last.IsZero() {
		stats.LastUpdated = &last
	}
	return stats, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
