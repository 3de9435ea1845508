package memory

import (
	"context"
	"testing"
	"time"

	"catalog-assistant-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func row(naturalId string, kind entity.RecordKind, embedding []float32) *entity.IndexedVector {
	return &entity.IndexedVector{
		NaturalId: naturalId,
		Kind:      kind,
		Title:     "title " + naturalId,
		Content:   "content " + naturalId,
		Embedding: embedding,
		IndexedAt: time.Now(),
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := NewCatalogVectorRepository()
	ctx := context.Background()

	first := row("123", entity.KindFormation, []float32{1, 0})
	assert.NoError(t, repo.Upsert(ctx, first))

	second := row("123", entity.KindFormation, []float32{0, 1})
	second.Title = "updated"
	assert.NoError(t, repo.Upsert(ctx, second))

	// Same (kind, naturalId) keeps one row and the original id
	count, err := repo.CountByKind(ctx, entity.KindFormation)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, first.Id, second.Id)

	results, err := repo.SearchSimilarWithScore(ctx, entity.KindFormation, []float32{0, 1}, 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "updated", results[0].Vector.Title)
}

func TestUpsertSameIdAcrossKinds(t *testing.T) {
	repo := NewCatalogVectorRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Upsert(ctx, row("42", entity.KindFormation, []float32{1, 0})))
	assert.NoError(t, repo.Upsert(ctx, row("42", entity.KindSession, []float32{1, 0})))

	formations, _ := repo.CountByKind(ctx, entity.KindFormation)
	sessions, _ := repo.CountByKind(ctx, entity.KindSession)
	assert.Equal(t, int64(1), formations)
	assert.Equal(t, int64(1), sessions)
}

func TestSearchOrdering(t *testing.T) {
	repo := NewCatalogVectorRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Upsert(ctx, row("far", entity.KindFormation, []float32{0, 1})))
	assert.NoError(t, repo.Upsert(ctx, row("close", entity.KindFormation, []float32{0.9, 0.1})))
	assert.NoError(t, repo.Upsert(ctx, row("exact", entity.KindFormation, []float32{1, 0})))

	results, err := repo.SearchSimilarWithScore(ctx, entity.KindFormation, []float32{1, 0}, 2)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Vector.NaturalId)
	assert.Equal(t, "close", results[1].Vector.NaturalId)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchLimitLargerThanIndex(t *testing.T) {
	repo := NewCatalogVectorRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Upsert(ctx, row("a", entity.KindSession, []float32{1, 0})))
	assert.NoError(t, repo.Upsert(ctx, row("b", entity.KindSession, []float32{0, 1})))

	results, err := repo.SearchSimilarWithScore(ctx, entity.KindSession, []float32{1, 0}, 50)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchTieBreaksOnNaturalId(t *testing.T) {
	repo := NewCatalogVectorRepository()
	ctx := context.Background()

	// Identical vectors: ordering must still be deterministic
	assert.NoError(t, repo.Upsert(ctx, row("b", entity.KindFormation, []float32{1, 0})))
	assert.NoError(t, repo.Upsert(ctx, row("a", entity.KindFormation, []float32{1, 0})))
	assert.NoError(t, repo.Upsert(ctx, row("c", entity.KindFormation, []float32{1, 0})))

	for i := 0; i < 5; i++ {
		results, err := repo.SearchSimilarWithScore(ctx, entity.KindFormation, []float32{1, 0}, 3)
		assert.NoError(t, err)
		assert.Equal(t, "a", results[0].Vector.NaturalId)
		assert.Equal(t, "b", results[1].Vector.NaturalId)
		assert.Equal(t, "c", results[2].Vector.NaturalId)
	}
}

func TestSearchExcludesOtherKindAndEmptyEmbeddings(t *testing.T) {
	repo := NewCatalogVectorRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Upsert(ctx, row("formation", entity.KindFormation, []float32{1, 0})))
	assert.NoError(t, repo.Upsert(ctx, row("session", entity.KindSession, []float32{1, 0})))
	assert.NoError(t, repo.Upsert(ctx, row("no-vector", entity.KindFormation, nil)))

	results, err := repo.SearchSimilarWithScore(ctx, entity.KindFormation, []float32{1, 0}, 10)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "formation", results[0].Vector.NaturalId)
}

func TestStats(t *testing.T) {
	repo := NewCatalogVectorRepository()
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.FormationsIndexed)
	assert.Nil(t, stats.LastUpdated)

	older := row("f1", entity.KindFormation, []float32{1, 0})
	older.IndexedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := row("s1", entity.KindSession, []float32{1, 0})
	newer.IndexedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, repo.Upsert(ctx, older))
	assert.NoError(t, repo.Upsert(ctx, newer))

	stats, err = repo.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.FormationsIndexed)
	assert.Equal(t, int64(1), stats.SessionsIndexed)
	assert.Equal(t, newer.IndexedAt, *stats.LastUpdated)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
