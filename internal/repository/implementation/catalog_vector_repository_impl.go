package implementation

import (
	"context"
	"time"

	"catalog-assistant-be/internal/entity"
	"catalog-assistant-be/internal/mapper"
	"catalog-assistant-be/internal/model"
	"catalog-assistant-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogVectorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CatalogVectorMapper
}

func NewCatalogVectorRepository(db *gorm.DB) contract.CatalogVectorRepository {
	return &CatalogVectorRepositoryImpl{
		db:     db,
		mapper: mapper.NewCatalogVectorMapper(),
	}
}

func (r *CatalogVectorRepositoryImpl) Upsert(ctx context.Context, vector *entity.IndexedVector) error {
	m := r.mapper.ToModel(vector)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "kind"}, {Name: "natural_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "content", "embedding", "metadata", "indexed_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*vector = *r.mapper.ToEntity(m)
	return nil
}

func (r *CatalogVectorRepositoryImpl) SearchSimilarWithScore(ctx context.Context, kind entity.RecordKind, embedding []float32, limit int) ([]*contract.ScoredCatalogVector, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query_vector) recovers the similarity score.
	type result struct {
		model.CatalogVector
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("catalog_vectors").
		Select("catalog_vectors.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("kind = ?", string(kind)).
		Where("embedding IS NOT NULL").
		Order("similarity DESC, natural_id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCatalogVector, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredCatalogVector{
			Vector:     r.mapper.ToEntity(&res.CatalogVector),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *CatalogVectorRepositoryImpl) CountByKind(ctx context.Context, kind entity.RecordKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CatalogVector{}).
		Where("kind = ?", string(kind)).
		Count(&count).Error
	return count, err
}

func (r *CatalogVectorRepositoryImpl) Stats(ctx context.Context) (*entity.IndexStats, error) {
	formations, err := r.CountByKind(ctx, entity.KindFormation)
	if err != nil {
		return nil, err
	}
	sessions, err := r.CountByKind(ctx, entity.KindSession)
	if err != nil {
		return nil, err
	}

	var lastUpdated *time.Time
	if formations+sessions > 0 {
		var ts time.Time
		err = r.db.WithContext(ctx).
			Model(&model.CatalogVector{}).
			Select("MAX(indexed_at)").
			Scan(&ts).Error
		if err != nil {
			return nil, err
		}
		lastUpdated = &ts
	}

	return &entity.IndexStats{
		FormationsIndexed: formations,
		SessionsIndexed:   sessions,
		LastUpdated:       lastUpdated,
	}, nil
}
