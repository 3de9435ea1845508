package mapper

import (
	"catalog-assistant-be/internal/entity"
	"catalog-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type CatalogVectorMapper struct{}

func NewCatalogVectorMapper() *CatalogVectorMapper {
	return &CatalogVectorMapper{}
}

func (m *CatalogVectorMapper) ToEntity(v *model.CatalogVector) *entity.IndexedVector {
	if v == nil {
		return nil
	}
	metadata := make(map[string]string, len(v.Metadata))
	for k, val := range v.Metadata {
		if s, ok := val.(string); ok {
			metadata[k] = s
		}
	}
	return &entity.IndexedVector{
		Id:        v.Id,
		NaturalId: v.NaturalId,
		Kind:      entity.RecordKind(v.Kind),
		Title:     v.Title,
		Content:   v.Content,
		Embedding: v.Embedding.Slice(),
		Metadata:  metadata,
		IndexedAt: v.IndexedAt,
	}
}

func (m *CatalogVectorMapper) ToModel(v *entity.IndexedVector) *model.CatalogVector {
	if v == nil {
		return nil
	}
	metadata := make(datatypes.JSONMap, len(v.Metadata))
	for k, val := range v.Metadata {
		metadata[k] = val
	}
	return &model.CatalogVector{
		Id:        v.Id,
		Kind:      string(v.Kind),
		NaturalId: v.NaturalId,
		Title:     v.Title,
		Content:   v.Content,
		Embedding: pgvector.NewVector(v.Embedding),
		Metadata:  metadata,
		IndexedAt: v.IndexedAt,
	}
}
