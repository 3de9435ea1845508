package service

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"catalog-assistant-be/internal/dto"
	"catalog-assistant-be/internal/entity"
	"catalog-assistant-be/internal/pkg/logger"
	"catalog-assistant-be/internal/repository/contract"
	"catalog-assistant-be/pkg/cache"
	"catalog-assistant-be/pkg/embedding"
)

type IRetrievalService interface {
	// Retrieve embeds the question once and returns the top-limit hits of each
	// kind. Results are memoized per (question, limit); an embedding outage
	// degrades to empty lists instead of an error.
	Retrieve(ctx context.Context, question string, limit int) (*dto.RetrievalResult, error)
}

type retrievalService struct {
	embeddingProvider embedding.EmbeddingProvider
	vectorRepo        contract.CatalogVectorRepository
	cache             cache.Cache
	searchTTL         time.Duration
	log               logger.ILogger
}

func NewRetrievalService(
	embeddingProvider embedding.EmbeddingProvider,
	vectorRepo contract.CatalogVectorRepository,
	cacheStore cache.Cache,
	searchTTL time.Duration,
	log logger.ILogger,
) IRetrievalService {
	return &retrievalService{
		embeddingProvider: embeddingProvider,
		vectorRepo:        vectorRepo,
		cache:             cacheStore,
		searchTTL:         searchTTL,
		log:               log,
	}
}

func (rs *retrievalService) Retrieve(ctx context.Context, question string, limit int) (*dto.RetrievalResult, error) {
	key := searchCacheKey(question, limit)

	if data, found, err := rs.cache.Get(ctx, key); err != nil {
		rs.log.Warn("retrieval", "cache read failed", map[string]interface{}{"error": err.Error()})
	} else if found {
		var cached dto.RetrievalResult
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	queryVector, err := rs.embeddingProvider.Generate(ctx, question)
	if err != nil {
		rs.log.Warn("retrieval", "question embedding failed, returning empty result", map[string]interface{}{"error": err.Error()})
		return &dto.RetrievalResult{
			Formations: []dto.SearchResultDTO{},
			Sessions:   []dto.SearchResultDTO{},
		}, nil
	}

	formations, err := rs.searchKind(ctx, entity.KindFormation, queryVector, limit)
	if err != nil {
		return nil, err
	}
	sessions, err := rs.searchKind(ctx, entity.KindSession, queryVector, limit)
	if err != nil {
		return nil, err
	}

	result := &dto.RetrievalResult{Formations: formations, Sessions: sessions}

	if data, err := json.Marshal(result); err == nil {
		if err := rs.cache.Set(ctx, key, data, rs.searchTTL); err != nil {
			rs.log.Warn("retrieval", "cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return result, nil
}

func (rs *retrievalService) searchKind(ctx context.Context, kind entity.RecordKind, queryVector []float32, limit int) ([]dto.SearchResultDTO, error) {
	scored, err := rs.vectorRepo.SearchSimilarWithScore(ctx, kind, queryVector, limit)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SearchResultDTO, 0, len(scored))
	for _, s := range scored {
		results = append(results, dto.SearchResultDTO{
			Id:       s.Vector.NaturalId,
			Title:    s.Vector.Title,
			Content:  s.Vector.Content,
			Score:    toPercentage(s.Similarity),
			Type:     string(s.Vector.Kind),
			Metadata: s.Vector.Metadata,
		})
	}
	return results, nil
}

// toPercentage converts a 0..1 similarity to a percentage rounded to two
// decimals, the precision surfaced to the prompt and the UI.
func toPercentage(similarity float64) float64 {
	return math.Round(similarity*10000) / 100
}

func searchCacheKey(question string, limit int) string {
	return fmt.Sprintf("vector_search:%x:%d", md5.Sum([]byte(question)), limit)
}
