package service

import (
	"context"
	"errors"

	"catalog-assistant-be/internal/dto"
	"catalog-assistant-be/internal/entity"
	"catalog-assistant-be/internal/pkg/logger"
	"catalog-assistant-be/internal/repository/contract"
	"catalog-assistant-be/pkg/catalog"
	"catalog-assistant-be/pkg/clock"
	"catalog-assistant-be/pkg/embedding"
	"catalog-assistant-be/pkg/events"

	"github.com/google/uuid"
)

type IIndexerService interface {
	// IndexAllData normalizes and embeds the whole catalog into the vector
	// index. Individual records that cannot be normalized or embedded are
	// logged and skipped; the run always finishes.
	IndexAllData(ctx context.Context) (*dto.IndexRunStats, error)
	Stats(ctx context.Context) (*dto.IndexStatsResponse, error)
}

type indexerService struct {
	catalogService    ICatalogService
	normalizer        *catalog.Normalizer
	embeddingProvider embedding.EmbeddingProvider
	vectorRepo        contract.CatalogVectorRepository
	natsPublisher     EventPublisher
	clock             clock.Clock
	log               logger.ILogger
}

func NewIndexerService(
	catalogService ICatalogService,
	normalizer *catalog.Normalizer,
	embeddingProvider embedding.EmbeddingProvider,
	vectorRepo contract.CatalogVectorRepository,
	natsPublisher EventPublisher,
	clk clock.Clock,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		catalogService:    catalogService,
		normalizer:        normalizer,
		embeddingProvider: embeddingProvider,
		vectorRepo:        vectorRepo,
		natsPublisher:     natsPublisher,
		clock:             clk,
		log:               log,
	}
}

func (is *indexerService) IndexAllData(ctx context.Context) (*dto.IndexRunStats, error) {
	formations, err := is.catalogService.GetFormations(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := is.catalogService.GetSessions(ctx)
	if err != nil {
		return nil, err
	}

	is.log.Info("indexer", "index run started", map[string]interface{}{
		"formations": len(formations),
		"sessions":   len(sessions),
	})

	stats := &dto.IndexRunStats{}
	stats.FormationsIndexed = is.indexRecords(ctx, formations, entity.KindFormation)
	stats.SessionsIndexed = is.indexRecords(ctx, sessions, entity.KindSession)
	stats.Total = stats.FormationsIndexed + stats.SessionsIndexed

	is.log.Info("indexer", "index run finished", map[string]interface{}{
		"formations_indexed": stats.FormationsIndexed,
		"sessions_indexed":   stats.SessionsIndexed,
	})

	if is.natsPublisher != nil {
		event := events.NewCatalogIndexed(stats.FormationsIndexed, stats.SessionsIndexed)
		if err := is.natsPublisher.Publish(ctx, event); err != nil {
			is.log.Warn("indexer", "publish indexed event to NATS failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return stats, nil
}

// indexRecords processes one kind sequentially. The embedding provider is the
// pacing bottleneck anyway, so there is nothing to gain from fanning out, and
// sequential writes keep upstream rate limits honest.
func (is *indexerService) indexRecords(ctx context.Context, records []catalog.Record, kind entity.RecordKind) int {
	indexed := 0
	for i, rec := range records {
		doc, err := is.normalizer.Normalize(rec, kind)
		if err != nil {
			if errors.Is(err, catalog.ErrMissingNaturalID) {
				is.log.Warn("indexer", "record has no natural id, skipped", map[string]interface{}{"kind": kind, "position": i})
			} else {
				is.log.Error("indexer", "normalize failed", map[string]interface{}{"kind": kind, "position": i, "error": err.Error()})
			}
			continue
		}

		vector, err := is.embeddingProvider.Generate(ctx, doc.Text)
		if err != nil {
			is.log.Warn("indexer", "embedding failed, record skipped", map[string]interface{}{
				"kind":       kind,
				"natural_id": doc.NaturalId,
				"error":      err.Error(),
			})
			continue
		}

		row := &entity.IndexedVector{
			Id:        uuid.New(),
			NaturalId: doc.NaturalId,
			Kind:      doc.Kind,
			Title:     doc.Title,
			Content:   doc.Text,
			Embedding: vector,
			Metadata:  doc.Metadata,
			IndexedAt: is.clock.Now(),
		}
		if err := is.vectorRepo.Upsert(ctx, row); err != nil {
			is.log.Error("indexer", "upsert failed", map[string]interface{}{
				"kind":       kind,
				"natural_id": doc.NaturalId,
				"error":      err.Error(),
			})
			continue
		}
		indexed++
	}
	return indexed
}

func (is *indexerService) Stats(ctx context.Context) (*dto.IndexStatsResponse, error) {
	stats, err := is.vectorRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.IndexStatsResponse{
		FormationsIndexed: stats.FormationsIndexed,
		SessionsIndexed:   stats.SessionsIndexed,
		TotalIndexed:      stats.FormationsIndexed + stats.SessionsIndexed,
		LastUpdated:       stats.LastUpdated,
	}, nil
}
