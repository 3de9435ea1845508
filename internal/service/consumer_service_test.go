package service

import (
	"context"
	"testing"
	"time"

	"catalog-assistant-be/internal/entity"
	"catalog-assistant-be/internal/pkg/logger"
	"catalog-assistant-be/internal/repository/memory"
	"catalog-assistant-be/pkg/catalog"

	"github.com/stretchr/testify/require"
)

func TestConsumerReindexesAfterSync(t *testing.T) {
	clk := newFakeClock()
	cache := newFakeCache(clk)
	repo := memory.NewCatalogVectorRepository()
	fetcher := &fakeFetcher{
		formations: mustRecords(t, `[{"product_id": "1", "title": "Formation Drupal 10"}]`),
		sessions:   mustRecords(t, `[{"variation_id": "10", "title": "Session Drupal"}]`),
	}

	pubSub := newTestPubSub()
	catalogSvc := NewCatalogService(fetcher, cache, pubSub, "catalog.sync", nil,
		time.Hour, time.Hour, logger.NewNopLogger())
	indexerSvc := NewIndexerService(catalogSvc, catalog.NewNormalizer(catalog.PolicyReject),
		newFakeEmbedder("drupal"), repo, nil, clk, logger.NewNopLogger())
	consumer := NewConsumerService(pubSub, "catalog.sync", indexerSvc, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	_, err := catalogSvc.ForceSync(ctx)
	require.NoError(t, err)

	// The reindex runs in the consumer goroutine; poll until it lands
	deadline := time.After(5 * time.Second)
	for {
		count, err := repo.CountByKind(ctx, entity.KindFormation)
		require.NoError(t, err)
		if count == 1 {
			sessions, err := repo.CountByKind(ctx, entity.KindSession)
			require.NoError(t, err)
			if sessions == 1 {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatal("consumer did not reindex after sync message")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
