package service

import (
	"context"
	"encoding/json"
	"time"

	"catalog-assistant-be/internal/dto"
	"catalog-assistant-be/internal/pkg/logger"
	"catalog-assistant-be/pkg/cache"
	"catalog-assistant-be/pkg/catalog"
	"catalog-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Cache keys for the raw upstream payloads. The formations key is versioned
// independently of the sessions key: bumping a version invalidates only the
// payload whose shape changed.
const (
	formationsCacheKey = "catalog:formations:v2"
	sessionsCacheKey   = "catalog:sessions:v1"
)

// CatalogFetcher is the upstream webservice boundary.
type CatalogFetcher interface {
	FetchFormations(ctx context.Context) ([]catalog.Record, error)
	FetchSessions(ctx context.Context) ([]catalog.Record, error)
}

// EventPublisher sends domain events to the external bus. May be nil-backed;
// see bootstrap.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ICatalogService interface {
	// GetFormations returns the raw formation records, served from cache when
	// fresh and refetched from the upstream otherwise.
	GetFormations(ctx context.Context) ([]catalog.Record, error)
	// GetSessions returns the raw session records, cache-first like GetFormations.
	GetSessions(ctx context.Context) ([]catalog.Record, error)
	// ForceSync drops both caches, refetches everything and announces the
	// refresh on the sync topic so the indexer picks it up.
	ForceSync(ctx context.Context) (*dto.SyncStats, error)
}

type catalogService struct {
	fetcher       CatalogFetcher
	cache         cache.Cache
	pubSub        *gochannel.GoChannel
	syncTopic     string
	natsPublisher EventPublisher

	formationsTTL time.Duration
	sessionsTTL   time.Duration

	log logger.ILogger
}

func NewCatalogService(
	fetcher CatalogFetcher,
	cacheStore cache.Cache,
	pubSub *gochannel.GoChannel,
	syncTopic string,
	natsPublisher EventPublisher,
	formationsTTL time.Duration,
	sessionsTTL time.Duration,
	log logger.ILogger,
) ICatalogService {
	return &catalogService{
		fetcher:       fetcher,
		cache:         cacheStore,
		pubSub:        pubSub,
		syncTopic:     syncTopic,
		natsPublisher: natsPublisher,
		formationsTTL: formationsTTL,
		sessionsTTL:   sessionsTTL,
		log:           log,
	}
}

func (cs *catalogService) GetFormations(ctx context.Context) ([]catalog.Record, error) {
	return cs.getOrFetch(ctx, formationsCacheKey, cs.formationsTTL, cs.fetcher.FetchFormations)
}

func (cs *catalogService) GetSessions(ctx context.Context) ([]catalog.Record, error) {
	return cs.getOrFetch(ctx, sessionsCacheKey, cs.sessionsTTL, cs.fetcher.FetchSessions)
}

// getOrFetch is the cache-aside path shared by both record kinds. Cached
// payloads are the records' own JSON, so a hit replays the upstream bytes
// without losing unknown fields.
func (cs *catalogService) getOrFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetch func(context.Context) ([]catalog.Record, error),
) ([]catalog.Record, error) {
	if data, found, err := cs.cache.Get(ctx, key); err != nil {
		cs.log.Warn("catalog", "cache read failed, falling through to upstream", map[string]interface{}{"key": key, "error": err.Error()})
	} else if found {
		var records []catalog.Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		cs.log.Warn("catalog", "cached payload corrupt, refetching", map[string]interface{}{"key": key})
	}

	records, err := fetch(ctx)
	if err != nil {
		return records, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := cs.cache.Set(ctx, key, data, ttl); err != nil {
			cs.log.Warn("catalog", "cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	return records, nil
}

func (cs *catalogService) ForceSync(ctx context.Context) (*dto.SyncStats, error) {
	for _, key := range []string{formationsCacheKey, sessionsCacheKey} {
		if err := cs.cache.Delete(ctx, key); err != nil {
			cs.log.Warn("catalog", "cache invalidation failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	formations, err := cs.GetFormations(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := cs.GetSessions(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.SyncStats{
		TotalFormations: len(formations),
		TotalSessions:   len(sessions),
	}

	cs.publishSyncCompleted(ctx, stats)

	return stats, nil
}

// publishSyncCompleted announces the refresh in-process (triggers reindexing)
// and on NATS for external consumers. Neither failure aborts the sync.
func (cs *catalogService) publishSyncCompleted(ctx context.Context, stats *dto.SyncStats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		cs.log.Error("catalog", "marshal sync event failed", map[string]interface{}{"error": err.Error()})
		return
	}

	if cs.pubSub != nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := cs.pubSub.Publish(cs.syncTopic, msg); err != nil {
			cs.log.Error("catalog", "publish sync message failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if cs.natsPublisher != nil {
		event := events.NewCatalogSyncCompleted(stats.TotalFormations, stats.TotalSessions)
		if err := cs.natsPublisher.Publish(ctx, event); err != nil {
			cs.log.Warn("catalog", "publish sync event to NATS failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
