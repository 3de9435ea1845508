package events

import "time"

const (
	TypeCatalogSyncCompleted = "CATALOG_SYNC_COMPLETED"
	TypeCatalogIndexed       = "CATALOG_INDEXED"
)

// NewCatalogSyncCompleted is emitted after a forced sync refreshed the raw
// catalog caches.
func NewCatalogSyncCompleted(totalFormations, totalSessions int) Event {
	return BaseEvent{
		Type: TypeCatalogSyncCompleted,
		Data: map[string]interface{}{
			"total_formations": totalFormations,
			"total_sessions":   totalSessions,
		},
		OccurredAt: time.Now(),
	}
}

// NewCatalogIndexed is emitted after a full (re)index run.
func NewCatalogIndexed(formationsIndexed, sessionsIndexed int) Event {
	return BaseEvent{
		Type: TypeCatalogIndexed,
		Data: map[string]interface{}{
			"formations_indexed": formationsIndexed,
			"sessions_indexed":   sessionsIndexed,
		},
		OccurredAt: time.Now(),
	}
}
