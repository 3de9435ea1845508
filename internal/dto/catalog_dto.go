package dto

import "time"

type SyncStats struct {
	TotalFormations int `json:"total_formations"`
	TotalSessions   int `json:"total_sessions"`
}

type IndexRunStats struct {
	FormationsIndexed int `json:"formations_indexed"`
	SessionsIndexed   int `json:"sessions_indexed"`
	Total             int `json:"total"`
}

type IndexStatsResponse struct {
	FormationsIndexed int64      `json:"formations_indexed"`
	SessionsIndexed   int64      `json:"sessions_indexed"`
	TotalIndexed      int64      `json:"total_indexed"`
	LastUpdated       *time.Time `json:"last_updated"`
}
