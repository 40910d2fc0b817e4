// Package analytics collects search events and publishes them to Kafka
// without ever blocking the query path.
package analytics

import "time"

type EventType string

const (
	EventSearch      EventType = "search"
	EventQuickSearch EventType = "quick_search"
	EventBlocked     EventType = "blocked_query"
	EventZeroResult  EventType = "zero_result"
	EventIndexBuild  EventType = "index_build"
)

// SearchEvent describes one query against the card index.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms,omitempty"`
	Blocked   bool      `json:"blocked"`
	Returned  int       `json:"returned"`
	TopCardID string    `json:"top_card_id,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// IndexBuildEvent describes one index rebuild.
type IndexBuildEvent struct {
	Type      EventType `json:"type"`
	Cards     int       `json:"cards"`
	Terms     int       `json:"terms"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}
