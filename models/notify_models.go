package models

import "time"

// RecommendationEvent is posted to the outbound webhook after a recommendation is stored
type RecommendationEvent struct {
	SessionID   int64           `json:"sessionId"`
	Gender      string          `json:"gender"`
	Preferences ChatPreferences `json:"preferences"`
	PerfumeID   int64           `json:"perfumeId"`
	PerfumeName string          `json:"perfumeName"`
	Brand       string          `json:"brand"`
	Reason      string          `json:"reason"`
	Profile     string          `json:"profile,omitempty"`
	Language    Language        `json:"language"`
	CreatedAt   time.Time       `json:"createdAt"`
}
