package models

import "time"

// Perfume is a catalog record. Records are immutable once seeded.
type Perfume struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Gender      string   `json:"gender"`
	ImageURL    string   `json:"imageUrl"`
	Notes       []string `json:"notes"`
	Occasions   []string `json:"occasions"`
	ProfileTags []string `json:"profileTags"`
}

// PerfumeProfile is the structured output of profile generation.
// RecommendedPerfumeID is advisory until checked against the catalog.
type PerfumeProfile struct {
	PsychologicalProfile string `json:"psychologicalProfile"`
	RecommendedPerfumeID int64  `json:"recommendedPerfumeId"`
	RecommendationReason string `json:"recommendationReason"`
}

// ChatSession is written once, when a recommendation is generated
type ChatSession struct {
	ID          int64           `json:"id"`
	UserID      *int64          `json:"userId"`
	Gender      string          `json:"gender"`
	Preferences ChatPreferences `json:"preferences"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Recommendation links a session to the perfume chosen for it
type Recommendation struct {
	ID            int64     `json:"id"`
	ChatSessionID int64     `json:"chatSessionId"`
	PerfumeID     int64     `json:"perfumeId"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SessionDetail is the session lookup payload
type SessionDetail struct {
	Session         ChatSession      `json:"session"`
	Recommendations []Recommendation `json:"recommendations"`
}
