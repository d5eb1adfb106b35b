// Package storage persists the perfume catalog, chat sessions and recommendations.
package storage

import (
	"context"
	"errors"

	"aromasens/models"
)

// ErrNotFound is returned when a record id does not exist
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator. Records are append-only;
// implementations must be safe for concurrent use and allocate ids atomically.
type Store interface {
	ListPerfumesByGender(ctx context.Context, gender string) ([]models.Perfume, error)
	GetPerfume(ctx context.Context, id int64) (*models.Perfume, error)
	CreatePerfume(ctx context.Context, perfume models.Perfume) (*models.Perfume, error)
	CountPerfumes(ctx context.Context) (int64, error)

	CreateChatSession(ctx context.Context, session models.ChatSession) (*models.ChatSession, error)
	GetChatSession(ctx context.Context, id int64) (*models.ChatSession, error)

	CreateRecommendation(ctx context.Context, rec models.Recommendation) (*models.Recommendation, error)
	ListRecommendationsBySession(ctx context.Context, sessionID int64) ([]models.Recommendation, error)

	Close() error
}
