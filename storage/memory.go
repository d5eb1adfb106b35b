package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"aromasens/models"
)

// MemStore keeps every record in process memory
type MemStore struct {
	mu              sync.RWMutex
	perfumes        map[int64]models.Perfume
	sessions        map[int64]models.ChatSession
	recommendations map[int64]models.Recommendation

	nextPerfumeID        int64
	nextSessionID        int64
	nextRecommendationID int64
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		perfumes:             make(map[int64]models.Perfume),
		sessions:             make(map[int64]models.ChatSession),
		recommendations:      make(map[int64]models.Recommendation),
		nextPerfumeID:        1,
		nextSessionID:        1,
		nextRecommendationID: 1,
	}
}

// ListPerfumesByGender returns the perfumes of gender ordered by id
func (m *MemStore) ListPerfumesByGender(ctx context.Context, gender string) ([]models.Perfume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Perfume{}
	for _, p := range m.perfumes {
		if p.Gender == gender {
			out = append(out, clonePerfume(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetPerfume returns ErrNotFound for an unknown id
func (m *MemStore) GetPerfume(ctx context.Context, id int64) (*models.Perfume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.perfumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePerfume(p)
	return &p, nil
}

// CreatePerfume stores perfume under the next id
func (m *MemStore) CreatePerfume(ctx context.Context, perfume models.Perfume) (*models.Perfume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	perfume = clonePerfume(perfume)
	perfume.ID = m.nextPerfumeID
	m.nextPerfumeID++
	m.perfumes[perfume.ID] = perfume

	out := clonePerfume(perfume)
	return &out, nil
}

// CountPerfumes returns the catalog size
func (m *MemStore) CountPerfumes(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.perfumes)), nil
}

// CreateChatSession stores session under the next id
func (m *MemStore) CreateChatSession(ctx context.Context, session models.ChatSession) (*models.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.ID = m.nextSessionID
	m.nextSessionID++
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	m.sessions[session.ID] = session
	return &session, nil
}

// GetChatSession returns ErrNotFound for an unknown id
func (m *MemStore) GetChatSession(ctx context.Context, id int64) (*models.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// CreateRecommendation stores rec under the next id
func (m *MemStore) CreateRecommendation(ctx context.Context, rec models.Recommendation) (*models.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextRecommendationID
	m.nextRecommendationID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.recommendations[rec.ID] = rec
	return &rec, nil
}

// ListRecommendationsBySession returns the session's recommendations oldest first
func (m *MemStore) ListRecommendationsBySession(ctx context.Context, sessionID int64) ([]models.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Recommendation{}
	for _, r := range m.recommendations {
		if r.ChatSessionID == sessionID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close is a no-op
func (m *MemStore) Close() error { return nil }

func clonePerfume(p models.Perfume) models.Perfume {
	p.Notes = append([]string(nil), p.Notes...)
	p.Occasions = append([]string(nil), p.Occasions...)
	p.ProfileTags = append([]string(nil), p.ProfileTags...)
	return p
}
