package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"aromasens/models"
)

type perfumeRow struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	Name        string
	Brand       string
	Description string
	Gender      string `gorm:"index"`
	ImageURL    string
	Notes       datatypes.JSONSlice[string]
	Occasions   datatypes.JSONSlice[string]
	ProfileTags datatypes.JSONSlice[string]
}

func (perfumeRow) TableName() string { return "perfumes" }

type chatSessionRow struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	UserID      *int64
	Gender      string
	Preferences datatypes.JSONType[models.ChatPreferences]
	CreatedAt   time.Time
}

func (chatSessionRow) TableName() string { return "chat_sessions" }

type recommendationRow struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	ChatSessionID int64 `gorm:"index;not null"`
	PerfumeID     int64 `gorm:"not null"`
	Reason        string
	CreatedAt     time.Time
}

func (recommendationRow) TableName() string { return "recommendations" }

// SQLStore persists records through gorm on SQLite
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at dsn and migrates the schema
func OpenSQLite(dsn string) (*SQLStore, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", dsn, err)
	}
	return NewSQLStore(db)
}

// NewSQLStore wraps an existing gorm handle
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&perfumeRow{}, &chatSessionRow{}, &recommendationRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// ListPerfumesByGender returns the perfumes of gender ordered by id
func (s *SQLStore) ListPerfumesByGender(ctx context.Context, gender string) ([]models.Perfume, error) {
	var rows []perfumeRow
	if err := s.db.WithContext(ctx).Where("gender = ?", gender).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list perfumes: %w", err)
	}
	out := make([]models.Perfume, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// GetPerfume maps gorm.ErrRecordNotFound to ErrNotFound
func (s *SQLStore) GetPerfume(ctx context.Context, id int64) (*models.Perfume, error) {
	var row perfumeRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get perfume %d: %w", id, err)
	}
	p := row.toModel()
	return &p, nil
}

// CreatePerfume inserts perfume and returns it with its id
func (s *SQLStore) CreatePerfume(ctx context.Context, perfume models.Perfume) (*models.Perfume, error) {
	row := perfumeRow{
		Name:        perfume.Name,
		Brand:       perfume.Brand,
		Description: perfume.Description,
		Gender:      perfume.Gender,
		ImageURL:    perfume.ImageURL,
		Notes:       datatypes.JSONSlice[string](perfume.Notes),
		Occasions:   datatypes.JSONSlice[string](perfume.Occasions),
		ProfileTags: datatypes.JSONSlice[string](perfume.ProfileTags),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create perfume: %w", err)
	}
	p := row.toModel()
	return &p, nil
}

// CountPerfumes returns the catalog size
func (s *SQLStore) CountPerfumes(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&perfumeRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count perfumes: %w", err)
	}
	return n, nil
}

// CreateChatSession inserts session, preferences stored as JSON
func (s *SQLStore) CreateChatSession(ctx context.Context, session models.ChatSession) (*models.ChatSession, error) {
	row := chatSessionRow{
		UserID:      session.UserID,
		Gender:      session.Gender,
		Preferences: datatypes.NewJSONType(session.Preferences),
		CreatedAt:   session.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

// GetChatSession maps gorm.ErrRecordNotFound to ErrNotFound
func (s *SQLStore) GetChatSession(ctx context.Context, id int64) (*models.ChatSession, error) {
	var row chatSessionRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session %d: %w", id, err)
	}
	out := row.toModel()
	return &out, nil
}

// CreateRecommendation inserts rec and returns it with its id
func (s *SQLStore) CreateRecommendation(ctx context.Context, rec models.Recommendation) (*models.Recommendation, error) {
	row := recommendationRow{
		ChatSessionID: rec.ChatSessionID,
		PerfumeID:     rec.PerfumeID,
		Reason:        rec.Reason,
		CreatedAt:     rec.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create recommendation: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

// ListRecommendationsBySession returns the session's recommendations oldest first
func (s *SQLStore) ListRecommendationsBySession(ctx context.Context, sessionID int64) ([]models.Recommendation, error) {
	var rows []recommendationRow
	if err := s.db.WithContext(ctx).Where("chat_session_id = ?", sessionID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	out := make([]models.Recommendation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Close closes the underlying database handle
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r perfumeRow) toModel() models.Perfume {
	return models.Perfume{
		ID:          r.ID,
		Name:        r.Name,
		Brand:       r.Brand,
		Description: r.Description,
		Gender:      r.Gender,
		ImageURL:    r.ImageURL,
		Notes:       []string(r.Notes),
		Occasions:   []string(r.Occasions),
		ProfileTags: []string(r.ProfileTags),
	}
}

func (r chatSessionRow) toModel() models.ChatSession {
	return models.ChatSession{
		ID:          r.ID,
		UserID:      r.UserID,
		Gender:      r.Gender,
		Preferences: r.Preferences.Data(),
		CreatedAt:   r.CreatedAt,
	}
}

func (r recommendationRow) toModel() models.Recommendation {
	return models.Recommendation{
		ID:            r.ID,
		ChatSessionID: r.ChatSessionID,
		PerfumeID:     r.PerfumeID,
		Reason:        r.Reason,
		CreatedAt:     r.CreatedAt,
	}
}
