package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aromasens/logger"
	"aromasens/models"
	"aromasens/storage"
)

// profileGenerator is what the recommender needs from the AI layer
type profileGenerator interface {
	GenerateProfile(ctx context.Context, req ProfileRequest, id models.ProviderID) (*models.PerfumeProfile, error)
}

// catalogRanker orders candidates by affinity; optional
type catalogRanker interface {
	Rank(ctx context.Context, gender string, prefs models.ChatPreferences, perfumes []models.Perfume) ([]models.Perfume, error)
}

// Recommender turns complete answers into a stored, catalog-backed recommendation
type Recommender struct {
	log      *logger.Logger
	store    storage.Store
	ai       profileGenerator
	ranker   catalogRanker
	notifier Notifier
}

// NewRecommender wires the recommendation pipeline. ranker and notifier may be nil.
func NewRecommender(log *logger.Logger, store storage.Store, ai profileGenerator, ranker catalogRanker, notifier Notifier) *Recommender {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Recommender{
		log:      log.With("service", "Recommender"),
		store:    store,
		ai:       ai,
		ranker:   ranker,
		notifier: notifier,
	}
}

// RecommendInput is a validated recommend request
type RecommendInput struct {
	Gender      string
	Preferences models.ChatPreferences
	Settings    models.Settings
}

// Recommend generates a profile, resolves it against the gender's catalog,
// persists the session and recommendation, and composes the final response.
// AI failures are returned to the caller; nothing is fabricated.
func (r *Recommender) Recommend(ctx context.Context, in RecommendInput) (_ *models.ChatResponse, err error) {
	if !models.ValidGender(in.Gender) {
		return nil, ErrInvalidGender
	}
	if !in.Preferences.Complete() {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompletePreferences, strings.Join(in.Preferences.Missing(), ", "))
	}

	ctx, span := tracer.Start(ctx, "recommendation.generate", trace.WithAttributes(
		attribute.String("gender", in.Gender),
		attribute.String("provider.id", string(in.Settings.Model)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	perfumes, err := r.store.ListPerfumesByGender(ctx, in.Gender)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(perfumes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, in.Gender)
	}

	candidates := perfumes
	if r.ranker != nil {
		ranked, rerr := r.ranker.Rank(ctx, in.Gender, in.Preferences, perfumes)
		if rerr != nil {
			r.log.Warn("catalog ranking failed, using catalog order", "gender", in.Gender, "error", rerr)
		} else {
			candidates = ranked
		}
	}

	profile, err := r.ai.GenerateProfile(ctx, ProfileRequest{
		Gender:      in.Gender,
		Preferences: in.Preferences,
		Candidates:  candidates,
		Language:    in.Settings.Language,
	}, in.Settings.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile: %w", err)
	}

	perfumeID := resolvePerfumeID(profile.RecommendedPerfumeID, perfumes)
	if perfumeID != profile.RecommendedPerfumeID {
		r.log.Warn("recommended perfume not in catalog, substituting first",
			"gender", in.Gender, "recommended", profile.RecommendedPerfumeID, "substitute", perfumeID)
	}

	perfume, err := r.store.GetPerfume(ctx, perfumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load perfume %d: %w", perfumeID, err)
	}

	session, err := r.store.CreateChatSession(ctx, models.ChatSession{
		Gender:      in.Gender,
		Preferences: in.Preferences,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist chat session: %w", err)
	}
	rec, err := r.store.CreateRecommendation(ctx, models.Recommendation{
		ChatSessionID: session.ID,
		PerfumeID:     perfume.ID,
		Reason:        profile.RecommendationReason,
	})
	if err != nil {
		r.log.Error("recommendation write failed, session left without recommendation", "sessionId", session.ID, "error", err)
		return nil, fmt.Errorf("failed to persist recommendation: %w", err)
	}
	span.SetAttributes(attribute.Int64("session.id", session.ID), attribute.Int64("perfume.id", perfume.ID))

	r.notify(ctx, models.RecommendationEvent{
		SessionID:   session.ID,
		Gender:      in.Gender,
		Preferences: in.Preferences,
		PerfumeID:   perfume.ID,
		PerfumeName: perfume.Name,
		Brand:       perfume.Brand,
		Reason:      profile.RecommendationReason,
		Profile:     profile.PsychologicalProfile,
		Language:    in.Settings.Language,
		CreatedAt:   rec.CreatedAt,
	})

	return &models.ChatResponse{
		Message:    recommendationMessage(in.Settings.Language),
		IsComplete: true,
		SessionID:  strconv.FormatInt(session.ID, 10),
		Profile:    profile.PsychologicalProfile,
		Speak:      in.Settings.TTSEnabled,
		Recommendation: &models.PerfumeRecommendation{
			PerfumeID:   perfume.ID,
			Brand:       perfume.Brand,
			Name:        perfume.Name,
			Description: strings.TrimSpace(profile.RecommendationReason + " " + perfume.Description),
			ImageURL:    perfume.ImageURL,
			Notes:       perfume.Notes,
			Occasions:   strings.Join(perfume.Occasions, ", "),
		},
	}, nil
}

// resolvePerfumeID keeps id when it belongs to the catalog, else the catalog's first id
func resolvePerfumeID(id int64, catalog []models.Perfume) int64 {
	for _, p := range catalog {
		if p.ID == id {
			return id
		}
	}
	return catalog[0].ID
}

// notify never fails the request; the webhook is best effort
func (r *Recommender) notify(ctx context.Context, event models.RecommendationEvent) {
	start := time.Now()
	if err := r.notifier.Notify(ctx, event); err != nil {
		r.log.Warn("recommendation notification failed", "notifier", r.notifier.Name(), "sessionId", event.SessionID, "error", err)
		return
	}
	r.log.Debug("recommendation notified", "notifier", r.notifier.Name(), "sessionId", event.SessionID, "duration", time.Since(start).String())
}
