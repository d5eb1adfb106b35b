package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aromasens/logger"
	"aromasens/models"
)

var tracer = otel.Tracer("aromasens/services")

// AIService routes text and profile requests to a provider slot and
// retries once on a fixed alternate slot when the selected one fails
type AIService struct {
	log             *logger.Logger
	providers       map[models.ProviderID]Provider
	defaultProvider models.ProviderID
	startTime       time.Time
}

// NewAIService registers providers by slot. defaultProvider must be registered.
func NewAIService(log *logger.Logger, providers map[models.ProviderID]Provider, defaultProvider models.ProviderID) *AIService {
	registered := make(map[models.ProviderID]Provider, len(providers))
	for id, p := range providers {
		if p != nil {
			registered[id] = p
		}
	}
	return &AIService{
		log:             log.With("service", "AIService"),
		providers:       registered,
		defaultProvider: defaultProvider,
		startTime:       time.Now(),
	}
}

// DefaultProvider returns the slot used when a request names none
func (a *AIService) DefaultProvider() models.ProviderID {
	return a.defaultProvider
}

// ResolveProvider maps a client supplied providerId to a registered slot.
// Empty, unknown or unregistered values resolve to the default slot.
func (a *AIService) ResolveProvider(raw string) models.ProviderID {
	if strings.TrimSpace(raw) == "" {
		return a.defaultProvider
	}
	id, ok := models.ParseProviderID(raw)
	if !ok {
		a.log.Warn("unknown providerId, using default", "providerId", raw, "default", a.defaultProvider)
		return a.defaultProvider
	}
	if _, registered := a.providers[id]; !registered {
		a.log.Warn("providerId not configured, using default", "providerId", raw, "default", a.defaultProvider)
		return a.defaultProvider
	}
	return id
}

// fallbackFor is the single alternate slot tried after id fails
func fallbackFor(id models.ProviderID) models.ProviderID {
	if id == models.ProviderPrimary {
		return models.ProviderSecondary
	}
	return models.ProviderPrimary
}

// GenerateText returns free text from the selected slot, falling back once
func (a *AIService) GenerateText(ctx context.Context, req TextRequest, id models.ProviderID) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}

	var out string
	err := a.withFallback(ctx, "ai.generate_text", id, func(ctx context.Context, p Provider) error {
		text, err := p.GenerateText(ctx, req)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

// GenerateProfile returns a validated profile from the selected slot, falling back once
func (a *AIService) GenerateProfile(ctx context.Context, req ProfileRequest, id models.ProviderID) (*models.PerfumeProfile, error) {
	if !req.Preferences.Complete() {
		return nil, ErrIncompletePreferences
	}

	var out *models.PerfumeProfile
	err := a.withFallback(ctx, "ai.generate_profile", id, func(ctx context.Context, p Provider) error {
		profile, err := p.GenerateProfile(ctx, req)
		if err != nil {
			return err
		}
		out = profile
		return nil
	})
	return out, err
}

// withFallback runs call on id and, on failure, once on its alternate.
// When both fail the error from the first attempt is returned.
func (a *AIService) withFallback(ctx context.Context, op string, id models.ProviderID, call func(context.Context, Provider) error) error {
	if id == "" {
		id = a.defaultProvider
	}

	err := a.attempt(ctx, op, id, call)
	if err == nil {
		return nil
	}

	fallback := fallbackFor(id)
	if fallback == id {
		return err
	}
	if _, ok := a.providers[fallback]; !ok {
		a.log.Warn("provider failed, no fallback configured", "op", op, "provider", id, "fallback", fallback, "error", err)
		return err
	}

	a.log.Warn("provider failed, trying fallback", "op", op, "provider", id, "fallback", fallback, "error", err)
	if ferr := a.attempt(ctx, op, fallback, call); ferr != nil {
		a.log.Error("fallback provider also failed", "op", op, "provider", fallback, "error", ferr)
		return err
	}
	return nil
}

func (a *AIService) attempt(ctx context.Context, op string, id models.ProviderID, call func(context.Context, Provider) error) error {
	p, ok := a.providers[id]
	if !ok {
		return ErrProviderUnavailable
	}

	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("provider.id", string(id)),
		attribute.String("provider.kind", p.Name()),
		attribute.String("provider.model", p.Model()),
	))
	defer span.End()

	start := time.Now()
	err := call(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	a.log.Debug("provider call succeeded", "op", op, "provider", id, "kind", p.Name(), "duration", time.Since(start).String())
	return nil
}

// Status reports every registered slot for the health endpoint
func (a *AIService) Status() map[string]interface{} {
	slots := make(map[string]interface{}, len(a.providers))
	for _, id := range models.ProviderIDs {
		p, ok := a.providers[id]
		if !ok {
			continue
		}
		status := "unavailable"
		if p.Available() {
			status = "available"
		}
		slots[string(id)] = map[string]interface{}{
			"kind":   p.Name(),
			"model":  p.Model(),
			"status": status,
		}
	}
	return map[string]interface{}{
		"default": string(a.defaultProvider),
		"uptime":  time.Since(a.startTime).String(),
		"slots":   slots,
	}
}
