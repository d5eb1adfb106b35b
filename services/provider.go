package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aromasens/config"
	"aromasens/models"
)

// Provider is one LLM backend able to produce free text and structured profiles
type Provider interface {
	Name() string
	Model() string
	Available() bool
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateProfile(ctx context.Context, req ProfileRequest) (*models.PerfumeProfile, error)
}

// TextRequest is a single free-text completion
type TextRequest struct {
	System  string
	Prompt  string
	History []models.ChatMessage
}

// ProfileRequest carries everything a backend needs to build the profile prompt
type ProfileRequest struct {
	Gender      string
	Preferences models.ChatPreferences
	Candidates  []models.Perfume
	Language    models.Language
}

// maxHistory limits how many transcript messages are sent as context
const maxHistory = 6

func recentHistory(history []models.ChatMessage) []models.ChatMessage {
	if len(history) > maxHistory {
		return history[len(history)-maxHistory:]
	}
	return history
}

// NewProvider builds the backend for a configured slot
func NewProvider(cfg config.ProviderConfig) (Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Kind {
	case models.KindOpenAI:
		return NewChatGPTProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, client), nil
	case models.KindAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, client), nil
	case models.KindOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, client), nil
	case models.KindArk:
		p, err := NewArkProvider(context.Background(), cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case models.KindDummy:
		return NewDummyProvider(), nil
	}
	return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
}

// decodeProfile parses a backend's JSON answer into a PerfumeProfile.
// Unknown fields and missing text fields are rejected. The id is not checked
// here; the recommender replaces ids outside the catalog.
func decodeProfile(raw string) (*models.PerfumeProfile, error) {
	raw = stripCodeFence(raw)
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var p models.PerfumeProfile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedProfile)
	}
	if strings.TrimSpace(p.PsychologicalProfile) == "" {
		return nil, fmt.Errorf("%w: psychologicalProfile is empty", ErrMalformedProfile)
	}
	if strings.TrimSpace(p.RecommendationReason) == "" {
		return nil, fmt.Errorf("%w: recommendationReason is empty", ErrMalformedProfile)
	}
	return &p, nil
}

// stripCodeFence removes a surrounding ```json fence some models add
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// cleanLLMResponse trims whitespace and wrapping quotes from a completion
func cleanLLMResponse(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
