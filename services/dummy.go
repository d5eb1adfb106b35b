package services

import (
	"context"
	"fmt"
	"strings"

	"aromasens/models"
)

// DummyProvider answers deterministically without any network access.
// Useful for offline runs and demos.
type DummyProvider struct{}

// NewDummyProvider returns the offline backend
func NewDummyProvider() *DummyProvider { return &DummyProvider{} }

// Name, Model and Available describe a backend that is always up
func (d *DummyProvider) Name() string    { return string(models.KindDummy) }
func (d *DummyProvider) Model() string   { return "canned" }
func (d *DummyProvider) Available() bool { return true }

// GenerateText replies with the task paragraph of the prompt, which
// precedes the closing tone instruction
func (d *DummyProvider) GenerateText(_ context.Context, req TextRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	paragraphs := strings.Split(prompt, "\n\n")
	if len(paragraphs) < 2 {
		return prompt, nil
	}
	return strings.TrimSpace(paragraphs[len(paragraphs)-2]), nil
}

// GenerateProfile recommends the best ranked candidate
func (d *DummyProvider) GenerateProfile(_ context.Context, req ProfileRequest) (*models.PerfumeProfile, error) {
	id := int64(1)
	name := ""
	if len(req.Candidates) > 0 {
		id = req.Candidates[0].ID
		name = req.Candidates[0].Name
	}
	prefs := req.Preferences

	if req.Language == models.LanguageEN {
		return &models.PerfumeProfile{
			PsychologicalProfile: fmt.Sprintf("A %s-year-old with %s experience who enjoys %s scents for %s.",
				prefs.Age, prefs.Experience, prefs.Preferences, prefs.Occasion),
			RecommendedPerfumeID: id,
			RecommendationReason: fmt.Sprintf("✨ **%s** matches your taste for %s.", name, prefs.Preferences),
		}, nil
	}
	return &models.PerfumeProfile{
		PsychologicalProfile: fmt.Sprintf("Persona de %s años con experiencia %s que disfruta aromas %s para %s.",
			prefs.Age, prefs.Experience, prefs.Preferences, prefs.Occasion),
		RecommendedPerfumeID: id,
		RecommendationReason: fmt.Sprintf("✨ **%s** encaja con tu gusto por lo %s.", name, prefs.Preferences),
	}, nil
}
