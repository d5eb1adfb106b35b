package models

import "strings"

// ConversationStep is the ordinal position in the fixed question sequence
type ConversationStep int

const (
	StepAge         ConversationStep = 0
	StepExperience  ConversationStep = 1
	StepOccasion    ConversationStep = 2
	StepPreferences ConversationStep = 3
	StepComplete    ConversationStep = 4
)

// Normalize clamps steps past the end to StepComplete
func (s ConversationStep) Normalize() ConversationStep {
	if s > StepComplete {
		return StepComplete
	}
	return s
}

// Field returns the UserResponses key answered while this step's question was open
func (s ConversationStep) Field() string {
	switch s {
	case StepAge:
		return "age"
	case StepExperience:
		return "experience"
	case StepOccasion:
		return "occasion"
	case StepPreferences:
		return "preferences"
	}
	return ""
}

// Accepted gender values
const (
	GenderFeminine  = "femenino"
	GenderMasculine = "masculino"
)

// ValidGender reports whether g is one of the two accepted gender values
func ValidGender(g string) bool {
	return g == GenderFeminine || g == GenderMasculine
}

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in the conversation transcript
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatPreferences holds the four stepped answers required for profiling
type ChatPreferences struct {
	Age         string `json:"age"`
	Experience  string `json:"experience"`
	Occasion    string `json:"occasion"`
	Preferences string `json:"preferences"`
}

// Complete reports whether all four answers are non-empty
func (p ChatPreferences) Complete() bool {
	return len(p.Missing()) == 0
}

// Missing lists the field names of empty answers in question order
func (p ChatPreferences) Missing() []string {
	var missing []string
	for s := StepAge; s < StepComplete; s++ {
		if strings.TrimSpace(*p.answer(s)) == "" {
			missing = append(missing, s.Field())
		}
	}
	return missing
}

// answer returns the field written while step s was open, nil past the last question
func (p *ChatPreferences) answer(s ConversationStep) *string {
	switch s {
	case StepAge:
		return &p.Age
	case StepExperience:
		return &p.Experience
	case StepOccasion:
		return &p.Occasion
	case StepPreferences:
		return &p.Preferences
	}
	return nil
}

// UserResponses is the client-held answer sheet for one conversation.
// Gender is set at start; the other fields are written one per answered step.
type UserResponses struct {
	Gender string `json:"gender"`
	ChatPreferences
}

// Record stores answer under the field of the step that was just answered.
// Answers to StepComplete or later are dropped.
func (u *UserResponses) Record(answered ConversationStep, answer string) {
	if field := u.answer(answered); field != nil {
		*field = answer
	}
}

// StartChatRequest represents the start operation input
type StartChatRequest struct {
	Gender string `json:"gender"`
	SettingsRequest
}

// SendMessageRequest represents the advance operation input.
// Older clients send "step", newer ones "currentStep".
type SendMessageRequest struct {
	Message     string        `json:"message"`
	Gender      string        `json:"gender"`
	CurrentStep *int          `json:"currentStep,omitempty"`
	Step        *int          `json:"step,omitempty"`
	History     []ChatMessage `json:"history,omitempty"`
	SettingsRequest
}

// StepValue returns the supplied step, preferring currentStep
func (r SendMessageRequest) StepValue() (int, bool) {
	if r.CurrentStep != nil {
		return *r.CurrentStep, true
	}
	if r.Step != nil {
		return *r.Step, true
	}
	return 0, false
}

// RecommendationRequest represents the recommend operation input
type RecommendationRequest struct {
	Gender string `json:"gender"`
	ChatPreferences
	SettingsRequest
}

// SettingsRequest carries the optional per-request conversation settings
type SettingsRequest struct {
	ProviderID string `json:"providerId,omitempty"`
	Language   string `json:"language,omitempty"`
	TTSEnabled bool   `json:"ttsEnabled,omitempty"`
}

// ChatResponse is the single envelope returned by all conversation endpoints
type ChatResponse struct {
	Message        string                 `json:"message"`
	QuickResponses []string               `json:"quickResponses,omitempty"`
	Step           *int                   `json:"step,omitempty"`
	IsComplete     bool                   `json:"isComplete,omitempty"`
	Recommendation *PerfumeRecommendation `json:"recommendation,omitempty"`
	SessionID      string                 `json:"sessionId,omitempty"`
	Profile        string                 `json:"profile,omitempty"`
	Speak          bool                   `json:"speak,omitempty"`
}

// StepPtr is a helper for filling ChatResponse.Step
func StepPtr(s ConversationStep) *int {
	v := int(s)
	return &v
}

// PerfumeRecommendation is the display payload of a recommended perfume
type PerfumeRecommendation struct {
	PerfumeID   int64    `json:"perfumeId"`
	Brand       string   `json:"brand"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Notes       []string `json:"notes"`
	Occasions   string   `json:"occasions"`
}
