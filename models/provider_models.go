package models

import "strings"

// ProviderID names one of the three interchangeable LLM slots
type ProviderID string

const (
	ProviderPrimary   ProviderID = "primary"
	ProviderSecondary ProviderID = "secondary"
	ProviderTertiary  ProviderID = "tertiary"
)

// ProviderIDs lists the slots in lookup order
var ProviderIDs = []ProviderID{ProviderPrimary, ProviderSecondary, ProviderTertiary}

// ParseProviderID returns the slot named by s, or false when s names none
func ParseProviderID(s string) (ProviderID, bool) {
	id := ProviderID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ProviderIDs {
		if id == known {
			return id, true
		}
	}
	return "", false
}

// ProviderKind names a concrete backend implementation
type ProviderKind string

const (
	KindOpenAI    ProviderKind = "openai"
	KindAnthropic ProviderKind = "anthropic"
	KindOllama    ProviderKind = "ollama"
	KindArk       ProviderKind = "ark"
	KindDummy     ProviderKind = "dummy"
)

// Language selects prompt wording and canned texts
type Language string

const (
	LanguageES Language = "es"
	LanguageEN Language = "en"
)

// ParseLanguage falls back to def for anything but "es" or "en"
func ParseLanguage(s string, def Language) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageES:
		return LanguageES
	case LanguageEN:
		return LanguageEN
	}
	return def
}

// Settings is the per-conversation capability configuration
type Settings struct {
	Model      ProviderID `json:"model"`
	Language   Language   `json:"language"`
	TTSEnabled bool       `json:"ttsEnabled"`
}
