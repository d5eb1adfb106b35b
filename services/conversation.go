package services

import (
	"context"
	"strings"

	"aromasens/logger"
	"aromasens/models"
)

// textGenerator is what the conversation needs from the AI layer
type textGenerator interface {
	GenerateText(ctx context.Context, req TextRequest, id models.ProviderID) (string, error)
}

// ConversationEngine drives the fixed question sequence.
// It holds no per-conversation state; every call carries the step it answers.
type ConversationEngine struct {
	log *logger.Logger
	ai  textGenerator
}

// NewConversationEngine creates an engine that asks ai for the question wording
func NewConversationEngine(log *logger.Logger, ai textGenerator) *ConversationEngine {
	return &ConversationEngine{log: log.With("service", "ConversationEngine"), ai: ai}
}

// StartInput opens a conversation for a validated gender
type StartInput struct {
	Gender   string
	Settings models.Settings
}

// AdvanceInput carries one visitor answer. CurrentStep is the step being answered.
type AdvanceInput struct {
	Message     string
	Gender      string
	CurrentStep int
	History     []models.ChatMessage
	Settings    models.Settings
}

// Start opens a conversation at the age question
func (e *ConversationEngine) Start(ctx context.Context, in StartInput) (*models.ChatResponse, error) {
	if !models.ValidGender(in.Gender) {
		return nil, ErrInvalidGender
	}

	lang := in.Settings.Language
	message, err := e.ai.GenerateText(ctx, TextRequest{Prompt: buildStartPrompt(in.Gender, lang)}, in.Settings.Model)
	if err != nil {
		e.log.Warn("start: AI reply failed, using canned opening", "gender", in.Gender, "provider", in.Settings.Model, "error", err)
		message = degradedStart(lang)
	}

	return &models.ChatResponse{
		Message: message,
		Step:    models.StepPtr(models.StepAge),
		Speak:   in.Settings.TTSEnabled,
	}, nil
}

// Advance turns the answer to CurrentStep into the next question.
// Advancing from StepComplete yields the fixed completion response without
// calling a provider, however many times it is repeated.
func (e *ConversationEngine) Advance(ctx context.Context, in AdvanceInput) (*models.ChatResponse, error) {
	if !models.ValidGender(in.Gender) {
		return nil, ErrInvalidGender
	}
	if in.CurrentStep < int(models.StepAge) || in.CurrentStep > int(models.StepComplete) {
		return nil, ErrInvalidStep
	}

	lang := in.Settings.Language
	current := models.ConversationStep(in.CurrentStep)
	next := current + 1

	if next > models.StepComplete {
		return &models.ChatResponse{
			Message:    completionMessage(lang),
			Step:       models.StepPtr(next.Normalize()),
			IsComplete: true,
			Speak:      in.Settings.TTSEnabled,
		}, nil
	}

	answer := strings.TrimSpace(in.Message)
	if answer == "" {
		return nil, ErrEmptyMessage
	}

	req := TextRequest{
		Prompt:  buildStepPrompt(in.Gender, answer, next, lang),
		History: recentHistory(in.History),
	}
	message, err := e.ai.GenerateText(ctx, req, in.Settings.Model)
	if err != nil {
		e.log.Warn("advance: AI reply failed, using canned question", "step", int(next), "provider", in.Settings.Model, "error", err)
		message = degradedStep(next, lang)
	}

	return &models.ChatResponse{
		Message:        message,
		QuickResponses: QuickReplies(next, lang),
		Step:           models.StepPtr(next),
		Speak:          in.Settings.TTSEnabled,
	}, nil
}
