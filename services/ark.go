package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	mdl "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"aromasens/models"
)

// chatGenerator is the slice of eino's chat model the ark backend needs
type chatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...mdl.Option) (*schema.Message, error)
}

// ArkProvider runs completions through an eino ark chat model
type ArkProvider struct {
	model     string
	generator chatGenerator
}

// NewArkProvider builds the eino chat model for the configured endpoint
func NewArkProvider(ctx context.Context, apiKey, baseURL, model string) (*ArkProvider, error) {
	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init ark chat model: %w", err)
	}
	return newArkProvider(model, cm), nil
}

func newArkProvider(model string, g chatGenerator) *ArkProvider {
	return &ArkProvider{model: model, generator: g}
}

// Name and Model identify the backend in logs and status output
func (a *ArkProvider) Name() string  { return string(models.KindArk) }
func (a *ArkProvider) Model() string { return a.model }

// Available reports whether the chat model was built
func (a *ArkProvider) Available() bool {
	return a.generator != nil
}

// GenerateText runs the prompt and history through the eino chat model
func (a *ArkProvider) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	return a.generate(ctx, req.System, req.Prompt, req.History)
}

// GenerateProfile asks the chat model for the profile JSON and decodes it
func (a *ArkProvider) GenerateProfile(ctx context.Context, req ProfileRequest) (*models.PerfumeProfile, error) {
	raw, err := a.generate(ctx, profileSystemPrompt(req.Language), buildProfilePrompt(req), nil)
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

func (a *ArkProvider) generate(ctx context.Context, system, prompt string, history []models.ChatMessage) (string, error) {
	if a.generator == nil {
		return "", fmt.Errorf("%w: ark chat model not initialised", ErrProviderUnavailable)
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	for _, msg := range recentHistory(history) {
		if msg.Role == models.RoleAssistant {
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		} else {
			messages = append(messages, schema.UserMessage(msg.Content))
		}
	}
	messages = append(messages, schema.UserMessage(strings.TrimSpace(prompt)))

	out, err := a.generator.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("ark generate failed: %w", err)
	}
	if out == nil {
		return "", ErrEmptyCompletion
	}
	content := cleanLLMResponse(out.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
