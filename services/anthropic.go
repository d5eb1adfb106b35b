package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aromasens/models"
)

const anthropicVersion = "2023-06-01"

// AnthropicProvider talks to the Anthropic messages API
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicProvider creates a provider for the given endpoint and model
func NewAnthropicProvider(apiKey, baseURL, model string, client *http.Client) *AnthropicProvider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	if model == "" {
		model = "claude-3-7-sonnet-20250219"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AnthropicProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: client,
	}
}

// Name and Model identify the backend in logs and status output
func (a *AnthropicProvider) Name() string  { return string(models.KindAnthropic) }
func (a *AnthropicProvider) Model() string { return a.model }

// Available reports whether an API key is configured
func (a *AnthropicProvider) Available() bool {
	return a.apiKey != ""
}

// GenerateText sends recent history and the prompt in one messages call
func (a *AnthropicProvider) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	return a.complete(ctx, anthropicRequest{
		Model:     a.model,
		MaxTokens: 1024,
		System:    req.System,
		Messages:  a.buildMessages(req.Prompt, req.History),
	})
}

// GenerateProfile asks for the profile JSON and decodes it
func (a *AnthropicProvider) GenerateProfile(ctx context.Context, req ProfileRequest) (*models.PerfumeProfile, error) {
	raw, err := a.complete(ctx, anthropicRequest{
		Model:     a.model,
		MaxTokens: 1024,
		System:    profileSystemPrompt(req.Language),
		Messages:  a.buildMessages(buildProfilePrompt(req), nil),
	})
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

func (a *AnthropicProvider) complete(ctx context.Context, request anthropicRequest) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("%w: Anthropic API key not set", ErrProviderUnavailable)
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request to Anthropic: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out anthropicResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("Anthropic API error: %s", out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Anthropic API returned status %d", resp.StatusCode)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	content := cleanLLMResponse(text.String())
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// buildMessages keeps roles alternating as the messages API requires
func (a *AnthropicProvider) buildMessages(prompt string, history []models.ChatMessage) []anthropicMessage {
	var messages []anthropicMessage
	for _, msg := range recentHistory(history) {
		role := models.RoleUser
		if msg.Role == models.RoleAssistant {
			role = models.RoleAssistant
		}
		if len(messages) == 0 && role == models.RoleAssistant {
			continue
		}
		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content += "\n" + msg.Content
			continue
		}
		messages = append(messages, anthropicMessage{Role: role, Content: msg.Content})
	}
	if n := len(messages); n > 0 && messages[n-1].Role == models.RoleUser {
		messages[n-1].Content += "\n\n" + prompt
		return messages
	}
	return append(messages, anthropicMessage{Role: models.RoleUser, Content: prompt})
}
