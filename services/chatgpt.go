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

// ChatGPTProvider talks to an OpenAI-compatible chat completions API
type ChatGPTProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// ChatGPTRequest represents a request to the chat completions API
type ChatGPTRequest struct {
	Model          string                 `json:"model"`
	Messages       []ChatGPTMessage       `json:"messages"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	Temperature    float64                `json:"temperature,omitempty"`
	ResponseFormat *ChatGPTResponseFormat `json:"response_format,omitempty"`
}

// ChatGPTResponseFormat forces JSON output for profile requests
type ChatGPTResponseFormat struct {
	Type string `json:"type"`
}

// ChatGPTMessage represents a message in the ChatGPT format
type ChatGPTMessage struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// ChatGPTResponse represents a response from the chat completions API
type ChatGPTResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewChatGPTProvider creates a provider for the given endpoint and model
func NewChatGPTProvider(apiKey, baseURL, model string, client *http.Client) *ChatGPTProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ChatGPTProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: client,
	}
}

// Name and Model identify the backend in logs and status output
func (c *ChatGPTProvider) Name() string  { return string(models.KindOpenAI) }
func (c *ChatGPTProvider) Model() string { return c.model }

// Available reports whether an API key is configured
func (c *ChatGPTProvider) Available() bool {
	return c.apiKey != ""
}

// GenerateText returns a conversational reply
func (c *ChatGPTProvider) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	request := ChatGPTRequest{
		Model:       c.model,
		Messages:    c.buildMessages(req.System, req.Prompt, req.History),
		MaxTokens:   400,
		Temperature: 0.7,
	}
	return c.complete(ctx, request)
}

// GenerateProfile asks for a JSON profile and decodes it strictly
func (c *ChatGPTProvider) GenerateProfile(ctx context.Context, req ProfileRequest) (*models.PerfumeProfile, error) {
	request := ChatGPTRequest{
		Model:          c.model,
		Messages:       c.buildMessages(profileSystemPrompt(req.Language), buildProfilePrompt(req), nil),
		MaxTokens:      1024,
		ResponseFormat: &ChatGPTResponseFormat{Type: "json_object"},
	}
	raw, err := c.complete(ctx, request)
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

func (c *ChatGPTProvider) complete(ctx context.Context, request ChatGPTRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: OpenAI API key not set", ErrProviderUnavailable)
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request to ChatGPT: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatGPTResp ChatGPTResponse
	if err := json.Unmarshal(body, &chatGPTResp); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if chatGPTResp.Error != nil {
		return "", fmt.Errorf("ChatGPT API error: %s", chatGPTResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ChatGPT API returned status %d", resp.StatusCode)
	}
	if len(chatGPTResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from ChatGPT")
	}

	content := cleanLLMResponse(chatGPTResp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// buildMessages constructs the messages array: system, recent history, then the prompt
func (c *ChatGPTProvider) buildMessages(system, prompt string, history []models.ChatMessage) []ChatGPTMessage {
	var messages []ChatGPTMessage
	if system != "" {
		messages = append(messages, ChatGPTMessage{Role: "system", Content: system})
	}
	for _, msg := range recentHistory(history) {
		role := models.RoleUser
		if msg.Role == models.RoleAssistant {
			role = models.RoleAssistant
		}
		messages = append(messages, ChatGPTMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, ChatGPTMessage{Role: models.RoleUser, Content: prompt})
	return messages
}
