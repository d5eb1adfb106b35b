package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aromasens/models"
)

// OllamaProvider handles communication with a local Ollama server
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client

	// availabilityTimeout bounds the tags request made by Available
	availabilityTimeout time.Duration
}

// OllamaRequest represents a request to the Ollama generate API
type OllamaRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system,omitempty"`
	Prompt  string                 `json:"prompt"`
	Format  string                 `json:"format,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// OllamaResponse represents a response from the Ollama generate API
type OllamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaProvider creates a provider for a local model
func NewOllamaProvider(baseURL, model string, client *http.Client) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaProvider{
		baseURL:             strings.TrimRight(baseURL, "/"),
		model:               model,
		httpClient:          client,
		availabilityTimeout: 2 * time.Second,
	}
}

// Name and Model identify the backend in logs and status output
func (l *OllamaProvider) Name() string  { return string(models.KindOllama) }
func (l *OllamaProvider) Model() string { return l.model }

// Available pings the tags endpoint. A server that does not answer within
// availabilityTimeout counts as down.
func (l *OllamaProvider) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), l.availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GenerateText folds history into the prompt and calls the generate endpoint
func (l *OllamaProvider) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	return l.generate(ctx, OllamaRequest{
		Model:  l.model,
		System: req.System,
		Prompt: l.buildPrompt(req.Prompt, req.History),
		Options: map[string]interface{}{
			"temperature":    0.7,
			"top_p":          0.9,
			"repeat_penalty": 1.1,
		},
	})
}

// GenerateProfile requests JSON format output and decodes it
func (l *OllamaProvider) GenerateProfile(ctx context.Context, req ProfileRequest) (*models.PerfumeProfile, error) {
	raw, err := l.generate(ctx, OllamaRequest{
		Model:  l.model,
		System: profileSystemPrompt(req.Language),
		Prompt: buildProfilePrompt(req),
		Format: "json",
	})
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

func (l *OllamaProvider) generate(ctx context.Context, request OllamaRequest) (string, error) {
	request.Stream = false
	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request to LLM: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, string(body))
	}

	var ollamaResp OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if ollamaResp.Error != "" {
		return "", fmt.Errorf("LLM returned error: %s", ollamaResp.Error)
	}

	content := cleanLLMResponse(ollamaResp.Response)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// buildPrompt folds recent history into a single completion prompt
func (l *OllamaProvider) buildPrompt(prompt string, history []models.ChatMessage) string {
	history = recentHistory(history)
	if len(history) == 0 {
		return prompt
	}

	var b bytes.Buffer
	b.WriteString("Previous conversation:\n")
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			fmt.Fprintf(&b, "Human: %s\n", msg.Content)
		case models.RoleAssistant:
			fmt.Fprintf(&b, "Assistant: %s\n", msg.Content)
		}
	}
	b.WriteString("\n")
	b.WriteString(prompt)
	return b.String()
}
