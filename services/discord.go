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

	"github.com/bwmarrin/discordgo"

	"aromasens/config"
	"aromasens/logger"
	"aromasens/models"
)

// Notifier forwards a stored recommendation to an outside system
type Notifier interface {
	Name() string
	Notify(ctx context.Context, event models.RecommendationEvent) error
}

// NewNotifier picks the notifier named by the configuration
func NewNotifier(cfg config.NotifierConfig, log *logger.Logger) (Notifier, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Kind {
	case "", "none":
		return NopNotifier{}, nil
	case "http":
		return NewHTTPNotifier(cfg.URL, client), nil
	case "discord":
		return NewDiscordNotifier(cfg.WebhookID, cfg.Token, client, log)
	}
	return nil, fmt.Errorf("unknown notifier kind %q", cfg.Kind)
}

// NopNotifier drops every event
type NopNotifier struct{}

// Name identifies the notifier in logs
func (NopNotifier) Name() string { return "none" }

// Notify does nothing
func (NopNotifier) Notify(context.Context, models.RecommendationEvent) error { return nil }

// HTTPNotifier posts the event as JSON to a generic webhook
type HTTPNotifier struct {
	url        string
	httpClient *http.Client
}

// NewHTTPNotifier posts events to url with client
func NewHTTPNotifier(url string, client *http.Client) *HTTPNotifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPNotifier{url: url, httpClient: client}
}

// Name identifies the notifier in logs
func (h *HTTPNotifier) Name() string { return "http" }

// Notify posts the event and fails on any non-2xx status
func (h *HTTPNotifier) Notify(ctx context.Context, event models.RecommendationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// DiscordNotifier posts an embed through a Discord channel webhook.
// Webhook execution needs no bot login, so the session is never opened.
type DiscordNotifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
	log       *logger.Logger
}

// NewDiscordNotifier creates a notifier for one Discord webhook.
// webhookID and token are both required.
func NewDiscordNotifier(webhookID, token string, client *http.Client, log *logger.Logger) (*DiscordNotifier, error) {
	if webhookID == "" || token == "" {
		return nil, fmt.Errorf("discord notifier needs a webhook id and token")
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	if client != nil {
		session.Client = client
	}
	session.MaxRestRetries = 1
	return &DiscordNotifier{
		session:   session,
		webhookID: webhookID,
		token:     token,
		log:       log.With("service", "DiscordNotifier"),
	}, nil
}

// Name identifies the notifier in logs
func (d *DiscordNotifier) Name() string { return "discord" }

// Notify executes the webhook with one embed summarising the recommendation
func (d *DiscordNotifier) Notify(ctx context.Context, event models.RecommendationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &discordgo.WebhookParams{
		Username: "AROMASENS",
		Embeds:   []*discordgo.MessageEmbed{recommendationEmbed(event)},
	}
	if _, err := d.session.WebhookExecute(d.webhookID, d.token, false, params); err != nil {
		return fmt.Errorf("discord webhook failed: %w", err)
	}
	d.log.Debug("recommendation posted to discord", "sessionId", event.SessionID)
	return nil
}

// Discord rejects embed fields longer than this
const embedFieldLimit = 1024

func recommendationEmbed(event models.RecommendationEvent) *discordgo.MessageEmbed {
	field := func(name, value string, inline bool) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{Name: name, Value: truncate(value, embedFieldLimit), Inline: inline}
	}
	prefs := event.Preferences
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s · %s", event.PerfumeName, event.Brand),
		Description: truncate(event.Reason, 4096),
		Color:       0xB48EAD,
		Timestamp:   event.CreatedAt.UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			field("Session", fmt.Sprintf("%d", event.SessionID), true),
			field("Gender", event.Gender, true),
			field("Age", prefs.Age, true),
			field("Experience", prefs.Experience, false),
			field("Occasion", prefs.Occasion, false),
			field("Preferences", prefs.Preferences, false),
		},
	}
}

// truncate cuts s to at most n runes; Discord counts characters, not bytes
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
