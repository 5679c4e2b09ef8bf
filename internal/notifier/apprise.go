package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prismanotify/prismanotify/internal/config"
	"github.com/prismanotify/prismanotify/internal/version"
)

// AppriseSink posts notifications to an Apprise API server
type AppriseSink struct {
	url        string
	key        string
	notifyType string
	client     *http.Client
	logger     zerolog.Logger
}

type apprisePayload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Type   string `json:"type"`
	Format string `json:"format"`
}

// NewAppriseSink creates a sink for the Apprise server described by cfg
func NewAppriseSink(cfg config.AppriseConfig, timeout time.Duration, logger zerolog.Logger) *AppriseSink {
	return &AppriseSink{
		url:        strings.TrimRight(cfg.URL, "/"),
		key:        cfg.Key,
		notifyType: cfg.Type,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "apprise").Logger(),
	}
}

func (a *AppriseSink) Name() string { return "apprise" }

// Send posts msg to {url}/notify/{key}
func (a *AppriseSink) Send(ctx context.Context, msg Message) error {
	notifyType := a.notifyType
	if notifyType == "" {
		notifyType = "warning"
	}
	data, err := json.Marshal(apprisePayload{
		Title:  msg.Title,
		Body:   msg.Body,
		Type:   notifyType,
		Format: "text",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	target := fmt.Sprintf("%s/notify/%s", a.url, a.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("apprise API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	a.logger.Debug().
		Str("key", a.key).
		Int("status", resp.StatusCode).
		Msg("Apprise accepted notification")
	return nil
}
