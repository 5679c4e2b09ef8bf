// Package notifier turns new alerts into desktop and Apprise notifications.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prismanotify/prismanotify/internal/config"
	"github.com/prismanotify/prismanotify/internal/types"
)

// Message is a rendered notification
type Message struct {
	Title   string
	Body    string
	Icon    string
	AppName string
	Sticky  bool
	Urgency string
}

// Sink delivers a message to one destination
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Notifier fans one alert out to every configured sink
type Notifier struct {
	sinks  []Sink
	base   Message
	logger zerolog.Logger
}

// NewNotifier creates a notifier with the sinks enabled in cfg
func NewNotifier(cfg config.NotifyConfig, logger zerolog.Logger) *Notifier {
	var sinks []Sink
	if cfg.Desktop {
		sinks = append(sinks, NewDesktopSink(nil, logger))
	}
	if cfg.Apprise.URL != "" {
		sinks = append(sinks, NewAppriseSink(cfg.Apprise, 10*time.Second, logger))
	}
	return NewWithSinks(cfg, logger, sinks...)
}

// NewWithSinks creates a notifier delivering to the given sinks only
func NewWithSinks(cfg config.NotifyConfig, logger zerolog.Logger, sinks ...Sink) *Notifier {
	return &Notifier{
		sinks: sinks,
		base: Message{
			Icon:    cfg.Icon,
			AppName: cfg.AppName,
			Sticky:  cfg.Sticky,
			Urgency: cfg.Urgency,
		},
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

// Sinks returns the names of the active sinks
func (n *Notifier) Sinks() []string {
	names := make([]string, 0, len(n.sinks))
	for _, s := range n.sinks {
		names = append(names, s.Name())
	}
	return names
}

// SendAlert delivers alert to every sink. All sinks are attempted; the
// returned error joins the failures.
func (n *Notifier) SendAlert(ctx context.Context, alert types.Alert, policyName string) error {
	if len(n.sinks) == 0 {
		n.logger.Warn().
			Str("alert_id", alert.ID).
			Msg("No notification sink enabled, dropping alert")
		return nil
	}

	msg := n.formatMessage(alert, policyName)

	var errs []error
	for _, sink := range n.sinks {
		if err := sink.Send(ctx, msg); err != nil {
			n.logger.Error().
				Err(err).
				Str("sink", sink.Name()).
				Str("alert_id", alert.ID).
				Msg("Failed to send notification")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		n.logger.Info().
			Str("sink", sink.Name()).
			Str("alert_id", alert.ID).
			Msg("Notification sent")
	}
	return errors.Join(errs...)
}

// formatMessage renders an alert into a notification
func (n *Notifier) formatMessage(alert types.Alert, policyName string) Message {
	if policyName == "" {
		policyName = alert.PolicyID
	}

	res := alert.Resource
	var body strings.Builder
	fmt.Fprintf(&body, "Alert %s (%s)", alert.ID, alert.Status)
	if alert.Reason != "" {
		fmt.Fprintf(&body, ", reason %s", alert.Reason)
	}
	body.WriteString("\n")

	name := res.Name
	if name == "" {
		name = res.ID
	}
	if name != "" {
		fmt.Fprintf(&body, "Resource: %s", name)
		if res.ResourceType != "" {
			fmt.Fprintf(&body, " [%s]", res.ResourceType)
		}
		body.WriteString("\n")
	}
	if res.Details != nil {
		if summary := res.Details.Summary(); summary != "" {
			fmt.Fprintf(&body, "Details: %s\n", summary)
		}
	}

	location := make([]string, 0, 3)
	if res.CloudType != "" {
		location = append(location, strings.ToUpper(string(res.CloudType)))
	}
	if res.Account != "" {
		location = append(location, res.Account)
	}
	if res.Region != "" {
		location = append(location, res.Region)
	}
	if len(location) > 0 {
		fmt.Fprintf(&body, "Cloud: %s\n", strings.Join(location, " / "))
	}

	if t := alert.FirstSeenAt(); !t.IsZero() {
		fmt.Fprintf(&body, "First seen: %s\n", t.Format(time.RFC3339))
	}
	if t := alert.LastSeenAt(); !t.IsZero() {
		fmt.Fprintf(&body, "Last seen: %s\n", t.Format(time.RFC3339))
	}
	if res.URL != "" {
		fmt.Fprintf(&body, "%s\n", res.URL)
	}

	msg := n.base
	msg.Title = fmt.Sprintf("Prisma Cloud Alert: %s", policyName)
	msg.Body = strings.TrimRight(body.String(), "\n")
	return msg
}
