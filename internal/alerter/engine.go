// Package alerter routes new alerts to the notifier and tracks which
// notifications failed.
package alerter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prismanotify/prismanotify/internal/types"
)

// Sender delivers one alert notification
type Sender interface {
	SendAlert(ctx context.Context, alert types.Alert, policyName string) error
}

// Report summarizes one Process call
type Report struct {
	Notified []string
	Failed   []string
}

// Option configures an Engine
type Option func(*Engine)

// WithFailFast makes Process stop at the first failed notification and
// return its error.
func WithFailFast(v bool) Option {
	return func(e *Engine) {
		e.failFast = v
	}
}

// Engine resolves policy names and sends one notification per alert
type Engine struct {
	sender   Sender
	policies types.PolicyNames
	failFast bool
	logger   zerolog.Logger
}

// NewEngine creates a new alert engine
func NewEngine(sender Sender, policies types.PolicyNames, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		sender:   sender,
		policies: policies,
		logger:   logger.With().Str("component", "alerter").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process notifies each alert in order. Failures are recorded in the report
// and processing continues, unless fail-fast is set. A cancelled context
// stops processing with its error.
func (e *Engine) Process(ctx context.Context, alerts []types.Alert) (Report, error) {
	var report Report
	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		policyName := e.policies.Lookup(alert.PolicyID)
		e.logger.Info().
			Str("alert_id", alert.ID).
			Str("policy", policyName).
			Str("resource", alert.Resource.Name).
			Msg("New alert")

		if err := e.sender.SendAlert(ctx, alert, policyName); err != nil {
			report.Failed = append(report.Failed, alert.ID)
			if e.failFast {
				return report, fmt.Errorf("notifying alert %s: %w", alert.ID, err)
			}
			e.logger.Warn().
				Err(err).
				Str("alert_id", alert.ID).
				Msg("Notification failed, alert will be retried next run")
			continue
		}
		report.Notified = append(report.Notified, alert.ID)
	}
	return report, nil
}
