// Package poller runs one poll cycle: authenticate, fetch alerts, notify the
// new ones and persist what was seen.
package poller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prismanotify/prismanotify/internal/alerter"
	"github.com/prismanotify/prismanotify/internal/evaluator"
	"github.com/prismanotify/prismanotify/internal/prisma"
	"github.com/prismanotify/prismanotify/internal/query"
	"github.com/prismanotify/prismanotify/internal/state"
	"github.com/prismanotify/prismanotify/internal/types"
)

// Options tune a single run
type Options struct {
	// Retention is the seen-id retention policy, see evaluator.NewEvaluator.
	Retention string
	FailFast  bool

	// Summary logs alert counts per policy before listing alerts.
	Summary bool

	// DryRun fetches and diffs but neither notifies nor saves.
	DryRun bool

	// Filters replaces the stored query filters when non-empty.
	Filters []query.Filter

	// TimeRange replaces the stored time range when set.
	TimeRange *query.TimeRange
}

// Summary reports what a run did
type Summary struct {
	Fetched  int
	New      int
	Notified int
	Failed   int
	Retained int
	Saved    bool
}

// Poller wires the API session, state store and notifier together
type Poller struct {
	client      *prisma.Client
	creds       prisma.Credentials
	store       *state.Store
	sender      alerter.Sender
	opts        Options
	sessionOpts []prisma.SessionOption

	// base is handed to child components, which add their own component field.
	base   zerolog.Logger
	logger zerolog.Logger
}

// New creates a poller. sessionOpts are passed to every session it opens.
func New(client *prisma.Client, creds prisma.Credentials, store *state.Store, sender alerter.Sender, opts Options, logger zerolog.Logger, sessionOpts ...prisma.SessionOption) *Poller {
	return &Poller{
		client:      client,
		creds:       creds,
		store:       store,
		sender:      sender,
		opts:        opts,
		sessionOpts: sessionOpts,
		base:        logger,
		logger:      logger.With().Str("component", "poller").Logger(),
	}
}

// Run executes one poll cycle. Any error leaves the state file untouched.
func (p *Poller) Run(ctx context.Context) (*Summary, error) {
	eval, err := evaluator.NewEvaluator(p.opts.Retention, p.base)
	if err != nil {
		return nil, err
	}

	st, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	q := p.resolveQuery(st.Query)

	session := prisma.NewSession(p.client, p.creds, prisma.Token(st.TokenValue()), p.base, p.sessionOpts...)
	if err := session.LoginOrRefresh(ctx); err != nil {
		return nil, err
	}

	if p.opts.Summary {
		if err := p.logSummary(ctx, session, q); err != nil {
			return nil, err
		}
	}

	policies, err := session.ListPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	list, err := session.ListAlerts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	if list.NextPageToken != "" {
		p.logger.Warn().
			Int("total_rows", list.TotalRows).
			Int("received", len(list.Items)).
			Msg("Alert listing is paginated, only the first page is processed")
	}

	result := eval.Evaluate(st.Alerts, list.Items)
	summary := &Summary{
		Fetched: len(list.Items),
		New:     len(result.New),
	}

	p.logger.Info().
		Int("fetched", summary.Fetched).
		Int("new", summary.New).
		Int("policies", len(policies)).
		Msg("Fetched alerts")

	if p.opts.DryRun {
		for _, alert := range result.New {
			p.logger.Info().
				Str("alert_id", alert.ID).
				Str("policy_id", alert.PolicyID).
				Msg("Would notify (dry run)")
		}
		summary.Retained = len(result.AllIDs)
		return summary, nil
	}

	engine := alerter.NewEngine(p.sender, types.NewPolicyNames(policies), p.base, alerter.WithFailFast(p.opts.FailFast))
	report, err := engine.Process(ctx, result.New)
	if err != nil {
		return nil, err
	}
	result = result.Without(report.Failed)
	summary.Notified = len(report.Notified)
	summary.Failed = len(report.Failed)
	summary.Retained = len(result.AllIDs)

	st.SetToken(string(session.Token()))
	st.Query = q
	st.Alerts = result.AllIDs
	if err := p.store.Save(st); err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}
	summary.Saved = true

	p.logger.Info().
		Int("notified", summary.Notified).
		Int("failed", summary.Failed).
		Int("retained", summary.Retained).
		Str("state", p.store.Path()).
		Msg("Saved state")

	return summary, nil
}

// resolveQuery applies the filter and time range overrides to the stored query.
func (p *Poller) resolveQuery(stored query.Query) query.Query {
	if len(p.opts.Filters) == 0 && p.opts.TimeRange == nil {
		return stored
	}
	b := query.From(stored)
	if p.opts.TimeRange != nil {
		b.TimeRange(p.opts.TimeRange.Value.Unit, p.opts.TimeRange.Value.Amount)
	}
	filters := p.opts.Filters
	if len(filters) == 0 {
		filters = stored.Filters
	}
	for _, f := range filters {
		b.AddFilter(f.Name, f.Operator, f.Value)
	}
	return b.Build()
}

func (p *Poller) logSummary(ctx context.Context, session *prisma.Session, q query.Query) error {
	counts, err := session.AlertCountsByPolicy(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to get alert counts: %w", err)
	}
	for _, c := range counts {
		p.logger.Info().
			Str("policy_id", c.Policy.PolicyID).
			Str("policy", c.Policy.Name).
			Str("severity", string(c.Policy.Severity)).
			Int("count", c.AlertCount).
			Msg("Alerts by policy")
	}
	return nil
}
