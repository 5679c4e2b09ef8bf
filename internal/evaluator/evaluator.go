// Package evaluator decides which fetched alerts have not been seen before
// and what the next seen-id list should be.
package evaluator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prismanotify/prismanotify/internal/types"
)

// Seen-id retention policies.
const (
	// RetentionAccumulate keeps every id ever seen.
	RetentionAccumulate = "accumulate"

	// RetentionReplace keeps only the ids of the latest fetch.
	RetentionReplace = "replace"
)

// Result is the outcome of one diff pass
type Result struct {
	// New holds the unseen alerts in fetch order.
	New []types.Alert

	// AllIDs is the seen-id list to persist.
	AllIDs []string
}

// NewIDs returns the ids of the new alerts.
func (r Result) NewIDs() []string {
	ids := make([]string, 0, len(r.New))
	for _, a := range r.New {
		ids = append(ids, a.ID)
	}
	return ids
}

// Without returns a copy of r whose AllIDs no longer contains ids. New is
// left untouched.
func (r Result) Without(ids []string) Result {
	if len(ids) == 0 {
		return r
	}
	drop := toSet(ids)
	kept := make([]string, 0, len(r.AllIDs))
	for _, id := range r.AllIDs {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	return Result{New: r.New, AllIDs: kept}
}

// Evaluator diffs fetched alerts against previously seen ids
type Evaluator struct {
	retention string
	logger    zerolog.Logger
}

// NewEvaluator creates an evaluator using the given seen-id retention policy
func NewEvaluator(retention string, logger zerolog.Logger) (*Evaluator, error) {
	switch retention {
	case "":
		retention = RetentionAccumulate
	case RetentionAccumulate, RetentionReplace:
	default:
		return nil, fmt.Errorf("unknown retention policy %q", retention)
	}
	return &Evaluator{
		retention: retention,
		logger:    logger.With().Str("component", "evaluator").Logger(),
	}, nil
}

// Retention returns the active retention policy
func (e *Evaluator) Retention() string {
	return e.retention
}

// Evaluate reports the fetched alerts whose id is not in previous, in fetch
// order. Membership is checked against previous only, so an unseen id that
// appears twice in one fetch is reported twice. Neither input is modified.
func (e *Evaluator) Evaluate(previous []string, fetched []types.Alert) Result {
	seen := toSet(previous)

	var res Result
	for _, alert := range fetched {
		if _, ok := seen[alert.ID]; !ok {
			res.New = append(res.New, alert)
		}
	}

	switch e.retention {
	case RetentionReplace:
		res.AllIDs = make([]string, 0, len(fetched))
		for _, alert := range fetched {
			res.AllIDs = append(res.AllIDs, alert.ID)
		}
	default:
		res.AllIDs = make([]string, 0, len(previous)+len(res.New))
		res.AllIDs = append(res.AllIDs, previous...)
		for _, alert := range res.New {
			res.AllIDs = append(res.AllIDs, alert.ID)
		}
	}

	e.logger.Debug().
		Int("previous", len(previous)).
		Int("fetched", len(fetched)).
		Int("new", len(res.New)).
		Int("retained", len(res.AllIDs)).
		Str("retention", e.retention).
		Msg("Evaluated alerts")

	return res
}

// Evaluate diffs with the accumulate retention policy.
func Evaluate(previous []string, fetched []types.Alert) Result {
	e := &Evaluator{retention: RetentionAccumulate, logger: zerolog.Nop()}
	return e.Evaluate(previous, fetched)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
