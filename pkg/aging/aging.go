// Package aging recomputes the staleness metric of tracked discussions
// and turns stale Open records into reminder candidates.
package aging

import (
	"context"
	"fmt"
	"time"

	"github.com/flowstock/flowstock/pkg/types"
)

// ReminderThresholdDays is the staleness threshold: an Open record aged
// this many days or more becomes a reminder candidate.
const ReminderThresholdDays = 7

// Store is the slice of the record store the sweep needs.
// *notionstore.Store implements it.
type Store interface {
	ListActionable(ctx context.Context) ([]types.PageSummary, error)
	UpdateAgingDays(ctx context.Context, pageID string, days int) error
}

// Result reports one sweep run.
type Result struct {
	Updated   int                       `json:"updated"`
	Reminders []types.ReminderCandidate `json:"reminders"`
}

// CalculateAgingDays returns whole days elapsed from lastManaged to
// today. Callers guarantee today is not before lastManaged; same-day
// gives 0.
func CalculateAgingDays(lastManaged, today time.Time) int {
	lm := lastManaged.UTC().Truncate(24 * time.Hour)
	td := today.UTC().Truncate(24 * time.Hour)
	return int(td.Sub(lm) / (24 * time.Hour))
}

// RunSweep recomputes aging for every actionable record and persists it,
// one store mutation per record. Records without a Last Managed At date
// are skipped entirely. Only Open records at or past the threshold
// produce reminders; Waiting records age silently, which is the intended
// business rule. Reminders come back in query order.
func RunSweep(ctx context.Context, store Store, today time.Time) (Result, error) {
	pages, err := store.ListActionable(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list actionable records: %w", err)
	}

	result := Result{Reminders: []types.ReminderCandidate{}}
	for _, page := range pages {
		if page.LastManagedAt == nil {
			continue
		}

		days := CalculateAgingDays(*page.LastManagedAt, today)
		if err := store.UpdateAgingDays(ctx, page.PageID, days); err != nil {
			return Result{}, fmt.Errorf("update aging for %s: %w", page.PageID, err)
		}
		result.Updated++

		if page.Status == types.StatusOpen && days >= ReminderThresholdDays {
			theme := page.Title
			if theme == "" {
				theme = "Unknown"
			}
			result.Reminders = append(result.Reminders, types.ReminderCandidate{
				PageID:               page.PageID,
				Theme:                theme,
				NextDecisionRequired: page.NextDecision,
				AgingDays:            days,
				SlackURL:             page.SlackURL,
			})
		}
	}

	return result, nil
}
