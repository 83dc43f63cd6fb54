package aging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flowstock/flowstock/pkg/types"
)

// fakeStore serves a fixed page list and records aging updates in order.
type fakeStore struct {
	pages   []types.PageSummary
	updates []update
	listErr error
}

type update struct {
	pageID string
	days   int
}

func (f *fakeStore) ListActionable(ctx context.Context) ([]types.PageSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pages, nil
}

func (f *fakeStore) UpdateAgingDays(ctx context.Context, pageID string, days int) error {
	f.updates = append(f.updates, update{pageID, days})
	return nil
}

func datePtr(t time.Time) *time.Time { return &t }

func TestCalculateAgingDays(t *testing.T) {
	tests := []struct {
		lastManaged time.Time
		today       time.Time
		want        int
	}{
		{time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), 12},
		{time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), 1},
		// Time-of-day must not shift the day count.
		{time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 22, 23, 59, 0, 0, time.UTC), 12},
	}

	for _, tt := range tests {
		if got := CalculateAgingDays(tt.lastManaged, tt.today); got != tt.want {
			t.Errorf("CalculateAgingDays(%v, %v)=%d, want %d", tt.lastManaged, tt.today, got, tt.want)
		}
	}
}

func TestRunSweep(t *testing.T) {
	today := time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		pages: []types.PageSummary{
			{PageID: "p1", Title: "Stale open", SlackURL: "u1", Status: types.StatusOpen,
				NextDecision: "pick a date", LastManagedAt: datePtr(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))},
			{PageID: "p2", Title: "Stale waiting", SlackURL: "u2", Status: types.StatusWaiting,
				LastManagedAt: datePtr(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))},
			{PageID: "p3", Title: "Fresh open", SlackURL: "u3", Status: types.StatusOpen,
				LastManagedAt: datePtr(time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC))},
		},
	}

	result, err := RunSweep(context.Background(), store, today)
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}

	if result.Updated != 3 {
		t.Errorf("Updated=%d, want 3", result.Updated)
	}
	if len(store.updates) != 3 {
		t.Fatalf("store mutations=%d, want one per record", len(store.updates))
	}
	if store.updates[0] != (update{"p1", 12}) || store.updates[1] != (update{"p2", 12}) || store.updates[2] != (update{"p3", 1}) {
		t.Errorf("updates=%+v", store.updates)
	}

	// Only the stale Open record reminds; Waiting ages silently.
	if len(result.Reminders) != 1 {
		t.Fatalf("reminders=%d, want 1", len(result.Reminders))
	}
	r := result.Reminders[0]
	if r.PageID != "p1" || r.Theme != "Stale open" || r.AgingDays != 12 || r.NextDecisionRequired != "pick a date" || r.SlackURL != "u1" {
		t.Errorf("reminder=%+v", r)
	}
}

func TestRunSweep_SkipsRecordsWithoutLastManaged(t *testing.T) {
	today := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		pages: []types.PageSummary{
			{PageID: "p1", Title: "No date", SlackURL: "u1", Status: types.StatusOpen},
			{PageID: "p2", Title: "Dated", SlackURL: "u2", Status: types.StatusOpen,
				LastManagedAt: datePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
		},
	}

	result, err := RunSweep(context.Background(), store, today)
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if result.Updated != 1 {
		t.Errorf("Updated=%d, want 1 (undated record skipped)", result.Updated)
	}
	if len(store.updates) != 1 || store.updates[0].pageID != "p2" {
		t.Errorf("updates=%+v, want only p2", store.updates)
	}
}

func TestRunSweep_ThresholdBoundary(t *testing.T) {
	today := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		pages: []types.PageSummary{
			{PageID: "p7", Title: "Exactly seven", SlackURL: "u", Status: types.StatusOpen,
				LastManagedAt: datePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
			{PageID: "p6", Title: "Six days", SlackURL: "u", Status: types.StatusOpen,
				LastManagedAt: datePtr(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))},
		},
	}

	result, err := RunSweep(context.Background(), store, today)
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if len(result.Reminders) != 1 || result.Reminders[0].PageID != "p7" {
		t.Errorf("reminders=%+v, want only the 7-day record", result.Reminders)
	}
}

func TestRunSweep_EmptyTitleFallsBackToUnknown(t *testing.T) {
	today := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		pages: []types.PageSummary{
			{PageID: "p1", SlackURL: "u", Status: types.StatusOpen,
				LastManagedAt: datePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
		},
	}

	result, err := RunSweep(context.Background(), store, today)
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if len(result.Reminders) != 1 || result.Reminders[0].Theme != "Unknown" {
		t.Errorf("reminders=%+v, want theme Unknown", result.Reminders)
	}
}

func TestRunSweep_ListFailurePropagates(t *testing.T) {
	listErr := errors.New("notion down")
	_, err := RunSweep(context.Background(), &fakeStore{listErr: listErr}, time.Now())
	if !errors.Is(err, listErr) {
		t.Fatalf("err=%v, want wrapped %v", err, listErr)
	}
}
