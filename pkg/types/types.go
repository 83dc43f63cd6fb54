// Package types defines the core types shared across the flowstock pipeline.
package types

import "time"

// Message is a single message inside a Slack thread, with the author
// already resolved to a display name.
type Message struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Thread is a fully fetched Slack discussion thread. Messages keep the
// order the platform returned them in; LastReplyAt equals the timestamp
// of the final message, or the fetch time when the thread is empty.
type Thread struct {
	ChannelName string    `json:"channel_name"`
	ChannelID   string    `json:"channel_id"`
	ThreadTS    string    `json:"thread_ts"`
	URL         string    `json:"url"`
	Messages    []Message `json:"messages"`
	LastReplyAt time.Time `json:"last_reply_at"`
}

// DiscussionStructure breaks a discussion into its logical parts.
type DiscussionStructure struct {
	Premises                  []string `json:"premises"`
	KeyIssues                 []string `json:"key_issues"`
	ConclusionsOrCurrentState []string `json:"conclusions_or_current_state"`
}

// ParticipantStance captures one participant's position in the discussion.
type ParticipantStance struct {
	Name         string   `json:"name"`
	Stance       string   `json:"stance"`
	KeyArguments []string `json:"key_arguments"`
	Concerns     []string `json:"concerns"`
}

// AnalysisResult is the structured insight extracted from a thread by the
// language model. All list fields are non-nil after validation.
type AnalysisResult struct {
	Theme                 string              `json:"theme"`
	Structure             DiscussionStructure `json:"structure"`
	NextDecisionRequired  string              `json:"next_decision_required"`
	SuggestedNextAction   string              `json:"suggested_next_action"`
	SuggestedOwner        string              `json:"suggested_owner"`
	NewConcepts           []string            `json:"new_concepts"`
	StrategicImplications []string            `json:"strategic_implications"`
	RiskSignals           []string            `json:"risk_signals"`
	Participants          []ParticipantStance `json:"participants"`
}

// TokenUsage accumulates model token spend across every attempt of a
// single analysis call, including attempts whose output was rejected.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage sample into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Status is the lifecycle state of a tracked decision record.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusWaiting  Status = "Waiting"
	StatusDone     Status = "Done"
	StatusArchived Status = "Archived"
)

// Terminal reports whether a record in this status is excluded from the
// aging sweep.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusArchived
}

// PageSummary is the flat view of one tracked record, translated out of
// the store's loosely-typed page shape.
type PageSummary struct {
	PageID        string     `json:"page_id"`
	Title         string     `json:"title"`
	SlackURL      string     `json:"slack_url"`
	AgingDays     int        `json:"aging_days"`
	Status        Status     `json:"status"`
	NextDecision  string     `json:"next_decision_required"`
	LastManagedAt *time.Time `json:"last_managed_at,omitempty"`
	Memo          string     `json:"memo,omitempty"`
}

// ReminderCandidate is a derived signal that an Open record has gone
// stale. It is recomputed on every sweep and never persisted.
type ReminderCandidate struct {
	PageID               string `json:"page_id"`
	Theme                string `json:"theme"`
	NextDecisionRequired string `json:"next_decision_required"`
	AgingDays            int    `json:"aging_days"`
	SlackURL             string `json:"slack_url"`
}
