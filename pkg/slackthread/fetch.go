package slackthread

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flowstock/flowstock/pkg/types"
)

// RawMessage is one thread message as the platform returns it, before
// author resolution and timestamp conversion.
type RawMessage struct {
	UserID    string
	Text      string
	Timestamp string // fractional epoch seconds, e.g. "1705312200.123456"
}

// API is the slice of the Slack Web API the fetcher and the reminder
// dispatcher depend on. *Client implements it; tests supply fakes.
type API interface {
	ConversationName(ctx context.Context, channelID string) (string, error)
	ThreadMessages(ctx context.Context, channelID, threadTS string) ([]RawMessage, error)
	UserDisplayName(ctx context.Context, userID string) (string, error)
	PostMessage(ctx context.Context, channelID, text string) error
}

// FetchThread retrieves the thread rooted at threadTS and returns it as a
// normalized Thread. The original URL is carried through untouched.
// Author IDs are resolved to display names with one lookup per distinct
// ID; the memo map lives only for the duration of this call. Any API
// failure aborts the fetch, discarding partial results.
func FetchThread(ctx context.Context, api API, channelID, threadTS, url string) (*types.Thread, error) {
	channelName, err := api.ConversationName(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("fetch channel info for %s: %w", channelID, err)
	}

	raw, err := api.ThreadMessages(ctx, channelID, threadTS)
	if err != nil {
		return nil, fmt.Errorf("fetch thread replies for %s/%s: %w", channelID, threadTS, err)
	}

	names := map[string]string{}
	messages := make([]types.Message, 0, len(raw))
	for _, m := range raw {
		name, ok := names[m.UserID]
		if !ok {
			name, err = api.UserDisplayName(ctx, m.UserID)
			if err != nil {
				return nil, fmt.Errorf("resolve user %s: %w", m.UserID, err)
			}
			names[m.UserID] = name
		}

		ts, err := parseSlackTimestamp(m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse message timestamp %q: %w", m.Timestamp, err)
		}

		messages = append(messages, types.Message{
			User:      name,
			Text:      m.Text,
			Timestamp: ts,
		})
	}

	lastReplyAt := time.Now().UTC()
	if len(messages) > 0 {
		lastReplyAt = messages[len(messages)-1].Timestamp
	}

	return &types.Thread{
		ChannelName: channelName,
		ChannelID:   channelID,
		ThreadTS:    threadTS,
		URL:         url,
		Messages:    messages,
		LastReplyAt: lastReplyAt,
	}, nil
}

// parseSlackTimestamp converts Slack's fractional epoch seconds into a
// UTC instant. The integer and fractional parts are parsed separately to
// keep microsecond precision exact.
func parseSlackTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")

	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	var nsec int64
	if fracPart != "" {
		// Right-pad to nanosecond resolution.
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		frac, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		for i := len(fracPart); i < 9; i++ {
			frac *= 10
		}
		nsec = frac
	}

	return time.Unix(sec, nsec).UTC(), nil
}
