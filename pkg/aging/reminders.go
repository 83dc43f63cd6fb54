package aging

import (
	"context"
	"fmt"

	"github.com/flowstock/flowstock/pkg/types"
)

// Messenger delivers one plain-text direct message.
// *slackthread.Client implements it.
type Messenger interface {
	PostMessage(ctx context.Context, channelID, text string) error
}

// SendReminders DMs each candidate to userID, in input order. Delivery
// is not transactional: the first failure aborts the remaining sends and
// the returned count says how many went out before it.
func SendReminders(ctx context.Context, m Messenger, userID string, reminders []types.ReminderCandidate) (int, error) {
	sent := 0
	for _, r := range reminders {
		text := fmt.Sprintf(
			"This discussion has not progressed.\nTheme: %s\nNext Decision Required: %s\nAging Days: %d\nSlack URL: %s",
			r.Theme, r.NextDecisionRequired, r.AgingDays, r.SlackURL,
		)
		if err := m.PostMessage(ctx, userID, text); err != nil {
			return sent, fmt.Errorf("send reminder for %s: %w", r.PageID, err)
		}
		sent++
	}
	return sent, nil
}
