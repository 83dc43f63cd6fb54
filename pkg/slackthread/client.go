package slackthread

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Client adapts the slack-go Web API client to the narrow API interface
// used by the rest of the pipeline.
type Client struct {
	api *slack.Client
}

// NewClient builds a Client from a Slack user token.
func NewClient(token string) *Client {
	return &Client{api: slack.New(token)}
}

// ConversationName resolves a channel ID to its display name.
func (c *Client) ConversationName(ctx context.Context, channelID string) (string, error) {
	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return "", fmt.Errorf("conversations.info: %w", err)
	}
	return info.Name, nil
}

// ThreadMessages lists every message of the thread rooted at threadTS,
// in the order Slack returns them, following the cursor when the reply
// list spans multiple pages.
func (c *Client) ThreadMessages(ctx context.Context, channelID, threadTS string) ([]RawMessage, error) {
	params := &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
	}

	var out []RawMessage
	for {
		msgs, hasMore, nextCursor, err := c.api.GetConversationRepliesContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("conversations.replies: %w", err)
		}
		for _, m := range msgs {
			out = append(out, RawMessage{
				UserID:    m.User,
				Text:      m.Text,
				Timestamp: m.Timestamp,
			})
		}
		if !hasMore {
			return out, nil
		}
		params.Cursor = nextCursor
	}
}

// UserDisplayName resolves a user ID to the user's real name.
func (c *Client) UserDisplayName(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("users.info: %w", err)
	}
	return user.RealName, nil
}

// PostMessage sends a plain-text message to a channel or user ID.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("chat.postMessage: %w", err)
	}
	return nil
}
