// Package slackthread parses Slack thread references and fetches thread
// contents through the Slack Web API.
package slackthread

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidThreadURL is returned when a thread reference does not match
// the expected archives URL shape.
var ErrInvalidThreadURL = errors.New("invalid slack thread URL")

// threadURLPattern matches the path segment of a Slack archives link:
// <host>/archives/<channel-id>/p<compact-timestamp>. Query parameters
// after the timestamp are ignored.
var threadURLPattern = regexp.MustCompile(`slack\.com/archives/([A-Z0-9]+)/p(\d+)`)

// ParseThreadURL extracts (channelID, threadTS) from a Slack thread URL.
// The p-prefixed timestamp carries no separator; the thread timestamp is
// recovered by inserting a dot six digits from the end, e.g.
// p1705312200123456 -> 1705312200.123456.
func ParseThreadURL(url string) (channelID, threadTS string, err error) {
	m := threadURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidThreadURL, url)
	}

	channelID = m[1]
	raw := m[2]
	if len(raw) <= 6 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidThreadURL, url)
	}
	threadTS = raw[:len(raw)-6] + "." + raw[len(raw)-6:]
	return channelID, threadTS, nil
}
