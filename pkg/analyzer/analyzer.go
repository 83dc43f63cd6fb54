// Package analyzer turns a fetched Slack thread into a structured
// AnalysisResult using a generative model.
package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/flowstock/flowstock/pkg/types"
)

// DefaultModel is used when the caller does not name a model.
const DefaultModel = "gemini-2.0-flash"

// maxOutputTokens bounds the model response size.
const maxOutputTokens = 4096

const systemPrompt = `You are an expert at analyzing Slack discussions and extracting structured insights.

Given a Slack thread, analyze the discussion and output a JSON object with the following structure:
{
  "theme": "One-line summary of the discussion topic",
  "structure": {
    "premises": ["List of assumptions and preconditions"],
    "key_issues": ["Main points of discussion, disagreements, or unresolved items"],
    "conclusions_or_current_state": ["Current conclusions or state of the discussion"]
  },
  "next_decision_required": "The specific decision that must be made to move forward (not a vague TODO)",
  "suggested_next_action": "Concrete action: who does what by when",
  "suggested_owner": "Person most likely responsible (from thread participants)",
  "new_concepts": ["New terms, concepts, or keywords introduced in this discussion"],
  "strategic_implications": ["Medium/long-term impacts or architectural implications"],
  "risk_signals": ["Undefined risks, misalignments, or uncertainties detected"]
}

Rules:
- Output ONLY valid JSON, no markdown fences, no extra text
- Match the language of the input: if the discussion is in Japanese, output in Japanese
- next_decision_required must be a specific decision, not a generic TODO
- suggested_next_action must include who, what, and when
- Be concise but thorough`

// Generation is one model completion plus its token spend.
type Generation struct {
	Text  string
	Usage types.TokenUsage
}

// Generator produces a completion for a prompt under the fixed system
// instruction. GeminiGenerator is the production implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
}

// FormatPrompt renders a thread (and optional memo, empty meaning none)
// into the user prompt sent to the model. The rendering is deterministic:
// a channel header, one line per message in thread order, then the memo.
func FormatPrompt(thread *types.Thread, memo string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Channel: #%s\n", thread.ChannelName)

	for _, msg := range thread.Messages {
		fmt.Fprintf(&sb, "\n[%s] %s: %s", msg.Timestamp.Format("2006-01-02 15:04"), msg.User, msg.Text)
	}

	if memo != "" {
		fmt.Fprintf(&sb, "\n\nAdditional context from the user: %s", memo)
	}

	return sb.String()
}

// Analyze asks the model for a structured analysis of the thread. A
// response that fails JSON parsing or schema validation is retried
// exactly once; a second bad response fails the call. Token usage is
// summed across every attempt, rejected ones included. Transport
// failures of the model call are not retried.
func Analyze(ctx context.Context, gen Generator, thread *types.Thread, memo string) (*types.AnalysisResult, types.TokenUsage, error) {
	prompt := FormatPrompt(thread, memo)

	var usage types.TokenUsage
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		g, err := gen.Generate(ctx, prompt)
		if err != nil {
			return nil, usage, fmt.Errorf("model call failed: %w", err)
		}
		usage.Add(g.Usage)

		result, err := parseAnalysis(stripFences(g.Text))
		if err != nil {
			lastErr = err
			continue
		}
		return result, usage, nil
	}

	return nil, usage, fmt.Errorf("model output invalid after retry: %w", lastErr)
}

var (
	openFence  = regexp.MustCompile("^```(?:json)?[ \t]*\n?")
	closeFence = regexp.MustCompile("\n?```[ \t]*$")
)

// stripFences removes an optional markdown code fence wrapper. The
// system prompt forbids fences, but models add them anyway.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = openFence.ReplaceAllString(s, "")
	s = closeFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
