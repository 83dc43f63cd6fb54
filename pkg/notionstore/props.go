package notionstore

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/flowstock/flowstock/pkg/types"
)

// analysisProperties maps an AnalysisResult onto the database's property
// set. Lifecycle properties (Status, Aging Days, Last Managed At) are not
// included here; Upsert adds them on create only.
func analysisProperties(result *types.AnalysisResult, slackURL, channelName, memo string) notionapi.Properties {
	return notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: result.Theme}}},
		},
		"Slack URL":              notionapi.URLProperty{URL: slackURL},
		"Channel":                notionapi.SelectProperty{Select: notionapi.Option{Name: channelName}},
		"Next Decision Required": richTextProperty(result.NextDecisionRequired),
		"Next Action":            richTextProperty(result.SuggestedNextAction),
		"Owner":                  richTextProperty(result.SuggestedOwner),
		"Premises":               richTextProperty(strings.Join(result.Structure.Premises, "\n")),
		"Key Issues":             richTextProperty(strings.Join(result.Structure.KeyIssues, "\n")),
		"Current State":          richTextProperty(strings.Join(result.Structure.ConclusionsOrCurrentState, "\n")),
		"New Concepts":           multiSelectProperty(result.NewConcepts),
		"Strategic Implications": richTextProperty(strings.Join(result.StrategicImplications, "\n")),
		"Risk Signals":           richTextProperty(strings.Join(result.RiskSignals, "\n")),
		"Memo":                   richTextProperty(memo),
	}
}

// richTextProperty builds a rich-text value; empty text maps to an empty
// rich-text list, which clears the property on update.
func richTextProperty(text string) notionapi.RichTextProperty {
	if text == "" {
		return notionapi.RichTextProperty{RichText: []notionapi.RichText{}}
	}
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: text}}},
	}
}

func multiSelectProperty(tags []string) notionapi.MultiSelectProperty {
	options := make([]notionapi.Option, 0, len(tags))
	for _, tag := range tags {
		options = append(options, notionapi.Option{Name: tag})
	}
	return notionapi.MultiSelectProperty{MultiSelect: options}
}

// pageToSummary translates a loosely-typed Notion page into a flat
// PageSummary. Pages without a Slack URL are untrackable; ok is false
// for those.
func pageToSummary(page notionapi.Page) (types.PageSummary, bool) {
	props := page.Properties

	slackURL := urlOf(props, "Slack URL")
	if slackURL == "" {
		return types.PageSummary{}, false
	}

	title := titleOf(props, "Title")
	if title == "" {
		title = "Untitled"
	}

	return types.PageSummary{
		PageID:        string(page.ID),
		Title:         title,
		SlackURL:      slackURL,
		AgingDays:     numberOf(props, "Aging Days"),
		Status:        types.Status(selectOf(props, "Status")),
		NextDecision:  richTextOf(props, "Next Decision Required"),
		LastManagedAt: dateOf(props, "Last Managed At"),
		Memo:          richTextOf(props, "Memo"),
	}, true
}

func urlOf(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.URLProperty)
	if !ok {
		return ""
	}
	return p.URL
}

func titleOf(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.TitleProperty)
	if !ok || len(p.Title) == 0 {
		return ""
	}
	return plainText(p.Title[0])
}

func richTextOf(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.RichTextProperty)
	if !ok || len(p.RichText) == 0 {
		return ""
	}
	return plainText(p.RichText[0])
}

func selectOf(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.SelectProperty)
	if !ok {
		return ""
	}
	return p.Select.Name
}

func numberOf(props notionapi.Properties, key string) int {
	p, ok := props[key].(*notionapi.NumberProperty)
	if !ok {
		return 0
	}
	return int(p.Number)
}

func dateOf(props notionapi.Properties, key string) *time.Time {
	p, ok := props[key].(*notionapi.DateProperty)
	if !ok || p.Date == nil || p.Date.Start == nil {
		return nil
	}
	t := time.Time(*p.Date.Start)
	return &t
}

func plainText(rt notionapi.RichText) string {
	if rt.Text != nil {
		return rt.Text.Content
	}
	return rt.PlainText
}
