// Package notionstore persists analysis results as pages of a Notion
// database. The database schema is pre-existing; property names here are
// contractual and must not drift.
package notionstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/flowstock/flowstock/pkg/types"
)

// databaseAPI and pageAPI are the slices of the notionapi client the
// store uses. The concrete client's Database and Page services satisfy
// them; tests supply fakes.
type databaseAPI interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type pageAPI interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	Update(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// Store reads and writes decision records in one Notion database.
type Store struct {
	db         databaseAPI
	pages      pageAPI
	databaseID notionapi.DatabaseID

	// now is swapped in tests to pin "today".
	now func() time.Time
}

// NewStore builds a Store for the given integration token and database.
func NewStore(token, databaseID string) *Store {
	client := notionapi.NewClient(notionapi.Token(token))
	return &Store{
		db:         client.Database,
		pages:      client.Page,
		databaseID: notionapi.DatabaseID(databaseID),
		now:        time.Now,
	}
}

// Upsert writes the analysis to the database keyed by the thread's Slack
// URL. An existing page with the same URL is updated in place; otherwise
// a new page is created with Status=Open, Aging Days=0 and Last Managed
// At=today. Updates leave Status, Aging Days and Last Managed At alone:
// those advance only through the aging sweep. Returns the page URL.
func (s *Store) Upsert(ctx context.Context, result *types.AnalysisResult, slackURL, channelName, memo string) (string, error) {
	pageID, err := s.findBySlackURL(ctx, slackURL)
	if err != nil {
		return "", err
	}

	props := analysisProperties(result, slackURL, channelName, memo)

	if pageID != "" {
		_, err := s.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
			Properties: props,
		})
		if err != nil {
			return "", fmt.Errorf("update notion page %s: %w", pageID, err)
		}
		return pageURL(pageID), nil
	}

	today := notionapi.Date(s.now())
	props["Status"] = notionapi.SelectProperty{Select: notionapi.Option{Name: string(types.StatusOpen)}}
	props["Aging Days"] = notionapi.NumberProperty{Number: 0}
	props["Last Managed At"] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: &today}}

	page, err := s.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.databaseID,
		},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("create notion page: %w", err)
	}
	return pageURL(string(page.ID)), nil
}

// findBySlackURL returns the ID of the page whose Slack URL property
// equals slackURL, or "" when no such page exists.
func (s *Store) findBySlackURL(ctx context.Context, slackURL string) (string, error) {
	resp, err := s.db.Query(ctx, s.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Slack URL",
			RichText: &notionapi.TextFilterCondition{Equals: slackURL},
		},
	})
	if err != nil {
		return "", fmt.Errorf("query notion database: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

// ListActionable returns a flat summary for every page whose Status is
// neither Done nor Archived, in the order the store returned them.
// Pages without a Slack URL cannot be tracked and are skipped.
func (s *Store) ListActionable(ctx context.Context) ([]types.PageSummary, error) {
	resp, err := s.db.Query(ctx, s.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.AndCompoundFilter{
			notionapi.PropertyFilter{
				Property: "Status",
				Select:   &notionapi.SelectFilterCondition{DoesNotEqual: string(types.StatusDone)},
			},
			notionapi.PropertyFilter{
				Property: "Status",
				Select:   &notionapi.SelectFilterCondition{DoesNotEqual: string(types.StatusArchived)},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query notion database: %w", err)
	}

	var summaries []types.PageSummary
	for _, page := range resp.Results {
		summary, ok := pageToSummary(page)
		if !ok {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// UpdateAgingDays persists a recomputed aging metric on one page.
func (s *Store) UpdateAgingDays(ctx context.Context, pageID string, days int) error {
	_, err := s.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			"Aging Days": notionapi.NumberProperty{Number: float64(days)},
		},
	})
	if err != nil {
		return fmt.Errorf("update aging days on %s: %w", pageID, err)
	}
	return nil
}

// pageURL builds the canonical page locator from a page ID.
func pageURL(id string) string {
	return "https://notion.so/" + strings.ReplaceAll(id, "-", "")
}
