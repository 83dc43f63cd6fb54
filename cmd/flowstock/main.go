// flowstock turns Slack discussion threads into tracked decision records
// in a Notion database, and nudges owners when open decisions go stale.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flowstock/flowstock/pkg/aging"
	"github.com/flowstock/flowstock/pkg/analyzer"
	"github.com/flowstock/flowstock/pkg/notionstore"
	"github.com/flowstock/flowstock/pkg/slackthread"
)

var (
	memo   string
	model  string
	noSave bool
	notify bool
)

var rootCmd = &cobra.Command{
	Use:           "flowstock",
	Short:         "Slack thread -> structured analysis -> Notion decision record",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <slack-thread-url>",
	Short: "Analyze a Slack thread and save the result to Notion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), args[0])
	},
}

var agingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Recompute aging for tracked records and list stale ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAging(cmd.Context())
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&memo, "memo", "", "Optional context added to the analysis prompt")
	analyzeCmd.Flags().StringVar(&model, "model", analyzer.DefaultModel, "Gemini model name")
	analyzeCmd.Flags().BoolVar(&noSave, "no-save", false, "Analyze only, skip the Notion save")
	agingCmd.Flags().BoolVar(&notify, "notify", false, "DM each reminder to SLACK_REMINDER_USER")
	rootCmd.AddCommand(analyzeCmd, agingCmd)
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("missing required environment variable: %s", key)
	}
	return value, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runAnalyze(ctx context.Context, slackURL string) error {
	slackToken, err := requireEnv("SLACK_USER_TOKEN")
	if err != nil {
		return err
	}
	geminiKey, err := requireEnv("GEMINI_API_KEY")
	if err != nil {
		return err
	}

	var store *notionstore.Store
	if !noSave {
		notionToken, err := requireEnv("NOTION_TOKEN")
		if err != nil {
			return err
		}
		databaseID, err := requireEnv("NOTION_DATABASE_ID")
		if err != nil {
			return err
		}
		store = notionstore.NewStore(notionToken, databaseID)
	}

	channelID, threadTS, err := slackthread.ParseThreadURL(slackURL)
	if err != nil {
		return err
	}

	slack := slackthread.NewClient(slackToken)
	thread, err := slackthread.FetchThread(ctx, slack, channelID, threadTS, slackURL)
	if err != nil {
		return err
	}

	gen, err := analyzer.NewGeminiGenerator(ctx, analyzer.GeminiConfig{APIKey: geminiKey, Model: model})
	if err != nil {
		return err
	}

	result, usage, err := analyzer.Analyze(ctx, gen, thread, memo)
	if err != nil {
		return err
	}

	if err := printJSON(result); err != nil {
		return err
	}
	if err := printJSON(usage); err != nil {
		return err
	}

	if store != nil {
		pageURL, err := store.Upsert(ctx, result, thread.URL, thread.ChannelName, memo)
		if err != nil {
			return err
		}
		if err := printJSON(map[string]string{"notion_page_url": pageURL}); err != nil {
			return err
		}
	}

	return nil
}

func runAging(ctx context.Context) error {
	notionToken, err := requireEnv("NOTION_TOKEN")
	if err != nil {
		return err
	}
	databaseID, err := requireEnv("NOTION_DATABASE_ID")
	if err != nil {
		return err
	}

	store := notionstore.NewStore(notionToken, databaseID)
	result, err := aging.RunSweep(ctx, store, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := printJSON(result); err != nil {
		return err
	}

	if notify && len(result.Reminders) > 0 {
		slackToken, err := requireEnv("SLACK_USER_TOKEN")
		if err != nil {
			return err
		}
		reminderUser, err := requireEnv("SLACK_REMINDER_USER")
		if err != nil {
			return err
		}

		slack := slackthread.NewClient(slackToken)
		sent, err := aging.SendReminders(ctx, slack, reminderUser, result.Reminders)
		if err != nil {
			return fmt.Errorf("sent %d reminder(s) before failure: %w", sent, err)
		}
		if err := printJSON(map[string]int{"reminders_sent": sent}); err != nil {
			return err
		}
	}

	return nil
}
