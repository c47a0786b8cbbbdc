package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gotrakt/filter"
	"github.com/s0up4200/gotrakt/trakt"
)

var (
	historyType      string
	historyFilter    string
	historyNamed     string
	historyMedia     mediaFlags
	historyWatchedAt string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage your watched history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched-history events",
	RunE:  runHistoryList,
}

var historyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Mark a record as watched",
	Long: `Mark a record as watched. The watch time defaults to now; pass
--watched-at to backfill an earlier watch.`,
	RunE: runHistoryAdd,
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a record from the watched history",
	RunE:  runHistoryRemove,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyAddCmd)
	historyCmd.AddCommand(historyRemoveCmd)

	historyListCmd.Flags().StringVarP(&historyType, "type", "t", "", "narrow to one media type (movies, shows, seasons, episodes)")
	historyListCmd.Flags().StringVarP(&historyFilter, "filter", "f", "", "filter expression")
	historyListCmd.Flags().StringVarP(&historyNamed, "named", "n", "", "named filter from the config")

	historyMedia.register(historyAddCmd)
	historyMedia.register(historyRemoveCmd)
	historyAddCmd.Flags().StringVar(&historyWatchedAt, "watched-at", "", "watch time as RFC 3339, e.g. 2024-01-15T20:00:00Z")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	mediaType, err := parseMediaType(historyType)
	if err != nil {
		return err
	}

	ctx := context.Background()
	entries, err := client.History(ctx, mediaType)
	if err != nil {
		return err
	}

	items, err := applyFilters(ctx, historyFilter, historyNamed, filter.FromHistoryEntries(entries))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No history events found.")
		return nil
	}

	eventText := "event"
	if len(items) != 1 {
		eventText = "events"
	}
	fmt.Printf("\nHistory (%d %s):\n", len(items), eventText)
	fmt.Println(strings.Repeat("━", 85))

	for _, item := range items {
		fmt.Printf("%s  %s", item.WatchedAt.Format("2006-01-02 15:04"), describeItem(item))
		if item.Action != "" {
			fmt.Printf("  (%s)", item.Action)
		}
		fmt.Println()
	}

	return nil
}

func runHistoryAdd(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	items, err := historyMedia.syncItems()
	if err != nil {
		return err
	}

	if historyWatchedAt != "" {
		at, err := time.Parse(time.RFC3339, historyWatchedAt)
		if err != nil {
			return fmt.Errorf("invalid --watched-at: %w", err)
		}
		stampWatchedAt(&items, at)
	}

	result, err := client.AddToHistory(context.Background(), items)
	if err != nil {
		return err
	}

	printSyncResult(result)
	return nil
}

func runHistoryRemove(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	items, err := historyMedia.syncItems()
	if err != nil {
		return err
	}

	result, err := client.RemoveFromHistory(context.Background(), items)
	if err != nil {
		return err
	}

	printSyncResult(result)
	return nil
}
