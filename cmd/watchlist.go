package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gotrakt/filter"
	"github.com/s0up4200/gotrakt/trakt"
)

var (
	watchlistType   string
	watchlistSort   string
	watchlistFilter string
	watchlistNamed  string
	watchlistMedia  mediaFlags
)

// watchlistCmd represents the watchlist command
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage your watchlist",
	Long:  `List, add to and remove from the watchlist of things you plan to watch.`,
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watchlist entries",
	RunE:  runWatchlistList,
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a record to the watchlist",
	RunE:  runWatchlistAdd,
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a record from the watchlist",
	RunE:  runWatchlistRemove,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)

	watchlistListCmd.Flags().StringVarP(&watchlistType, "type", "t", "", "narrow to one media type (movies, shows, seasons, episodes)")
	watchlistListCmd.Flags().StringVarP(&watchlistSort, "sort", "s", "", "sort order (rank, added, released, title), requires --type")
	watchlistListCmd.Flags().StringVarP(&watchlistFilter, "filter", "f", "", "filter expression")
	watchlistListCmd.Flags().StringVarP(&watchlistNamed, "named", "n", "", "named filter from the config")

	watchlistMedia.register(watchlistAddCmd)
	watchlistMedia.register(watchlistRemoveCmd)
}

func runWatchlistList(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	mediaType, err := parseMediaType(watchlistType)
	if err != nil {
		return err
	}
	if watchlistSort != "" && mediaType == "" {
		logger.Warn().Msg("--sort has no effect without --type")
	}

	ctx := context.Background()
	entries, err := client.Watchlist(ctx, mediaType, watchlistSort)
	if err != nil {
		return err
	}

	items, err := applyFilters(ctx, watchlistFilter, watchlistNamed, filter.FromListEntries(entries))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No watchlist entries found.")
		return nil
	}

	entryText := "entry"
	if len(items) != 1 {
		entryText = "entries"
	}
	fmt.Printf("\nWatchlist (%d %s):\n", len(items), entryText)
	fmt.Println(strings.Repeat("━", 85))

	for _, item := range items {
		fmt.Printf("%4d. %s", item.Rank, describeItem(item))
		if !item.ListedAt.IsZero() {
			fmt.Printf("  (added %s)", item.ListedAt.Format("2006-01-02"))
		}
		fmt.Println()
		if item.Notes != "" {
			fmt.Printf("      Notes: %s\n", item.Notes)
		}
	}

	return nil
}

func runWatchlistAdd(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	items, err := watchlistMedia.syncItems()
	if err != nil {
		return err
	}

	result, err := client.AddToWatchlist(context.Background(), items)
	if err != nil {
		return err
	}

	printSyncResult(result)
	return nil
}

func runWatchlistRemove(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	items, err := watchlistMedia.syncItems()
	if err != nil {
		return err
	}

	result, err := client.RemoveFromWatchlist(context.Background(), items)
	if err != nil {
		return err
	}

	printSyncResult(result)
	return nil
}
