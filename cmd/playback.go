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
	playbackType   string
	playbackFilter string
	playbackNamed  string
)

// playbackCmd represents the playback command
var playbackCmd = &cobra.Command{
	Use:   "playback",
	Short: "List saved playback positions",
	Long: `List the playback positions saved by paused scrobbles, so playback can
resume on another device.`,
	RunE: runPlayback,
}

func init() {
	rootCmd.AddCommand(playbackCmd)

	playbackCmd.Flags().StringVarP(&playbackType, "type", "t", "", "narrow to one media type (movies, episodes)")
	playbackCmd.Flags().StringVarP(&playbackFilter, "filter", "f", "", "filter expression")
	playbackCmd.Flags().StringVarP(&playbackNamed, "named", "n", "", "named filter from the config")
}

func runPlayback(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	mediaType, err := parseMediaType(playbackType)
	if err != nil {
		return err
	}

	ctx := context.Background()
	entries, err := client.Playback(ctx, mediaType)
	if err != nil {
		return err
	}

	items, err := applyFilters(ctx, playbackFilter, playbackNamed, filter.FromPlaybackEntries(entries))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No saved playback positions.")
		return nil
	}

	positionText := "position"
	if len(items) != 1 {
		positionText = "positions"
	}
	fmt.Printf("\nPlayback (%d %s):\n", len(items), positionText)
	fmt.Println(strings.Repeat("━", 85))

	for _, item := range items {
		fmt.Printf("%5.1f%%  %s", item.Progress, describeItem(item))
		if !item.PausedAt.IsZero() {
			fmt.Printf("  (paused %s)", item.PausedAt.Format("2006-01-02"))
		}
		fmt.Println()
	}

	return nil
}
