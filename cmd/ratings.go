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
	ratingsType   string
	ratingsFilter string
	ratingsNamed  string
	ratingsMedia  mediaFlags
	ratingValue   int
)

// ratingsCmd represents the ratings command
var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Manage your ratings",
}

var ratingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rated records",
	RunE:  runRatingsList,
}

var ratingsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Rate a record from 1 to 10",
	RunE:  runRatingsAdd,
}

func init() {
	rootCmd.AddCommand(ratingsCmd)
	ratingsCmd.AddCommand(ratingsListCmd)
	ratingsCmd.AddCommand(ratingsAddCmd)

	ratingsListCmd.Flags().StringVarP(&ratingsType, "type", "t", "", "narrow to one media type (movies, shows, seasons, episodes)")
	ratingsListCmd.Flags().StringVarP(&ratingsFilter, "filter", "f", "", "filter expression")
	ratingsListCmd.Flags().StringVarP(&ratingsNamed, "named", "n", "", "named filter from the config")

	ratingsMedia.register(ratingsAddCmd)
	ratingsAddCmd.Flags().IntVarP(&ratingValue, "rating", "r", 0, "rating from 1 to 10")
}

func runRatingsList(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	mediaType, err := parseMediaType(ratingsType)
	if err != nil {
		return err
	}

	ctx := context.Background()
	entries, err := client.Ratings(ctx, mediaType)
	if err != nil {
		return err
	}

	items, err := applyFilters(ctx, ratingsFilter, ratingsNamed, filter.FromRatingEntries(entries))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No rated records found.")
		return nil
	}

	recordText := "record"
	if len(items) != 1 {
		recordText = "records"
	}
	fmt.Printf("\nRatings (%d %s):\n", len(items), recordText)
	fmt.Println(strings.Repeat("━", 85))

	for _, item := range items {
		fmt.Printf("%2d/10  %s", item.Rating, describeItem(item))
		if !item.RatedAt.IsZero() {
			fmt.Printf("  (rated %s)", item.RatedAt.Format("2006-01-02"))
		}
		fmt.Println()
	}

	return nil
}

func runRatingsAdd(cmd *cobra.Command, args []string) error {
	if ratingValue < 1 || ratingValue > 10 {
		return fmt.Errorf("rating must be between 1 and 10, got %d", ratingValue)
	}

	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	items, err := ratingsMedia.syncItems()
	if err != nil {
		return err
	}
	stampRating(&items, ratingValue)

	result, err := client.Rate(context.Background(), items)
	if err != nil {
		return err
	}

	printSyncResult(result)
	return nil
}
