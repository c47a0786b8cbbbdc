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
	collectionType     string
	collectionExtended string
	collectionFilter   string
	collectionNamed    string
	collectionMedia    mediaFlags
)

// collectionCmd represents the collection command
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage your collection",
	Long: `List, add to and remove from the collection of things you own digitally
or on physical media.`,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collected movies and shows",
	RunE:  runCollectionList,
}

var collectionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a record to the collection",
	RunE:  runCollectionAdd,
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a record from the collection",
	RunE:  runCollectionRemove,
}

func init() {
	rootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionAddCmd)
	collectionCmd.AddCommand(collectionRemoveCmd)

	collectionListCmd.Flags().StringVarP(&collectionType, "type", "t", "", "narrow to one media type (movies, shows); both when omitted")
	collectionListCmd.Flags().StringVar(&collectionExtended, "extended", "", "request extra detail (full, metadata)")
	collectionListCmd.Flags().StringVarP(&collectionFilter, "filter", "f", "", "filter expression")
	collectionListCmd.Flags().StringVarP(&collectionNamed, "named", "n", "", "named filter from the config")

	collectionMedia.register(collectionAddCmd)
	collectionMedia.register(collectionRemoveCmd)
}

func runCollectionList(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	mediaType, err := parseMediaType(collectionType)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var entries []trakt.CollectedEntry
	if mediaType == "" {
		entries, err = client.CollectionAll(ctx)
	} else {
		entries, err = client.Collection(ctx, mediaType, collectionExtended)
	}
	if err != nil {
		return err
	}

	items, err := applyFilters(ctx, collectionFilter, collectionNamed, filter.FromCollectedEntries(entries))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No collected records found.")
		return nil
	}

	recordText := "record"
	if len(items) != 1 {
		recordText = "records"
	}
	fmt.Printf("\nCollection (%d %s):\n", len(items), recordText)
	fmt.Println(strings.Repeat("━", 85))

	for _, item := range items {
		fmt.Printf("• %s", describeItem(item))
		if !item.CollectedAt.IsZero() {
			fmt.Printf("  (collected %s)", item.CollectedAt.Format("2006-01-02"))
		}
		fmt.Println()
	}

	return nil
}

func runCollectionAdd(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	items, err := collectionMedia.syncItems()
	if err != nil {
		return err
	}

	result, err := client.AddToCollection(context.Background(), items)
	if err != nil {
		return err
	}

	printSyncResult(result)
	return nil
}

func runCollectionRemove(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	items, err := collectionMedia.syncItems()
	if err != nil {
		return err
	}

	result, err := client.RemoveFromCollection(context.Background(), items)
	if err != nil {
		return err
	}

	printSyncResult(result)
	return nil
}
