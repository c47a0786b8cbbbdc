package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gotrakt/trakt"
)

var (
	searchKinds  []string
	searchIDType string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the Trakt catalog",
	Long: `Search the Trakt catalog by text, or look a record up by id when
--id-type is given (trakt, imdb, tmdb or tvdb).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVarP(&searchKinds, "type", "t", nil, "record kinds to return (movie, show, episode, person)")
	searchCmd.Flags().StringVar(&searchIDType, "id-type", "", "treat the query as an id of this type")
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	query := strings.Join(args, " ")

	var results []trakt.SearchResult
	if searchIDType != "" {
		var mediaType trakt.SearchType
		if len(searchKinds) > 0 {
			mediaType = trakt.SearchType(searchKinds[0])
		}
		results, err = client.SearchByID(ctx, searchIDType, query, mediaType)
	} else {
		kinds := make([]trakt.SearchType, 0, len(searchKinds))
		for _, kind := range searchKinds {
			kinds = append(kinds, trakt.SearchType(kind))
		}
		results, err = client.Search(ctx, query, kinds...)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	resultText := "result"
	if len(results) != 1 {
		resultText = "results"
	}
	fmt.Printf("\nFound %d %s:\n", len(results), resultText)
	fmt.Println(strings.Repeat("━", 85))

	for _, result := range results {
		fmt.Printf("• [%s] %s\n", result.Type, describeResult(result))
		if ids := resultIDs(result); ids != (trakt.IDs{}) {
			fmt.Printf("  %s\n", formatIDs(ids))
		}
	}

	return nil
}

// describeResult renders the title line for one search hit
func describeResult(result trakt.SearchResult) string {
	switch {
	case result.Movie != nil:
		if result.Movie.Year > 0 {
			return fmt.Sprintf("%s (%d)", result.Movie.Title, result.Movie.Year)
		}
		return result.Movie.Title
	case result.Episode != nil:
		if result.Show != nil {
			return fmt.Sprintf("%s %dx%02d %s", result.Show.Title, result.Episode.Season, result.Episode.Number, result.Episode.Title)
		}
		return result.Episode.Title
	case result.Show != nil:
		if result.Show.Year > 0 {
			return fmt.Sprintf("%s (%d)", result.Show.Title, result.Show.Year)
		}
		return result.Show.Title
	case result.Person != nil:
		return result.Person.Name
	}
	return result.Title()
}

// resultIDs returns the ids of whichever record the result wraps
func resultIDs(result trakt.SearchResult) trakt.IDs {
	switch {
	case result.Movie != nil:
		return result.Movie.IDs
	case result.Episode != nil:
		return result.Episode.IDs
	case result.Show != nil:
		return result.Show.IDs
	case result.Person != nil:
		return result.Person.IDs
	}
	return trakt.IDs{}
}

// formatIDs renders the known external ids of a record
func formatIDs(ids trakt.IDs) string {
	var parts []string
	if ids.Trakt > 0 {
		parts = append(parts, fmt.Sprintf("trakt:%d", ids.Trakt))
	}
	if ids.Slug != "" {
		parts = append(parts, fmt.Sprintf("slug:%s", ids.Slug))
	}
	if ids.IMDB != "" {
		parts = append(parts, fmt.Sprintf("imdb:%s", ids.IMDB))
	}
	if ids.TMDB > 0 {
		parts = append(parts, fmt.Sprintf("tmdb:%d", ids.TMDB))
	}
	if ids.TVDB > 0 {
		parts = append(parts, fmt.Sprintf("tvdb:%d", ids.TVDB))
	}
	return strings.Join(parts, "  ")
}
