package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gotrakt/filter"
	"github.com/s0up4200/gotrakt/trakt"
)

// mediaFlags selects a single record by type and external id. The write
// commands share this flag set so every record the sync endpoints accept
// is addressed the same way.
type mediaFlags struct {
	mediaType string
	traktID   int
	slug      string
	imdb      string
	tmdb      int
	tvdb      int
}

// register adds the selection flags to a command
func (f *mediaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mediaType, "type", "t", "movie", "record type (movie, show, season or episode)")
	cmd.Flags().IntVar(&f.traktID, "trakt", 0, "Trakt numeric id")
	cmd.Flags().StringVar(&f.slug, "slug", "", "Trakt slug")
	cmd.Flags().StringVar(&f.imdb, "imdb", "", "IMDB id")
	cmd.Flags().IntVar(&f.tmdb, "tmdb", 0, "TMDB id")
	cmd.Flags().IntVar(&f.tvdb, "tvdb", 0, "TVDB id")
}

// ids collects the id flags, requiring at least one
func (f *mediaFlags) ids() (trakt.IDs, error) {
	ids := trakt.IDs{
		Trakt: f.traktID,
		Slug:  f.slug,
		IMDB:  f.imdb,
		TMDB:  f.tmdb,
		TVDB:  f.tvdb,
	}
	if ids == (trakt.IDs{}) {
		return ids, fmt.Errorf("no id given (use --trakt, --slug, --imdb, --tmdb or --tvdb)")
	}
	return ids, nil
}

// syncItems wraps the selected record in a sync write payload
func (f *mediaFlags) syncItems() (trakt.SyncItems, error) {
	ids, err := f.ids()
	if err != nil {
		return trakt.SyncItems{}, err
	}

	var items trakt.SyncItems
	switch strings.ToLower(f.mediaType) {
	case "movie":
		items.Movies = []trakt.SyncMovie{{IDs: ids}}
	case "show":
		items.Shows = []trakt.SyncShow{{IDs: ids}}
	case "season":
		items.Seasons = []trakt.SyncSeason{{IDs: ids}}
	case "episode":
		items.Episodes = []trakt.SyncEpisode{{IDs: ids}}
	default:
		return trakt.SyncItems{}, fmt.Errorf("invalid type: %s (must be 'movie', 'show', 'season' or 'episode')", f.mediaType)
	}

	return items, nil
}

// scrobbleMedia wraps the selected record for the checkin endpoint, which
// accepts only movies and episodes.
func (f *mediaFlags) scrobbleMedia() (trakt.ScrobbleMedia, error) {
	ids, err := f.ids()
	if err != nil {
		return trakt.ScrobbleMedia{}, err
	}

	switch strings.ToLower(f.mediaType) {
	case "movie":
		return trakt.ScrobbleMedia{Movie: &trakt.Movie{IDs: ids}}, nil
	case "episode":
		return trakt.ScrobbleMedia{Episode: &trakt.Episode{IDs: ids}}, nil
	default:
		return trakt.ScrobbleMedia{}, fmt.Errorf("invalid type: %s (must be 'movie' or 'episode')", f.mediaType)
	}
}

// stampWatchedAt sets the watch time on every record in the payload
func stampWatchedAt(items *trakt.SyncItems, at time.Time) {
	for i := range items.Movies {
		items.Movies[i].WatchedAt = &at
	}
	for i := range items.Shows {
		items.Shows[i].WatchedAt = &at
	}
	for i := range items.Seasons {
		items.Seasons[i].WatchedAt = &at
	}
	for i := range items.Episodes {
		items.Episodes[i].WatchedAt = &at
	}
}

// stampRating sets the rating on every record in the payload
func stampRating(items *trakt.SyncItems, rating int) {
	for i := range items.Movies {
		items.Movies[i].Rating = rating
	}
	for i := range items.Shows {
		items.Shows[i].Rating = rating
	}
	for i := range items.Seasons {
		items.Seasons[i].Rating = rating
	}
	for i := range items.Episodes {
		items.Episodes[i].Rating = rating
	}
}

// parseMediaType maps a --type value onto the API's media type. The empty
// string selects every type.
func parseMediaType(value string) (trakt.MediaType, error) {
	switch strings.ToLower(value) {
	case "":
		return "", nil
	case "movie", "movies":
		return trakt.MediaTypeMovies, nil
	case "show", "shows":
		return trakt.MediaTypeShows, nil
	case "season", "seasons":
		return trakt.MediaTypeSeasons, nil
	case "episode", "episodes":
		return trakt.MediaTypeEpisodes, nil
	default:
		return "", fmt.Errorf("invalid type: %s (must be 'movies', 'shows', 'seasons' or 'episodes')", value)
	}
}

// filterManager holds the compiled named filters from the config
var filterManager *filter.Manager

// namedFilters compiles the config's named filter expressions on first use
func namedFilters() (*filter.Manager, error) {
	if filterManager != nil {
		return filterManager, nil
	}

	manager := filter.NewManager()
	if err := manager.RegisterFilters(cfg.Filter); err != nil {
		return nil, fmt.Errorf("invalid filter in config: %w", err)
	}

	filterManager = manager
	return manager, nil
}

// applyFilters narrows items to those matching the given expression or the
// named filter from the config. Both empty keeps everything; an explicit
// expression wins over a name.
func applyFilters(ctx context.Context, expression, named string, items []filter.Item) ([]filter.Item, error) {
	total := len(items)

	switch {
	case expression != "":
		compiled, err := filter.NewExprCompiler().Compile(expression)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		items, err = filter.NewConcurrentEvaluator().Evaluate(ctx, compiled, items)
		if err != nil {
			return nil, fmt.Errorf("failed to apply filter: %w", err)
		}
	case named != "":
		manager, err := namedFilters()
		if err != nil {
			return nil, err
		}
		items, err = manager.EvaluateFilter(ctx, named, items)
		if err != nil {
			return nil, err
		}
	default:
		return items, nil
	}

	logger.Debug().
		Int("matched", len(items)).
		Int("total", total).
		Msg("Applied filter")

	return items, nil
}

// describeItem renders a one-line description of a list item
func describeItem(item filter.Item) string {
	switch item.Type {
	case "episode":
		return fmt.Sprintf("%s %dx%02d %s", item.Show, item.Season, item.Episode, item.Title)
	case "season":
		return fmt.Sprintf("%s: Season %d", item.Title, item.Season)
	default:
		if item.Year > 0 {
			return fmt.Sprintf("%s (%d)", item.Title, item.Year)
		}
		return item.Title
	}
}

// printSyncResult prints what a sync write changed
func printSyncResult(result *trakt.SyncResult) {
	if result == nil {
		return
	}

	if result.Added != nil && countTotal(*result.Added) > 0 {
		fmt.Printf("✓ Added: %s\n", formatCounts(*result.Added))
	}
	if result.Deleted != nil && countTotal(*result.Deleted) > 0 {
		fmt.Printf("✓ Removed: %s\n", formatCounts(*result.Deleted))
	}
	if result.Existing != nil && countTotal(*result.Existing) > 0 {
		fmt.Printf("⊘ Already present: %s\n", formatCounts(*result.Existing))
	}

	if result.NotFound != nil {
		missing := len(result.NotFound.Movies) + len(result.NotFound.Shows) +
			len(result.NotFound.Seasons) + len(result.NotFound.Episodes)
		if missing > 0 {
			recordText := "record"
			if missing != 1 {
				recordText = "records"
			}
			fmt.Printf("✗ Not found: %d %s\n", missing, recordText)
		}
	}
}

// formatCounts renders per-type counts, skipping zero entries
func formatCounts(counts trakt.SyncCounts) string {
	var parts []string
	if counts.Movies > 0 {
		parts = append(parts, fmt.Sprintf("%d movie%s", counts.Movies, plural(counts.Movies)))
	}
	if counts.Shows > 0 {
		parts = append(parts, fmt.Sprintf("%d show%s", counts.Shows, plural(counts.Shows)))
	}
	if counts.Seasons > 0 {
		parts = append(parts, fmt.Sprintf("%d season%s", counts.Seasons, plural(counts.Seasons)))
	}
	if counts.Episodes > 0 {
		parts = append(parts, fmt.Sprintf("%d episode%s", counts.Episodes, plural(counts.Episodes)))
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

func countTotal(counts trakt.SyncCounts) int {
	return counts.Movies + counts.Shows + counts.Seasons + counts.Episodes
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// printJSON writes a payload as indented JSON on stdout
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
