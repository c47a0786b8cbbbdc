package filter

import (
	"time"

	"github.com/s0up4200/gotrakt/trakt"
)

// Item is the flattened view of one Trakt record that filter expressions
// evaluate against. Nested media objects are collapsed so an expression can
// reference Title, Year or the common IDs directly no matter whether the
// record wraps a movie, show, season or episode. Fields that a given listing
// does not carry stay at their zero value.
type Item struct {
	// Type is "movie", "show", "season" or "episode".
	Type  string
	Title string
	Year  int

	// Show carries the parent show title for season and episode records.
	Show    string
	Season  int
	Episode int

	// Watchlist fields
	Rank     int
	Notes    string
	ListedAt time.Time

	// Collection fields
	CollectedAt time.Time

	// Rating fields
	Rating  int
	RatedAt time.Time

	// Playback fields
	Progress float64
	PausedAt time.Time

	// History fields
	WatchedAt time.Time
	Action    string

	// External identifiers
	TraktID int
	Slug    string
	IMDB    string
	TMDB    int
	TVDB    int
}

// FromListEntry flattens one watchlist row into an Item.
func FromListEntry(entry trakt.ListEntry) Item {
	item := Item{
		Type:     entry.Type,
		Title:    entry.Title(),
		Year:     entry.Year(),
		Rank:     entry.Rank,
		Notes:    entry.Notes,
		ListedAt: entry.ListedAt,
	}
	item.collapse(entry.Movie, entry.Show, entry.Season, entry.Episode)
	return item
}

// FromListEntries flattens a watchlist page into Items.
func FromListEntries(entries []trakt.ListEntry) []Item {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = FromListEntry(entry)
	}
	return items
}

// FromCollectedEntry flattens one collection row into an Item. Show rows
// report their collection time under last_collected_at rather than
// collected_at; both land in CollectedAt.
func FromCollectedEntry(entry trakt.CollectedEntry) Item {
	item := Item{
		Title:       entry.Title(),
		Year:        entry.Year(),
		CollectedAt: entry.CollectedAt,
	}
	if entry.Movie != nil {
		item.Type = "movie"
	} else if entry.Show != nil {
		item.Type = "show"
	}
	if item.CollectedAt.IsZero() {
		item.CollectedAt = entry.LastCollectedAt
	}
	item.collapse(entry.Movie, entry.Show, nil, nil)
	return item
}

// FromCollectedEntries flattens a collection listing into Items.
func FromCollectedEntries(entries []trakt.CollectedEntry) []Item {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = FromCollectedEntry(entry)
	}
	return items
}

// FromRatingEntry flattens one rated record into an Item.
func FromRatingEntry(entry trakt.RatingEntry) Item {
	item := Item{
		Type:    entry.Type,
		Rating:  entry.Rating,
		RatedAt: entry.RatedAt,
	}
	switch {
	case entry.Movie != nil:
		item.Title = entry.Movie.Title
		item.Year = entry.Movie.Year
	case entry.Episode != nil:
		item.Title = entry.Episode.Title
	}
	if entry.Show != nil {
		item.Year = entry.Show.Year
		if entry.Type == "show" {
			item.Title = entry.Show.Title
		}
	}
	item.collapse(entry.Movie, entry.Show, entry.Season, entry.Episode)
	return item
}

// FromRatingEntries flattens a ratings listing into Items.
func FromRatingEntries(entries []trakt.RatingEntry) []Item {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = FromRatingEntry(entry)
	}
	return items
}

// FromPlaybackEntry flattens one paused playback position into an Item.
func FromPlaybackEntry(entry trakt.PlaybackEntry) Item {
	item := Item{
		Type:     entry.Type,
		Progress: entry.Progress,
		PausedAt: entry.PausedAt,
	}
	switch {
	case entry.Movie != nil:
		item.Title = entry.Movie.Title
		item.Year = entry.Movie.Year
	case entry.Episode != nil:
		item.Title = entry.Episode.Title
	}
	if entry.Show != nil {
		item.Year = entry.Show.Year
	}
	item.collapse(entry.Movie, entry.Show, nil, entry.Episode)
	return item
}

// FromPlaybackEntries flattens a playback listing into Items.
func FromPlaybackEntries(entries []trakt.PlaybackEntry) []Item {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = FromPlaybackEntry(entry)
	}
	return items
}

// FromHistoryEntry flattens one watched-history event into an Item.
func FromHistoryEntry(entry trakt.HistoryEntry) Item {
	item := Item{
		Type:      entry.Type,
		WatchedAt: entry.WatchedAt,
		Action:    entry.Action,
	}
	switch {
	case entry.Movie != nil:
		item.Title = entry.Movie.Title
		item.Year = entry.Movie.Year
	case entry.Episode != nil:
		item.Title = entry.Episode.Title
	}
	if entry.Show != nil {
		item.Year = entry.Show.Year
	}
	item.collapse(entry.Movie, entry.Show, nil, entry.Episode)
	return item
}

// FromHistoryEntries flattens a history listing into Items.
func FromHistoryEntries(entries []trakt.HistoryEntry) []Item {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = FromHistoryEntry(entry)
	}
	return items
}

// collapse copies the identifiers and numbering of the most specific record
// present. Season and episode rows also carry their parent show; its title
// is kept so expressions can group by show.
func (i *Item) collapse(movie *trakt.Movie, show *trakt.Show, season *trakt.Season, episode *trakt.Episode) {
	if show != nil {
		i.Show = show.Title
	}
	switch {
	case movie != nil:
		i.setIDs(movie.IDs)
	case episode != nil:
		i.Season = episode.Season
		i.Episode = episode.Number
		i.setIDs(episode.IDs)
	case season != nil:
		i.Season = season.Number
		i.setIDs(season.IDs)
	case show != nil:
		i.setIDs(show.IDs)
	}
}

func (i *Item) setIDs(ids trakt.IDs) {
	i.TraktID = ids.Trakt
	i.Slug = ids.Slug
	i.IMDB = ids.IMDB
	i.TMDB = ids.TMDB
	i.TVDB = ids.TVDB
}
