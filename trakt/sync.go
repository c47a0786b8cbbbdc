package trakt

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

// Watchlist sort orders
const (
	SortRank     = "rank"
	SortAdded    = "added"
	SortReleased = "released"
	SortTitle    = "title"
)

// watchlistTypes are the media types the watchlist endpoint accepts
var watchlistTypes = []MediaType{MediaTypeMovies, MediaTypeShows, MediaTypeSeasons, MediaTypeEpisodes}

// watchlistSorts are the orderings the watchlist endpoint accepts
var watchlistSorts = []string{SortRank, SortAdded, SortReleased, SortTitle}

// collectionTypes are the media types the collection endpoint accepts
var collectionTypes = []MediaType{MediaTypeMovies, MediaTypeShows}

// playbackTypes are the media types the playback endpoint accepts
var playbackTypes = []MediaType{MediaTypeMovies, MediaTypeEpisodes}

// validMediaType reports whether t is one of valid
func validMediaType(t MediaType, valid []MediaType) bool {
	for _, v := range valid {
		if t == v {
			return true
		}
	}
	return false
}

// validSort reports whether sort is one of valid
func validSort(sort string, valid []string) bool {
	for _, v := range valid {
		if sort == v {
			return true
		}
	}
	return false
}

// Watchlist returns the user's watchlist, optionally narrowed to one media
// type and sorted. A sort requires a type, matching the endpoint's path
// layout; the watchlist is not a list of what the user is actively
// watching.
func (c *Client) Watchlist(ctx context.Context, mediaType MediaType, sort string) ([]ListEntry, error) {
	if mediaType != "" && !validMediaType(mediaType, watchlistTypes) {
		return nil, fmt.Errorf("list type must be one of %v, got %q", watchlistTypes, mediaType)
	}
	if sort != "" && !validSort(sort, watchlistSorts) {
		return nil, fmt.Errorf("sort must be one of %v, got %q", watchlistSorts, sort)
	}

	path := "sync/watchlist"
	if mediaType != "" {
		path += "/" + string(mediaType)
		if sort != "" {
			path += "/" + sort
		}
	}

	var entries []ListEntry
	if err := c.Get(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}

	return entries, nil
}

// AddToWatchlist adds the payload records to the user's watchlist
func (c *Client) AddToWatchlist(ctx context.Context, items SyncItems) (*SyncResult, error) {
	var result SyncResult
	if err := c.Post(ctx, "sync/watchlist", items, &result); err != nil {
		return nil, fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return &result, nil
}

// RemoveFromWatchlist removes the payload records from the user's
// watchlist.
func (c *Client) RemoveFromWatchlist(ctx context.Context, items SyncItems) (*SyncResult, error) {
	var result SyncResult
	if err := c.Post(ctx, "sync/watchlist/remove", items, &result); err != nil {
		return nil, fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return &result, nil
}

// Collection returns the user's collected movies or shows. A collected
// item indicates availability to watch digitally or on physical media.
// extended requests additional detail ("full" or "metadata") and may be
// empty.
func (c *Client) Collection(ctx context.Context, mediaType MediaType, extended string) ([]CollectedEntry, error) {
	if !validMediaType(mediaType, collectionTypes) {
		return nil, fmt.Errorf("list type must be one of %v, got %q", collectionTypes, mediaType)
	}

	path := "sync/collection/" + string(mediaType)
	if extended != "" {
		params := url.Values{}
		params.Set("extended", extended)
		path += "?" + params.Encode()
	}

	var entries []CollectedEntry
	if err := c.Get(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return entries, nil
}

// CollectionAll fetches the movie and show collections concurrently and
// returns movies first.
func (c *Client) CollectionAll(ctx context.Context) ([]CollectedEntry, error) {
	g, ctx := errgroup.WithContext(ctx)

	var movies, shows []CollectedEntry
	g.Go(func() error {
		var err error
		movies, err = c.Collection(ctx, MediaTypeMovies, "")
		return err
	})
	g.Go(func() error {
		var err error
		shows, err = c.Collection(ctx, MediaTypeShows, "")
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(movies, shows...), nil
}

// AddToCollection adds the payload records to the user's collection
func (c *Client) AddToCollection(ctx context.Context, items SyncItems) (*SyncResult, error) {
	var result SyncResult
	if err := c.Post(ctx, "sync/collection", items, &result); err != nil {
		return nil, fmt.Errorf("failed to add to collection: %w", err)
	}
	return &result, nil
}

// RemoveFromCollection removes the payload records from the user's
// collection.
func (c *Client) RemoveFromCollection(ctx context.Context, items SyncItems) (*SyncResult, error) {
	var result SyncResult
	if err := c.Post(ctx, "sync/collection/remove", items, &result); err != nil {
		return nil, fmt.Errorf("failed to remove from collection: %w", err)
	}
	return &result, nil
}

// History returns the user's watched-history events, newest first,
// optionally narrowed to one media type.
func (c *Client) History(ctx context.Context, mediaType MediaType) ([]HistoryEntry, error) {
	if mediaType != "" && !validMediaType(mediaType, watchlistTypes) {
		return nil, fmt.Errorf("list type must be one of %v, got %q", watchlistTypes, mediaType)
	}

	path := "sync/history"
	if mediaType != "" {
		path += "/" + string(mediaType)
	}

	var entries []HistoryEntry
	if err := c.Get(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return entries, nil
}

// AddToHistory marks the payload records as watched. Records without a
// watched_at get the current UTC time. The caller's payload is not
// mutated.
func (c *Client) AddToHistory(ctx context.Context, items SyncItems) (*SyncResult, error) {
	payload := withDefaultWatchedAt(items, time.Now().UTC())

	var result SyncResult
	if err := c.Post(ctx, "sync/history", payload, &result); err != nil {
		return nil, fmt.Errorf("failed to add to history: %w", err)
	}
	return &result, nil
}

// RemoveFromHistory removes the payload records from the user's watched
// history.
func (c *Client) RemoveFromHistory(ctx context.Context, items SyncItems) (*SyncResult, error) {
	var result SyncResult
	if err := c.Post(ctx, "sync/history/remove", items, &result); err != nil {
		return nil, fmt.Errorf("failed to remove from history: %w", err)
	}
	return &result, nil
}

// Rate submits ratings from 1 to 10 for the payload records. Records
// without a rated_at get the current UTC time. The caller's payload is not
// mutated.
func (c *Client) Rate(ctx context.Context, items SyncItems) (*SyncResult, error) {
	payload := withDefaultRatedAt(items, time.Now().UTC())

	var result SyncResult
	if err := c.Post(ctx, "sync/ratings", payload, &result); err != nil {
		return nil, fmt.Errorf("failed to rate items: %w", err)
	}
	return &result, nil
}

// Ratings returns the user's rated records, optionally narrowed to one
// media type.
func (c *Client) Ratings(ctx context.Context, mediaType MediaType) ([]RatingEntry, error) {
	if mediaType != "" && !validMediaType(mediaType, watchlistTypes) {
		return nil, fmt.Errorf("list type must be one of %v, got %q", watchlistTypes, mediaType)
	}

	path := "sync/ratings"
	if mediaType != "" {
		path += "/" + string(mediaType)
	}

	var entries []RatingEntry
	if err := c.Get(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}

	return entries, nil
}

// Playback returns saved playback positions. Whenever a scrobble pauses,
// the position is saved so playback can resume on another device. An
// empty mediaType returns both movies and episodes.
func (c *Client) Playback(ctx context.Context, mediaType MediaType) ([]PlaybackEntry, error) {
	if mediaType != "" && !validMediaType(mediaType, playbackTypes) {
		return nil, fmt.Errorf("list type must be one of %v, got %q", playbackTypes, mediaType)
	}

	path := "sync/playback"
	if mediaType != "" {
		path += "/" + string(mediaType)
	}

	var entries []PlaybackEntry
	if err := c.Get(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("failed to get playback progress: %w", err)
	}

	return entries, nil
}

// withDefaultWatchedAt copies items, stamping now on every record without
// a watched_at.
func withDefaultWatchedAt(items SyncItems, now time.Time) SyncItems {
	out := SyncItems{
		Movies:   append([]SyncMovie(nil), items.Movies...),
		Shows:    append([]SyncShow(nil), items.Shows...),
		Seasons:  append([]SyncSeason(nil), items.Seasons...),
		Episodes: append([]SyncEpisode(nil), items.Episodes...),
	}
	for i := range out.Movies {
		if out.Movies[i].WatchedAt == nil {
			out.Movies[i].WatchedAt = &now
		}
	}
	for i := range out.Shows {
		if out.Shows[i].WatchedAt == nil {
			out.Shows[i].WatchedAt = &now
		}
	}
	for i := range out.Seasons {
		if out.Seasons[i].WatchedAt == nil {
			out.Seasons[i].WatchedAt = &now
		}
	}
	for i := range out.Episodes {
		if out.Episodes[i].WatchedAt == nil {
			out.Episodes[i].WatchedAt = &now
		}
	}
	return out
}

// withDefaultRatedAt copies items, stamping now on every record without a
// rated_at.
func withDefaultRatedAt(items SyncItems, now time.Time) SyncItems {
	out := SyncItems{
		Movies:   append([]SyncMovie(nil), items.Movies...),
		Shows:    append([]SyncShow(nil), items.Shows...),
		Seasons:  append([]SyncSeason(nil), items.Seasons...),
		Episodes: append([]SyncEpisode(nil), items.Episodes...),
	}
	for i := range out.Movies {
		if out.Movies[i].RatedAt == nil {
			out.Movies[i].RatedAt = &now
		}
	}
	for i := range out.Shows {
		if out.Shows[i].RatedAt == nil {
			out.Shows[i].RatedAt = &now
		}
	}
	for i := range out.Seasons {
		if out.Seasons[i].RatedAt == nil {
			out.Seasons[i].RatedAt = &now
		}
	}
	for i := range out.Episodes {
		if out.Episodes[i].RatedAt == nil {
			out.Episodes[i].RatedAt = &now
		}
	}
	return out
}
