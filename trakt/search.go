package trakt

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SearchType selects which record kinds a text search may return
type SearchType string

const (
	// SearchTypeMovie returns movie records
	SearchTypeMovie SearchType = "movie"
	// SearchTypeShow returns show records
	SearchTypeShow SearchType = "show"
	// SearchTypeEpisode returns episode records
	SearchTypeEpisode SearchType = "episode"
	// SearchTypePerson returns person records
	SearchTypePerson SearchType = "person"
)

// searchTypes are the record kinds the search endpoint accepts
var searchTypes = []SearchType{SearchTypeMovie, SearchTypeShow, SearchTypeEpisode, SearchTypePerson}

// validIDTypes are the accepted id sources for SearchByID. The trakt-*
// variants also imply the result media type.
var validIDTypes = []string{
	"trakt", "trakt-movie", "trakt-show", "trakt-episode", "trakt-person",
	"imdb", "tmdb", "tvdb",
}

// idTypeSources maps an id type to the endpoint's source path segment
var idTypeSources = map[string]string{
	"trakt":         "trakt",
	"trakt-movie":   "trakt",
	"trakt-show":    "trakt",
	"trakt-episode": "trakt",
	"trakt-person":  "trakt",
	"imdb":          "imdb",
	"tmdb":          "tmdb",
	"tvdb":          "tvdb",
}

// idTypeMedia maps the trakt-* id types to the media type they imply
var idTypeMedia = map[string]SearchType{
	"trakt-movie":   SearchTypeMovie,
	"trakt-show":    SearchTypeShow,
	"trakt-episode": SearchTypeEpisode,
	"trakt-person":  SearchTypePerson,
}

// SearchResult is one search hit. Type names which record is populated;
// episode hits also carry their show.
type SearchResult struct {
	Type    string   `json:"type"`
	Score   float64  `json:"score"`
	Movie   *Movie   `json:"movie,omitempty"`
	Show    *Show    `json:"show,omitempty"`
	Episode *Episode `json:"episode,omitempty"`
	Person  *Person  `json:"person,omitempty"`
}

// Title returns the title or name of whichever record the result wraps
func (r SearchResult) Title() string {
	switch {
	case r.Movie != nil:
		return r.Movie.Title
	case r.Episode != nil:
		return r.Episode.Title
	case r.Show != nil:
		return r.Show.Title
	case r.Person != nil:
		return r.Person.Name
	}
	return ""
}

// Search performs a text search across the given record kinds, defaulting
// to all of them when none are given.
func (c *Client) Search(ctx context.Context, query string, types ...SearchType) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if len(types) == 0 {
		types = searchTypes
	}

	segments := make([]string, 0, len(types))
	for _, t := range types {
		if !validSearchType(t) {
			return nil, fmt.Errorf("search type must be one of %v, got %q", searchTypes, t)
		}
		segments = append(segments, string(t))
	}

	params := url.Values{}
	params.Set("query", query)
	path := fmt.Sprintf("search/%s?%s", strings.Join(segments, ","), params.Encode())

	var results []SearchResult
	if err := c.Get(ctx, path, &results); err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	return results, nil
}

// SearchByID looks a record up by an external or internal id. An empty
// mediaType is inferred from the trakt-* id types; otherwise all record
// kinds matching the id come back.
func (c *Client) SearchByID(ctx context.Context, idType, id string, mediaType SearchType) ([]SearchResult, error) {
	source, ok := idTypeSources[idType]
	if !ok {
		return nil, fmt.Errorf("id type must be one of %v, got %q", validIDTypes, idType)
	}
	if id == "" {
		return nil, fmt.Errorf("search id is required")
	}

	if mediaType == "" {
		mediaType = idTypeMedia[idType]
	}
	if mediaType != "" && !validSearchType(mediaType) {
		return nil, fmt.Errorf("search type must be one of %v, got %q", searchTypes, mediaType)
	}

	path := fmt.Sprintf("search/%s/%s", source, url.PathEscape(id))
	if mediaType != "" {
		params := url.Values{}
		params.Set("type", string(mediaType))
		path += "?" + params.Encode()
	}

	var results []SearchResult
	if err := c.Get(ctx, path, &results); err != nil {
		return nil, fmt.Errorf("failed to search by id: %w", err)
	}

	return results, nil
}

// validSearchType reports whether t is an accepted search type
func validSearchType(t SearchType) bool {
	for _, v := range searchTypes {
		if t == v {
			return true
		}
	}
	return false
}
