package trakt

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	t.Run("defaults to every record kind", func(t *testing.T) {
		server, rec := newRecordingServer(t, `[]`)
		client := newTestClient(t, server.URL, freshCreds())

		_, err := client.Search(context.Background(), "the matrix")
		require.NoError(t, err)

		assert.Equal(t, "/search/movie,show,episode,person", rec.path)

		query, err := url.ParseQuery(rec.query)
		require.NoError(t, err)
		assert.Equal(t, "the matrix", query.Get("query"))
	})

	t.Run("narrows to the given kinds", func(t *testing.T) {
		server, rec := newRecordingServer(t, `[]`)
		client := newTestClient(t, server.URL, freshCreds())

		_, err := client.Search(context.Background(), "dune", SearchTypeMovie, SearchTypeShow)
		require.NoError(t, err)
		assert.Equal(t, "/search/movie,show", rec.path)
	})

	t.Run("decodes results", func(t *testing.T) {
		server, _ := newRecordingServer(t, `[
			{"type":"movie","score":120.5,"movie":{"title":"The Matrix","year":1999,"ids":{"trakt":481,"imdb":"tt0133093"}}},
			{"type":"person","score":50.1,"person":{"name":"Keanu Reeves","ids":{"trakt":4}}}
		]`)
		client := newTestClient(t, server.URL, freshCreds())

		results, err := client.Search(context.Background(), "matrix")
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "movie", results[0].Type)
		assert.Equal(t, 120.5, results[0].Score)
		assert.Equal(t, "The Matrix", results[0].Title())
		assert.Equal(t, "Keanu Reeves", results[1].Title())
	})

	t.Run("requires a query", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", freshCreds())

		_, err := client.Search(context.Background(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search query is required")
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", freshCreds())

		_, err := client.Search(context.Background(), "dune", SearchType("book"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search type must be one of")
	})
}

func TestSearchByID(t *testing.T) {
	t.Run("paths", func(t *testing.T) {
		tests := []struct {
			name      string
			idType    string
			id        string
			mediaType SearchType
			wantPath  string
			wantType  string
		}{
			{"tmdb with explicit type", "tmdb", "27205", SearchTypeMovie, "/search/tmdb/27205", "movie"},
			{"imdb without type", "imdb", "tt1375666", "", "/search/imdb/tt1375666", ""},
			{"plain trakt id", "trakt", "1388", "", "/search/trakt/1388", ""},
			{"trakt-show implies show", "trakt-show", "1388", "", "/search/trakt/1388", "show"},
			{"trakt-person implies person", "trakt-person", "4", "", "/search/trakt/4", "person"},
			{"tvdb", "tvdb", "81189", SearchTypeShow, "/search/tvdb/81189", "show"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server, rec := newRecordingServer(t, `[]`)
				client := newTestClient(t, server.URL, freshCreds())

				_, err := client.SearchByID(context.Background(), tt.idType, tt.id, tt.mediaType)
				require.NoError(t, err)

				assert.Equal(t, tt.wantPath, rec.path)

				query, err := url.ParseQuery(rec.query)
				require.NoError(t, err)
				assert.Equal(t, tt.wantType, query.Get("type"))
			})
		}
	})

	t.Run("decodes results", func(t *testing.T) {
		server, _ := newRecordingServer(t, `[
			{"type":"show","score":1000,
			 "show":{"title":"Breaking Bad","year":2008,"ids":{"trakt":1388,"tvdb":81189}}}
		]`)
		client := newTestClient(t, server.URL, freshCreds())

		results, err := client.SearchByID(context.Background(), "tvdb", "81189", SearchTypeShow)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Breaking Bad", results[0].Title())
		assert.Equal(t, 81189, results[0].Show.IDs.TVDB)
	})

	t.Run("rejects unknown id types", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", freshCreds())

		_, err := client.SearchByID(context.Background(), "isbn", "123", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id type must be one of")
	})

	t.Run("requires an id", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", freshCreds())

		_, err := client.SearchByID(context.Background(), "imdb", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search id is required")
	})

	t.Run("rejects unknown media types", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", freshCreds())

		_, err := client.SearchByID(context.Background(), "imdb", "tt1375666", SearchType("book"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search type must be one of")
	})
}
