package trakt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrobbleMovie() ScrobbleMedia {
	return ScrobbleMedia{
		Movie: &Movie{Title: "Inception", Year: 2010, IDs: IDs{Trakt: 16662}},
	}
}

func TestScrobbleMediaValidate(t *testing.T) {
	movie := &Movie{Title: "Inception", Year: 2010}
	episode := &Episode{Season: 1, Number: 1}

	tests := []struct {
		name    string
		media   ScrobbleMedia
		wantErr bool
	}{
		{"movie only", ScrobbleMedia{Movie: movie}, false},
		{"episode only", ScrobbleMedia{Episode: episode}, false},
		{"neither", ScrobbleMedia{}, true},
		{"both", ScrobbleMedia{Movie: movie, Episode: episode}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.media.validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "exactly one of movie or episode")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewScrobbler(t *testing.T) {
	client := newTestClient(t, "http://localhost", freshCreds())

	t.Run("valid media", func(t *testing.T) {
		scrobbler, err := client.NewScrobbler(scrobbleMovie(), "1.0", "2024-03-01")
		require.NoError(t, err)
		assert.Zero(t, scrobbler.Progress())
	})

	t.Run("invalid media", func(t *testing.T) {
		_, err := client.NewScrobbler(ScrobbleMedia{}, "1.0", "2024-03-01")
		require.Error(t, err)
	})
}

func TestScrobblerEvents(t *testing.T) {
	tests := []struct {
		name     string
		send     func(ctx context.Context, s *Scrobbler) (*ScrobbleResult, error)
		wantPath string
		wantProg float64
	}{
		{
			"start",
			func(ctx context.Context, s *Scrobbler) (*ScrobbleResult, error) { return s.Start(ctx, 1.5) },
			"/scrobble/start", 1.5,
		},
		{
			"pause",
			func(ctx context.Context, s *Scrobbler) (*ScrobbleResult, error) { return s.Pause(ctx, 42.0) },
			"/scrobble/pause", 42.0,
		},
		{
			"stop",
			func(ctx context.Context, s *Scrobbler) (*ScrobbleResult, error) { return s.Stop(ctx, 97.0) },
			"/scrobble/stop", 97.0,
		},
		{
			"update resends start",
			func(ctx context.Context, s *Scrobbler) (*ScrobbleResult, error) { return s.Update(ctx, 55.0) },
			"/scrobble/start", 55.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, rec := newRecordingServer(t, `{"id":999,"action":"scrobble","progress":100}`)
			client := newTestClient(t, server.URL, freshCreds())

			scrobbler, err := client.NewScrobbler(scrobbleMovie(), "1.0", "2024-03-01")
			require.NoError(t, err)

			result, err := tt.send(context.Background(), scrobbler)
			require.NoError(t, err)
			assert.Equal(t, int64(999), result.ID)

			assert.Equal(t, tt.wantPath, rec.path)
			assert.Equal(t, tt.wantProg, scrobbler.Progress())

			var sent map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.body, &sent))
			assert.Equal(t, tt.wantProg, sent["progress"])
			assert.Equal(t, "1.0", sent["app_version"])
			assert.Equal(t, "2024-03-01", sent["date"])
			assert.NotNil(t, sent["movie"])
		})
	}
}

func TestScrobblerFinish(t *testing.T) {
	t.Run("below the watched threshold forces full progress", func(t *testing.T) {
		server, rec := newRecordingServer(t, `{"id":999,"action":"scrobble","progress":100}`)
		client := newTestClient(t, server.URL, freshCreds())

		scrobbler, err := client.NewScrobbler(scrobbleMovie(), "", "")
		require.NoError(t, err)

		_, err = scrobbler.Pause(context.Background(), 35.0)
		require.NoError(t, err)

		_, err = scrobbler.Finish(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "/scrobble/stop", rec.path)
		assert.Equal(t, 100.0, scrobbler.Progress())

		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.body, &sent))
		assert.Equal(t, 100.0, sent["progress"])
	})

	t.Run("past the watched threshold keeps its progress", func(t *testing.T) {
		server, rec := newRecordingServer(t, `{"id":999,"action":"scrobble","progress":92.5}`)
		client := newTestClient(t, server.URL, freshCreds())

		scrobbler, err := client.NewScrobbler(scrobbleMovie(), "", "")
		require.NoError(t, err)

		_, err = scrobbler.Pause(context.Background(), 92.5)
		require.NoError(t, err)

		_, err = scrobbler.Finish(context.Background())
		require.NoError(t, err)

		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.body, &sent))
		assert.Equal(t, 92.5, sent["progress"])
	})
}

func TestCheckin(t *testing.T) {
	t.Run("posts the checkin", func(t *testing.T) {
		server, rec := newRecordingServer(t, `{
			"id":3373536619,"watched_at":"2024-03-01T12:00:00Z",
			"movie":{"title":"Inception","year":2010,"ids":{"trakt":16662}}
		}`)
		client := newTestClient(t, server.URL, freshCreds())

		result, err := client.Checkin(context.Background(), scrobbleMovie(), CheckinOptions{
			Message:    "movie night",
			AppVersion: "1.0",
			AppDate:    "2024-03-01",
			Sharing:    &Sharing{Mastodon: true},
		})
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/checkin", rec.path)
		assert.Equal(t, int64(3373536619), result.ID)

		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.body, &sent))
		assert.Equal(t, "movie night", sent["message"])
		assert.Equal(t, "1.0", sent["app_version"])
		assert.Equal(t, "2024-03-01", sent["app_date"])
		assert.NotNil(t, sent["sharing"])
		assert.NotNil(t, sent["movie"])
	})

	t.Run("already checked in", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		defer server.Close()
		client := newTestClient(t, server.URL, freshCreds())

		_, err := client.Checkin(context.Background(), scrobbleMovie(), CheckinOptions{})
		require.Error(t, err)

		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, KindConflict, apiErr.Kind)
	})

	t.Run("invalid media", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", freshCreds())

		_, err := client.Checkin(context.Background(), ScrobbleMedia{}, CheckinOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of movie or episode")
	})
}

func TestDeleteCheckin(t *testing.T) {
	server, rec := newRecordingServer(t, ``)
	client := newTestClient(t, server.URL, freshCreds())

	require.NoError(t, client.DeleteCheckin(context.Background()))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/checkin", rec.path)
}
