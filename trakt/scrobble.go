package trakt

import (
	"context"
	"fmt"
	"time"
)

// watchedThreshold is the progress percentage at which the API counts a
// stopped scrobble as watched.
const watchedThreshold = 80.0

// ScrobbleMedia identifies what is playing. Exactly one field is set.
type ScrobbleMedia struct {
	Movie   *Movie   `json:"movie,omitempty"`
	Episode *Episode `json:"episode,omitempty"`
}

// validate ensures exactly one record is set
func (m ScrobbleMedia) validate() error {
	if (m.Movie == nil) == (m.Episode == nil) {
		return fmt.Errorf("exactly one of movie or episode is required")
	}
	return nil
}

// ScrobbleResult is the API's record of a scrobble event
type ScrobbleResult struct {
	ID       int64    `json:"id"`
	Action   string   `json:"action"`
	Progress float64  `json:"progress"`
	Movie    *Movie   `json:"movie,omitempty"`
	Episode  *Episode `json:"episode,omitempty"`
}

// scrobblePayload is the body shared by the scrobble endpoints
type scrobblePayload struct {
	Progress   float64  `json:"progress"`
	AppVersion string   `json:"app_version,omitempty"`
	Date       string   `json:"date,omitempty"`
	Movie      *Movie   `json:"movie,omitempty"`
	Episode    *Episode `json:"episode,omitempty"`
}

// Scrobbler tracks what a media center is playing by sending start, pause
// and stop events for one movie or episode. Progress is a percentage
// between 0 and 100; it is remembered across events so Finish can decide
// whether the media was effectively watched.
type Scrobbler struct {
	client     *Client
	media      ScrobbleMedia
	progress   float64
	appVersion string
	appDate    string
}

// NewScrobbler creates a scrobbler for one movie or episode. appVersion
// and appDate describe the media center build sending the events.
func (c *Client) NewScrobbler(media ScrobbleMedia, appVersion, appDate string) (*Scrobbler, error) {
	if err := media.validate(); err != nil {
		return nil, err
	}

	return &Scrobbler{
		client:     c,
		media:      media,
		appVersion: appVersion,
		appDate:    appDate,
	}, nil
}

// Progress returns the most recently reported progress percentage
func (s *Scrobbler) Progress() float64 {
	return s.progress
}

// Start reports playback has begun or resumed at the given progress
func (s *Scrobbler) Start(ctx context.Context, progress float64) (*ScrobbleResult, error) {
	s.progress = progress
	return s.post(ctx, "scrobble/start")
}

// Pause reports playback paused at the given progress. The position is
// saved server-side so playback can resume elsewhere.
func (s *Scrobbler) Pause(ctx context.Context, progress float64) (*ScrobbleResult, error) {
	s.progress = progress
	return s.post(ctx, "scrobble/pause")
}

// Stop reports playback stopped at the given progress. The API counts a
// stop at 80% or more as watched.
func (s *Scrobbler) Stop(ctx context.Context, progress float64) (*ScrobbleResult, error) {
	s.progress = progress
	return s.post(ctx, "scrobble/stop")
}

// Update re-sends a start event carrying fresh progress
func (s *Scrobbler) Update(ctx context.Context, progress float64) (*ScrobbleResult, error) {
	return s.Start(ctx, progress)
}

// Finish stops the scrobble as fully watched, forcing progress to 100 when
// it never crossed the watched threshold.
func (s *Scrobbler) Finish(ctx context.Context) (*ScrobbleResult, error) {
	if s.progress < watchedThreshold {
		s.progress = 100.0
	}
	return s.post(ctx, "scrobble/stop")
}

// post sends the current scrobble state to one of the scrobble endpoints
func (s *Scrobbler) post(ctx context.Context, path string) (*ScrobbleResult, error) {
	payload := scrobblePayload{
		Progress:   s.progress,
		AppVersion: s.appVersion,
		Date:       s.appDate,
		Movie:      s.media.Movie,
		Episode:    s.media.Episode,
	}

	var result ScrobbleResult
	if err := s.client.Post(ctx, path, payload, &result); err != nil {
		return nil, fmt.Errorf("failed to scrobble: %w", err)
	}
	return &result, nil
}

// Sharing selects which connected services a checkin posts to
type Sharing struct {
	Twitter  bool `json:"twitter"`
	Mastodon bool `json:"mastodon"`
	Tumblr   bool `json:"tumblr"`
}

// CheckinOptions carries the optional checkin fields
type CheckinOptions struct {
	Message    string
	AppVersion string
	AppDate    string
	VenueID    string
	VenueName  string
	Sharing    *Sharing
}

// CheckinResult is the API's record of an active checkin
type CheckinResult struct {
	ID        int64     `json:"id"`
	WatchedAt time.Time `json:"watched_at"`
	Sharing   *Sharing  `json:"sharing,omitempty"`
	Movie     *Movie    `json:"movie,omitempty"`
	Episode   *Episode  `json:"episode,omitempty"`
}

// checkinPayload is the checkin endpoint's request body
type checkinPayload struct {
	AppVersion string   `json:"app_version,omitempty"`
	AppDate    string   `json:"app_date,omitempty"`
	Message    string   `json:"message,omitempty"`
	Sharing    *Sharing `json:"sharing,omitempty"`
	VenueID    string   `json:"venue_id,omitempty"`
	VenueName  string   `json:"venue_name,omitempty"`
	Movie      *Movie   `json:"movie,omitempty"`
	Episode    *Episode `json:"episode,omitempty"`
}

// Checkin tells followers what the user is watching right now. The API
// allows one active checkin at a time; starting another before the first
// expires answers 409.
func (c *Client) Checkin(ctx context.Context, media ScrobbleMedia, opts CheckinOptions) (*CheckinResult, error) {
	if err := media.validate(); err != nil {
		return nil, err
	}

	payload := checkinPayload{
		AppVersion: opts.AppVersion,
		AppDate:    opts.AppDate,
		Message:    opts.Message,
		Sharing:    opts.Sharing,
		VenueID:    opts.VenueID,
		VenueName:  opts.VenueName,
		Movie:      media.Movie,
		Episode:    media.Episode,
	}

	var result CheckinResult
	if err := c.Post(ctx, "checkin", payload, &result); err != nil {
		return nil, fmt.Errorf("failed to check in: %w", err)
	}
	return &result, nil
}

// DeleteCheckin cancels the active checkin
func (c *Client) DeleteCheckin(ctx context.Context) error {
	if err := c.Delete(ctx, "checkin"); err != nil {
		return fmt.Errorf("failed to delete checkin: %w", err)
	}
	return nil
}
