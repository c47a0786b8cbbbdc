package trakt

import "time"

// MediaType selects a list subset on the watchlist, collection and
// playback endpoints.
type MediaType string

const (
	// MediaTypeMovies selects movie records
	MediaTypeMovies MediaType = "movies"
	// MediaTypeShows selects show records
	MediaTypeShows MediaType = "shows"
	// MediaTypeSeasons selects season records
	MediaTypeSeasons MediaType = "seasons"
	// MediaTypeEpisodes selects episode records
	MediaTypeEpisodes MediaType = "episodes"
)

// IDs carries every external identifier a record is known by
type IDs struct {
	Trakt int    `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
	TVDB  int    `json:"tvdb,omitempty"`
}

// Movie is the compact movie record returned by list endpoints
type Movie struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// Show is the compact show record returned by list endpoints
type Show struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// Season is the compact season record inside list entries
type Season struct {
	Number int `json:"number"`
	IDs    IDs `json:"ids"`
}

// Episode is the compact episode record returned by list endpoints
type Episode struct {
	Season int    `json:"season"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	IDs    IDs    `json:"ids"`
}

// Person is the compact person record returned by search
type Person struct {
	Name string `json:"name"`
	IDs  IDs    `json:"ids"`
}

// User identifies the author of a comment or list
type User struct {
	Username string `json:"username"`
	Private  bool   `json:"private"`
	Name     string `json:"name"`
	VIP      bool   `json:"vip"`
	IDs      IDs    `json:"ids"`
}

// Airs describes a show's broadcast slot
type Airs struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// Alias is an alternative title for a show or movie
type Alias struct {
	Title   string `json:"title"`
	Country string `json:"country"`
}

// Genre is a named genre tag
type Genre struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Comment is a user comment or review attached to a media record
type Comment struct {
	ID         int       `json:"id"`
	ParentID   int       `json:"parent_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Comment    string    `json:"comment"`
	Spoiler    bool      `json:"spoiler"`
	Review     bool      `json:"review"`
	Replies    int       `json:"replies"`
	Likes      int       `json:"likes"`
	UserRating int       `json:"user_rating"`
	User       User      `json:"user"`
}

// ListEntry is one row of a watchlist
type ListEntry struct {
	Rank     int       `json:"rank"`
	ID       int       `json:"id"`
	ListedAt time.Time `json:"listed_at"`
	Notes    string    `json:"notes"`
	Type     string    `json:"type"`
	Movie    *Movie    `json:"movie,omitempty"`
	Show     *Show     `json:"show,omitempty"`
	Season   *Season   `json:"season,omitempty"`
	Episode  *Episode  `json:"episode,omitempty"`
}

// Title returns the title of the most specific record the entry wraps.
// Season rows have no title of their own and report the show's.
func (e ListEntry) Title() string {
	switch {
	case e.Movie != nil:
		return e.Movie.Title
	case e.Episode != nil:
		return e.Episode.Title
	case e.Show != nil:
		return e.Show.Title
	}
	return ""
}

// Year returns the release year of whichever record the entry wraps
func (e ListEntry) Year() int {
	switch {
	case e.Movie != nil:
		return e.Movie.Year
	case e.Show != nil:
		return e.Show.Year
	}
	return 0
}

// CollectedEntry is one row of a collection listing. Movie rows carry
// CollectedAt; show rows carry LastCollectedAt plus per-season detail.
type CollectedEntry struct {
	CollectedAt     time.Time         `json:"collected_at"`
	LastCollectedAt time.Time         `json:"last_collected_at"`
	LastUpdatedAt   time.Time         `json:"last_updated_at"`
	Movie           *Movie            `json:"movie,omitempty"`
	Show            *Show             `json:"show,omitempty"`
	Seasons         []CollectedSeason `json:"seasons,omitempty"`
}

// Title returns the title of whichever record the entry wraps
func (e CollectedEntry) Title() string {
	switch {
	case e.Movie != nil:
		return e.Movie.Title
	case e.Show != nil:
		return e.Show.Title
	}
	return ""
}

// Year returns the release year of whichever record the entry wraps
func (e CollectedEntry) Year() int {
	switch {
	case e.Movie != nil:
		return e.Movie.Year
	case e.Show != nil:
		return e.Show.Year
	}
	return 0
}

// CollectedSeason lists the collected episodes of one season
type CollectedSeason struct {
	Number   int                `json:"number"`
	Episodes []CollectedEpisode `json:"episodes,omitempty"`
}

// CollectedEpisode records when one episode entered the collection
type CollectedEpisode struct {
	Number      int       `json:"number"`
	CollectedAt time.Time `json:"collected_at"`
}

// PlaybackEntry is a paused playback position
type PlaybackEntry struct {
	ID       int       `json:"id"`
	Progress float64   `json:"progress"`
	PausedAt time.Time `json:"paused_at"`
	Type     string    `json:"type"`
	Movie    *Movie    `json:"movie,omitempty"`
	Show     *Show     `json:"show,omitempty"`
	Episode  *Episode  `json:"episode,omitempty"`
}

// HistoryEntry is one watched-history event
type HistoryEntry struct {
	ID        int64     `json:"id"`
	WatchedAt time.Time `json:"watched_at"`
	Action    string    `json:"action"`
	Type      string    `json:"type"`
	Movie     *Movie    `json:"movie,omitempty"`
	Show      *Show     `json:"show,omitempty"`
	Episode   *Episode  `json:"episode,omitempty"`
}

// RatingEntry is one rated record
type RatingEntry struct {
	RatedAt time.Time `json:"rated_at"`
	Rating  int       `json:"rating"`
	Type    string    `json:"type"`
	Movie   *Movie    `json:"movie,omitempty"`
	Show    *Show     `json:"show,omitempty"`
	Season  *Season   `json:"season,omitempty"`
	Episode *Episode  `json:"episode,omitempty"`
}

// SyncMovie is one movie in a sync write payload
type SyncMovie struct {
	Title       string     `json:"title,omitempty"`
	Year        int        `json:"year,omitempty"`
	IDs         IDs        `json:"ids"`
	WatchedAt   *time.Time `json:"watched_at,omitempty"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
	RatedAt     *time.Time `json:"rated_at,omitempty"`
	Rating      int        `json:"rating,omitempty"`
}

// SyncShow is one show in a sync write payload
type SyncShow struct {
	Title       string     `json:"title,omitempty"`
	Year        int        `json:"year,omitempty"`
	IDs         IDs        `json:"ids"`
	WatchedAt   *time.Time `json:"watched_at,omitempty"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
	RatedAt     *time.Time `json:"rated_at,omitempty"`
	Rating      int        `json:"rating,omitempty"`
}

// SyncSeason is one season in a sync write payload
type SyncSeason struct {
	IDs       IDs        `json:"ids"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
	RatedAt   *time.Time `json:"rated_at,omitempty"`
	Rating    int        `json:"rating,omitempty"`
}

// SyncEpisode is one episode in a sync write payload
type SyncEpisode struct {
	IDs         IDs        `json:"ids"`
	WatchedAt   *time.Time `json:"watched_at,omitempty"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
	RatedAt     *time.Time `json:"rated_at,omitempty"`
	Rating      int        `json:"rating,omitempty"`
}

// SyncItems is the write payload shared by the history, watchlist,
// collection and ratings endpoints. Empty sections are omitted from the
// JSON body.
type SyncItems struct {
	Movies   []SyncMovie   `json:"movies,omitempty"`
	Shows    []SyncShow    `json:"shows,omitempty"`
	Seasons  []SyncSeason  `json:"seasons,omitempty"`
	Episodes []SyncEpisode `json:"episodes,omitempty"`
}

// IsEmpty reports whether the payload contains no records
func (s SyncItems) IsEmpty() bool {
	return len(s.Movies) == 0 && len(s.Shows) == 0 && len(s.Seasons) == 0 && len(s.Episodes) == 0
}

// SyncCounts counts affected records per media type
type SyncCounts struct {
	Movies   int `json:"movies"`
	Shows    int `json:"shows"`
	Seasons  int `json:"seasons"`
	Episodes int `json:"episodes"`
}

// SyncMissing lists the payload records the API could not match
type SyncMissing struct {
	Movies   []SyncMovie   `json:"movies,omitempty"`
	Shows    []SyncShow    `json:"shows,omitempty"`
	Seasons  []SyncSeason  `json:"seasons,omitempty"`
	Episodes []SyncEpisode `json:"episodes,omitempty"`
}

// SyncResult reports what a sync write changed
type SyncResult struct {
	Added    *SyncCounts  `json:"added,omitempty"`
	Deleted  *SyncCounts  `json:"deleted,omitempty"`
	Existing *SyncCounts  `json:"existing,omitempty"`
	NotFound *SyncMissing `json:"not_found,omitempty"`
}
