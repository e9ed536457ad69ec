package domain

// Image is one artwork candidate, e.g. {"500x500", "https://..."}.
type Image struct {
	Quality string
	URL     string
}

// StreamSource is one audio stream candidate, e.g. {"320kbps", "https://..."}.
type StreamSource struct {
	Quality string
	URL     string
}

// Track represents one playable song. Tracks are built once from a catalog
// response and never modified afterwards.
type Track struct {
	ID       string
	Title    string
	Artist   string // primary artist name
	ArtistID string
	Album    string
	AlbumID  string
	Duration int // in seconds
	Language string
	Year     string
	Explicit bool
	Artwork  []Image
	Streams  []StreamSource
}

// ArtworkURL returns the preferred artwork URL for the track.
func (t Track) ArtworkURL() string {
	return ResolveArtwork(t.Artwork)
}

// StreamURL returns the preferred stream URL for the track.
func (t Track) StreamURL() (string, error) {
	return ResolveStream(t.Streams)
}

// Artist is a catalog artist summary.
type Artist struct {
	ID      string
	Name    string
	Role    string
	Artwork []Image
}

// Album is a catalog album summary.
type Album struct {
	ID        string
	Name      string
	Artist    string
	Year      string
	Language  string
	SongCount int
	Artwork   []Image
}

// AlbumDetail is an album with its track list.
type AlbumDetail struct {
	Album
	Tracks []Track
}

// Playlist is a catalog playlist summary.
type Playlist struct {
	ID            string
	Name          string
	Language      string
	SongCount     int
	FollowerCount int
	Artwork       []Image
}

// PlaylistDetail is a playlist with its track list.
type PlaylistDetail struct {
	Playlist
	Tracks []Track
}

// Page is one page of paged track results. Keys start at 1; a zero PrevKey
// or NextKey means there is no such page.
type Page struct {
	Items   []Track
	Key     int
	PrevKey int
	NextKey int
}

// HasNext reports whether another page can be requested after this one.
func (p Page) HasNext() bool { return p.NextKey != 0 }

// RepeatMode is the transport's repeat setting.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// Next cycles Off -> All -> One -> Off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// TransportState mirrors what the media transport last reported.
type TransportState struct {
	IsPlaying  bool
	PositionMs int64
	DurationMs int64
	Shuffle    bool
	Repeat     RepeatMode
}

// Progress returns the playback position as a fraction in [0, 1].
func (s TransportState) Progress() float64 {
	if s.DurationMs <= 0 {
		return 0
	}
	p := float64(s.PositionMs) / float64(s.DurationMs)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
