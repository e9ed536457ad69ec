package saavn

import (
	"encoding/json"
	"net/http"
	"time"
)

type Client struct {
	BaseURL     string
	PageSize    int
	HttpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// Response is the envelope every catalog endpoint answers with.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type SearchResult[T any] struct {
	Total   int `json:"total"`
	Start   int `json:"start"`
	Results []T `json:"results"`
}

type Image struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

type DownloadURL struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

type ArtistRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Role  string  `json:"role"`
	Type  string  `json:"type"`
	Image []Image `json:"image"`
	URL   string  `json:"url"`
}

type Artists struct {
	Primary  []ArtistRef `json:"primary"`
	Featured []ArtistRef `json:"featured"`
	All      []ArtistRef `json:"all"`
}

type AlbumRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Song struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	Year            string        `json:"year"`
	Duration        int           `json:"duration"` // in seconds
	Label           string        `json:"label"`
	ExplicitContent bool          `json:"explicitContent"`
	PlayCount       int           `json:"playCount"`
	Language        string        `json:"language"`
	HasLyrics       bool          `json:"hasLyrics"`
	URL             string        `json:"url"`
	Copyright       string        `json:"copyright"`
	Album           AlbumRef      `json:"album"`
	Artists         Artists       `json:"artists"`
	Image           []Image       `json:"image"`
	DownloadURL     []DownloadURL `json:"downloadUrl"`
}

type Album struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Year      string  `json:"year"`
	Language  string  `json:"language"`
	Label     string  `json:"label"`
	SongCount int     `json:"songCount"`
	Artists   Artists `json:"artists"`
	Image     []Image `json:"image"`
	Songs     []Song  `json:"songs"`
}

type Artist struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Role  string  `json:"role"`
	Type  string  `json:"type"`
	URL   string  `json:"url"`
	Image []Image `json:"image"`
}

type Playlist struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	Language      string  `json:"language"`
	SongCount     int     `json:"songCount"`
	FollowerCount int     `json:"followerCount"`
	Image         []Image `json:"image"`
	Songs         []Song  `json:"songs"`
}

// ArtistSongs is the artist songs payload. Some deployments answer with
// "songs", others with "results".
type ArtistSongs struct {
	Total   int    `json:"total"`
	Songs   []Song `json:"songs"`
	Results []Song `json:"results"`
}

// Tracks returns whichever song list the server filled.
func (a *ArtistSongs) Tracks() []Song {
	if len(a.Songs) > 0 {
		return a.Songs
	}
	return a.Results
}
