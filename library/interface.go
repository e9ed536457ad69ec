package library

import (
	"context"

	"github.com/yhkl-dev/SaavnCLI/domain"
)

// Search finds tracks by free text. It is all the search pipeline needs.
type Search interface {
	SearchSongs(ctx context.Context, query string, limit int) ([]domain.Track, error)
}

// PagedSearch returns one page of a track search; page starts at 1.
type PagedSearch interface {
	SearchSongsPage(ctx context.Context, query string, page, limit int) ([]domain.Track, error)
}

type ArtistSearch interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]domain.Artist, error)
}

type AlbumSearch interface {
	SearchAlbums(ctx context.Context, query string, limit int) ([]domain.Album, error)
}

type PlaylistSearch interface {
	SearchPlaylists(ctx context.Context, query string, limit int) ([]domain.Playlist, error)
}

type AlbumLookup interface {
	GetAlbum(ctx context.Context, id string) (*domain.AlbumDetail, error)
}

type PlaylistLookup interface {
	GetPlaylist(ctx context.Context, id string) (*domain.PlaylistDetail, error)
}

type ArtistTracks interface {
	GetArtistSongs(ctx context.Context, artistID string, page int) ([]domain.Track, error)
}

// Catalog is the full set of read operations the client offers.
type Catalog interface {
	Search
	PagedSearch
	ArtistSearch
	AlbumSearch
	PlaylistSearch
	AlbumLookup
	PlaylistLookup
	ArtistTracks
}
