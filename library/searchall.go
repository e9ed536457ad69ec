package library

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/yhkl-dev/SaavnCLI/domain"
)

// Everything holds the results of one query across all catalog sections.
type Everything struct {
	Tracks    []domain.Track
	Artists   []domain.Artist
	Albums    []domain.Album
	Playlists []domain.Playlist
}

// IsEmpty reports whether no section matched.
func (e Everything) IsEmpty() bool {
	return len(e.Tracks) == 0 && len(e.Artists) == 0 && len(e.Albums) == 0 && len(e.Playlists) == 0
}

// SearchAll queries every section concurrently. Sections that fail are left
// empty and their errors combined into the returned error, so callers can
// still show what did load.
func SearchAll(ctx context.Context, c Catalog, query string, limit int) (Everything, error) {
	var out Everything
	p := pool.New().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		tracks, err := c.SearchSongs(ctx, query, limit)
		out.Tracks = tracks
		return errors.Wrap(err, "tracks")
	})
	p.Go(func(ctx context.Context) error {
		artists, err := c.SearchArtists(ctx, query, limit)
		out.Artists = artists
		return errors.Wrap(err, "artists")
	})
	p.Go(func(ctx context.Context) error {
		albums, err := c.SearchAlbums(ctx, query, limit)
		out.Albums = albums
		return errors.Wrap(err, "albums")
	})
	p.Go(func(ctx context.Context) error {
		playlists, err := c.SearchPlaylists(ctx, query, limit)
		out.Playlists = playlists
		return errors.Wrap(err, "playlists")
	})

	err := p.Wait()
	return out, err
}
