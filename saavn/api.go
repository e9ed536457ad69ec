package saavn

import (
	"context"
	"strconv"
)

const (
	pathSearchSongs     = "api/search/songs"
	pathSearchArtists   = "api/search/artists"
	pathSearchAlbums    = "api/search/albums"
	pathSearchPlaylists = "api/search/playlists"
	pathAlbums          = "api/albums"
	pathPlaylists       = "api/playlists"
	pathArtistSongs     = "api/artists/songs"
)

// SearchSongs returns one page of songs matching query. page starts at 1;
// a non-positive limit falls back to the client's page size.
func (c *Client) SearchSongs(ctx context.Context, query string, page, limit int) (*SearchResult[Song], error) {
	var result SearchResult[Song]
	params := c.buildParams(map[string]string{
		"query": query,
		"page":  strconv.Itoa(c.page(page)),
		"limit": strconv.Itoa(c.limit(limit)),
	})
	if err := c.get(ctx, "search songs", pathSearchSongs, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SearchArtists(ctx context.Context, query string, limit int) (*SearchResult[Artist], error) {
	var result SearchResult[Artist]
	params := c.buildParams(map[string]string{
		"query": query,
		"limit": strconv.Itoa(c.limit(limit)),
	})
	if err := c.get(ctx, "search artists", pathSearchArtists, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) (*SearchResult[Album], error) {
	var result SearchResult[Album]
	params := c.buildParams(map[string]string{
		"query": query,
		"limit": strconv.Itoa(c.limit(limit)),
	})
	if err := c.get(ctx, "search albums", pathSearchAlbums, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) (*SearchResult[Playlist], error) {
	var result SearchResult[Playlist]
	params := c.buildParams(map[string]string{
		"query": query,
		"limit": strconv.Itoa(c.limit(limit)),
	})
	if err := c.get(ctx, "search playlists", pathSearchPlaylists, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAlbum returns the album with its songs. A successful response without
// data yields a nil album and no error.
func (c *Client) GetAlbum(ctx context.Context, id string) (*Album, error) {
	var album *Album
	params := c.buildParams(map[string]string{"id": id})
	if err := c.get(ctx, "get album", pathAlbums, params, &album); err != nil {
		return nil, err
	}
	return album, nil
}

func (c *Client) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	var playlist *Playlist
	params := c.buildParams(map[string]string{"id": id})
	if err := c.get(ctx, "get playlist", pathPlaylists, params, &playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// GetArtistSongs returns one alphabetical page of an artist's songs.
func (c *Client) GetArtistSongs(ctx context.Context, id string, page int) (*ArtistSongs, error) {
	var result ArtistSongs
	params := c.buildParams(map[string]string{
		"id":       id,
		"page":     strconv.Itoa(c.page(page)),
		"category": "alphabetical",
	})
	if err := c.get(ctx, "get artist songs", pathArtistSongs, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) page(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func (c *Client) limit(limit int) int {
	if limit > 0 {
		return limit
	}
	if c.PageSize > 0 {
		return c.PageSize
	}
	return 20
}
