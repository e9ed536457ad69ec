package library

import (
	"context"
	"html"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/saavn"
)

type SaavnLibrary struct {
	client *saavn.Client
}

var _ Catalog = (*SaavnLibrary)(nil)

func NewSaavnLibrary(client *saavn.Client) *SaavnLibrary {
	return &SaavnLibrary{
		client: client,
	}
}

func (s *SaavnLibrary) SearchSongs(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	return s.SearchSongsPage(ctx, query, 1, limit)
}

func (s *SaavnLibrary) SearchSongsPage(ctx context.Context, query string, page, limit int) ([]domain.Track, error) {
	res, err := s.client.SearchSongs(ctx, query, page, limit)
	if err != nil {
		return nil, err
	}
	logger.Debug("search songs %q page %d: %d of %d", query, page, len(res.Results), res.Total)
	return convertToDomainTracks(res.Results), nil
}

func (s *SaavnLibrary) SearchArtists(ctx context.Context, query string, limit int) ([]domain.Artist, error) {
	res, err := s.client.SearchArtists(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	artists := make([]domain.Artist, len(res.Results))
	for i, a := range res.Results {
		artists[i] = domain.Artist{
			ID:      a.ID,
			Name:    html.UnescapeString(a.Name),
			Role:    a.Role,
			Artwork: convertImages(a.Image),
		}
	}
	return artists, nil
}

func (s *SaavnLibrary) SearchAlbums(ctx context.Context, query string, limit int) ([]domain.Album, error) {
	res, err := s.client.SearchAlbums(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	albums := make([]domain.Album, len(res.Results))
	for i, a := range res.Results {
		albums[i] = convertToDomainAlbum(a)
	}
	return albums, nil
}

func (s *SaavnLibrary) SearchPlaylists(ctx context.Context, query string, limit int) ([]domain.Playlist, error) {
	res, err := s.client.SearchPlaylists(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	playlists := make([]domain.Playlist, len(res.Results))
	for i, p := range res.Results {
		playlists[i] = convertToDomainPlaylist(p)
	}
	return playlists, nil
}

// GetAlbum fails with apperr.ErrEmptyResult when the catalog has no such album.
func (s *SaavnLibrary) GetAlbum(ctx context.Context, id string) (*domain.AlbumDetail, error) {
	album, err := s.client.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, apperr.ErrEmptyResult
	}
	return &domain.AlbumDetail{
		Album:  convertToDomainAlbum(*album),
		Tracks: convertToDomainTracks(album.Songs),
	}, nil
}

func (s *SaavnLibrary) GetPlaylist(ctx context.Context, id string) (*domain.PlaylistDetail, error) {
	playlist, err := s.client.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, apperr.ErrEmptyResult
	}
	return &domain.PlaylistDetail{
		Playlist: convertToDomainPlaylist(*playlist),
		Tracks:   convertToDomainTracks(playlist.Songs),
	}, nil
}

func (s *SaavnLibrary) GetArtistSongs(ctx context.Context, artistID string, page int) ([]domain.Track, error) {
	res, err := s.client.GetArtistSongs(ctx, artistID, page)
	if err != nil {
		return nil, err
	}
	return convertToDomainTracks(res.Tracks()), nil
}

func convertToDomainTracks(songs []saavn.Song) []domain.Track {
	tracks := make([]domain.Track, len(songs))
	for i, song := range songs {
		tracks[i] = convertToDomainTrack(song)
	}
	return tracks
}

func convertToDomainTrack(song saavn.Song) domain.Track {
	artist, artistID := html.UnescapeString(song.Label), ""
	if len(song.Artists.Primary) > 0 {
		artist = html.UnescapeString(song.Artists.Primary[0].Name)
		artistID = song.Artists.Primary[0].ID
	}

	streams := make([]domain.StreamSource, len(song.DownloadURL))
	for i, d := range song.DownloadURL {
		streams[i] = domain.StreamSource{Quality: d.Quality, URL: d.URL}
	}

	return domain.Track{
		ID:       song.ID,
		Title:    html.UnescapeString(song.Name),
		Artist:   artist,
		ArtistID: artistID,
		Album:    html.UnescapeString(song.Album.Name),
		AlbumID:  song.Album.ID,
		Duration: song.Duration,
		Language: song.Language,
		Year:     song.Year,
		Explicit: song.ExplicitContent,
		Artwork:  convertImages(song.Image),
		Streams:  streams,
	}
}

func convertToDomainAlbum(a saavn.Album) domain.Album {
	album := domain.Album{
		ID:        a.ID,
		Name:      html.UnescapeString(a.Name),
		Year:      a.Year,
		Language:  a.Language,
		SongCount: a.SongCount,
		Artwork:   convertImages(a.Image),
	}
	if len(a.Artists.Primary) > 0 {
		album.Artist = html.UnescapeString(a.Artists.Primary[0].Name)
	}
	if album.SongCount == 0 {
		album.SongCount = len(a.Songs)
	}
	return album
}

func convertToDomainPlaylist(p saavn.Playlist) domain.Playlist {
	playlist := domain.Playlist{
		ID:            p.ID,
		Name:          html.UnescapeString(p.Name),
		Language:      p.Language,
		SongCount:     p.SongCount,
		FollowerCount: p.FollowerCount,
		Artwork:       convertImages(p.Image),
	}
	if playlist.SongCount == 0 {
		playlist.SongCount = len(p.Songs)
	}
	return playlist
}

func convertImages(images []saavn.Image) []domain.Image {
	out := make([]domain.Image, len(images))
	for i, img := range images {
		out[i] = domain.Image{Quality: img.Quality, URL: img.URL}
	}
	return out
}
