package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) SearchSongs(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	args := m.Called(ctx, query, limit)
	tracks, _ := args.Get(0).([]domain.Track)
	return tracks, args.Error(1)
}

func (m *mockCatalog) SearchSongsPage(ctx context.Context, query string, page, limit int) ([]domain.Track, error) {
	args := m.Called(ctx, query, page, limit)
	tracks, _ := args.Get(0).([]domain.Track)
	return tracks, args.Error(1)
}

func (m *mockCatalog) SearchArtists(ctx context.Context, query string, limit int) ([]domain.Artist, error) {
	args := m.Called(ctx, query, limit)
	artists, _ := args.Get(0).([]domain.Artist)
	return artists, args.Error(1)
}

func (m *mockCatalog) SearchAlbums(ctx context.Context, query string, limit int) ([]domain.Album, error) {
	args := m.Called(ctx, query, limit)
	albums, _ := args.Get(0).([]domain.Album)
	return albums, args.Error(1)
}

func (m *mockCatalog) SearchPlaylists(ctx context.Context, query string, limit int) ([]domain.Playlist, error) {
	args := m.Called(ctx, query, limit)
	playlists, _ := args.Get(0).([]domain.Playlist)
	return playlists, args.Error(1)
}

func (m *mockCatalog) GetAlbum(ctx context.Context, id string) (*domain.AlbumDetail, error) {
	args := m.Called(ctx, id)
	album, _ := args.Get(0).(*domain.AlbumDetail)
	return album, args.Error(1)
}

func (m *mockCatalog) GetPlaylist(ctx context.Context, id string) (*domain.PlaylistDetail, error) {
	args := m.Called(ctx, id)
	playlist, _ := args.Get(0).(*domain.PlaylistDetail)
	return playlist, args.Error(1)
}

func (m *mockCatalog) GetArtistSongs(ctx context.Context, artistID string, page int) ([]domain.Track, error) {
	args := m.Called(ctx, artistID, page)
	tracks, _ := args.Get(0).([]domain.Track)
	return tracks, args.Error(1)
}

func TestSearchAllCollectsEverySection(t *testing.T) {
	m := &mockCatalog{}
	m.On("SearchSongs", mock.Anything, "queen", 5).Return([]domain.Track{{ID: "t1"}}, nil)
	m.On("SearchArtists", mock.Anything, "queen", 5).Return([]domain.Artist{{ID: "ar1"}}, nil)
	m.On("SearchAlbums", mock.Anything, "queen", 5).Return([]domain.Album{{ID: "al1"}}, nil)
	m.On("SearchPlaylists", mock.Anything, "queen", 5).Return([]domain.Playlist{{ID: "p1"}}, nil)

	got, err := SearchAll(context.Background(), m, "queen", 5)
	require.NoError(t, err)
	assert.Len(t, got.Tracks, 1)
	assert.Len(t, got.Artists, 1)
	assert.Len(t, got.Albums, 1)
	assert.Len(t, got.Playlists, 1)
	assert.False(t, got.IsEmpty())
	m.AssertExpectations(t)
}

func TestSearchAllKeepsPartialResults(t *testing.T) {
	m := &mockCatalog{}
	m.On("SearchSongs", mock.Anything, "q", 5).Return([]domain.Track{{ID: "t1"}}, nil)
	m.On("SearchArtists", mock.Anything, "q", 5).Return(nil, apperr.API("search artists", 503))
	m.On("SearchAlbums", mock.Anything, "q", 5).Return([]domain.Album{}, nil)
	m.On("SearchPlaylists", mock.Anything, "q", 5).Return([]domain.Playlist{}, nil)

	got, err := SearchAll(context.Background(), m, "q", 5)
	require.Error(t, err)
	assert.Equal(t, 503, apperr.StatusCode(err))
	assert.Len(t, got.Tracks, 1)
	assert.Empty(t, got.Artists)
}
