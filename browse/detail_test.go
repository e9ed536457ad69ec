package browse

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/state"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) GetAlbum(ctx context.Context, id string) (*domain.AlbumDetail, error) {
	args := m.Called(ctx, id)
	album, _ := args.Get(0).(*domain.AlbumDetail)
	return album, args.Error(1)
}

func (m *mockLookup) GetPlaylist(ctx context.Context, id string) (*domain.PlaylistDetail, error) {
	args := m.Called(ctx, id)
	pl, _ := args.Get(0).(*domain.PlaylistDetail)
	return pl, args.Error(1)
}

func (m *mockLookup) GetArtistSongs(ctx context.Context, id string, page int) ([]domain.Track, error) {
	args := m.Called(ctx, id, page)
	tracks, _ := args.Get(0).([]domain.Track)
	return tracks, args.Error(1)
}

type recordingPlayer struct {
	mu     sync.Mutex
	queues [][]domain.Track
	starts []int
}

func (p *recordingPlayer) PlayQueue(tracks []domain.Track, start int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, tracks)
	p.starts = append(p.starts, start)
}

func ids(tracks []domain.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func settled[T any](t *testing.T, d *Detail[T]) state.Result[T] {
	t.Helper()
	var r state.Result[T]
	require.Eventually(t, func() bool {
		r = d.State().Get()
		return r.Status != state.StatusLoading
	}, time.Second, 5*time.Millisecond)
	return r
}

func album(ids ...string) *domain.AlbumDetail {
	a := &domain.AlbumDetail{Album: domain.Album{ID: "al1", Name: "Album"}}
	for _, id := range ids {
		a.Tracks = append(a.Tracks, domain.Track{ID: id})
	}
	return a
}

func TestAlbumPlayAllAndTrack(t *testing.T) {
	m := &mockLookup{}
	m.On("GetAlbum", mock.Anything, "al1").Return(album("a", "b", "c"), nil)
	p := &recordingPlayer{}

	d := NewAlbum(context.Background(), m, "al1", p)
	defer d.Close()
	r := settled(t, d)
	require.Equal(t, state.StatusSuccess, r.Status)
	assert.Equal(t, "Album", r.Data.Name)

	d.PlayAll()
	d.PlayTrack(2)
	require.Len(t, p.queues, 2)
	assert.Equal(t, []string{"a", "b", "c"}, ids(p.queues[0]))
	assert.Equal(t, []int{0, 2}, p.starts)
	m.AssertExpectations(t)
}

func TestAlbumEmptyIsFailure(t *testing.T) {
	m := &mockLookup{}
	m.On("GetAlbum", mock.Anything, "al1").Return(nil, apperr.ErrEmptyResult).Once()
	m.On("GetAlbum", mock.Anything, "al1").Return(album(), nil).Once()
	p := &recordingPlayer{}

	d := NewAlbum(context.Background(), m, "al1", p)
	defer d.Close()
	r := settled(t, d)
	assert.Equal(t, state.StatusFailure, r.Status)
	assert.Equal(t, EmptyAlbum, r.Message)

	d.Retry()
	r = settled(t, d)
	assert.Equal(t, EmptyAlbum, r.Message, "an album without songs is empty too")

	d.PlayAll()
	d.Shuffle()
	assert.Empty(t, p.queues)
}

func TestArtistEmptyMessage(t *testing.T) {
	m := &mockLookup{}
	m.On("GetArtistSongs", mock.Anything, "ar1", 1).Return([]domain.Track{}, nil)

	d := NewArtist(context.Background(), m, "ar1", &recordingPlayer{})
	defer d.Close()
	r := settled(t, d)
	assert.Equal(t, state.StatusFailure, r.Status)
	assert.Equal(t, EmptyArtist, r.Message)
}

func TestLoadErrorIsReported(t *testing.T) {
	m := &mockLookup{}
	m.On("GetPlaylist", mock.Anything, "pl1").Return(nil, apperr.API("playlist", 401)).Once()
	m.On("GetPlaylist", mock.Anything, "pl1").
		Return(&domain.PlaylistDetail{Tracks: []domain.Track{{ID: "x"}}}, nil).Once()

	h := apperr.NewHandler()
	events, unsubscribe := h.Subscribe()
	defer unsubscribe()

	d := NewPlaylist(context.Background(), m, "pl1", &recordingPlayer{}, WithErrorHandler(h))
	defer d.Close()
	r := settled(t, d)
	assert.Equal(t, state.StatusFailure, r.Status)
	assert.Equal(t, "Unauthorized. Please login again.", r.Message)

	select {
	case e := <-events:
		assert.Equal(t, apperr.EventUnauthorized, e.Kind)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}

	d.Retry()
	r = settled(t, d)
	assert.Equal(t, state.StatusSuccess, r.Status)
	assert.Equal(t, []string{"x"}, ids(d.Tracks()))
}

func TestShufflePlaysCopy(t *testing.T) {
	m := &mockLookup{}
	m.On("GetAlbum", mock.Anything, "al1").Return(album("a", "b", "c", "d", "e"), nil)
	p := &recordingPlayer{}

	d := NewAlbum(context.Background(), m, "al1", p, WithRand(rand.New(rand.NewSource(7))))
	defer d.Close()
	settled(t, d)

	d.Shuffle()
	require.Len(t, p.queues, 1)
	assert.Equal(t, 0, p.starts[0])
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, ids(p.queues[0]))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(d.Tracks()), "loaded order is untouched")
}

func TestRetryDropsStaleLoad(t *testing.T) {
	m := &mockLookup{}
	started, release := make(chan struct{}), make(chan struct{})
	m.On("GetAlbum", mock.Anything, "al1").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(album("old"), nil).Once()
	m.On("GetAlbum", mock.Anything, "al1").Return(album("new"), nil).Once()

	d := NewAlbum(context.Background(), m, "al1", &recordingPlayer{})
	<-started
	d.Retry()
	r := settled(t, d)
	assert.Equal(t, []string{"new"}, ids(r.Data.Tracks))

	close(release)
	d.Close()
	assert.Equal(t, []string{"new"}, ids(d.Tracks()))
}
