// Package browse loads album, artist and playlist detail screens and turns
// their track lists into play commands.
package browse

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/library"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/state"
)

const (
	EmptyAlbum    = "Album not found or empty"
	EmptyArtist   = "No songs found for this artist"
	EmptyPlaylist = "Playlist not found or empty"
)

// Player is the part of the playback controller a detail screen drives.
type Player interface {
	PlayQueue(tracks []domain.Track, start int)
}

type Option func(*options)

type options struct {
	errs *apperr.Handler
	rng  *rand.Rand
}

// WithErrorHandler sends load failures to h.
func WithErrorHandler(h *apperr.Handler) Option {
	return func(o *options) { o.errs = h }
}

// WithRand sets the source used by Shuffle.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// Detail is one loaded entity plus its track list.
type Detail[T any] struct {
	ctx    context.Context
	fetch  func(context.Context) (T, error)
	tracks func(T) []domain.Track
	empty  string
	player Player
	opts   options

	state      *state.Value[state.Result[T]]
	generation atomic.Uint64
	rngMu      sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func newDetail[T any](ctx context.Context, p Player, empty string, fetch func(context.Context) (T, error), tracks func(T) []domain.Track, opts []Option) *Detail[T] {
	d := &Detail[T]{
		ctx:    ctx,
		fetch:  fetch,
		tracks: tracks,
		empty:  empty,
		player: p,
		state:  state.NewValue(state.Loading[T]()),
	}
	for _, opt := range opts {
		opt(&d.opts)
	}
	if d.opts.rng == nil {
		d.opts.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d.Retry()
	return d
}

// NewAlbum loads the album with id.
func NewAlbum(ctx context.Context, lookup library.AlbumLookup, id string, p Player, opts ...Option) *Detail[*domain.AlbumDetail] {
	return newDetail(ctx, p, EmptyAlbum,
		func(ctx context.Context) (*domain.AlbumDetail, error) {
			return lookup.GetAlbum(ctx, id)
		},
		func(a *domain.AlbumDetail) []domain.Track {
			if a == nil {
				return nil
			}
			return a.Tracks
		}, opts)
}

// NewPlaylist loads the playlist with id.
func NewPlaylist(ctx context.Context, lookup library.PlaylistLookup, id string, p Player, opts ...Option) *Detail[*domain.PlaylistDetail] {
	return newDetail(ctx, p, EmptyPlaylist,
		func(ctx context.Context) (*domain.PlaylistDetail, error) {
			return lookup.GetPlaylist(ctx, id)
		},
		func(pl *domain.PlaylistDetail) []domain.Track {
			if pl == nil {
				return nil
			}
			return pl.Tracks
		}, opts)
}

// NewArtist loads the first page of songs by the artist with id.
func NewArtist(ctx context.Context, songs library.ArtistTracks, id string, p Player, opts ...Option) *Detail[[]domain.Track] {
	return newDetail(ctx, p, EmptyArtist,
		func(ctx context.Context) ([]domain.Track, error) {
			return songs.GetArtistSongs(ctx, id, 1)
		},
		func(t []domain.Track) []domain.Track { return t }, opts)
}

// State is the observable load result.
func (d *Detail[T]) State() *state.Value[state.Result[T]] { return d.state }

// Tracks returns the loaded track list, or nil while not loaded.
func (d *Detail[T]) Tracks() []domain.Track {
	r := d.state.Get()
	if r.Status != state.StatusSuccess {
		return nil
	}
	return d.tracks(r.Data)
}

// Retry discards any in-flight load and starts a new one.
func (d *Detail[T]) Retry() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(d.ctx)
	d.cancel = cancel
	gen := d.generation.Inc()
	d.state.Set(state.Loading[T]())
	d.wg.Go(func() {
		d.load(ctx, gen)
	})
}

func (d *Detail[T]) load(ctx context.Context, gen uint64) {
	data, err := d.fetch(ctx)
	if ctx.Err() != nil || d.generation.Load() != gen {
		return
	}

	var result state.Result[T]
	switch {
	case apperr.IsEmpty(err), err == nil && len(d.tracks(data)) == 0:
		result = state.FailureMessage[T](apperr.ErrEmptyResult, d.empty)
	case err != nil:
		logger.Warn("browse: load failed: %v", err)
		result = state.Failure[T](err)
		if d.opts.errs != nil {
			d.opts.errs.Handle(err)
		}
	default:
		result = state.Success(data)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.generation.Load() == gen {
		d.state.Set(result)
	}
}

// PlayAll plays the track list from the top.
func (d *Detail[T]) PlayAll() {
	d.PlayTrack(0)
}

// PlayTrack queues the whole list starting at index.
func (d *Detail[T]) PlayTrack(index int) {
	tracks := d.Tracks()
	if len(tracks) == 0 {
		return
	}
	d.player.PlayQueue(tracks, index)
}

// Shuffle plays a shuffled copy of the track list.
func (d *Detail[T]) Shuffle() {
	tracks := d.Tracks()
	if len(tracks) == 0 {
		return
	}
	shuffled := make([]domain.Track, len(tracks))
	copy(shuffled, tracks)
	d.rngMu.Lock()
	d.opts.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	d.rngMu.Unlock()
	d.player.PlayQueue(shuffled, 0)
}

// Close cancels the in-flight load and waits for it.
func (d *Detail[T]) Close() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
