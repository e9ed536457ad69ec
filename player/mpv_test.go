package player

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/mpvplayer"
)

type fakeEngine struct {
	mu       sync.Mutex
	signals  chan mpvplayer.Signal
	closed   bool
	uris     []string
	start    int
	path     string
	paused   bool
	idle     bool
	duration time.Duration
	pos      int
	count    int
	loop     [2]bool
	shuffles []bool
	seek     time.Duration
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{signals: make(chan mpvplayer.Signal, 8), paused: true, idle: true}
}

func (f *fakeEngine) Signals() <-chan mpvplayer.Signal { return f.signals }

func (f *fakeEngine) LoadQueue(uris []string, start int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uris, f.start, f.pos, f.count = uris, start, start, len(uris)
	return nil
}

func (f *fakeEngine) SetPause(paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
	return nil
}

func (f *fakeEngine) IsPaused() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused, nil
}

func (f *fakeEngine) IsIdle() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idle, nil
}

func (f *fakeEngine) Path() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path, nil
}

func (f *fakeEngine) Position() (time.Duration, error) { return 1500 * time.Millisecond, nil }

func (f *fakeEngine) Duration() (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, nil
}

func (f *fakeEngine) PlaylistPos() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, nil
}

func (f *fakeEngine) PlaylistCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, nil
}

func (f *fakeEngine) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seek = pos
	return nil
}

func (f *fakeEngine) Next() error { return nil }
func (f *fakeEngine) Prev() error { return nil }

func (f *fakeEngine) Shuffle(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shuffles = append(f.shuffles, on)
	return nil
}

func (f *fakeEngine) SetLoop(playlist, file bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loop = [2]bool{playlist, file}
	return nil
}

func (f *fakeEngine) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.signals)
	}
}

// loaded simulates mpv starting to play uri.
func (f *fakeEngine) loaded(uri string, d time.Duration) {
	f.mu.Lock()
	f.path, f.duration, f.idle, f.paused = uri, d, false, false
	f.mu.Unlock()
	f.signals <- mpvplayer.SignalFileLoaded
}

func TestMPVMapsLoadedPathToItem(t *testing.T) {
	eng := newFakeEngine()
	tr := newMPVTransport(eng)
	defer tr.Close()

	items := []Item{{ID: "t1", URI: "https://a/1"}, {ID: "t2", URI: "https://a/2"}}
	require.NoError(t, tr.SetQueue(items, 1))
	assert.Equal(t, []string{"https://a/1", "https://a/2"}, eng.uris)
	assert.Equal(t, 1, eng.start)

	eng.loaded("https://a/2", 3*time.Minute)
	assert.Equal(t, "t2", nextEvent(t, tr.Events(), EventActiveItemChanged).ItemID)
	assert.Equal(t, int64(180000), nextEvent(t, tr.Events(), EventReady).DurationMs)
	assert.True(t, nextEvent(t, tr.Events(), EventIsPlayingChanged).IsPlaying)

	assert.False(t, tr.HasNext())
	assert.True(t, tr.HasPrevious())
}

func TestMPVIgnoresUnknownPath(t *testing.T) {
	eng := newFakeEngine()
	tr := newMPVTransport(eng)
	defer tr.Close()

	require.NoError(t, tr.SetQueue([]Item{{ID: "t1", URI: "https://a/1"}}, 0))
	eng.loaded("https://elsewhere", time.Second)

	e := nextEvent(t, tr.Events(), EventReady)
	assert.Equal(t, int64(1000), e.DurationMs)
	select {
	case e := <-tr.Events():
		assert.NotEqual(t, EventActiveItemChanged, e.Type)
	default:
	}
}

func TestMPVRepeatAndShuffle(t *testing.T) {
	eng := newFakeEngine()
	tr := newMPVTransport(eng)
	defer tr.Close()

	require.NoError(t, tr.SetRepeat(domain.RepeatOne))
	assert.Equal(t, [2]bool{false, true}, eng.loop)
	assert.Equal(t, domain.RepeatOne, nextEvent(t, tr.Events(), EventRepeatChanged).Repeat)

	require.NoError(t, tr.SetRepeat(domain.RepeatAll))
	assert.Equal(t, [2]bool{true, false}, eng.loop)

	require.NoError(t, tr.SetShuffle(true))
	assert.True(t, tr.Shuffle())
	assert.True(t, nextEvent(t, tr.Events(), EventShuffleChanged).Shuffle)

	require.NoError(t, tr.SetQueue([]Item{{ID: "t1", URI: "u1"}}, 0))
	assert.Equal(t, []bool{true, true}, eng.shuffles, "shuffle is reapplied to a new playlist")
	assert.True(t, tr.HasNext(), "repeat all wraps")
}

func TestMPVSeekAndPosition(t *testing.T) {
	eng := newFakeEngine()
	tr := newMPVTransport(eng)
	defer tr.Close()

	require.NoError(t, tr.Seek(2500))
	assert.Equal(t, 2500*time.Millisecond, eng.seek)
	pos, err := tr.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(1500), pos)
}

func TestMPVCloseIsIdempotent(t *testing.T) {
	eng := newFakeEngine()
	tr := newMPVTransport(eng)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.True(t, eng.closed)
	_, ok := <-tr.Events()
	assert.False(t, ok)
}
