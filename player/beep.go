package player

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/logger"
)

// SpeakerRate is the output sample rate of the beep backend.
const SpeakerRate = beep.SampleRate(44100)

// Fetcher turns a remote stream URL into a local file path.
type Fetcher func(ctx context.Context, url string) (string, error)

// device is the audio output. The speaker package is the real one.
type device interface {
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

type speakerDevice struct{}

func (speakerDevice) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerDevice) Clear()               { speaker.Clear() }
func (speakerDevice) Lock()                { speaker.Lock() }
func (speakerDevice) Unlock()              { speaker.Unlock() }

var (
	speakerOnce sync.Once
	speakerErr  error
)

// NewBeepConnector returns a Connector for the pure-Go backend. It decodes
// mp3, wav and ogg vorbis; remote streams are downloaded with fetch first.
func NewBeepConnector(fetch Fetcher) Connector {
	return func(ctx context.Context) (Transport, error) {
		speakerOnce.Do(func() {
			speakerErr = speaker.Init(SpeakerRate, SpeakerRate.N(time.Second/10))
		})
		if speakerErr != nil {
			return nil, apperr.Playback("connect speaker", speakerErr)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return newBeepTransport(fetch, speakerDevice{}, SpeakerRate, rand.New(rand.NewSource(time.Now().UnixNano()))), nil
	}
}

type loadedTrack struct {
	item     Item
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tempFile string
}

// BeepTransport keeps the queue itself and plays one decoded file at a time.
type BeepTransport struct {
	fetch  Fetcher
	dev    device
	rate   beep.SampleRate
	events *eventQueue
	wg     conc.WaitGroup

	mu         sync.Mutex
	rng        *rand.Rand
	items      []Item
	order      *playOrder
	shuffle    bool
	repeat     domain.RepeatMode
	playing    bool
	ended      bool
	token      uint64
	cancelLoad context.CancelFunc
	track      *loadedTrack
	closed     bool
}

func newBeepTransport(fetch Fetcher, dev device, rate beep.SampleRate, rng *rand.Rand) *BeepTransport {
	return &BeepTransport{
		fetch:  fetch,
		dev:    dev,
		rate:   rate,
		events: newEventQueue(),
		rng:    rng,
		order:  newPlayOrder(0, 0, false, rng),
	}
}

func (t *BeepTransport) SetQueue(items []Item, start int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.items = append([]Item(nil), items...)
	t.order = newPlayOrder(len(items), start, t.shuffle, t.rng)
	t.ended = false
	if len(items) == 0 {
		t.stopLocked()
		return nil
	}
	t.loadLocked()
	return nil
}

func (t *BeepTransport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || len(t.items) == 0 {
		return nil
	}
	if t.ended {
		t.ended = false
		t.order.rewind()
		t.loadLocked()
	}
	t.setPlayingLocked(true)
	return nil
}

func (t *BeepTransport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.setPlayingLocked(false)
	return nil
}

func (t *BeepTransport) Seek(ms int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.track == nil {
		return nil
	}
	tr := t.track
	n := tr.format.SampleRate.N(time.Duration(ms) * time.Millisecond)
	if n < 0 {
		n = 0
	}
	t.dev.Lock()
	if last := tr.streamer.Len() - 1; n > last && last >= 0 {
		n = last
	}
	err := tr.streamer.Seek(n)
	t.dev.Unlock()
	return wrapPlayback("seek", err)
}

func (t *BeepTransport) SkipNext() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.order.next(t.repeat == domain.RepeatAll); ok {
		t.ended = false
		t.loadLocked()
	}
	return nil
}

func (t *BeepTransport) SkipPrevious() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.order.prev(t.repeat == domain.RepeatAll); ok {
		t.ended = false
		t.loadLocked()
	}
	return nil
}

func (t *BeepTransport) HasNext() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.hasNext(t.repeat == domain.RepeatAll)
}

func (t *BeepTransport) HasPrevious() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.hasPrev(t.repeat == domain.RepeatAll)
}

func (t *BeepTransport) SetShuffle(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shuffle = on
	t.order.setShuffle(on, t.rng)
	t.emitLocked(Event{Type: EventShuffleChanged, Shuffle: on})
	return nil
}

func (t *BeepTransport) Shuffle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shuffle
}

func (t *BeepTransport) SetRepeat(mode domain.RepeatMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.repeat = mode
	t.emitLocked(Event{Type: EventRepeatChanged, Repeat: mode})
	return nil
}

func (t *BeepTransport) Repeat() domain.RepeatMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repeat
}

func (t *BeepTransport) Position() (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.track == nil {
		return 0, nil
	}
	t.dev.Lock()
	pos := t.track.streamer.Position()
	t.dev.Unlock()
	return t.track.format.SampleRate.D(pos).Milliseconds(), nil
}

func (t *BeepTransport) Events() <-chan Event {
	return t.events.C()
}

func (t *BeepTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.token++
	t.stopLocked()
	t.mu.Unlock()

	t.wg.Wait()
	t.events.close()
	return nil
}

// loadLocked starts loading the active entry of the order, abandoning any
// load still running.
func (t *BeepTransport) loadLocked() {
	t.stopLocked()
	idx := t.order.current()
	if idx < 0 {
		return
	}
	item := t.items[idx]
	t.token++
	token := t.token
	ctx, cancel := context.WithCancel(context.Background())
	t.cancelLoad = cancel
	t.emitLocked(Event{Type: EventActiveItemChanged, ItemID: item.ID})

	t.wg.Go(func() {
		t.load(ctx, token, item)
	})
}

func (t *BeepTransport) load(ctx context.Context, token uint64, item Item) {
	path, tempFile := item.URI, ""
	if isRemote(item.URI) {
		if t.fetch == nil {
			t.failLoad(token, apperr.Playback("load", errors.New("no fetcher for remote stream")))
			return
		}
		p, err := t.fetch(ctx, item.URI)
		if err != nil {
			if ctx.Err() == nil {
				t.failLoad(token, err)
			}
			return
		}
		path, tempFile = p, p
	}

	streamer, format, err := decodeFile(path)
	if err != nil {
		removeTemp(tempFile)
		t.failLoad(token, err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.token || t.closed {
		streamer.Close()
		removeTemp(tempFile)
		return
	}

	var s beep.Streamer = streamer
	if format.SampleRate != t.rate {
		s = beep.Resample(4, format.SampleRate, t.rate, streamer)
	}
	ctrl := &beep.Ctrl{
		Streamer: beep.Seq(s, beep.Callback(func() {
			// runs under the device lock
			go t.finished(token)
		})),
		Paused: !t.playing,
	}
	t.track = &loadedTrack{item: item, streamer: streamer, format: format, ctrl: ctrl, tempFile: tempFile}
	t.cancelLoad = nil
	t.dev.Play(ctrl)

	logger.Debug("beep: loaded %s (%s)", item.ID, item.Title)
	t.emitLocked(Event{Type: EventReady, DurationMs: format.SampleRate.D(streamer.Len()).Milliseconds()})
}

func (t *BeepTransport) failLoad(token uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.token || t.closed {
		return
	}
	logger.Warn("beep: load failed: %v", err)
	t.cancelLoad = nil
	t.setPlayingLocked(false)
	t.emitLocked(Event{Type: EventError, Err: err})
}

// finished advances after the active track played to its end.
func (t *BeepTransport) finished(token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.token || t.closed {
		return
	}
	if t.repeat == domain.RepeatOne {
		t.loadLocked()
		return
	}
	if _, ok := t.order.next(t.repeat == domain.RepeatAll); ok {
		t.loadLocked()
		return
	}
	t.ended = true
	t.setPlayingLocked(false)
}

func (t *BeepTransport) setPlayingLocked(playing bool) {
	if t.track != nil {
		t.dev.Lock()
		t.track.ctrl.Paused = !playing
		t.dev.Unlock()
	}
	if playing == t.playing {
		return
	}
	t.playing = playing
	t.emitLocked(Event{Type: EventIsPlayingChanged, IsPlaying: playing})
}

// stopLocked cancels loading and releases the active track.
func (t *BeepTransport) stopLocked() {
	if t.cancelLoad != nil {
		t.cancelLoad()
		t.cancelLoad = nil
	}
	if t.track == nil {
		return
	}
	t.dev.Clear()
	t.track.streamer.Close()
	removeTemp(t.track.tempFile)
	t.track = nil
}

func (t *BeepTransport) emitLocked(e Event) {
	if t.closed {
		return
	}
	t.events.push(e)
}

func isRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3", ".wav", ".ogg", ".oga":
	default:
		return nil, beep.Format{}, apperr.Playback("decode", errors.Errorf("unsupported stream format %q", ext))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, apperr.Playback("decode", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, apperr.Playback("decode", err)
	}
	return streamer, format, nil
}

func removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Debug("beep: remove %s: %v", path, err)
	}
}
