package player

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/mpvplayer"
)

// mpvEngine is the part of mpvplayer.Engine the transport drives.
type mpvEngine interface {
	Signals() <-chan mpvplayer.Signal
	LoadQueue(uris []string, start int) error
	SetPause(paused bool) error
	IsPaused() (bool, error)
	IsIdle() (bool, error)
	Path() (string, error)
	Position() (time.Duration, error)
	Duration() (time.Duration, error)
	PlaylistPos() (int, error)
	PlaylistCount() (int, error)
	Seek(pos time.Duration) error
	Next() error
	Prev() error
	Shuffle(on bool) error
	SetLoop(playlist, file bool) error
	Close()
}

// MPVTransport implements Transport on top of libmpv. mpv keeps the
// playlist; items are matched back by URI so the mapping survives shuffling.
type MPVTransport struct {
	engine mpvEngine
	events *eventQueue
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu         sync.Mutex
	idByURI    map[string]string
	shuffle    bool
	repeat     domain.RepeatMode
	playing    bool
	activeID   string
	durationMs int64
	closed     bool
}

// NewMPVConnector returns a Connector that starts an mpv engine.
func NewMPVConnector() Connector {
	return func(ctx context.Context) (Transport, error) {
		engine, err := mpvplayer.NewEngine(context.Background())
		if err != nil {
			return nil, apperr.Playback("connect mpv", err)
		}
		if err := ctx.Err(); err != nil {
			engine.Close()
			return nil, err
		}
		return newMPVTransport(engine), nil
	}
}

func newMPVTransport(engine mpvEngine) *MPVTransport {
	ctx, cancel := context.WithCancel(context.Background())
	t := &MPVTransport{
		engine:  engine,
		events:  newEventQueue(),
		cancel:  cancel,
		idByURI: make(map[string]string),
	}
	t.wg.Go(func() {
		t.listen(ctx)
	})
	return t
}

func (t *MPVTransport) SetQueue(items []Item, start int) error {
	uris := make([]string, len(items))
	byURI := make(map[string]string, len(items))
	for i, item := range items {
		uris[i] = item.URI
		byURI[item.URI] = item.ID
	}

	t.mu.Lock()
	t.idByURI = byURI
	t.activeID = ""
	t.durationMs = 0
	shuffle := t.shuffle
	t.mu.Unlock()

	if err := t.engine.LoadQueue(uris, start); err != nil {
		return apperr.Playback("set queue", err)
	}
	if shuffle {
		// a fresh mpv playlist is in order; keep the user's shuffle setting
		if err := t.engine.Shuffle(true); err != nil {
			return apperr.Playback("set queue", err)
		}
	}
	return nil
}

func (t *MPVTransport) Play() error {
	return wrapPlayback("play", t.engine.SetPause(false))
}

func (t *MPVTransport) Pause() error {
	return wrapPlayback("pause", t.engine.SetPause(true))
}

func (t *MPVTransport) Seek(ms int64) error {
	return wrapPlayback("seek", t.engine.Seek(time.Duration(ms)*time.Millisecond))
}

func (t *MPVTransport) SkipNext() error {
	return wrapPlayback("next", t.engine.Next())
}

func (t *MPVTransport) SkipPrevious() error {
	return wrapPlayback("previous", t.engine.Prev())
}

func (t *MPVTransport) HasNext() bool {
	if t.Repeat() == domain.RepeatAll {
		count, err := t.engine.PlaylistCount()
		return err == nil && count > 0
	}
	pos, err := t.engine.PlaylistPos()
	if err != nil || pos < 0 {
		return false
	}
	count, err := t.engine.PlaylistCount()
	return err == nil && pos < count-1
}

func (t *MPVTransport) HasPrevious() bool {
	if t.Repeat() == domain.RepeatAll {
		count, err := t.engine.PlaylistCount()
		return err == nil && count > 0
	}
	pos, err := t.engine.PlaylistPos()
	return err == nil && pos > 0
}

func (t *MPVTransport) SetShuffle(on bool) error {
	if err := t.engine.Shuffle(on); err != nil {
		return apperr.Playback("shuffle", err)
	}
	t.mu.Lock()
	t.shuffle = on
	t.mu.Unlock()
	t.emit(Event{Type: EventShuffleChanged, Shuffle: on})
	return nil
}

func (t *MPVTransport) Shuffle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shuffle
}

func (t *MPVTransport) SetRepeat(mode domain.RepeatMode) error {
	if err := t.engine.SetLoop(mode == domain.RepeatAll, mode == domain.RepeatOne); err != nil {
		return apperr.Playback("repeat", err)
	}
	t.mu.Lock()
	t.repeat = mode
	t.mu.Unlock()
	t.emit(Event{Type: EventRepeatChanged, Repeat: mode})
	return nil
}

func (t *MPVTransport) Repeat() domain.RepeatMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repeat
}

func (t *MPVTransport) Position() (int64, error) {
	pos, err := t.engine.Position()
	if err != nil {
		return 0, apperr.Playback("position", err)
	}
	return pos.Milliseconds(), nil
}

func (t *MPVTransport) Events() <-chan Event {
	return t.events.C()
}

func (t *MPVTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.engine.Close()
	t.wg.Wait()
	t.events.close()
	return nil
}

func (t *MPVTransport) listen(ctx context.Context) {
	signals := t.engine.Signals()
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			t.handle(sig)
		}
	}
}

func (t *MPVTransport) handle(sig mpvplayer.Signal) {
	switch sig {
	case mpvplayer.SignalFileLoaded:
		t.syncActive()
		t.syncDuration()
		t.syncPlaying()
	case mpvplayer.SignalPropertyChange:
		t.syncActive()
		t.syncDuration()
		t.syncPlaying()
	case mpvplayer.SignalIdle:
		t.setPlaying(false)
	case mpvplayer.SignalShutdown:
		t.setPlaying(false)
		t.emit(Event{Type: EventError, Err: apperr.Playback("mpv", errors.New("mpv shut down"))})
	}
}

func (t *MPVTransport) syncActive() {
	path, err := t.engine.Path()
	if err != nil || path == "" {
		return
	}
	t.mu.Lock()
	id, ok := t.idByURI[path]
	changed := ok && id != t.activeID
	if changed {
		t.activeID = id
		t.durationMs = 0
	}
	t.mu.Unlock()

	if !ok {
		logger.Debug("mpv: loaded path not in queue: %s", path)
		return
	}
	if changed {
		t.emit(Event{Type: EventActiveItemChanged, ItemID: id})
	}
}

func (t *MPVTransport) syncDuration() {
	d, err := t.engine.Duration()
	if err != nil || d <= 0 {
		return
	}
	ms := d.Milliseconds()
	t.mu.Lock()
	changed := ms != t.durationMs
	t.durationMs = ms
	t.mu.Unlock()
	if changed {
		t.emit(Event{Type: EventReady, DurationMs: ms})
	}
}

func (t *MPVTransport) syncPlaying() {
	paused, err := t.engine.IsPaused()
	if err != nil {
		return
	}
	idle, err := t.engine.IsIdle()
	if err != nil {
		return
	}
	t.setPlaying(!paused && !idle)
}

func (t *MPVTransport) setPlaying(playing bool) {
	t.mu.Lock()
	changed := playing != t.playing
	t.playing = playing
	t.mu.Unlock()
	if changed {
		t.emit(Event{Type: EventIsPlayingChanged, IsPlaying: playing})
	}
}

func (t *MPVTransport) emit(e Event) {
	t.events.push(e)
}

func wrapPlayback(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Playback(op, err)
}
