// Package playback owns the play queue and drives a media transport. One
// event loop goroutine applies commands and transport callbacks in arrival
// order; screens observe the result through State.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/player"
	"github.com/yhkl-dev/SaavnCLI/state"
)

const DefaultPollInterval = 500 * time.Millisecond

// Status is the transport binding lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is everything a screen needs to render playback.
type Snapshot struct {
	Status    Status
	Err       error
	Message   string
	Queue     domain.Queue
	Current   *domain.Track
	Transport domain.TransportState
}

// CurrentID returns the id of the active track, or "".
func (s Snapshot) CurrentID() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.ID
}

// IsCurrent reports whether the track with id is the active one.
func (s Snapshot) IsCurrent(id string) bool {
	return id != "" && s.CurrentID() == id
}

type Option func(*Controller)

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithConnectTimeout bounds how long binding the transport may take.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.connectTimeout = d
	}
}

// WithErrorHandler reports playback failures to h as well as in State.
func WithErrorHandler(h *apperr.Handler) Option {
	return func(c *Controller) {
		c.errs = h
	}
}

type bindResult struct {
	transport player.Transport
	err       error
}

// Controller is the long-lived playback queue owner.
type Controller struct {
	poll           time.Duration
	connectTimeout time.Duration
	errs           *apperr.Handler
	state          *state.Value[Snapshot]

	cmds   chan func(*loop)
	bound  chan bindResult
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	releaseOnce sync.Once
}

// New starts the event loop and begins binding a transport with connect.
func New(ctx context.Context, connect player.Connector, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		poll:   DefaultPollInterval,
		state:  state.NewValue(Snapshot{Status: StatusIdle, Queue: domain.Queue{Index: -1}}),
		cmds:   make(chan func(*loop)),
		bound:  make(chan bindResult),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	l := &loop{c: c, snap: c.state.Get()}
	l.snap.Status = StatusLoading
	c.state.Set(l.snap)

	c.wg.Go(func() {
		c.bind(connect)
	})
	c.wg.Go(func() {
		defer close(c.done)
		l.run()
	})
	return c
}

// State is the observable playback snapshot.
func (c *Controller) State() *state.Value[Snapshot] { return c.state }

func (c *Controller) bind(connect player.Connector) {
	ctx := c.ctx
	if c.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
	}
	tr, err := connect(ctx)
	select {
	case c.bound <- bindResult{transport: tr, err: err}:
	case <-c.done:
		// released while binding
		if tr != nil {
			if err := tr.Close(); err != nil {
				logger.Warn("playback: closing late transport: %v", err)
			}
		}
	}
}

// do runs fn on the event loop and waits for it. It is a no-op once the
// controller is released.
func (c *Controller) do(fn func(*loop)) {
	finished := make(chan struct{})
	select {
	case c.cmds <- func(l *loop) {
		defer close(finished)
		fn(l)
	}:
		<-finished
	case <-c.done:
	}
}

// PlaySingle plays one track as a queue of one.
func (c *Controller) PlaySingle(track domain.Track) {
	c.PlayQueue([]domain.Track{track}, 0)
}

// PlayQueue replaces the queue with tracks and starts at start. An
// out-of-range start plays the first track; empty input is ignored.
func (c *Controller) PlayQueue(tracks []domain.Track, start int) {
	if len(tracks) == 0 {
		return
	}
	q := domain.NewQueue(tracks, start)
	c.do(func(l *loop) { l.playQueue(q) })
}

func (c *Controller) TogglePlayPause() {
	c.do(func(l *loop) { l.togglePlayPause() })
}

func (c *Controller) Next() {
	c.do(func(l *loop) { l.next() })
}

func (c *Controller) Previous() {
	c.do(func(l *loop) { l.previous() })
}

// SeekTo moves to fraction of the active track, clamped to [0, 1].
func (c *Controller) SeekTo(fraction float64) {
	c.do(func(l *loop) { l.seekTo(fraction) })
}

func (c *Controller) ToggleShuffle() {
	c.do(func(l *loop) { l.toggleShuffle() })
}

func (c *Controller) ToggleRepeat() {
	c.do(func(l *loop) { l.toggleRepeat() })
}

// Release stops polling and closes the transport, including one that
// finishes binding afterwards. Only the first call does any work.
func (c *Controller) Release() error {
	var err error
	c.releaseOnce.Do(func() {
		c.do(func(l *loop) { err = l.release() })
		c.cancel()
		c.wg.Wait()
	})
	return err
}

// loop is the state owned by the event loop goroutine.
type loop struct {
	c         *Controller
	snap      Snapshot
	transport player.Transport
	events    <-chan player.Event
	pending   *domain.Queue
	ticker    *time.Ticker
	tick      <-chan time.Time
	exit      bool
}

func (l *loop) run() {
	for !l.exit {
		select {
		case cmd := <-l.c.cmds:
			cmd(l)
		case res := <-l.c.bound:
			l.onBound(res)
		case ev, ok := <-l.events:
			if !ok {
				l.events = nil
				continue
			}
			l.onEvent(ev)
		case <-l.tick:
			l.onTick()
		case <-l.c.ctx.Done():
			if err := l.release(); err != nil {
				logger.Warn("playback: release on shutdown: %v", err)
			}
		}
	}
}

func (l *loop) publish() {
	l.c.state.Set(l.snap)
}

func (l *loop) report(err error) {
	l.snap.Err = err
	l.snap.Message = apperr.Message(err)
	if l.c.errs != nil {
		l.c.errs.Handle(err)
	}
}

func (l *loop) onBound(res bindResult) {
	if res.err != nil {
		err := res.err
		if apperr.KindOf(err) != apperr.KindPlayback {
			err = apperr.Playback("connect", err)
		}
		logger.Error("playback: transport binding failed: %v", err)
		l.snap.Status = StatusFailed
		l.pending = nil
		l.report(err)
		l.publish()
		return
	}

	l.transport = res.transport
	l.events = res.transport.Events()
	l.snap.Status = StatusReady
	l.snap.Transport.Shuffle = res.transport.Shuffle()
	l.snap.Transport.Repeat = res.transport.Repeat()
	logger.Info("playback: transport ready")
	l.publish()

	if l.pending != nil {
		q := *l.pending
		l.pending = nil
		logger.Debug("playback: replaying buffered queue %s", q.ID)
		l.playQueue(q)
	}
}

// ready reports whether commands can reach the transport, logging the
// dropped command otherwise.
func (l *loop) ready(cmd string) bool {
	if l.transport == nil {
		logger.Debug("playback: %s dropped, transport not bound", cmd)
		return false
	}
	return true
}

func (l *loop) playQueue(q domain.Queue) {
	if l.transport == nil {
		if l.snap.Status == StatusFailed {
			logger.Debug("playback: play dropped, transport unavailable")
			return
		}
		l.pending = &q
		return
	}

	cur := q.Current()
	if _, err := cur.StreamURL(); err != nil {
		logger.Warn("playback: %s has no stream: %v", cur.ID, err)
		l.report(err)
		l.publish()
		return
	}

	items := make([]player.Item, 0, len(q.Tracks))
	playable := make([]domain.Track, 0, len(q.Tracks))
	start := 0
	for i, t := range q.Tracks {
		uri, err := t.StreamURL()
		if err != nil {
			logger.Debug("playback: skipping %s without stream", t.ID)
			continue
		}
		if i == q.Index {
			start = len(items)
		}
		playable = append(playable, t)
		items = append(items, player.Item{
			ID:         t.ID,
			URI:        uri,
			Title:      t.Title,
			Artist:     t.Artist,
			Album:      t.Album,
			ArtworkURL: t.ArtworkURL(),
			Duration:   t.Duration,
		})
	}

	if err := l.transport.SetQueue(items, start); err != nil {
		logger.Error("playback: set queue %s: %v", q.ID, err)
		l.report(err)
		l.publish()
		return
	}
	if err := l.transport.Play(); err != nil {
		logger.Warn("playback: play: %v", err)
	}

	q.Tracks, q.Index = playable, start
	logger.Info("playback: queue %s with %d tracks, starting at %d", q.ID, len(items), start)
	l.snap.Queue = q
	l.snap.Current = cur
	l.snap.Err = nil
	l.snap.Message = ""
	l.snap.Transport.IsPlaying = true
	l.snap.Transport.PositionMs = 0
	l.snap.Transport.DurationMs = int64(cur.Duration) * 1000
	l.startPolling()
	l.publish()
}

func (l *loop) togglePlayPause() {
	if !l.ready("toggle play/pause") || l.snap.Queue.IsEmpty() {
		return
	}
	var err error
	if l.snap.Transport.IsPlaying {
		err = l.transport.Pause()
		l.snap.Transport.IsPlaying = false
		l.stopPolling()
	} else {
		err = l.transport.Play()
		l.snap.Transport.IsPlaying = true
		l.startPolling()
	}
	if err != nil {
		logger.Warn("playback: toggle play/pause: %v", err)
	}
	l.publish()
}

func (l *loop) next() {
	if !l.ready("next") || !l.transport.HasNext() {
		return
	}
	if err := l.transport.SkipNext(); err != nil {
		logger.Warn("playback: next: %v", err)
	}
}

func (l *loop) previous() {
	if !l.ready("previous") || !l.transport.HasPrevious() {
		return
	}
	if err := l.transport.SkipPrevious(); err != nil {
		logger.Warn("playback: previous: %v", err)
	}
}

func (l *loop) seekTo(fraction float64) {
	if !l.ready("seek") {
		return
	}
	duration := l.snap.Transport.DurationMs
	if duration <= 0 {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	ms := int64(fraction * float64(duration))
	if err := l.transport.Seek(ms); err != nil {
		logger.Warn("playback: seek: %v", err)
		return
	}
	l.snap.Transport.PositionMs = ms
	l.publish()
}

func (l *loop) toggleShuffle() {
	if !l.ready("shuffle") {
		return
	}
	on := !l.snap.Transport.Shuffle
	if err := l.transport.SetShuffle(on); err != nil {
		logger.Warn("playback: shuffle: %v", err)
		return
	}
	l.snap.Transport.Shuffle = on
	l.publish()
}

func (l *loop) toggleRepeat() {
	if !l.ready("repeat") {
		return
	}
	mode := l.snap.Transport.Repeat.Next()
	if err := l.transport.SetRepeat(mode); err != nil {
		logger.Warn("playback: repeat: %v", err)
		return
	}
	l.snap.Transport.Repeat = mode
	l.publish()
}

func (l *loop) onEvent(ev player.Event) {
	switch ev.Type {
	case player.EventIsPlayingChanged:
		l.snap.Transport.IsPlaying = ev.IsPlaying
		if ev.IsPlaying {
			l.startPolling()
		} else {
			l.stopPolling()
		}
	case player.EventReady:
		l.snap.Transport.DurationMs = ev.DurationMs
	case player.EventActiveItemChanged:
		idx := l.snap.Queue.IndexOf(ev.ItemID)
		if idx < 0 {
			logger.Debug("playback: active item %s not in queue %s", ev.ItemID, l.snap.Queue.ID)
			return
		}
		l.snap.Queue.Index = idx
		l.snap.Current = l.snap.Queue.Current()
		l.snap.Transport.PositionMs = 0
		l.snap.Transport.DurationMs = int64(l.snap.Current.Duration) * 1000
	case player.EventShuffleChanged:
		l.snap.Transport.Shuffle = ev.Shuffle
	case player.EventRepeatChanged:
		l.snap.Transport.Repeat = ev.Repeat
	case player.EventError:
		logger.Error("playback: transport error: %v", ev.Err)
		l.report(ev.Err)
	}
	l.publish()
}

func (l *loop) startPolling() {
	if l.ticker != nil {
		return
	}
	l.ticker = time.NewTicker(l.c.poll)
	l.tick = l.ticker.C
}

func (l *loop) stopPolling() {
	if l.ticker == nil {
		return
	}
	l.ticker.Stop()
	l.ticker = nil
	l.tick = nil
}

func (l *loop) onTick() {
	if l.transport == nil {
		return
	}
	pos, err := l.transport.Position()
	if err != nil {
		logger.Debug("playback: position: %v", err)
		return
	}
	if pos == l.snap.Transport.PositionMs {
		return
	}
	l.snap.Transport.PositionMs = pos
	l.publish()
}

func (l *loop) release() error {
	l.exit = true
	l.stopPolling()
	l.pending = nil
	var err error
	if l.transport != nil {
		err = multierr.Append(err, l.transport.Close())
		l.transport = nil
		l.events = nil
	}
	logger.Info("playback: released")
	return err
}
