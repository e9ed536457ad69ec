package mpvplayer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/wildeyedskies/go-mpv/mpv"
)

// Signal is the subset of mpv events the transport reacts to.
type Signal int

const (
	SignalFileLoaded Signal = iota
	SignalEndFile
	SignalPropertyChange
	SignalIdle
	SignalShutdown
)

// Engine owns one libmpv handle and turns its events into Signals.
type Engine struct {
	*mpv.Mpv
	signals chan Signal
	cancel  context.CancelFunc
	wg      conc.WaitGroup
}

func CreateMPVInstance() (*mpv.Mpv, error) {
	mpvInstance := mpv.Create()

	mpvInstance.SetOptionString("audio-display", "no")
	mpvInstance.SetOptionString("video", "no")
	mpvInstance.SetOptionString("idle", "yes")

	err := mpvInstance.Initialize()
	if err != nil {
		mpvInstance.TerminateDestroy()
		return nil, err
	}

	mpvInstance.ObserveProperty(0, "pause", mpv.FORMAT_FLAG)
	mpvInstance.ObserveProperty(0, "duration", mpv.FORMAT_DOUBLE)
	mpvInstance.ObserveProperty(0, "playlist-pos", mpv.FORMAT_INT64)
	return mpvInstance, nil
}

// NewEngine starts mpv and its event listener.
func NewEngine(ctx context.Context) (*Engine, error) {
	mpvInstance, err := CreateMPVInstance()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MPV instance")
	}
	ctx, cancel := context.WithCancel(ctx)
	e := &Engine{
		Mpv:     mpvInstance,
		signals: make(chan Signal, 16),
		cancel:  cancel,
	}
	e.wg.Go(func() {
		e.listen(ctx)
	})
	return e, nil
}

// Signals is closed once the engine is closed or mpv shuts down.
func (e *Engine) Signals() <-chan Signal {
	return e.signals
}

func (e *Engine) listen(ctx context.Context) {
	defer close(e.signals)
	for {
		if ctx.Err() != nil {
			return
		}
		event := e.WaitEvent(0.1)
		if event == nil {
			continue
		}

		var sig Signal
		switch event.Event_Id {
		case mpv.EVENT_FILE_LOADED:
			sig = SignalFileLoaded
		case mpv.EVENT_END_FILE:
			sig = SignalEndFile
		case mpv.EVENT_PROPERTY_CHANGE:
			sig = SignalPropertyChange
		case mpv.EVENT_IDLE:
			sig = SignalIdle
		case mpv.EVENT_SHUTDOWN:
			sig = SignalShutdown
		default:
			continue
		}

		select {
		case e.signals <- sig:
		case <-ctx.Done():
			return
		}
		if sig == SignalShutdown {
			return
		}
	}
}

// LoadQueue replaces the playlist with uris and starts at index start.
func (e *Engine) LoadQueue(uris []string, start int) error {
	for _, cmd := range queueCommands(uris, start) {
		if err := e.Command(cmd); err != nil {
			return errors.Wrapf(err, "%s", cmd[0])
		}
	}
	return nil
}

// queueCommands stops playback, which also empties the playlist, appends
// every uri without playing it, then plays the entry at start.
func queueCommands(uris []string, start int) [][]string {
	if start < 0 || start >= len(uris) {
		start = 0
	}
	cmds := make([][]string, 0, len(uris)+2)
	cmds = append(cmds, []string{"stop"})
	for _, uri := range uris {
		cmds = append(cmds, []string{"loadfile", uri, "append"})
	}
	if len(uris) > 0 {
		cmds = append(cmds, []string{"playlist-play-index", strconv.Itoa(start)})
	}
	return cmds
}

func (e *Engine) SetPause(paused bool) error {
	return e.Command([]string{"set", "pause", yesNo(paused)})
}

func (e *Engine) IsPaused() (bool, error) {
	return e.flagProp("pause")
}

func (e *Engine) IsIdle() (bool, error) {
	return e.flagProp("idle-active")
}

// Path returns the URI of the loaded file, or "" when idle.
func (e *Engine) Path() (string, error) {
	v, err := e.GetProperty("path", mpv.FORMAT_STRING)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// Position returns the playback position of the loaded file.
func (e *Engine) Position() (time.Duration, error) {
	return e.durationProp("time-pos")
}

func (e *Engine) Duration() (time.Duration, error) {
	return e.durationProp("duration")
}

func (e *Engine) PlaylistPos() (int, error) {
	return e.intProp("playlist-pos")
}

func (e *Engine) PlaylistCount() (int, error) {
	return e.intProp("playlist-count")
}

func (e *Engine) Seek(pos time.Duration) error {
	return e.Command([]string{"seek", fmt.Sprintf("%.3f", pos.Seconds()), "absolute"})
}

func (e *Engine) Next() error {
	return e.Command([]string{"playlist-next"})
}

func (e *Engine) Prev() error {
	return e.Command([]string{"playlist-prev"})
}

func (e *Engine) Shuffle(on bool) error {
	if on {
		return e.Command([]string{"playlist-shuffle"})
	}
	return e.Command([]string{"playlist-unshuffle"})
}

// SetLoop configures playlist and single-file looping.
func (e *Engine) SetLoop(playlist, file bool) error {
	if err := e.Command([]string{"set", "loop-playlist", infNo(playlist)}); err != nil {
		return err
	}
	return e.Command([]string{"set", "loop-file", infNo(file)})
}

// Close stops the listener and destroys the mpv handle.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
	e.Command([]string{"quit"})
	e.TerminateDestroy()
}

func (e *Engine) flagProp(name string) (bool, error) {
	v, err := e.GetProperty(name, mpv.FORMAT_FLAG)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func (e *Engine) intProp(name string) (int, error) {
	v, err := e.GetProperty(name, mpv.FORMAT_INT64)
	if err != nil {
		return 0, err
	}
	n, _ := v.(int64)
	return int(n), nil
}

func (e *Engine) durationProp(name string) (time.Duration, error) {
	v, err := e.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	f, _ := v.(float64)
	return time.Duration(f * float64(time.Second)), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func infNo(b bool) string {
	if b {
		return "inf"
	}
	return "no"
}
