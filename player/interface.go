package player

import (
	"context"

	"github.com/yhkl-dev/SaavnCLI/domain"
)

// Item is one entry of a transport queue.
type Item struct {
	ID         string
	URI        string
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	Duration   int // in seconds
}

// EventType identifies a transport callback.
type EventType int

const (
	EventIsPlayingChanged EventType = iota
	EventReady
	EventActiveItemChanged
	EventShuffleChanged
	EventRepeatChanged
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventIsPlayingChanged:
		return "is-playing-changed"
	case EventReady:
		return "ready"
	case EventActiveItemChanged:
		return "active-item-changed"
	case EventShuffleChanged:
		return "shuffle-changed"
	case EventRepeatChanged:
		return "repeat-changed"
	default:
		return "error"
	}
}

// Event is a callback from the transport. Only the fields matching Type are
// set.
type Event struct {
	Type       EventType
	IsPlaying  bool
	DurationMs int64
	ItemID     string
	Shuffle    bool
	Repeat     domain.RepeatMode
	Err        error
}

// Transport is a media engine that plays a queue of items. Commands return
// quickly; their effect is confirmed later through Events.
type Transport interface {
	// SetQueue replaces the queue and prepares the item at start.
	SetQueue(items []Item, start int) error

	Play() error
	Pause() error

	// Seek moves within the active item, in milliseconds.
	Seek(ms int64) error

	SkipNext() error
	SkipPrevious() error
	HasNext() bool
	HasPrevious() bool

	SetShuffle(on bool) error
	Shuffle() bool
	SetRepeat(mode domain.RepeatMode) error
	Repeat() domain.RepeatMode

	// Position returns the playback position of the active item in
	// milliseconds.
	Position() (int64, error)

	// Events delivers callbacks until the transport is closed.
	Events() <-chan Event

	// Close stops playback and releases the engine.
	Close() error
}

// Connector binds a transport. It may block, so callers run it off their
// event loop.
type Connector func(ctx context.Context) (Transport, error)
