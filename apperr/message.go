package apperr

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

var apiMessages = map[int]string{
	400: "Bad request. Please try again.",
	401: "Unauthorized. Please login again.",
	403: "Access forbidden.",
	404: "Resource not found.",
	405: "Method not allowed.",
	408: "Request timeout.",
	409: "Conflict occurred.",
	422: "Validation error.",
	429: "Too many requests. Please slow down.",
	500: "Internal server error.",
	501: "Not implemented.",
	502: "Bad gateway.",
	503: "Service unavailable.",
	504: "Gateway timeout.",
}

// Message maps err to the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong"
	}
	switch e.Kind {
	case KindNetwork:
		return "No internet connection"
	case KindAPI:
		if e.Code == 0 {
			return "The catalog could not complete the request"
		}
		if msg, ok := apiMessages[e.Code]; ok {
			return msg
		}
		return fmt.Sprintf("Unexpected error occurred (Code: %d)", e.Code)
	case KindDecode:
		return "Unexpected response from server"
	case KindPlayback:
		if errors.Is(err, ErrNoStream) {
			return "This track has no playable stream"
		}
		return "Playback is unavailable"
	case KindEmptyResult:
		return "No results found"
	default:
		return "Something went wrong"
	}
}

// EventKind distinguishes notifications the UI reacts to.
type EventKind int

const (
	EventShowError EventKind = iota
	EventUnauthorized
)

// Event is a classified failure for the UI layer.
type Event struct {
	Kind    EventKind
	Message string
	Err     error
}

// Classify converts err into an Event. A 401 becomes EventUnauthorized so the
// UI can start re-authentication instead of printing a banner.
func Classify(err error) Event {
	if IsUnauthorized(err) {
		return Event{Kind: EventUnauthorized, Message: Message(err), Err: err}
	}
	return Event{Kind: EventShowError, Message: Message(err), Err: err}
}

// Handler fans classified failures out to subscribers. Publishing never
// blocks; a subscriber that falls behind misses events.
type Handler struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{subs: make(map[int]chan Event)}
}

// Handle classifies err and publishes the resulting Event. Nil and
// empty-result errors are ignored.
func (h *Handler) Handle(err error) {
	if err == nil || IsEmpty(err) {
		return
	}
	ev := Classify(err)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel of events and a function that unsubscribes it.
func (h *Handler) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan Event, 8)
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}
