package apperr

import (
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	err := errors.Wrap(Network("search songs", io.ErrUnexpectedEOF), "load page 2")
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.True(t, Retryable(err))
	assert.Equal(t, KindUnknown, KindOf(io.EOF))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", API("get album", 401), "Unauthorized. Please login again."},
		{"server", API("get album", 503), "Service unavailable."},
		{"unmapped", API("get album", 418), "Unexpected error occurred (Code: 418)"},
		{"catalog failure", API("get album", 0), "The catalog could not complete the request"},
		{"network", Network("search", io.EOF), "No internet connection"},
		{"decode", Decode("search", io.EOF), "Unexpected response from server"},
		{"no stream", Playback("play", ErrNoStream), "This track has no playable stream"},
		{"generic", errors.New("boom"), "Something went wrong"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(API("x", 500)))
	assert.True(t, Retryable(API("x", 429)))
	assert.False(t, Retryable(API("x", 404)))
	assert.False(t, Retryable(Decode("x", io.EOF)))
}

func TestClassify(t *testing.T) {
	ev := Classify(errors.Wrap(API("get artist songs", 401), "artist detail"))
	assert.Equal(t, EventUnauthorized, ev.Kind)

	ev = Classify(API("get artist songs", 500))
	assert.Equal(t, EventShowError, ev.Kind)
	assert.Equal(t, "Internal server error.", ev.Message)
}

func TestHandlerPublishes(t *testing.T) {
	h := NewHandler()
	events, unsubscribe := h.Subscribe()
	defer unsubscribe()

	h.Handle(nil)
	h.Handle(ErrEmptyResult)
	h.Handle(API("get album", 401))

	select {
	case ev := <-events:
		require.Equal(t, EventUnauthorized, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}
