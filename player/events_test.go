package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/domain"
)

func TestEventQueueKeepsEverythingInOrder(t *testing.T) {
	q := newEventQueue()
	defer q.close()

	const n = 200
	for i := 0; i < n; i++ {
		q.push(Event{Type: EventReady, DurationMs: int64(i)})
	}
	for i := 0; i < n; i++ {
		select {
		case e := <-q.C():
			require.Equal(t, int64(i), e.DurationMs)
		case <-time.After(time.Second):
			t.Fatalf("event %d never arrived", i)
		}
	}
}

func TestEventQueueCloseWithUnreadEvents(t *testing.T) {
	q := newEventQueue()
	for i := 0; i < 50; i++ {
		q.push(Event{Type: EventReady})
	}

	closed := make(chan struct{})
	go func() {
		q.close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close blocked on an unread event")
	}

	q.push(Event{Type: EventReady})
	for range q.C() {
	}
}

func TestMPVBurstIsNotDropped(t *testing.T) {
	eng := newFakeEngine()
	tr := newMPVTransport(eng)
	defer tr.Close()

	// nobody reads while the modes are toggled, as when the consumer is busy
	modes := []domain.RepeatMode{domain.RepeatOff, domain.RepeatAll, domain.RepeatOne}
	const n = 100
	for i := 0; i < n; i++ {
		require.NoError(t, tr.SetRepeat(modes[i%len(modes)]))
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, modes[i%len(modes)], nextEvent(t, tr.Events(), EventRepeatChanged).Repeat)
	}
}

func TestBeepBurstIsNotDropped(t *testing.T) {
	tr, _ := newTestBeep(nil)
	defer tr.Close()

	const n = 100
	for i := 0; i < n; i++ {
		require.NoError(t, tr.SetShuffle(i%2 == 0))
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, i%2 == 0, nextEvent(t, tr.Events(), EventShuffleChanged).Shuffle)
	}
}
