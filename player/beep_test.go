package player

import (
	"bytes"
	"context"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
)

// fakeDevice stands in for the speaker. drain plays everything queued to the
// end, as if the audio device had consumed it.
type fakeDevice struct {
	mu      sync.Mutex
	streams []beep.Streamer
}

func (d *fakeDevice) Play(s beep.Streamer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams = append(d.streams, s)
}

func (d *fakeDevice) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams = nil
}

func (d *fakeDevice) Lock()   { d.mu.Lock() }
func (d *fakeDevice) Unlock() { d.mu.Unlock() }

func (d *fakeDevice) drain() {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf := make([][2]float64, 512)
	for _, s := range d.streams {
		for i := 0; i < 10000; i++ {
			if _, ok := s.Stream(buf); !ok {
				break
			}
		}
	}
	d.streams = nil
}

// writeWAV writes a 100ms silent 16-bit mono 8kHz file.
func writeWAV(t *testing.T, dir, name string) string {
	t.Helper()
	const rate, samples = 8000, 800
	dataLen := samples * 2

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+dataLen))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*2))
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(dataLen))
	b.Write(make([]byte, dataLen))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func nextEvent(t *testing.T, ch <-chan Event, typ EventType) Event {
	t.Helper()
	return nextMatching(t, ch, typ, func(Event) bool { return true })
}

func nextMatching(t *testing.T, ch <-chan Event, typ EventType, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			require.True(t, ok, "events closed while waiting for %s", typ)
			if e.Type == typ && match(e) {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", typ)
			return Event{}
		}
	}
}

func newTestBeep(fetch Fetcher) (*BeepTransport, *fakeDevice) {
	dev := &fakeDevice{}
	return newBeepTransport(fetch, dev, beep.SampleRate(8000), rand.New(rand.NewSource(1))), dev
}

func TestBeepPlaysQueueToEnd(t *testing.T) {
	dir := t.TempDir()
	items := []Item{
		{ID: "a", URI: writeWAV(t, dir, "a.wav")},
		{ID: "b", URI: writeWAV(t, dir, "b.wav")},
	}
	tr, dev := newTestBeep(nil)
	defer tr.Close()

	require.NoError(t, tr.SetQueue(items, 0))
	require.NoError(t, tr.Play())

	assert.Equal(t, "a", nextEvent(t, tr.Events(), EventActiveItemChanged).ItemID)
	assert.Equal(t, int64(100), nextEvent(t, tr.Events(), EventReady).DurationMs)
	assert.True(t, tr.HasNext())
	assert.False(t, tr.HasPrevious())

	dev.drain()
	assert.Equal(t, "b", nextEvent(t, tr.Events(), EventActiveItemChanged).ItemID)
	nextEvent(t, tr.Events(), EventReady)

	dev.drain()
	nextMatching(t, tr.Events(), EventIsPlayingChanged, func(e Event) bool { return !e.IsPlaying })
	assert.False(t, tr.HasNext(), "queue ends with repeat off")
}

func TestBeepRepeatOneReplays(t *testing.T) {
	dir := t.TempDir()
	tr, dev := newTestBeep(nil)
	defer tr.Close()

	require.NoError(t, tr.SetRepeat(domain.RepeatOne))
	assert.Equal(t, domain.RepeatOne, nextEvent(t, tr.Events(), EventRepeatChanged).Repeat)

	require.NoError(t, tr.SetQueue([]Item{{ID: "a", URI: writeWAV(t, dir, "a.wav")}, {ID: "b", URI: writeWAV(t, dir, "b.wav")}}, 0))
	require.NoError(t, tr.Play())
	nextEvent(t, tr.Events(), EventReady)

	dev.drain()
	assert.Equal(t, "a", nextEvent(t, tr.Events(), EventActiveItemChanged).ItemID)
}

func TestBeepFetchesRemoteStreams(t *testing.T) {
	dir := t.TempDir()
	local := writeWAV(t, dir, "remote.wav")
	var fetched string
	fetch := func(ctx context.Context, url string) (string, error) {
		fetched = url
		return local, nil
	}
	tr, _ := newTestBeep(fetch)
	defer tr.Close()

	require.NoError(t, tr.SetQueue([]Item{{ID: "r", URI: "https://cdn/remote.wav"}}, 0))
	nextEvent(t, tr.Events(), EventReady)
	assert.Equal(t, "https://cdn/remote.wav", fetched)
}

func TestBeepUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	tr, _ := newTestBeep(nil)
	defer tr.Close()
	require.NoError(t, tr.SetQueue([]Item{{ID: "x", URI: path}}, 0))

	e := nextEvent(t, tr.Events(), EventError)
	assert.Equal(t, apperr.KindPlayback, apperr.KindOf(e.Err))
}

func TestBeepSeekAndPosition(t *testing.T) {
	dir := t.TempDir()
	tr, _ := newTestBeep(nil)
	defer tr.Close()

	require.NoError(t, tr.SetQueue([]Item{{ID: "a", URI: writeWAV(t, dir, "a.wav")}}, 0))
	nextEvent(t, tr.Events(), EventReady)

	require.NoError(t, tr.Seek(50))
	pos, err := tr.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(50), pos)
}

func TestBeepCloseIsIdempotent(t *testing.T) {
	tr, _ := newTestBeep(nil)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	_, ok := <-tr.Events()
	assert.False(t, ok)
}
