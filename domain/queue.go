package domain

import "github.com/google/uuid"

// Queue is the ordered list of tracks being played plus the active index.
// Index is -1 when the queue is empty.
type Queue struct {
	ID     string
	Tracks []Track
	Index  int
}

// NewQueue copies tracks into a fresh queue positioned at start. An
// out-of-range start falls back to the first track.
func NewQueue(tracks []Track, start int) Queue {
	if len(tracks) == 0 {
		return Queue{Index: -1}
	}
	if start < 0 || start >= len(tracks) {
		start = 0
	}
	owned := make([]Track, len(tracks))
	copy(owned, tracks)
	return Queue{ID: uuid.NewString(), Tracks: owned, Index: start}
}

// Len returns the number of queued tracks.
func (q Queue) Len() int { return len(q.Tracks) }

// IsEmpty reports whether nothing is queued.
func (q Queue) IsEmpty() bool { return len(q.Tracks) == 0 }

// Current returns the active track, or nil.
func (q Queue) Current() *Track {
	if q.Index < 0 || q.Index >= len(q.Tracks) {
		return nil
	}
	t := q.Tracks[q.Index]
	return &t
}

// IndexOf returns the position of the track with the given id, or -1.
func (q Queue) IndexOf(id string) int {
	for i, t := range q.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Upcoming returns the tracks after the active one.
func (q Queue) Upcoming() []Track {
	if q.Index < 0 || q.Index >= len(q.Tracks)-1 {
		return nil
	}
	return q.Tracks[q.Index+1:]
}
