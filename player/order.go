package player

import "math/rand"

// playOrder is the sequence in which queue indices are played, plus the
// position of the active one within it.
type playOrder struct {
	order []int
	pos   int
}

func newPlayOrder(n, start int, shuffle bool, rng *rand.Rand) *playOrder {
	o := &playOrder{order: make([]int, n)}
	for i := range o.order {
		o.order[i] = i
	}
	if start >= 0 && start < n {
		o.pos = start
	}
	if shuffle {
		o.setShuffle(true, rng)
	}
	return o
}

// current returns the active queue index, or -1 for an empty order.
func (o *playOrder) current() int {
	if len(o.order) == 0 {
		return -1
	}
	return o.order[o.pos]
}

func (o *playOrder) hasNext(wrap bool) bool {
	n := len(o.order)
	return n > 0 && (wrap || o.pos < n-1)
}

func (o *playOrder) hasPrev(wrap bool) bool {
	n := len(o.order)
	return n > 0 && (wrap || o.pos > 0)
}

func (o *playOrder) next(wrap bool) (int, bool) {
	if !o.hasNext(wrap) {
		return -1, false
	}
	o.pos = (o.pos + 1) % len(o.order)
	return o.current(), true
}

func (o *playOrder) prev(wrap bool) (int, bool) {
	if !o.hasPrev(wrap) {
		return -1, false
	}
	o.pos = (o.pos - 1 + len(o.order)) % len(o.order)
	return o.current(), true
}

// rewind moves back to the first entry of the order.
func (o *playOrder) rewind() {
	o.pos = 0
}

// setShuffle reorders the remaining entries. The active index stays active:
// shuffling puts it first, unshuffling restores queue order around it.
func (o *playOrder) setShuffle(on bool, rng *rand.Rand) {
	cur := o.current()
	if cur < 0 {
		return
	}
	if !on {
		for i := range o.order {
			o.order[i] = i
		}
		o.pos = cur
		return
	}
	rest := make([]int, 0, len(o.order)-1)
	for i := range o.order {
		if i != cur {
			rest = append(rest, i)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	o.order = append([]int{cur}, rest...)
	o.pos = 0
}
