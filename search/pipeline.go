// Package search implements search-as-you-type: keystrokes are debounced,
// each settled query is fetched once, and only the newest query's result is
// ever published.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/library"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/paging"
	"github.com/yhkl-dev/SaavnCLI/state"
)

const (
	DefaultDebounce = 450 * time.Millisecond
	DefaultLimit    = 40
	DefaultPageSize = 20
)

// Result is one published search outcome.
type Result struct {
	Status     state.Status
	Query      string
	Tracks     []domain.Track
	Err        error
	Message    string
	Generation uint64
}

// Empty reports a successful search that matched nothing.
func (r Result) Empty() bool {
	return r.Status == state.StatusSuccess && len(r.Tracks) == 0
}

type Option func(*Pipeline)

func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.debounce = d
		}
	}
}

// WithLimit sets how many tracks one fetch asks for.
func WithLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.limit = n
		}
	}
}

// WithPaging makes every dispatch also publish a Pager for the query.
func WithPaging(ps library.PagedSearch, pageSize int) Option {
	return func(p *Pipeline) {
		p.paged = ps
		if pageSize > 0 {
			p.pageSize = pageSize
		}
	}
}

type Pipeline struct {
	ctx      context.Context
	search   library.Search
	paged    library.PagedSearch
	debounce time.Duration
	limit    int
	pageSize int

	query   *state.Value[string]
	results *state.Value[Result]
	pages   *state.Value[*paging.Pager]

	generation atomic.Uint64

	mu             sync.Mutex
	timer          *time.Timer
	seq            uint64
	cancelFetch    context.CancelFunc
	inFlightQuery  string
	lastDispatched string
	cancelPager    context.CancelFunc
	closed         bool
	wg             conc.WaitGroup
}

// New creates a pipeline whose fetches run under ctx.
func New(ctx context.Context, search library.Search, opts ...Option) *Pipeline {
	p := &Pipeline{
		ctx:      ctx,
		search:   search,
		debounce: DefaultDebounce,
		limit:    DefaultLimit,
		pageSize: DefaultPageSize,
		query:    state.NewValue(""),
		results:  state.NewValue(Result{Status: state.StatusSuccess}),
		pages:    state.NewValue[*paging.Pager](nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Query is the text as typed, updated on every keystroke.
func (p *Pipeline) Query() *state.Value[string] { return p.query }

// Results holds the latest published search outcome.
func (p *Pipeline) Results() *state.Value[Result] { return p.results }

// Pages holds the pager of the current query, or nil. Only set when the
// pipeline was built WithPaging.
func (p *Pipeline) Pages() *state.Value[*paging.Pager] { return p.pages }

// Generation returns the number of dispatches and resets so far.
func (p *Pipeline) Generation() uint64 { return p.generation.Load() }

// OnQueryChanged records a keystroke and restarts the debounce window.
func (p *Pipeline) OnQueryChanged(text string) {
	p.query.Set(text)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.seq++
	seq := p.seq
	if p.timer != nil {
		p.timer.Stop()
	}
	// the fetch in flight no longer matches what is typed
	if p.cancelFetch != nil && strings.TrimSpace(text) != p.inFlightQuery {
		p.cancelFetchLocked()
		p.generation.Inc()
		p.lastDispatched = ""
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		p.dispatch(seq, text)
	})
}

// ClearSearch resets the query and publishes an empty success right away.
func (p *Pipeline) ClearSearch() {
	p.query.Set("")

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.seq++
	p.resetLocked()
}

// Close stops the pipeline and waits for running fetches to return.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		if p.timer != nil {
			p.timer.Stop()
		}
		p.cancelFetchLocked()
		p.cancelPagerLocked()
		p.generation.Inc()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pipeline) dispatch(seq uint64, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || seq != p.seq {
		return
	}

	q := strings.TrimSpace(text)
	if q == "" {
		p.resetLocked()
		return
	}
	if q == p.lastDispatched {
		logger.Debug("search: %q already dispatched", q)
		return
	}
	p.lastDispatched = q

	p.cancelFetchLocked()
	gen := p.generation.Inc()
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancelFetch = cancel
	p.inFlightQuery = q

	p.results.Set(Result{Status: state.StatusLoading, Query: q, Generation: gen})
	if p.paged != nil {
		p.cancelPagerLocked()
		pctx, pcancel := context.WithCancel(p.ctx)
		p.cancelPager = pcancel
		p.pages.Set(paging.NewPager(pctx, paging.NewSource(p.paged, q), p.pageSize))
	}

	logger.Debug("search: dispatch %q (generation %d)", q, gen)
	p.wg.Go(func() {
		p.fetch(ctx, gen, q)
	})
}

func (p *Pipeline) fetch(ctx context.Context, gen uint64, q string) {
	tracks, err := p.search.SearchSongs(ctx, q, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation.Load() || ctx.Err() != nil {
		logger.Debug("search: dropping stale result for %q (generation %d)", q, gen)
		return
	}
	p.cancelFetchLocked()

	if err != nil {
		logger.Warn("search %q failed: %v", q, err)
		r := Result{Status: state.StatusFailure, Query: q, Err: err, Message: apperr.Message(err), Generation: gen}
		p.results.Set(r)
		return
	}
	p.results.Set(Result{Status: state.StatusSuccess, Query: q, Tracks: tracks, Generation: gen})
}

// resetLocked abandons any pending or running work and publishes an empty
// success.
func (p *Pipeline) resetLocked() {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.cancelFetchLocked()
	p.cancelPagerLocked()
	gen := p.generation.Inc()
	p.lastDispatched = ""
	p.results.Set(Result{Status: state.StatusSuccess, Generation: gen})
	p.pages.Set(nil)
}

func (p *Pipeline) cancelFetchLocked() {
	if p.cancelFetch != nil {
		p.cancelFetch()
		p.cancelFetch = nil
	}
	p.inFlightQuery = ""
}

func (p *Pipeline) cancelPagerLocked() {
	if p.cancelPager != nil {
		p.cancelPager()
		p.cancelPager = nil
	}
}
