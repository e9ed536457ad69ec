package paging

import (
	"context"
	"sync"

	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/logger"
)

// Pager keeps the loaded pages of one query. It stops working once its
// context is cancelled, which happens when a newer query replaces it.
type Pager struct {
	ctx      context.Context
	source   *Source
	pageSize int

	mu      sync.Mutex
	pages   []domain.Page
	nextKey int
	done    bool
	err     error
	loading bool
}

// NewPager creates a pager positioned before the first page.
func NewPager(ctx context.Context, source *Source, pageSize int) *Pager {
	return &Pager{ctx: ctx, source: source, pageSize: pageSize, nextKey: 1}
}

// Query returns the text this pager pages through.
func (p *Pager) Query() string { return p.source.Query() }

// LoadNext appends the next page. It is a no-op once the last page has been
// seen, after a failure (use Retry), or while another load is running.
func (p *Pager) LoadNext() error {
	p.mu.Lock()
	if p.done || p.err != nil || p.loading {
		p.mu.Unlock()
		return nil
	}
	key := p.nextKey
	p.loading = true
	p.mu.Unlock()
	return p.load(key, false)
}

// Retry reloads the key whose load failed.
func (p *Pager) Retry() error {
	p.mu.Lock()
	if p.err == nil || p.loading {
		p.mu.Unlock()
		return nil
	}
	p.err = nil
	key := p.nextKey
	p.loading = true
	p.mu.Unlock()
	return p.load(key, false)
}

// Refresh drops everything loaded and reloads the page around anchor.
func (p *Pager) Refresh(anchor int) error {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return nil
	}
	key, ok := RefreshKey(p.pages, anchor)
	if !ok {
		key = 1
	}
	p.loading = true
	p.mu.Unlock()
	return p.load(key, true)
}

// load fetches key. The caller must have set loading under the same lock
// that checked it.
func (p *Pager) load(key int, reset bool) error {
	if err := p.ctx.Err(); err != nil {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
		return err
	}

	page, err := p.source.Load(p.ctx, key, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if ctxErr := p.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		logger.Warn("paging %q: page %d failed: %v", p.source.Query(), key, err)
		p.err = err
		p.nextKey = key
		return err
	}
	if reset {
		p.pages = nil
	}
	p.pages = append(p.pages, page)
	p.err = nil
	if page.HasNext() {
		p.nextKey = page.NextKey
	} else {
		p.done = true
	}
	return nil
}

// Pages returns a copy of the loaded pages in load order.
func (p *Pager) Pages() []domain.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Page, len(p.pages))
	copy(out, p.pages)
	return out
}

// Items returns every loaded track in page order.
func (p *Pager) Items() []domain.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	var items []domain.Track
	for _, page := range p.pages {
		items = append(items, page.Items...)
	}
	return items
}

// Done reports whether the last page has been loaded.
func (p *Pager) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Err returns the failure of the most recent load, if any.
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
