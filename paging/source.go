// Package paging loads paged track results for one query.
package paging

import (
	"context"

	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/library"
)

// Source loads pages of a single query from the catalog.
type Source struct {
	search library.PagedSearch
	query  string
}

func NewSource(search library.PagedSearch, query string) *Source {
	return &Source{search: search, query: query}
}

// Query returns the text this source pages through.
func (s *Source) Query() string { return s.query }

// Load fetches the page at key. Key 0 means the first page. A failure
// affects this page only and the same key may be loaded again.
func (s *Source) Load(ctx context.Context, key, pageSize int) (domain.Page, error) {
	if key < 1 {
		key = 1
	}
	items, err := s.search.SearchSongsPage(ctx, s.query, key, pageSize)
	if err != nil {
		return domain.Page{Key: key}, err
	}

	page := domain.Page{Items: items, Key: key}
	if key > 1 {
		page.PrevKey = key - 1
	}
	if len(items) > 0 {
		page.NextKey = key + 1
	}
	return page, nil
}

// RefreshKey returns the key to reload so the item at anchor stays visible:
// the closest page's PrevKey+1, else its NextKey-1. It reports false when
// no page is loaded or anchor is negative.
func RefreshKey(pages []domain.Page, anchor int) (int, bool) {
	if len(pages) == 0 || anchor < 0 {
		return 0, false
	}
	closest := closestPage(pages, anchor)
	if closest.PrevKey != 0 {
		return closest.PrevKey + 1, true
	}
	if closest.NextKey != 0 {
		return closest.NextKey - 1, true
	}
	return 0, false
}

// closestPage returns the page holding the item at anchor, or the last page
// when anchor is past the loaded items.
func closestPage(pages []domain.Page, anchor int) domain.Page {
	offset := 0
	for _, p := range pages {
		if anchor < offset+len(p.Items) {
			return p
		}
		offset += len(p.Items)
	}
	return pages[len(pages)-1]
}
