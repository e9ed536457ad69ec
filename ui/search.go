package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/paging"
	"github.com/yhkl-dev/SaavnCLI/search"
	"github.com/yhkl-dev/SaavnCLI/state"
)

// maxMorePages bounds how many pages one "more" request may pull
const maxMorePages = 10

// setupSearchInput wires the search field to the search pipeline
func (a *App) setupSearchInput() {
	a.searchInput.SetChangedFunc(func(text string) {
		a.search.OnQueryChanged(text)
	})

	a.searchInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && len(a.rows) > 0 {
			a.tviewApp.SetFocus(a.songTable)
		}
	})

	a.searchInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyDown || event.Key() == tcell.KeyTab {
			a.tviewApp.SetFocus(a.songTable)
			return nil
		}
		return event
	})
}

// clearSearch empties the field and the results right away
func (a *App) clearSearch() {
	a.searchInput.SetText("")
	a.search.ClearSearch()
	a.searchInput.SetFieldBackgroundColor(tcell.ColorBlack)
	a.tviewApp.SetFocus(a.searchInput)
}

// applySearchResult renders r unless an album or artist is open
func (a *App) applySearchResult(r search.Result) {
	a.results = r
	a.loadingMore = false
	if a.detail != nil {
		return
	}
	a.renderSearchResult()
}

func (a *App) renderSearchResult() {
	r := a.results
	switch {
	case r.Status == state.StatusLoading:
		a.setTitle(fmt.Sprintf("[yellow]Searching for %q...", r.Query))
	case r.Status == state.StatusFailure:
		a.setTitle("[gray]Results")
		a.showTableNotice(r.Message, tcell.ColorRed)
	case r.Query == "":
		a.setTitle("[gray]Results")
		a.setRows(nil)
		a.searchInput.SetFieldBackgroundColor(tcell.ColorBlack)
	case r.Empty():
		a.setTitle(fmt.Sprintf("[gray]Results for %q", r.Query))
		a.showTableNotice("No results found", tcell.ColorGray)
	default:
		a.setTitle(fmt.Sprintf("[gray]%d results for %q [darkgray](m: more)", len(r.Tracks), r.Query))
		a.setRows(r.Tracks)
		a.searchInput.SetFieldBackgroundColor(tcell.ColorDarkGreen)
	}
}

// loadMore extends the result list with pages of the current query
func (a *App) loadMore() {
	if a.detail != nil || a.loadingMore {
		return
	}
	pager := a.search.Pages().Get()
	if pager == nil || pager.Done() {
		return
	}
	a.loadingMore = true
	have := len(a.rows)
	a.setTitle(fmt.Sprintf("[yellow]Loading more for %q...", pager.Query()))

	go func() {
		err := fetchBeyond(pager, have)
		items := pager.Items()
		a.tviewApp.QueueUpdateDraw(func() {
			if a.search.Pages().Get() != pager || a.detail != nil {
				return
			}
			a.loadingMore = false
			if err != nil {
				logger.Warn("load more for %q: %v", pager.Query(), err)
				a.showMessage(apperr.Message(err))
			}
			a.setTitle(pagerTitle(pager.Query(), len(items), pager.Done()))
			if len(items) > have {
				row, _ := a.songTable.GetSelection()
				a.setRows(items)
				a.songTable.Select(row, 0)
			}
		})
	}()
}

// refreshResults reloads the result pages around the selected row
func (a *App) refreshResults() {
	if a.detail != nil || a.loadingMore {
		return
	}
	pager := a.search.Pages().Get()
	if pager == nil {
		return
	}
	anchor := 0
	if row, _ := a.songTable.GetSelection(); row > 0 {
		anchor = row - 1
	}
	a.loadingMore = true
	a.setTitle(fmt.Sprintf("[yellow]Reloading %q...", pager.Query()))

	go func() {
		err := pager.Refresh(anchor)
		items := pager.Items()
		a.tviewApp.QueueUpdateDraw(func() {
			if a.search.Pages().Get() != pager || a.detail != nil {
				return
			}
			a.loadingMore = false
			if err != nil {
				logger.Warn("reload %q: %v", pager.Query(), err)
				a.showMessage(apperr.Message(err))
				a.renderSearchResult()
				return
			}
			a.setTitle(pagerTitle(pager.Query(), len(items), pager.Done()))
			a.setRows(items)
		})
	}()
}

// pagerTitle is the list title once pages of query have loaded
func pagerTitle(query string, n int, done bool) string {
	more := ""
	if !done {
		more = " [darkgray](m: more)"
	}
	return fmt.Sprintf("[gray]%d results for %q%s", n, query, more)
}

// fetchBeyond loads pages until the pager holds more than have tracks,
// runs out of pages, or fails
func fetchBeyond(pager *paging.Pager, have int) error {
	for i := 0; i < maxMorePages; i++ {
		if pager.Done() || len(pager.Items()) > have {
			return nil
		}
		if err := pager.Err(); err != nil {
			if err := pager.Retry(); err != nil {
				return err
			}
			continue
		}
		if err := pager.LoadNext(); err != nil {
			return err
		}
	}
	return nil
}

// retry repeats whatever failed last
func (a *App) retry() {
	if a.detail != nil {
		a.detail.source.Retry()
		return
	}
	if a.results.Status == state.StatusFailure {
		query := a.searchInput.GetText()
		a.search.ClearSearch()
		a.search.OnQueryChanged(query)
	}
}

func (a *App) setTitle(text string) {
	a.listTitle.SetText(text)
}

// showTableNotice replaces the rows with a single line of text
func (a *App) showTableNotice(text string, color tcell.Color) {
	a.setRows(nil)
	a.songTable.SetCell(1, 2, tview.NewTableCell(text).
		SetTextColor(color).
		SetSelectable(false).
		SetExpansion(1))
}
