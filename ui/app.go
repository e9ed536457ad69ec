package ui

import (
	"context"
	"os"
	"time"

	"github.com/rivo/tview"
	"golang.org/x/term"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/config"
	"github.com/yhkl-dev/SaavnCLI/coverart"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/library"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/playback"
	"github.com/yhkl-dev/SaavnCLI/search"
	"github.com/yhkl-dev/SaavnCLI/state"
)

const messageTimeout = 5 * time.Second

// App represents the TUI application. Every field below the views is owned
// by the tview event goroutine; background watchers hand values over with
// QueueUpdateDraw.
type App struct {
	tviewApp *tview.Application
	cfg      *config.Config
	catalog  library.Catalog
	player   *playback.Controller
	search   *search.Pipeline
	errs     *apperr.Handler
	ctx      context.Context
	cover    *coverart.Converter
	keys     *KeyBindingManager

	rootFlex    *tview.Flex
	searchInput *tview.InputField
	listTitle   *tview.TextView
	songTable   *tview.Table
	statusBar   *tview.TextView
	progressBar *tview.TextView
	helpView    *HelpView
	queueView   *QueueView
	everything  *EverythingView

	rows        []domain.Track
	results     search.Result
	detail      *DetailView
	snap        playback.Snapshot
	coverArt    string
	coverFor    string
	message     string
	msgSeq      int
	loadingMore bool
	stopped     bool
}

// NewApp creates a new TUI application with dependency injection
func NewApp(ctx context.Context, cfg *config.Config, catalog library.Catalog, plr *playback.Controller, pipeline *search.Pipeline, errs *apperr.Handler) *App {
	return &App{
		tviewApp: tview.NewApplication(),
		cfg:      cfg,
		catalog:  catalog,
		player:   plr,
		search:   pipeline,
		errs:     errs,
		ctx:      ctx,
		cover:    coverart.NewConverter(nil),
		keys:     NewKeyBindingManager(),
	}
}

// Run starts the application and blocks until it stops
func (a *App) Run() error {
	a.createHomepage()
	go a.watchPlayback()
	go a.watchSearch()
	go a.watchErrors()
	go a.handleTerminalResize()
	go func() {
		<-a.ctx.Done()
		a.Stop()
	}()

	logger.Info("start saavncli...")
	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	if a.tviewApp != nil {
		a.tviewApp.Stop()
	}
}

// watchPlayback re-renders whenever the controller publishes a snapshot
func (a *App) watchPlayback() {
	snaps, cancel := a.player.State().Subscribe()
	defer cancel()
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			a.tviewApp.QueueUpdateDraw(func() {
				a.applySnapshot(snap)
			})
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) applySnapshot(snap playback.Snapshot) {
	prevID := a.snap.CurrentID()
	a.snap = snap
	if id := snap.CurrentID(); id != prevID {
		a.coverArt = ""
		if id != "" {
			go a.loadCoverArt(*snap.Current)
		}
		a.highlightCurrent()
	}
	a.renderNowPlaying()
	if a.queueView.IsActive() {
		a.queueView.refreshQueue()
	}
}

// watchSearch renders every published search result
func (a *App) watchSearch() {
	results, cancel := a.search.Results().Subscribe()
	defer cancel()
	for {
		select {
		case r, ok := <-results:
			if !ok {
				return
			}
			a.tviewApp.QueueUpdateDraw(func() {
				a.applySearchResult(r)
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// watchErrors shows failures reported by the loaders
func (a *App) watchErrors() {
	if a.errs == nil {
		return
	}
	events, cancel := a.errs.Subscribe()
	defer cancel()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.tviewApp.QueueUpdateDraw(func() {
				a.handleError(ev)
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// handleError shows ev. A rejected session also returns to the empty
// search screen.
func (a *App) handleError(ev apperr.Event) {
	if ev.Kind == apperr.EventUnauthorized {
		logger.Warn("catalog rejected the request: %v", ev.Err)
		a.returnHome()
	}
	a.showMessage(ev.Message)
}

// returnHome closes every panel and shows the empty search screen
func (a *App) returnHome() {
	a.closeModals()
	if a.detail != nil {
		a.detail.Close()
		a.detail = nil
	}
	a.clearSearch()
	a.applySearchResult(search.Result{Status: state.StatusSuccess})
}

func (a *App) closeModals() {
	if a.helpView.IsActive() {
		a.helpView.Close()
	}
	if a.queueView.IsActive() {
		a.queueView.Close()
	}
	if a.everything.IsActive() {
		a.everything.Close()
	}
}

// showMessage displays text under the progress line for a few seconds
func (a *App) showMessage(text string) {
	a.msgSeq++
	seq := a.msgSeq
	a.message = text
	a.renderNowPlaying()
	time.AfterFunc(messageTimeout, func() {
		a.tviewApp.QueueUpdateDraw(func() {
			if a.msgSeq == seq {
				a.message = ""
				a.renderNowPlaying()
			}
		})
	})
}

// loadCoverArt renders the artwork of track off the UI goroutine
func (a *App) loadCoverArt(track domain.Track) {
	ascii, err := a.cover.ForTrack(a.ctx, track)
	if err != nil {
		logger.Debug("cover art for %s: %v", track.ID, err)
	}
	a.tviewApp.QueueUpdateDraw(func() {
		if a.snap.CurrentID() == track.ID {
			a.coverArt = ascii
			a.coverFor = track.ID
			a.renderNowPlaying()
		}
	})
}

// handleTerminalResize re-renders the table when the terminal width changes
func (a *App) handleTerminalResize() {
	lastWidth := 0
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			currentWidth := a.getTerminalWidth()
			if currentWidth != lastWidth && lastWidth != 0 {
				a.tviewApp.QueueUpdateDraw(func() {
					a.renderSongTable()
				})
			}
			lastWidth = currentWidth
		case <-a.ctx.Done():
			return
		}
	}
}

// getTerminalWidth returns the current terminal width
func (a *App) getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// handleExit closes the background pipelines and stops the UI
func (a *App) handleExit() {
	if a.stopped {
		return
	}
	a.stopped = true
	if a.detail != nil {
		a.detail.Close()
	}
	a.Stop()
}
