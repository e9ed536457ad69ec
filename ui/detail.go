package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/yhkl-dev/SaavnCLI/browse"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/state"
)

// trackSource is what every browse loader offers, whatever it loads
type trackSource interface {
	Tracks() []domain.Track
	PlayAll()
	PlayTrack(index int)
	Shuffle()
	Retry()
	Close()
}

// DetailView is an open album, artist or playlist shown in place of search results
type DetailView struct {
	title       string
	source      trackSource
	unsubscribe func()
}

// PlayTrack plays the loaded list from index
func (d *DetailView) PlayTrack(index int) {
	d.source.PlayTrack(index)
}

// Close stops watching and loading
func (d *DetailView) Close() {
	d.unsubscribe()
	d.source.Close()
}

// openAlbum shows the album of the selected song
func (a *App) openAlbum() {
	track, ok := a.selectedTrack()
	if !ok {
		return
	}
	if track.AlbumID == "" {
		a.showMessage("This song has no album")
		return
	}
	a.openAlbumByID(track.AlbumID, track.Album)
}

// openArtist shows the songs of the selected song's primary artist
func (a *App) openArtist() {
	track, ok := a.selectedTrack()
	if !ok {
		return
	}
	if track.ArtistID == "" {
		a.showMessage("This song has no artist")
		return
	}
	a.openArtistByID(track.ArtistID, track.Artist)
}

func (a *App) openAlbumByID(id, name string) {
	d := browse.NewAlbum(a.ctx, a.catalog, id, a.player, browse.WithErrorHandler(a.errs))
	openDetail(a, "Album: "+Escape(name), d)
}

func (a *App) openArtistByID(id, name string) {
	d := browse.NewArtist(a.ctx, a.catalog, id, a.player, browse.WithErrorHandler(a.errs))
	openDetail(a, "Artist: "+Escape(name), d)
}

func (a *App) openPlaylistByID(id, name string) {
	d := browse.NewPlaylist(a.ctx, a.catalog, id, a.player, browse.WithErrorHandler(a.errs))
	openDetail(a, "Playlist: "+Escape(name), d)
}

// openDetail replaces the result list with d and renders its state changes
func openDetail[T any](a *App, title string, d *browse.Detail[T]) {
	if a.detail != nil {
		a.detail.Close()
	}
	updates, unsubscribe := d.State().Subscribe()
	view := &DetailView{title: title, source: d, unsubscribe: unsubscribe}
	a.detail = view

	go func() {
		for r := range updates {
			status, message := r.Status, r.Message
			tracks := d.Tracks()
			a.tviewApp.QueueUpdateDraw(func() {
				if a.detail != view {
					return
				}
				a.renderDetail(view, status, message, tracks)
			})
		}
	}()
}

func (a *App) renderDetail(view *DetailView, status state.Status, message string, tracks []domain.Track) {
	switch status {
	case state.StatusLoading:
		a.setTitle(fmt.Sprintf("[yellow]%s [darkgray](loading...)", view.title))
		a.showTableNotice("Loading...", tcell.ColorGray)
	case state.StatusFailure:
		a.setTitle(fmt.Sprintf("[yellow]%s [darkgray](R: retry, b: back)", view.title))
		a.showTableNotice(message, tcell.ColorRed)
	default:
		a.setTitle(fmt.Sprintf("[yellow]%s [darkgray]%d songs (e: play all, x: shuffle, b: back)", view.title, len(tracks)))
		a.setRows(tracks)
		a.tviewApp.SetFocus(a.songTable)
	}
}

// closeDetail returns to the search results
func (a *App) closeDetail() {
	if a.detail == nil {
		return
	}
	a.detail.Close()
	a.detail = nil
	a.renderSearchResult()
}

func (a *App) playAll() {
	if a.detail != nil {
		a.detail.source.PlayAll()
	}
}

func (a *App) shufflePlay() {
	if a.detail != nil {
		a.detail.source.Shuffle()
	}
}
