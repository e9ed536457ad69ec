package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/library"
	"github.com/yhkl-dev/SaavnCLI/logger"
)

// everythingLimit is how many matches each section lists
const everythingLimit = 10

type entryKind int

const (
	entryHeader entryKind = iota
	entrySong
	entryArtist
	entryAlbum
	entryPlaylist
)

// entry is one row of the everything view
type entry struct {
	kind  entryKind
	id    string
	title string
	info  string
	track domain.Track
}

// entriesOf lays out the non-empty sections of e, each under a header row
func entriesOf(e library.Everything) []entry {
	var out []entry
	section := func(name string, n int) {
		out = append(out, entry{kind: entryHeader, title: fmt.Sprintf("%s (%d)", name, n)})
	}

	if len(e.Tracks) > 0 {
		section("Songs", len(e.Tracks))
		for _, t := range e.Tracks {
			out = append(out, entry{kind: entrySong, id: t.ID, title: t.Title, info: t.Artist, track: t})
		}
	}
	if len(e.Artists) > 0 {
		section("Artists", len(e.Artists))
		for _, a := range e.Artists {
			out = append(out, entry{kind: entryArtist, id: a.ID, title: a.Name, info: a.Role})
		}
	}
	if len(e.Albums) > 0 {
		section("Albums", len(e.Albums))
		for _, a := range e.Albums {
			info := a.Artist
			if a.Year != "" {
				info = strings.TrimSpace(info + " " + a.Year)
			}
			out = append(out, entry{kind: entryAlbum, id: a.ID, title: a.Name, info: info})
		}
	}
	if len(e.Playlists) > 0 {
		section("Playlists", len(e.Playlists))
		for _, p := range e.Playlists {
			out = append(out, entry{kind: entryPlaylist, id: p.ID, title: p.Name, info: fmt.Sprintf("%d songs", p.SongCount)})
		}
	}
	return out
}

// EverythingView lists songs, artists, albums and playlists matching the
// typed query
type EverythingView struct {
	app       *App
	container *tview.Flex
	table     *tview.Table
	entries   []entry
	query     string
	seq       int
	isActive  bool
}

// NewEverythingView creates a new everything view
func NewEverythingView(app *App) *EverythingView {
	ev := &EverythingView{
		app: app,
	}

	ev.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false)

	ev.table.SetSelectedFunc(func(row, column int) {
		ev.open(row)
	})

	ev.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ev.table, 0, 1, true)

	ev.container.SetBorder(true).
		SetTitle(" Browse (ESC/c to close) ").
		SetBorderColor(tcell.ColorLightGreen)

	return ev
}

// Show searches every section for query
func (ev *EverythingView) Show(query string) {
	ev.isActive = true
	ev.query = query
	ev.seq++
	seq := ev.seq
	ev.setNotice(fmt.Sprintf("Searching everything for %q...", query), tcell.ColorGray)
	ev.app.tviewApp.SetFocus(ev.table)

	app := ev.app
	go func() {
		found, err := library.SearchAll(app.ctx, app.catalog, query, everythingLimit)
		app.tviewApp.QueueUpdateDraw(func() {
			if ev.seq != seq || !ev.isActive {
				return
			}
			ev.render(found, err)
		})
	}()
}

// render shows whatever loaded. A failed section is reported but does not
// hide the others.
func (ev *EverythingView) render(found library.Everything, err error) {
	if err != nil {
		logger.Warn("browse %q: %v", ev.query, err)
		ev.app.showMessage(apperr.Message(err))
	}
	ev.entries = entriesOf(found)
	if len(ev.entries) == 0 {
		ev.setNotice(fmt.Sprintf("Nothing found for %q", ev.query), tcell.ColorGray)
		return
	}

	ev.table.Clear()
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Attributes(tcell.AttrBold)
	maxWidth := ev.app.cfg.UI.MaxColumnWidth
	first := -1
	for row, e := range ev.entries {
		if e.kind == entryHeader {
			ev.table.SetCell(row, 0, tview.NewTableCell(e.title).
				SetStyle(headerStyle).
				SetSelectable(false))
			ev.table.SetCell(row, 1, tview.NewTableCell("").SetSelectable(false))
			continue
		}
		if first < 0 {
			first = row
		}
		ev.table.SetCell(row, 0, tview.NewTableCell("  "+Truncate(e.title, maxWidth)).
			SetTextColor(tcell.ColorWhite).
			SetExpansion(2))
		ev.table.SetCell(row, 1, tview.NewTableCell(Truncate(e.info, maxWidth/2)).
			SetTextColor(tcell.ColorGray).
			SetExpansion(1))
	}
	ev.table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkGreen).
		Foreground(tcell.ColorWhite))
	ev.table.ScrollToBeginning()
	ev.table.Select(first, 0)
}

// open acts on the entry at row: songs play, everything else opens in the
// song list
func (ev *EverythingView) open(row int) {
	if row < 0 || row >= len(ev.entries) {
		return
	}
	e := ev.entries[row]
	if e.kind == entryHeader {
		return
	}
	ev.Close()

	a := ev.app
	switch e.kind {
	case entrySong:
		a.player.PlaySingle(e.track)
	case entryArtist:
		a.openArtistByID(e.id, e.title)
	case entryAlbum:
		a.openAlbumByID(e.id, e.title)
	case entryPlaylist:
		a.openPlaylistByID(e.id, e.title)
	}
}

func (ev *EverythingView) setNotice(text string, color tcell.Color) {
	ev.entries = nil
	ev.table.Clear()
	ev.table.SetCell(0, 0, tview.NewTableCell(text).
		SetTextColor(color).
		SetSelectable(false).
		SetExpansion(1))
}

// Close hides the everything view; a search still running is ignored
func (ev *EverythingView) Close() {
	ev.isActive = false
	ev.seq++
	ev.app.tviewApp.SetRoot(ev.app.rootFlex, true)
	ev.app.tviewApp.SetFocus(ev.app.songTable)
}

// IsActive returns whether the everything view is active
func (ev *EverythingView) IsActive() bool {
	return ev.isActive
}

// GetContainer returns the everything view container
func (ev *EverythingView) GetContainer() *tview.Flex {
	return ev.container
}
