package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yhkl-dev/SaavnCLI/domain"
)

const seekStepMs = 10000

// createHomepage sets up the UI layout
func (a *App) createHomepage() {
	a.progressBar = tview.NewTextView().
		SetDynamicColors(true)
	a.progressBar.SetBorder(false)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(true)
	a.statusBar.SetBorder(false)
	a.statusBar.SetText(CreateWelcomeMessage())

	a.searchInput = tview.NewInputField().
		SetLabel("[yellow]Search: ").
		SetFieldWidth(0).
		SetPlaceholder("Type to search, ESC to clear...").
		SetFieldBackgroundColor(tcell.ColorBlack)
	a.searchInput.SetBorder(false)

	a.listTitle = tview.NewTextView().
		SetDynamicColors(true).
		SetText("[gray]Results")

	a.songTable = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.songTable.SetBorder(false)

	a.helpView = NewHelpView(a)
	a.queueView = NewQueueView(a)
	a.everything = NewEverythingView(a)

	a.setupTableHeaders()
	a.setupSearchInput()
	a.setupKeyBindings()
	a.setupInputHandlers()

	leftPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.statusBar, 0, 1, false)

	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.searchInput, 1, 0, false).
		AddItem(a.listTitle, 1, 0, false).
		AddItem(a.songTable, 0, 1, true)

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(leftPanel, 0, 1, false).
		AddItem(rightPanel, 0, 2, true)

	a.rootFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainLayout, 0, 1, true).
		AddItem(a.progressBar, 3, 0, false)

	a.tviewApp.SetRoot(a.rootFlex, true)
	a.tviewApp.SetFocus(a.searchInput)
}

// setupTableHeaders sets up the table header row
func (a *App) setupTableHeaders() {
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Attributes(tcell.AttrBold)
	headers := []string{"", "#", "Title", "Duration", "Artist", "Album"}
	for col, h := range headers {
		a.songTable.SetCell(0, col, tview.NewTableCell(h).SetStyle(headerStyle).SetSelectable(false))
	}
}

// setupKeyBindings registers the table shortcuts, which also feed the help view
func (a *App) setupKeyBindings() {
	km := a.keys
	km.RegisterKeyBinding(KeyAction{name: "togglePlay", description: "Play/Pause", handler: a.player.TogglePlayPause},
		nil, []rune{' '})
	km.RegisterKeyBinding(KeyAction{name: "next", description: "Next song", handler: a.player.Next},
		nil, []rune{'n', 'N'})
	km.RegisterKeyBinding(KeyAction{name: "previous", description: "Previous song", handler: a.player.Previous},
		nil, []rune{'p', 'P'})
	km.RegisterKeyBinding(KeyAction{name: "seekBack", description: "Seek back 10s", handler: func() { a.seekBy(-seekStepMs) }},
		[]tcell.Key{tcell.KeyLeft}, nil)
	km.RegisterKeyBinding(KeyAction{name: "seekForward", description: "Seek forward 10s", handler: func() { a.seekBy(seekStepMs) }},
		[]tcell.Key{tcell.KeyRight}, nil)
	km.RegisterKeyBinding(KeyAction{name: "shuffle", description: "Toggle shuffle", handler: a.player.ToggleShuffle},
		nil, []rune{'s'})
	km.RegisterKeyBinding(KeyAction{name: "repeat", description: "Cycle repeat (off/all/one)", handler: a.player.ToggleRepeat},
		nil, []rune{'r'})
	km.RegisterKeyBinding(KeyAction{name: "album", description: "Open album of selected song", handler: a.openAlbum},
		nil, []rune{'a'})
	km.RegisterKeyBinding(KeyAction{name: "artist", description: "Open artist of selected song", handler: a.openArtist},
		nil, []rune{'A'})
	km.RegisterKeyBinding(KeyAction{name: "more", description: "Load more results", handler: a.loadMore},
		nil, []rune{'m'})
	km.RegisterKeyBinding(KeyAction{name: "playAll", description: "Play album/artist from the top", handler: a.playAll},
		nil, []rune{'e'})
	km.RegisterKeyBinding(KeyAction{name: "shufflePlay", description: "Shuffle-play album/artist", handler: a.shufflePlay},
		nil, []rune{'x'})
	km.RegisterKeyBinding(KeyAction{name: "back", description: "Back to search results", handler: a.closeDetail},
		[]tcell.Key{tcell.KeyBackspace, tcell.KeyBackspace2}, []rune{'b'})
	km.RegisterKeyBinding(KeyAction{name: "retry", description: "Retry failed load", handler: a.retry},
		nil, []rune{'R'})
	km.RegisterKeyBinding(KeyAction{name: "refresh", description: "Reload results around the selection", handler: a.refreshResults},
		[]tcell.Key{tcell.KeyCtrlR}, nil)
	km.RegisterKeyBinding(KeyAction{name: "everything", description: "Browse artists, albums and playlists for the query", handler: a.showEverything},
		nil, []rune{'c'})
	km.RegisterKeyBinding(KeyAction{name: "focusSearch", description: "Focus search", handler: func() { a.tviewApp.SetFocus(a.searchInput) }},
		nil, []rune{'/'})
	km.RegisterKeyBinding(KeyAction{name: "queue", description: "Show playback queue", handler: a.showQueue},
		nil, []rune{'q', 'Q'})
	km.RegisterKeyBinding(KeyAction{name: "help", description: "Show this help panel", handler: a.showHelp},
		nil, []rune{'?'})
	km.RegisterSequence(KeyAction{name: "goTop", description: "First row", handler: func() { a.songTable.Select(1, 0) }},
		"gg")
	km.RegisterKeyBinding(KeyAction{name: "goBottom", description: "Last row", handler: func() { a.songTable.Select(len(a.rows), 0) }},
		nil, []rune{'G'})
}

// setupInputHandlers sets up keyboard input handlers
func (a *App) setupInputHandlers() {
	a.songTable.SetSelectedFunc(func(row, column int) {
		if row > 0 {
			a.playRow(row - 1)
		}
	})

	a.tviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Handle modal views first
		if a.helpView.IsActive() {
			if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
				a.helpView.Close()
				return nil
			}
			return event
		}
		if a.queueView.IsActive() {
			if event.Key() == tcell.KeyEscape || event.Rune() == 'q' || event.Rune() == 'Q' {
				a.queueView.Close()
				return nil
			}
			return event
		}
		if a.everything.IsActive() {
			if event.Key() == tcell.KeyEscape || event.Rune() == 'c' {
				a.everything.Close()
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			a.handleExit()
			return nil
		case tcell.KeyEscape:
			switch {
			case a.detail != nil:
				a.closeDetail()
			case a.searchInput.GetText() != "":
				a.clearSearch()
			default:
				a.handleExit()
			}
			return nil
		}

		// the search field keeps its own typing
		if a.searchInput.HasFocus() {
			return event
		}
		if a.keys.HandleKey(event) {
			return nil
		}
		return event
	})
}

// seekBy moves the playback position by deltaMs
func (a *App) seekBy(deltaMs int64) {
	t := a.snap.Transport
	if t.DurationMs <= 0 {
		return
	}
	a.player.SeekTo(float64(t.PositionMs+deltaMs) / float64(t.DurationMs))
}

// selectedTrack returns the track under the table cursor
func (a *App) selectedTrack() (domain.Track, bool) {
	row, _ := a.songTable.GetSelection()
	if row < 1 || row > len(a.rows) {
		return domain.Track{}, false
	}
	return a.rows[row-1], true
}

// playRow plays the visible list starting at index
func (a *App) playRow(index int) {
	if index < 0 || index >= len(a.rows) {
		return
	}
	if a.detail != nil {
		a.detail.PlayTrack(index)
		return
	}
	a.player.PlayQueue(a.rows, index)
}

// setRows replaces the table contents
func (a *App) setRows(rows []domain.Track) {
	a.rows = rows
	a.renderSongTable()
	a.songTable.ScrollToBeginning()
	if len(rows) > 0 {
		a.songTable.Select(1, 0)
	}
}

// renderSongTable renders the visible tracks
func (a *App) renderSongTable() {
	for i := a.songTable.GetRowCount() - 1; i > 0; i-- {
		a.songTable.RemoveRow(i)
	}
	a.setupTableHeaders()
	termWidth := a.getTerminalWidth()
	maxWidth := a.cfg.UI.MaxColumnWidth

	for i, song := range a.rows {
		row := i + 1
		rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)

		a.songTable.SetCell(row, 0, tview.NewTableCell(" ").
			SetStyle(rowStyle.Foreground(tcell.ColorLightGreen)))

		a.songTable.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf("%d:", row)).
			SetStyle(rowStyle.Foreground(tcell.ColorLightGreen)).
			SetAlign(tview.AlignRight))

		a.songTable.SetCell(row, 2, tview.NewTableCell(Truncate(song.Title, maxWidth)).
			SetStyle(rowStyle.Foreground(tcell.ColorWhite)).
			SetExpansion(1))

		if termWidth >= 50 {
			a.songTable.SetCell(row, 3, tview.NewTableCell(FormatDuration(song.Duration)).
				SetStyle(rowStyle.Foreground(tcell.ColorGray)).
				SetAlign(tview.AlignRight))
		}
		if termWidth >= 60 {
			a.songTable.SetCell(row, 4, tview.NewTableCell(Truncate(song.Artist, maxWidth/2)).
				SetStyle(rowStyle.Foreground(tcell.ColorGray)))
		}
		if termWidth >= 90 {
			a.songTable.SetCell(row, 5, tview.NewTableCell(Truncate(song.Album, maxWidth/2)).
				SetStyle(rowStyle.Foreground(tcell.ColorGray)))
		}
	}

	a.songTable.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkGreen).
		Foreground(tcell.ColorWhite))
	a.highlightCurrent()
}

// highlightCurrent marks the row of the track that is playing
func (a *App) highlightCurrent() {
	for i, song := range a.rows {
		cell := a.songTable.GetCell(i+1, 0)
		title := a.songTable.GetCell(i+1, 2)
		if a.snap.IsCurrent(song.ID) {
			cell.SetText("▶")
			title.SetTextColor(tcell.ColorLightGreen)
		} else {
			cell.SetText(" ")
			title.SetTextColor(tcell.ColorWhite)
		}
	}
}

// renderNowPlaying refreshes the now playing panel and progress line
func (a *App) renderNowPlaying() {
	if a.snap.Current == nil {
		a.statusBar.SetText(CreateWelcomeMessage() + "\n\n" + FormatStatus(a.snap))
	} else {
		cover := ""
		if a.coverFor == a.snap.CurrentID() {
			cover = a.coverArt
		}
		a.statusBar.SetText(FormatNowPlaying(a.snap, cover, a.cfg.UI.ProgressBarWidth))
	}
	a.progressBar.SetText(CreateProgressText(a.snap.Transport, a.message))
}

// showHelp displays the help modal view
func (a *App) showHelp() {
	a.showModal(a.helpView.GetContainer(), 60)
	a.helpView.Show()
}

// showQueue displays the queue modal view
func (a *App) showQueue() {
	a.showModal(a.queueView.GetContainer(), 80)
	a.queueView.Show()
}

// showEverything searches every catalog section for the typed query
func (a *App) showEverything() {
	query := strings.TrimSpace(a.searchInput.GetText())
	if query == "" {
		a.showMessage("Type a search first")
		return
	}
	a.showModal(a.everything.GetContainer(), 80)
	a.everything.Show(query)
}

func (a *App) showModal(content tview.Primitive, width int) {
	modal := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(content, width, 0, true).
			AddItem(nil, 0, 1, false), 24, 0, true).
		AddItem(nil, 0, 1, false)
	a.tviewApp.SetRoot(modal, true)
}
