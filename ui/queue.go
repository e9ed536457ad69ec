package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// QueueView represents the playback queue interface
type QueueView struct {
	app       *App
	container *tview.Flex
	table     *tview.Table
	isActive  bool
}

// NewQueueView creates a new queue view
func NewQueueView(app *App) *QueueView {
	qv := &QueueView{
		app: app,
	}

	qv.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)

	// Setup header
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Attributes(tcell.AttrBold)
	qv.table.SetCell(0, 0, tview.NewTableCell("").SetStyle(headerStyle))
	qv.table.SetCell(0, 1, tview.NewTableCell("#").SetStyle(headerStyle))
	qv.table.SetCell(0, 2, tview.NewTableCell("Title").SetStyle(headerStyle))
	qv.table.SetCell(0, 3, tview.NewTableCell("Artist").SetStyle(headerStyle))
	qv.table.SetCell(0, 4, tview.NewTableCell("Duration").SetStyle(headerStyle))

	// Enter jumps to the selected entry of the current queue
	qv.table.SetSelectedFunc(func(row, column int) {
		queue := qv.app.snap.Queue
		if row > 0 && row <= queue.Len() {
			qv.app.player.PlayQueue(queue.Tracks, row-1)
		}
	})

	qv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(qv.table, 0, 1, true)

	qv.container.SetBorder(true).
		SetTitle(" Playback Queue (ESC/q to close) ").
		SetBorderColor(tcell.NewHexColor(0x00bcd4))

	return qv
}

// Show displays the queue view
func (qv *QueueView) Show() {
	qv.isActive = true
	qv.refreshQueue()
	if idx := qv.app.snap.Queue.Index; idx >= 0 {
		qv.table.Select(idx+1, 0)
	}
	qv.app.tviewApp.SetFocus(qv.table)
}

// Close hides the queue view
func (qv *QueueView) Close() {
	qv.isActive = false
	qv.app.tviewApp.SetRoot(qv.app.rootFlex, true)
	qv.app.tviewApp.SetFocus(qv.app.songTable)
}

// IsActive returns whether the queue view is active
func (qv *QueueView) IsActive() bool {
	return qv.isActive
}

// GetContainer returns the queue view container
func (qv *QueueView) GetContainer() *tview.Flex {
	return qv.container
}

// refreshQueue updates the queue display from the last playback snapshot
func (qv *QueueView) refreshQueue() {
	// Clear existing rows
	for i := qv.table.GetRowCount() - 1; i > 0; i-- {
		qv.table.RemoveRow(i)
	}

	snap := qv.app.snap
	if snap.Queue.IsEmpty() {
		qv.table.SetCell(1, 2, tview.NewTableCell("Queue is empty").
			SetAlign(tview.AlignCenter).
			SetExpansion(4).
			SetTextColor(tcell.ColorGray))
		return
	}

	rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	maxWidth := qv.app.cfg.UI.MaxColumnWidth

	for i, item := range snap.Queue.Tracks {
		row := i + 1
		marker, style := " ", rowStyle
		if i == snap.Queue.Index {
			marker, style = "▶", rowStyle.Foreground(tcell.ColorLightGreen)
		}

		qv.table.SetCell(row, 0, tview.NewTableCell(marker).SetStyle(style))

		qv.table.SetCell(row, 1,
			tview.NewTableCell(fmt.Sprintf("%d", i+1)).
				SetStyle(rowStyle.Foreground(tcell.ColorLightGreen)).
				SetAlign(tview.AlignRight))

		qv.table.SetCell(row, 2,
			tview.NewTableCell(Truncate(item.Title, maxWidth)).
				SetStyle(style).
				SetExpansion(2))

		qv.table.SetCell(row, 3,
			tview.NewTableCell(Truncate(item.Artist, 20)).
				SetStyle(rowStyle.Foreground(tcell.ColorGray)))

		qv.table.SetCell(row, 4,
			tview.NewTableCell(FormatDuration(item.Duration)).
				SetStyle(rowStyle.Foreground(tcell.ColorGray)).
				SetAlign(tview.AlignRight))
	}

	qv.table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkCyan).
		Foreground(tcell.ColorWhite))
}
