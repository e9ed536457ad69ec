package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// HelpView represents the keyboard shortcuts help interface
type HelpView struct {
	app       *App
	container *tview.Flex
	textView  *tview.TextView
	isActive  bool
}

// NewHelpView creates a new help view
func NewHelpView(app *App) *HelpView {
	hv := &HelpView{
		app: app,
	}

	hv.textView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)

	hv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(hv.textView, 0, 1, true)

	hv.container.SetBorder(true).
		SetTitle(" Help (ESC to close) ").
		SetBorderColor(tcell.ColorYellow)

	return hv
}

// helpText lists the registered shortcuts followed by the fixed ones
func (hv *HelpView) helpText() string {
	var b strings.Builder
	b.WriteString("[yellow::b]Keyboard Shortcuts[-:-:-]\n\n[lightgreen]Song list:[-]\n")
	b.WriteString("  [white]Enter       [-] Play from selected song\n")
	b.WriteString("  [white]↑ / ↓       [-] Navigate song list\n")
	for _, line := range hv.app.keys.Describe() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(`
[lightgreen]Search field:[-]
  [white]typing      [-] Search as you type
  [white]↓ / Tab     [-] Move to results

[lightgreen]General:[-]
  [white]ESC         [-] Close album / Clear search / Exit
  [white]Ctrl+C      [-] Exit program

[yellow]Press ESC or ? to close this help panel[-]
`)
	return b.String()
}

// Show displays the help view
func (hv *HelpView) Show() {
	hv.isActive = true
	hv.textView.SetText(hv.helpText()).ScrollToBeginning()
	hv.app.tviewApp.SetFocus(hv.textView)
}

// Close hides the help view
func (hv *HelpView) Close() {
	hv.isActive = false
	hv.app.tviewApp.SetRoot(hv.app.rootFlex, true)
	hv.app.tviewApp.SetFocus(hv.app.songTable)
}

// IsActive returns whether the help view is active
func (hv *HelpView) IsActive() bool {
	return hv.isActive
}

// GetContainer returns the help view container
func (hv *HelpView) GetContainer() *tview.Flex {
	return hv.container
}
