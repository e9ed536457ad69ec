package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/yhkl-dev/SaavnCLI/domain"
	"github.com/yhkl-dev/SaavnCLI/playback"
)

// FormatDuration converts seconds to MM:SS format
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatMillis converts milliseconds to MM:SS format
func FormatMillis(ms int64) string {
	return FormatDuration(int(ms / 1000))
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with an ellipsis. Wide (CJK) runes count as two cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Escape keeps tview from reading square brackets in catalog text as
// color tags.
func Escape(s string) string {
	return tview.Escape(s)
}

// CreateProgressBar creates a visual progress bar
func CreateProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filledWidth := int(progress * float64(width))

	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filledWidth {
			bar.WriteString("[lightgreen]▓")
		} else {
			bar.WriteString("[darkgray]░")
		}
	}
	return bar.String() + fmt.Sprintf("[white] %.1f%%", progress*100)
}

// FormatStatus describes the playback state in one colored line.
func FormatStatus(snap playback.Snapshot) string {
	switch snap.Status {
	case playback.StatusLoading:
		return "[yellow]Connecting to player..."
	case playback.StatusFailed:
		return "[red]" + snap.Message
	}
	if snap.Current == nil {
		return "[darkgray]Nothing playing"
	}
	title := Escape(snap.Current.Title)
	if snap.Transport.IsPlaying {
		return "[lightgreen]" + title
	}
	return fmt.Sprintf("[yellow]%s [darkgray](PAUSED)", title)
}

// FormatModes renders the shuffle and repeat indicators.
func FormatModes(t domain.TransportState) string {
	shuffle := "[darkgray]shuffle off"
	if t.Shuffle {
		shuffle = "[lightgreen]shuffle on"
	}
	repeat := "[darkgray]repeat off"
	if t.Repeat != domain.RepeatOff {
		repeat = "[lightgreen]repeat " + t.Repeat.String()
	}
	return shuffle + " [darkgray]| " + repeat
}

// FormatNowPlaying creates the now playing panel, with cover art when one
// has been rendered.
func FormatNowPlaying(snap playback.Snapshot, cover string, barWidth int) string {
	status := FormatStatus(snap)
	track := snap.Current
	if track == nil {
		return status
	}

	year := ""
	if track.Year != "" {
		year = " (" + track.Year + ")"
	}
	explicit := ""
	if track.Explicit {
		explicit = " [red]E"
	}

	var b strings.Builder
	if cover != "" {
		b.WriteString(cover)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `
[white]Track %d/%d:
%s%s

[gray]Artist: [white]%s
[gray]Album:  [white]%s%s
[gray]Lang:   [white]%s

%s
%s`,
		snap.Queue.Index+1, snap.Queue.Len(), status, explicit,
		Escape(track.Artist), Escape(track.Album), year, track.Language,
		CreateProgressBar(snap.Transport.Progress(), barWidth),
		FormatModes(snap.Transport))
	return b.String()
}

// CreateProgressText creates the progress time display
func CreateProgressText(t domain.TransportState, message string) string {
	text := fmt.Sprintf("\n[darkgray]%s/%s", FormatMillis(t.PositionMs), FormatMillis(t.DurationMs))
	if message != "" {
		text += "  [red]" + message
	}
	return text
}

// CreateWelcomeMessage creates the welcome screen message
func CreateWelcomeMessage() string {
	return `
[lightgreen] Welcome to SaavnCLI
[darkgray][play] Search and play music from JioSaavn

[gray]  / (search) | ENTER (play)
[gray]  SPACE (play/pause) | n/p (next/prev)
[gray]  a (album) | A (artist) | m (more)
[gray]  ? (help) | q (queue)
[gray]  ESC to exit`
}
