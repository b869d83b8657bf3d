package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"isotone/midi"
)

// RenderEventLog lists recent commands, oldest first, padded to rows lines
func RenderEventLog(events []midi.Event, rows int, style lipgloss.Style) string {
	if len(events) > rows {
		events = events[len(events)-rows:]
	}
	lines := make([]string, rows)
	for i, e := range events {
		lines[i] = e.String()
	}
	return style.Render(strings.Join(lines, "\n"))
}
