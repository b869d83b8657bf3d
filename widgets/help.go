package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding is a single key and what it does
type KeyBinding struct {
	Key  string
	Desc string
}

// KeySection is a titled group of bindings in the help overlay
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// RenderKeyHelp lays sections out as an aligned two column block. Keys are
// padded to the longest key of all sections so the columns line up.
func RenderKeyHelp(sections []KeySection, title lipgloss.Style) string {
	width := 0
	for _, sec := range sections {
		for _, k := range sec.Keys {
			width = max(width, lipgloss.Width(k.Key))
		}
	}

	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if sec.Title != "" {
			b.WriteString(title.Render(sec.Title))
			b.WriteString("\n")
		}
		for _, k := range sec.Keys {
			pad := width - lipgloss.Width(k.Key)
			b.WriteString("  " + k.Key + strings.Repeat(" ", pad+2) + k.Desc + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderKeyHelpLine puts the bindings of every section on one line:
// "q:quit  h:hands"
func RenderKeyHelpLine(sections []KeySection) string {
	var parts []string
	for _, sec := range sections {
		for _, k := range sec.Keys {
			parts = append(parts, k.Key+":"+k.Desc)
		}
	}
	return strings.Join(parts, "  ")
}
