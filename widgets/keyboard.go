package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"isotone/geom"
	"isotone/gesture"
	"isotone/keys"
	"isotone/theme"
)

type cell struct {
	r      rune
	fg, bg lipgloss.Color
}

// canvas is a grid of styled cells, rendered as runs of equal style
type canvas struct {
	w, h  int
	cells []cell
	blank cell
}

func newCanvas(w, h int, blank cell) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h), blank: blank}
	for i := range c.cells {
		c.cells[i] = blank
	}
	return c
}

// fill paints a rect with bg and writes label centered on its middle row
func (c *canvas) fill(r geom.Rect, origin geom.Point, label string, fg, bg lipgloss.Color) {
	x0, y0 := int(r.Left-origin.X), int(r.Top-origin.Y)
	x1, y1 := int(r.Right-origin.X), int(r.Bottom-origin.Y)
	for y := max(y0, 0); y < min(y1, c.h); y++ {
		for x := max(x0, 0); x < min(x1, c.w); x++ {
			c.cells[y*c.w+x] = cell{r: ' ', fg: fg, bg: bg}
		}
	}
	runes := []rune(label)
	y := y0 + (y1-y0)/2
	x := x0 + (x1-x0-len(runes))/2
	for i, ch := range runes {
		if x+i >= 0 && x+i < c.w && y >= 0 && y < c.h {
			c.cells[y*c.w+x+i].r = ch
		}
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var line strings.Builder
		row := c.cells[y*c.w : (y+1)*c.w]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end].fg == row[start].fg && row[end].bg == row[start].bg {
				end++
			}
			var run strings.Builder
			for _, cl := range row[start:end] {
				run.WriteRune(cl.r)
			}
			style := lipgloss.NewStyle().Foreground(row[start].fg).Background(row[start].bg)
			line.WriteString(style.Render(run.String()))
			start = end
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// RenderKeyboard draws the placed layout, one terminal cell per surface
// unit. Touched keys take their highlight color from the level.
func RenderKeyboard(l *keys.Layout, th *theme.Theme, highlights map[gesture.RegionID]uint8) string {
	w, h := l.Size()
	if w <= 0 || h <= 0 {
		return ""
	}
	origin := l.Geometry().Origin
	c := newCanvas(int(w), int(h), cell{r: ' ', fg: th.FG(), bg: th.BG()})

	for _, r := range l.Regions() {
		bg := th.Key(r.Accidental)
		fg := th.FG()
		if level, ok := highlights[r.ID]; ok {
			bg = theme.KeyColor(level)
			fg = th.BG()
		}
		c.fill(r.Key, origin, r.Label, fg, bg)
	}
	for _, b := range l.Buttons() {
		sym := th.Symbols.OctaveDown
		fg := th.Warning()
		if b.Direction > 0 {
			sym = th.Symbols.OctaveUp
			fg = th.Accent()
		}
		c.fill(b.Rect, origin, string(sym), fg, th.BG())
	}
	return c.String()
}
