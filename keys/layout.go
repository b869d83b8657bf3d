package keys

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"isotone/debug"
	"isotone/geom"
	"isotone/gesture"
)

// Octave button labels
const (
	OctaveDown = "⬇"
	OctaveUp   = "⬆"
)

// Octave shifts keep each zone inside 1..10
const (
	minOctave = 1
	maxOctave = 10
)

// DefaultLabels is the grid used by each zone. The last column holds the
// octave buttons.
var DefaultLabels = [][]string{
	{"C4", "D4", "C#4", "D#4", OctaveDown},
	{"E4", "F4", "F#4", "G#4", OctaveDown},
	{"G4", "A4", "B4", "A#4", OctaveDown},
	{"C5", "D5", "C#5", "D#5", OctaveUp},
	{"E5", "F5", "F#5", "G#5", OctaveUp},
	{"G5", "A5", "B5", "A#5", OctaveUp},
}

// Region is one key. Note and Label change with octave shifts; ID does not.
type Region struct {
	ID         gesture.RegionID
	Zone       gesture.Zone
	Row, Col   int
	Note       int
	Label      string
	Accidental bool
	Key        geom.Rect // visual key
	Hit        geom.Rect // hit box, Key grown by the overlap
}

// Button is an octave control
type Button struct {
	Zone      gesture.Zone
	Row, Col  int
	Direction int // +1 up, -1 down
	Label     string
	Rect      geom.Rect
}

// Geometry sizes the key grid in surface units
type Geometry struct {
	Origin     geom.Point
	KeyWidth   float64
	KeyHeight  float64
	Gap        float64 // between keys
	ZoneGap    float64 // between the two zone grids
	HitOverlap float64 // how far a hit box reaches past its key
}

// Layout holds the keys of both zones
type Layout struct {
	labels   [][]string
	regions  []*Region
	buttons  []Button
	octaves  [2]int
	handMode int
	geometry Geometry
	width    float64
	height   float64
}

// New builds both zones from a label grid. Blank labels leave a hole;
// anything else must be a note or an octave button.
func New(labels [][]string) (*Layout, error) {
	l := &Layout{labels: labels, handMode: 2}
	for z := gesture.ZoneLower; z <= gesture.ZoneUpper; z++ {
		for row, line := range labels {
			for col, label := range line {
				switch label {
				case "":
				case OctaveDown, OctaveUp:
					dir := -1
					if label == OctaveUp {
						dir = 1
					}
					l.buttons = append(l.buttons, Button{Zone: z, Row: row, Col: col, Direction: dir, Label: label})
				default:
					note := NoteNumber(label)
					if note < 0 {
						return nil, fmt.Errorf("row %d col %d: %w: %q", row, col, ErrInvalidNoteFormat, label)
					}
					_, octave, _ := ParseNote(label)
					if l.octaves[z] == 0 {
						l.octaves[z] = octave
					}
					l.regions = append(l.regions, &Region{
						ID:         gesture.RegionID(len(l.regions)),
						Zone:       z,
						Row:        row,
						Col:        col,
						Note:       note,
						Label:      label,
						Accidental: IsAccidental(label),
					})
				}
			}
		}
	}
	if len(l.regions) == 0 {
		return nil, fmt.Errorf("layout has no keys")
	}
	return l, nil
}

type layoutFile struct {
	Rows [][]string `yaml:"rows"`
}

// LoadLabels reads a label grid from a YAML file:
//
//	rows:
//	  - [C4, D4, C#4, D#4, ⬇]
func LoadLabels(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Rows) == 0 {
		return nil, fmt.Errorf("%s: no rows", path)
	}
	return f.Rows, nil
}

// Place computes key rects. Hand mode 1 shows the lower zone only; hand
// mode 2 puts the upper zone to the right of the lower one.
func (l *Layout) Place(g Geometry, handMode int) {
	if handMode != 1 {
		handMode = 2
	}
	l.handMode = handMode
	l.geometry = g

	cols, rows := 0, len(l.labels)
	for _, line := range l.labels {
		cols = max(cols, len(line))
	}
	zoneW := float64(cols)*(g.KeyWidth+g.Gap) - g.Gap
	l.height = float64(rows)*(g.KeyHeight+g.Gap) - g.Gap
	l.width = zoneW
	if handMode == 2 {
		l.width = 2*zoneW + g.ZoneGap
	}

	cell := func(z gesture.Zone, row, col int) geom.Rect {
		x := g.Origin.X + float64(col)*(g.KeyWidth+g.Gap)
		if z == gesture.ZoneUpper {
			x += zoneW + g.ZoneGap
		}
		y := g.Origin.Y + float64(row)*(g.KeyHeight+g.Gap)
		return geom.RectXYWH(x, y, g.KeyWidth, g.KeyHeight)
	}
	for _, r := range l.regions {
		r.Key = cell(r.Zone, r.Row, r.Col)
		r.Hit = r.Key.Inflate(g.HitOverlap)
	}
	for i := range l.buttons {
		b := &l.buttons[i]
		b.Rect = cell(b.Zone, b.Row, b.Col)
	}
}

// HandMode returns 1 or 2
func (l *Layout) HandMode() int {
	return l.handMode
}

// Size returns the placed width and height
func (l *Layout) Size() (w, h float64) {
	return l.width, l.height
}

// Geometry returns the geometry of the last Place
func (l *Layout) Geometry() Geometry {
	return l.geometry
}

func (l *Layout) visible(z gesture.Zone) bool {
	return l.handMode == 2 || z == gesture.ZoneLower
}

// HitTest returns every visible key whose hit box contains p, in region
// order. Notes are copied into the hits.
func (l *Layout) HitTest(p geom.Point) []gesture.Hit {
	return l.hitTest(p, func(gesture.Zone) bool { return true })
}

// HitTestZone is HitTest limited to the keys of one zone
func (l *Layout) HitTestZone(p geom.Point, z gesture.Zone) []gesture.Hit {
	return l.hitTest(p, func(rz gesture.Zone) bool { return rz == z })
}

func (l *Layout) hitTest(p geom.Point, keep func(gesture.Zone) bool) []gesture.Hit {
	var hits []gesture.Hit
	for _, r := range l.regions {
		if !l.visible(r.Zone) || !keep(r.Zone) || !r.Hit.Contains(p) {
			continue
		}
		hits = append(hits, gesture.Hit{Region: r.ID, Note: r.Note, Bounds: r.Hit, Key: r.Key})
	}
	return hits
}

// ButtonAt returns the visible octave button under p
func (l *Layout) ButtonAt(p geom.Point) (Button, bool) {
	for _, b := range l.buttons {
		if l.visible(b.Zone) && b.Rect.Contains(p) {
			return b, true
		}
	}
	return Button{}, false
}

// Region returns a copy of a key
func (l *Layout) Region(id gesture.RegionID) (Region, bool) {
	if id < 0 || int(id) >= len(l.regions) {
		return Region{}, false
	}
	return *l.regions[id], true
}

// Regions returns copies of the visible keys
func (l *Layout) Regions() []Region {
	var out []Region
	for _, r := range l.regions {
		if l.visible(r.Zone) {
			out = append(out, *r)
		}
	}
	return out
}

// Buttons returns the visible octave buttons
func (l *Layout) Buttons() []Button {
	var out []Button
	for _, b := range l.buttons {
		if l.visible(b.Zone) {
			out = append(out, b)
		}
	}
	return out
}

// Octave returns the current octave of a zone's first key
func (l *Layout) Octave(z gesture.Zone) int {
	if z != gesture.ZoneLower && z != gesture.ZoneUpper {
		return 0
	}
	return l.octaves[z]
}

// ShiftOctave moves every key of a zone one octave in direction. It
// reports false when the shift would leave 1..10. Labels are all parsed
// before any key changes, so a bad label leaves the zone untouched.
// Live gestures are unaffected: they hold copies of the note numbers.
func (l *Layout) ShiftOctave(z gesture.Zone, direction int) (bool, error) {
	if z != gesture.ZoneLower && z != gesture.ZoneUpper {
		return false, nil
	}
	if direction > 0 {
		direction = 1
	} else {
		direction = -1
	}
	next := l.octaves[z] + direction
	if next < minOctave || next > maxOctave {
		return false, nil
	}

	type parsed struct {
		r      *Region
		name   string
		octave int
	}
	var todo []parsed
	for _, r := range l.regions {
		if r.Zone != z {
			continue
		}
		name, octave, err := ParseNote(r.Label)
		if err != nil {
			return false, fmt.Errorf("shift %s zone: %w", z, err)
		}
		todo = append(todo, parsed{r: r, name: name, octave: octave})
	}

	for _, p := range todo {
		p.r.Label = fmt.Sprintf("%s%d", p.name, p.octave+direction)
		p.r.Note += direction * 12
	}
	l.octaves[z] = next
	debug.Log("keys", "%s zone octave %d", z, next)
	return true, nil
}
