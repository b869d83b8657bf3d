package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isotone/geom"
	"isotone/gesture"
)

func newTestLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := New(DefaultLabels)
	require.NoError(t, err)
	l.Place(Geometry{KeyWidth: 100, KeyHeight: 100, Gap: 0, ZoneGap: 50, HitOverlap: 10}, 2)
	return l
}

func TestNewLayout(t *testing.T) {
	l := newTestLayout(t)
	assert.Len(t, l.Regions(), 48)
	assert.Len(t, l.Buttons(), 12)
	assert.Equal(t, 4, l.Octave(gesture.ZoneLower))
	assert.Equal(t, 4, l.Octave(gesture.ZoneUpper))

	r, ok := l.Region(0)
	require.True(t, ok)
	assert.Equal(t, 60, r.Note)
	assert.Equal(t, "C4", r.Label)
	assert.False(t, r.Accidental)

	r, _ = l.Region(2)
	assert.Equal(t, "C#4", r.Label)
	assert.True(t, r.Accidental)

	r, _ = l.Region(24)
	assert.Equal(t, gesture.ZoneUpper, r.Zone)
	assert.Equal(t, 60, r.Note)

	_, ok = l.Region(99)
	assert.False(t, ok)

	w, h := l.Size()
	assert.Equal(t, 1050.0, w)
	assert.Equal(t, 600.0, h)
}

func TestNewLayoutRejectsBadLabel(t *testing.T) {
	_, err := New([][]string{{"C4", "X9"}})
	assert.ErrorIs(t, err, ErrInvalidNoteFormat)

	_, err = New([][]string{{OctaveUp, ""}})
	assert.Error(t, err)
}

func TestHitTest(t *testing.T) {
	l := newTestLayout(t)

	hits := l.HitTest(geom.Point{X: 50, Y: 50})
	require.Len(t, hits, 1)
	assert.Equal(t, 60, hits[0].Note)
	assert.Equal(t, geom.RectXYWH(0, 0, 100, 100), hits[0].Key)
	assert.Equal(t, geom.Rect{Left: -10, Top: -10, Right: 110, Bottom: 110}, hits[0].Bounds)

	// between C4 and D4
	hits = l.HitTest(geom.Point{X: 100, Y: 50})
	require.Len(t, hits, 2)
	assert.Equal(t, []int{60, 62}, []int{hits[0].Note, hits[1].Note})

	// corner of four keys
	assert.Len(t, l.HitTest(geom.Point{X: 100, Y: 100}), 4)

	// upper zone starts after the gap
	hits = l.HitTest(geom.Point{X: 600, Y: 50})
	require.Len(t, hits, 1)
	r, _ := l.Region(hits[0].Region)
	assert.Equal(t, gesture.ZoneUpper, r.Zone)

	assert.Empty(t, l.HitTest(geom.Point{X: 2000, Y: 50}))
}

func TestHitTestZone(t *testing.T) {
	l, err := New([][]string{{"C4", "D4"}})
	require.NoError(t, err)
	// hit boxes reach across the zone gap
	l.Place(Geometry{KeyWidth: 7, KeyHeight: 3, Gap: 1, ZoneGap: 3, HitOverlap: 2}, 2)

	p := geom.Point{X: 16.5, Y: 1.5}
	hits := l.HitTest(p)
	require.Len(t, hits, 2)
	assert.Equal(t, gesture.RegionID(1), hits[0].Region)
	assert.Equal(t, gesture.RegionID(2), hits[1].Region)

	lower := l.HitTestZone(p, gesture.ZoneLower)
	require.Len(t, lower, 1)
	assert.Equal(t, 62, lower[0].Note)

	upper := l.HitTestZone(p, gesture.ZoneUpper)
	require.Len(t, upper, 1)
	assert.Equal(t, gesture.RegionID(2), upper[0].Region)

	l.Place(l.Geometry(), 1)
	assert.Empty(t, l.HitTestZone(p, gesture.ZoneUpper))
}

func TestHandModeOneHidesUpperZone(t *testing.T) {
	l := newTestLayout(t)
	l.Place(l.Geometry(), 1)
	assert.Equal(t, 1, l.HandMode())
	assert.Empty(t, l.HitTest(geom.Point{X: 600, Y: 50}))
	assert.Len(t, l.Regions(), 24)
	assert.Len(t, l.Buttons(), 6)
	w, _ := l.Size()
	assert.Equal(t, 500.0, w)
}

func TestButtonAt(t *testing.T) {
	l := newTestLayout(t)
	b, ok := l.ButtonAt(geom.Point{X: 450, Y: 50})
	require.True(t, ok)
	assert.Equal(t, -1, b.Direction)
	assert.Equal(t, gesture.ZoneLower, b.Zone)

	b, ok = l.ButtonAt(geom.Point{X: 1000, Y: 550})
	require.True(t, ok)
	assert.Equal(t, 1, b.Direction)
	assert.Equal(t, gesture.ZoneUpper, b.Zone)

	_, ok = l.ButtonAt(geom.Point{X: 50, Y: 50})
	assert.False(t, ok)
}

func TestShiftOctave(t *testing.T) {
	l := newTestLayout(t)

	ok, err := l.ShiftOctave(gesture.ZoneLower, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, l.Octave(gesture.ZoneLower))

	r, _ := l.Region(0)
	assert.Equal(t, 72, r.Note)
	assert.Equal(t, "C5", r.Label)

	// other zone untouched
	r, _ = l.Region(24)
	assert.Equal(t, 60, r.Note)
	assert.Equal(t, "C4", r.Label)

	for i := 0; i < 10; i++ {
		l.ShiftOctave(gesture.ZoneLower, -1)
	}
	assert.Equal(t, 1, l.Octave(gesture.ZoneLower))
	ok, err = l.ShiftOctave(gesture.ZoneLower, -1)
	require.NoError(t, err)
	assert.False(t, ok)
	r, _ = l.Region(0)
	assert.Equal(t, 24, r.Note)
	assert.Equal(t, "C1", r.Label)
}

func TestShiftOctaveUpperBound(t *testing.T) {
	l := newTestLayout(t)
	for i := 0; i < 6; i++ {
		ok, _ := l.ShiftOctave(gesture.ZoneUpper, 1)
		assert.True(t, ok)
	}
	ok, _ := l.ShiftOctave(gesture.ZoneUpper, 1)
	assert.False(t, ok)
	assert.Equal(t, 10, l.Octave(gesture.ZoneUpper))
}

func TestShiftOctaveBadLabelLeavesZoneUntouched(t *testing.T) {
	l := newTestLayout(t)
	l.regions[5].Label = "garbage"

	ok, err := l.ShiftOctave(gesture.ZoneLower, 1)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidNoteFormat)
	assert.Equal(t, 4, l.Octave(gesture.ZoneLower))

	r, _ := l.Region(0)
	assert.Equal(t, 60, r.Note)
	assert.Equal(t, "C4", r.Label)

	// the other zone still shifts
	ok, err = l.ShiftOctave(gesture.ZoneUpper, 1)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestHitsAreSnapshots(t *testing.T) {
	l := newTestLayout(t)
	hits := l.HitTest(geom.Point{X: 50, Y: 50})
	l.ShiftOctave(gesture.ZoneLower, 1)
	assert.Equal(t, 60, hits[0].Note)
	assert.Equal(t, 72, l.HitTest(geom.Point{X: 50, Y: 50})[0].Note)
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	data := "rows:\n  - [C4, D4, C#4, \"⬇\"]\n  - [E4, F4, \"\", \"⬆\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"C4", "D4", "C#4", OctaveDown}, {"E4", "F4", "", OctaveUp}}, labels)

	l, err := New(labels)
	require.NoError(t, err)
	assert.Len(t, l.Regions(), 10)

	require.NoError(t, os.WriteFile(path, []byte("rows: []\n"), 0644))
	_, err = LoadLabels(path)
	assert.Error(t, err)

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
