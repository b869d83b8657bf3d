package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isotone/geom"
	"isotone/midi"
)

// key builds a hit whose hit box overlaps its neighbours by 10 on each side
func key(region RegionID, note int, x, y float64) Hit {
	visual := geom.RectXYWH(x, y, 100, 100)
	return Hit{Region: region, Note: note, Bounds: visual.Inflate(10), Key: visual}
}

var (
	c4 = key(0, 60, 0, 0)
	d4 = key(1, 62, 100, 0)
	e4 = key(2, 64, 0, 100) // below c4
)

func hitsAt(p geom.Point, keys ...Hit) []Hit {
	var out []Hit
	for _, k := range keys {
		if k.Bounds.Contains(p) {
			out = append(out, k)
		}
	}
	return out
}

func pt(x, y float64) geom.Point { return geom.Point{X: x, Y: y} }

func down(e *Engine, id PointerID, p geom.Point) []midi.Event {
	return e.PointerDown(id, ZoneLower, p, hitsAt(p, c4, d4, e4))
}

func move(e *Engine, id PointerID, p geom.Point) []midi.Event {
	return e.PointerMove(id, p, hitsAt(p, c4, d4, e4))
}

func ofType(events []midi.Event, typ uint8) []midi.Event {
	var out []midi.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestGestureLifecycle(t *testing.T) {
	e := NewEngine(DefaultConfig())

	events := down(e, 1, pt(50, 50))
	assert.Equal(t, []midi.Event{
		midi.ControlChangeEvent(1, midi.CCExpression, 64),
		midi.PitchBendEvent(1, 8192),
		midi.NoteOnEvent(1, 60, 127),
	}, events)
	assert.Equal(t, 6, e.Free(ZoneLower))
	assert.Equal(t, 1, e.Active())

	events = e.PointerUp(1)
	assert.Equal(t, []midi.Event{midi.NoteOffEvent(1, 60)}, events)
	assert.Equal(t, 7, e.Free(ZoneLower))
	assert.Equal(t, 0, e.Active())
}

func TestPointerCancelReleases(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 3, pt(150, 50))
	events := e.PointerCancel(3)
	assert.Equal(t, []midi.Event{midi.NoteOffEvent(1, 62)}, events)
	assert.Equal(t, 7, e.Free(ZoneLower))
}

func TestUnknownPointerIsNoop(t *testing.T) {
	e := NewEngine(DefaultConfig())
	assert.Empty(t, e.PointerUp(9))
	assert.Empty(t, e.PointerMove(9, pt(0, 0), nil))
	_, ok := e.State(9)
	assert.False(t, ok)
}

func TestPointerDownHitCount(t *testing.T) {
	e := NewEngine(DefaultConfig())

	assert.Empty(t, e.PointerDown(1, ZoneLower, pt(500, 500), nil))
	assert.Empty(t, e.PointerDown(1, ZoneLower, pt(0, 0), []Hit{c4, d4, e4}))
	assert.Equal(t, 7, e.Free(ZoneLower), "no channel may be held after an aborted start")
	assert.Equal(t, 0, e.Active())
}

func TestPointerDownSkipsUnplayableNotes(t *testing.T) {
	e := NewEngine(DefaultConfig())
	high := key(5, 130, 0, 0)
	assert.Empty(t, e.PointerDown(1, ZoneLower, pt(50, 50), []Hit{high}))
	assert.Equal(t, 7, e.Free(ZoneLower))
}

func TestDuplicateNoteIgnored(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))
	events := down(e, 1, pt(50, 50))
	assert.Empty(t, ofType(events, midi.NoteOn))

	s, ok := e.State(1)
	require.True(t, ok)
	assert.Equal(t, []int{60}, s.BaseNotes())
}

func TestPoolExhaustionDropsGesture(t *testing.T) {
	e := NewEngine(DefaultConfig())
	for id := PointerID(1); id <= 7; id++ {
		require.NotEmpty(t, down(e, id, pt(50, 50)))
	}

	assert.Empty(t, down(e, 8, pt(50, 50)))
	_, ok := e.State(8)
	assert.False(t, ok)

	e.PointerUp(3)
	events := down(e, 8, pt(50, 50))
	require.NotEmpty(t, events)
	s, _ := e.State(8)
	assert.Equal(t, uint8(3), s.Channel)
}

func TestZonesUseSeparatePools(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.PointerDown(1, ZoneUpper, pt(50, 50), []Hit{c4})
	s, _ := e.State(1)
	assert.Equal(t, uint8(8), s.Channel)
	assert.Equal(t, ZoneUpper, s.Zone)
	assert.Equal(t, 6, e.Free(ZoneUpper))
	assert.Equal(t, 7, e.Free(ZoneLower))
}

func TestChannelsUniqueAcrossPointers(t *testing.T) {
	e := NewEngine(DefaultConfig())
	seen := map[uint8]PointerID{}
	for id := PointerID(1); id <= 7; id++ {
		down(e, id, pt(50, 50))
		s, _ := e.State(id)
		if other, dup := seen[s.Channel]; dup {
			t.Fatalf("channel %d held by pointers %d and %d", s.Channel, other, id)
		}
		seen[s.Channel] = id
	}
}

func TestBendAcrossKeysIsMonotonic(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))

	prev := uint16(8192)
	for _, x := range []float64{92, 95, 100, 105, 110} {
		events := ofType(move(e, 1, pt(x, 50)), midi.PitchBend)
		require.Len(t, events, 1, "x=%v", x)
		assert.Greater(t, events[0].Value, prev, "x=%v", x)
		prev = events[0].Value
	}
	// ratio 1 for two semitones with a 12 semitone range
	assert.Equal(t, uint16(8875), prev)

	s, _ := e.State(1)
	assert.Equal(t, geom.Horizontal, s.BendDirection)
	assert.Equal(t, 60, s.FromNote)
	assert.Equal(t, 62, s.ToNote)
	target, ok := s.Target()
	require.True(t, ok)
	assert.Equal(t, RegionID(1), target.Region)
}

func TestBendExactValues(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))

	events := ofType(move(e, 1, pt(95, 50)), midi.PitchBend)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(8363), events[0].Value)

	events = ofType(move(e, 1, pt(100, 50)), midi.PitchBend)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(8533), events[0].Value)
}

func TestBendLeftwardMeasuresFromOverlapLeftEdge(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(150, 50))

	// overlap of d4 and c4 is [90,110]; x=105 is 0.75 across it
	events := ofType(move(e, 1, pt(105, 50)), midi.PitchBend)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(7680), events[0].Value)

	events = ofType(move(e, 1, pt(95, 50)), midi.PitchBend)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(8021), events[0].Value)

	// left edge of the overlap: no bend
	events = ofType(move(e, 1, pt(90, 50)), midi.PitchBend)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(8192), events[0].Value)

	s, _ := e.State(1)
	assert.Equal(t, 62, s.FromNote)
	assert.Equal(t, 60, s.ToNote)
}

func TestSingleKeySnapsAndReturns(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))

	move(e, 1, pt(105, 50))
	events := ofType(move(e, 1, pt(150, 50)), midi.PitchBend)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(8875), events[0].Value)

	events = ofType(move(e, 1, pt(50, 50)), midi.PitchBend)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(8192), events[0].Value)
}

func TestLiftOffKeysKeepsNoteAndCentersBend(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))
	move(e, 1, pt(150, 50))

	events := move(e, 1, pt(500, 500))
	assert.Empty(t, ofType(events, midi.NoteOff))
	bends := ofType(events, midi.PitchBend)
	require.Len(t, bends, 1)
	assert.Equal(t, uint16(8192), bends[0].Value)

	s, _ := e.State(1)
	assert.Equal(t, s.FromNote, s.ToNote)
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, geom.None, s.BendDirection)
	assert.Equal(t, []int{60}, s.BaseNotes())
}

func TestRepeatedMoveIsDeduplicated(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))
	move(e, 1, pt(100, 50))
	assert.Empty(t, move(e, 1, pt(100, 50)))
}

func TestVerticalChord(t *testing.T) {
	e := NewEngine(DefaultConfig())

	events := down(e, 1, pt(25, 95))
	assert.Equal(t, []midi.Event{
		midi.ControlChangeEvent(1, midi.CCExpression, 37),
		midi.PitchBendEvent(1, 8192),
		midi.NoteOnEvent(1, 60, 127),
		midi.NoteOnEvent(1, 64, 127),
	}, events)

	s, _ := e.State(1)
	assert.Equal(t, geom.Vertical, s.InitialOrientation)
	assert.Equal(t, uint8(37), s.ChordExpression)

	// chord movement only shapes expression
	events = move(e, 1, pt(75, 95))
	assert.Equal(t, []midi.Event{midi.ControlChangeEvent(1, midi.CCExpression, 95)}, events)

	events = e.PointerUp(1)
	assert.Equal(t, []midi.Event{midi.NoteOffEvent(1, 60), midi.NoteOffEvent(1, 64)}, events)
}

func TestHorizontalChordUsesTouchHeight(t *testing.T) {
	e := NewEngine(DefaultConfig())
	events := down(e, 1, pt(100, 20))

	assert.Len(t, ofType(events, midi.NoteOn), 2)
	s, _ := e.State(1)
	assert.Equal(t, geom.Horizontal, s.InitialOrientation)
	// (20+10)/120 from the top of the c4 hit box
	assert.Equal(t, uint8(95), s.ChordExpression)
	assert.Equal(t, []midi.Event{midi.ControlChangeEvent(1, midi.CCExpression, 95)}, ofType(events, midi.CC))
}

func TestVelocityFromYOption(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VelocityFromY = true
	e := NewEngine(cfg)
	events := ofType(down(e, 1, pt(50, 50)), midi.NoteOn)
	require.Len(t, events, 1)
	assert.Equal(t, uint8(64), events[0].Velocity)
}

func TestHighlights(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))
	assert.Equal(t, map[RegionID]uint8{0: 64}, e.Highlights())

	move(e, 1, pt(100, 50))
	assert.Equal(t, map[RegionID]uint8{0: 64, 1: 64}, e.Highlights())

	move(e, 1, pt(500, 500))
	assert.Empty(t, e.Highlights())

	e.PointerUp(1)
	assert.Empty(t, e.Highlights())
}

func TestSnapshotSurvivesRegionRenumbering(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))

	// octave shift renumbers the regions while the pointer is held
	shifted := c4
	shifted.Note = 72
	e.PointerMove(1, pt(50, 50), []Hit{shifted})

	s, _ := e.State(1)
	assert.Equal(t, 60, s.FromNote)
	assert.Equal(t, []int{60}, s.BaseNotes())
	assert.Equal(t, []midi.Event{midi.NoteOffEvent(1, 60)}, e.PointerUp(1))
}

func TestReleaseAll(t *testing.T) {
	e := NewEngine(DefaultConfig())
	down(e, 1, pt(50, 50))
	down(e, 2, pt(150, 50))

	events := e.ReleaseAll()
	assert.Equal(t, []midi.Event{midi.NoteOffEvent(1, 60), midi.NoteOffEvent(2, 62)}, events)
	assert.Equal(t, 0, e.Active())
	assert.Equal(t, 7, e.Free(ZoneLower))
}

func TestSetup(t *testing.T) {
	e := NewEngine(DefaultConfig())
	events := e.Setup()
	require.Len(t, events, 20)
	assert.Equal(t, midi.MPEZoneEvent(0, 7), events[0])
	assert.Equal(t, midi.MPEZoneEvent(15, 7), events[1])
	for ch := 0; ch < 16; ch++ {
		assert.Equal(t, midi.PitchBendRangeEvent(uint8(ch), 1200), events[2+ch])
	}

	assert.Equal(t, []midi.Event{midi.PitchBendRangeEvent(3, 200)}, e.SetPitchBendRange(3, 200))
	assert.Equal(t, 2.0, e.Sensitivity(3))
	assert.Empty(t, e.SetPitchBendRange(16, 200))
}
