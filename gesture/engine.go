package gesture

import (
	"isotone/debug"
	"isotone/geom"
	"isotone/midi"
)

// Config sets up the MPE zones of an engine
type Config struct {
	LowerMembers   int    // member channels of the lower zone (1..n)
	UpperMembers   int    // member channels of the upper zone (15-n..14)
	PitchBendRange uint16 // cents, applied to every channel at setup
	VelocityFromY  bool   // note-on velocity from touch height instead of 127
}

func DefaultConfig() Config {
	return Config{
		LowerMembers:   7,
		UpperMembers:   7,
		PitchBendRange: 1200,
	}
}

// maxChordHits is the largest number of keys one pointer can start on
const maxChordHits = 2

// Engine turns pointer events for one keyboard surface into MPE commands.
// It is not safe for concurrent use; the host serialises pointer events.
type Engine struct {
	cfg       Config
	alloc     *Allocator
	pointers  *Store
	bendRange [16]uint16
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg:      cfg,
		alloc:    NewAllocator(cfg.LowerMembers, cfg.UpperMembers),
		pointers: NewStore(),
	}
	for ch := range e.bendRange {
		e.bendRange[ch] = cfg.PitchBendRange
	}
	return e
}

// Setup returns the commands that prepare the synth: both MPE zones, the
// pitch-bend range of every channel and the drum bank on channel 9
func (e *Engine) Setup() []midi.Event {
	events := []midi.Event{
		midi.MPEZoneEvent(midi.LowerManager, uint8(e.alloc.Size(ZoneLower))),
		midi.MPEZoneEvent(midi.UpperManager, uint8(e.alloc.Size(ZoneUpper))),
	}
	for ch := uint8(0); ch < 16; ch++ {
		events = append(events, midi.PitchBendRangeEvent(ch, e.bendRange[ch]))
	}
	events = append(events,
		midi.ControlChangeEvent(midi.DrumChannel, midi.CCBankMSB, 121),
		midi.ProgramChangeEvent(midi.DrumChannel, 0),
	)
	return events
}

// SetPitchBendRange changes one channel's range and returns the command
func (e *Engine) SetPitchBendRange(channel uint8, cents uint16) []midi.Event {
	if channel > 15 {
		return nil
	}
	e.bendRange[channel] = cents
	return []midi.Event{midi.PitchBendRangeEvent(channel, cents)}
}

// Sensitivity returns the channel's pitch-bend range in semitones
func (e *Engine) Sensitivity(channel uint8) float64 {
	if channel > 15 {
		return 0
	}
	return float64(e.bendRange[channel]) / 100
}

// PointerDown starts (or extends) a gesture. Only one or two hits start
// anything; when the zone has no free channel nothing happens.
func (e *Engine) PointerDown(id PointerID, zone Zone, p geom.Point, hits []Hit) []midi.Event {
	if len(hits) == 0 || len(hits) > maxChordHits {
		return nil
	}
	hits = playable(hits)
	if len(hits) == 0 {
		return nil
	}

	s, ok := e.pointers.Get(id)
	if !ok {
		ch, ok := e.alloc.Allocate(zone)
		if !ok {
			debug.Log("mpe", "pointer %d: no free %s channel, gesture dropped", id, zone)
			return nil
		}
		s = newPointerState(ch, zone)
		e.pointers.Put(id, s)
	}

	var out []midi.Event
	if len(hits) == 2 {
		s.InitialOrientation = geom.HitOrientation(hits[0].Bounds, hits[1].Bounds)
		if s.InitialOrientation == geom.Vertical {
			s.ChordExpression = geom.InitialChordExpression(p, hits[0].Bounds, hits[1].Bounds)
			out = s.sendExpression(out, s.ChordExpression)
		}
	}
	for _, h := range hits {
		out = e.press(out, s, p, h)
	}
	debug.Log("mpe", "pointer %d down ch=%d notes=%v", id, s.Channel, s.baseNotes)
	return out
}

func playable(hits []Hit) []Hit {
	out := hits[:0:0]
	for _, h := range hits {
		if h.Note >= 0 && h.Note <= 127 {
			out = append(out, h)
		}
	}
	return out
}

func (e *Engine) press(out []midi.Event, s *PointerState, p geom.Point, h Hit) []midi.Event {
	if s.holds(h.Note) {
		return out
	}
	if len(s.baseNotes) == 0 {
		if s.InitialOrientation != geom.Vertical {
			s.ChordExpression = geom.VelocityFromY(p, h.Bounds)
		}
		out = s.sendExpression(out, s.ChordExpression)
	}
	s.level = s.ChordExpression
	if !s.hasCenter {
		s.BaseCenterNote = h.Note
		s.hasCenter = true
		out = s.sendBend(out, midi.PitchBendCenter)
	}

	velocity := uint8(127)
	if e.cfg.VelocityFromY {
		velocity = geom.VelocityFromY(p, h.Bounds)
	}
	out = append(out, midi.NoteOnEvent(s.Channel, uint8(h.Note), velocity))

	s.baseNotes = append(s.baseNotes, h.Note)
	s.addPadHit(h.Region)
	hit := h
	s.current = &hit
	s.FromNote = s.BaseCenterNote
	s.ToNote = h.Note
	return out
}

// PointerMove re-evaluates the keys under the pointer and emits the bend
// and expression that follow from them
func (e *Engine) PointerMove(id PointerID, p geom.Point, hits []Hit) []midi.Event {
	s, ok := e.pointers.Get(id)
	if !ok {
		return nil
	}

	newHits := make([]RegionID, 0, len(hits))
	for _, h := range hits {
		newHits = append(newHits, h.Region)
	}

	switch {
	case len(hits) == 2 && len(s.baseNotes) == 1:
		if to, ok := findHit(hits, func(h Hit) bool { return h.Note != s.FromNote }); ok {
			s.ToNote = to.Note
			if from, ok := findHit(hits, func(h Hit) bool { return h.Note == s.FromNote }); ok {
				s.current = &from
				s.target = &to
				s.BendDirection = geom.HitOrientation(from.Bounds, to.Bounds)
			}
		}
	case len(hits) == 1:
		h := hits[0]
		s.current = &h
		s.target = nil
		s.ToNote = h.Note
	case len(hits) == 0:
		s.current = nil
		s.target = nil
		s.ToNote = s.FromNote
	}

	var out []midi.Event
	if len(s.baseNotes) > 1 && len(hits) >= 1 {
		// chord: movement shapes expression only
		h := hits[0]
		s.current = &h
		s.BendDirection = s.InitialOrientation
		out = e.moveExpression(out, s, p)
		s.padHits = newHits
		return out
	}

	bend := ContinuousPitchBend(p, s, e.Sensitivity(s.Channel))
	out = s.sendBend(out, bend)
	out = e.moveExpression(out, s, p)
	s.padHits = newHits

	debug.LogEvery(50, "mpe", "pointer %d move ch=%d %d->%d bend=%d", id, s.Channel, s.FromNote, s.ToNote, bend)
	return out
}

func (e *Engine) moveExpression(out []midi.Event, s *PointerState, p geom.Point) []midi.Event {
	if v, ok := ExpressionFromMovement(p, s); ok {
		s.level = v
		return s.sendExpression(out, v)
	}
	s.level = s.ChordExpression
	return out
}

func findHit(hits []Hit, match func(Hit) bool) (Hit, bool) {
	for _, h := range hits {
		if match(h) {
			return h, true
		}
	}
	return Hit{}, false
}

// PointerUp ends a gesture: every sounding note stops and the channel goes
// back to its pool. Unknown pointers are ignored.
func (e *Engine) PointerUp(id PointerID) []midi.Event {
	s, ok := e.pointers.Get(id)
	if !ok {
		return nil
	}
	out := make([]midi.Event, 0, len(s.baseNotes))
	for _, note := range s.baseNotes {
		out = append(out, midi.NoteOffEvent(s.Channel, uint8(note)))
	}
	e.alloc.Release(s.Channel)
	e.pointers.Delete(id)
	debug.Log("mpe", "pointer %d up ch=%d notes=%v", id, s.Channel, s.baseNotes)
	return out
}

// PointerCancel is handled exactly like PointerUp
func (e *Engine) PointerCancel(id PointerID) []midi.Event {
	return e.PointerUp(id)
}

// ReleaseAll ends every live gesture
func (e *Engine) ReleaseAll() []midi.Event {
	var out []midi.Event
	for _, id := range e.pointers.IDs() {
		out = append(out, e.PointerUp(id)...)
	}
	return out
}

// State returns a copy of a live pointer's state
func (e *Engine) State(id PointerID) (PointerState, bool) {
	s, ok := e.pointers.Get(id)
	if !ok {
		return PointerState{}, false
	}
	return s.clone(), true
}

// Active returns the number of live pointers
func (e *Engine) Active() int {
	return e.pointers.Len()
}

// Free returns the number of unallocated channels in zone
func (e *Engine) Free(zone Zone) int {
	return e.alloc.Free(zone)
}

// Highlights returns the level (0..127) of every key touched by a live
// pointer. Keys touched by several pointers show the highest level.
func (e *Engine) Highlights() map[RegionID]uint8 {
	out := make(map[RegionID]uint8)
	for _, s := range e.pointers.states {
		for _, r := range s.padHits {
			if prev, ok := out[r]; !ok || s.level > prev {
				out[r] = s.level
			}
		}
	}
	return out
}

func (s *PointerState) sendExpression(out []midi.Event, v uint8) []midi.Event {
	if s.exprSent && s.lastExpr == v {
		return out
	}
	s.lastExpr, s.exprSent = v, true
	return append(out, midi.ControlChangeEvent(s.Channel, midi.CCExpression, v))
}

func (s *PointerState) sendBend(out []midi.Event, v uint16) []midi.Event {
	if s.bendSent && s.lastBend == v {
		return out
	}
	s.lastBend, s.bendSent = v, true
	return append(out, midi.PitchBendEvent(s.Channel, v))
}
