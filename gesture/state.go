package gesture

import (
	"sort"

	"isotone/geom"
)

// PointerID identifies one input pointer (mouse, finger, pen)
type PointerID int

// RegionID is the stable position index of a key region
type RegionID int

// NoRegion marks an unset current/target key
const NoRegion RegionID = -1

// Hit is a key region under a pointer, captured at event time. Note is a
// copy of the region's note number; octave shifts never reach a live hit.
type Hit struct {
	Region RegionID
	Note   int
	Bounds geom.Rect // hit box, may overlap neighbours
	Key    geom.Rect // visual key containing the hit box
}

// PointerState is the gesture state of one live pointer
type PointerState struct {
	Channel uint8
	Zone    Zone

	baseNotes []int // sounding notes, in note-on order
	padHits   []RegionID

	BaseCenterNote     int
	hasCenter          bool
	ChordExpression    uint8
	InitialOrientation geom.Orientation

	current *Hit
	target  *Hit

	FromNote      int
	ToNote        int
	BendDirection geom.Orientation

	level    uint8 // highlight level of touched keys
	lastBend uint16
	bendSent bool
	lastExpr uint8
	exprSent bool
}

func newPointerState(channel uint8, zone Zone) *PointerState {
	return &PointerState{
		Channel:         channel,
		Zone:            zone,
		ChordExpression: 64,
		level:           64,
	}
}

// BaseNotes returns the sounding notes in the order they started
func (s *PointerState) BaseNotes() []int {
	return append([]int(nil), s.baseNotes...)
}

// PadHits returns the regions the pointer currently touches
func (s *PointerState) PadHits() []RegionID {
	return append([]RegionID(nil), s.padHits...)
}

// Current returns the key the pointer overlaps, if any
func (s *PointerState) Current() (Hit, bool) {
	if s.current == nil {
		return Hit{}, false
	}
	return *s.current, true
}

// Target returns the key the pointer is bending toward, if any
func (s *PointerState) Target() (Hit, bool) {
	if s.target == nil {
		return Hit{}, false
	}
	return *s.target, true
}

func (s *PointerState) holds(note int) bool {
	for _, n := range s.baseNotes {
		if n == note {
			return true
		}
	}
	return false
}

func (s *PointerState) addPadHit(id RegionID) {
	for _, r := range s.padHits {
		if r == id {
			return
		}
	}
	s.padHits = append(s.padHits, id)
}

func (s *PointerState) clone() PointerState {
	c := *s
	c.baseNotes = s.BaseNotes()
	c.padHits = s.PadHits()
	if s.current != nil {
		h := *s.current
		c.current = &h
	}
	if s.target != nil {
		h := *s.target
		c.target = &h
	}
	return c
}

// Store maps live pointers to their gesture state
type Store struct {
	states map[PointerID]*PointerState
}

func NewStore() *Store {
	return &Store{states: make(map[PointerID]*PointerState)}
}

func (st *Store) Get(id PointerID) (*PointerState, bool) {
	s, ok := st.states[id]
	return s, ok
}

func (st *Store) Put(id PointerID, s *PointerState) {
	st.states[id] = s
}

func (st *Store) Delete(id PointerID) {
	delete(st.states, id)
}

func (st *Store) Len() int {
	return len(st.states)
}

// IDs returns live pointer ids in ascending order
func (st *Store) IDs() []PointerID {
	ids := make([]PointerID, 0, len(st.states))
	for id := range st.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
