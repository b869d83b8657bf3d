package gesture

import (
	"math"

	"isotone/geom"
)

// insetRatio is the share of the key width a pointer may travel past the
// edge before a single-key bend reaches its floor
const insetRatio = 0.1

// ContinuousPitchBend computes the 14-bit bend for s at p. sensitivity is
// the channel's pitch-bend range in semitones. With a locked target the
// ratio is the pointer's position across the overlap of the two keys,
// from its left or top edge; with a single key it follows the overflow
// past the key edge and is 1 inside the key. It may set s.BendDirection on the first edge crossing.
func ContinuousPitchBend(p geom.Point, s *PointerState, sensitivity float64) uint16 {
	semitoneDiff := float64(s.ToNote - s.FromNote)
	ratio := 1.0

	switch {
	case s.target != nil && s.current != nil:
		from, to := s.current.Bounds, s.target.Bounds
		switch s.BendDirection {
		case geom.Horizontal:
			ratio = overlapRatio(p.X, math.Max(from.Left, to.Left), math.Min(from.Right, to.Right))
		case geom.Vertical:
			ratio = overlapRatio(p.Y, math.Max(from.Top, to.Top), math.Min(from.Bottom, to.Bottom))
		}
	case s.current != nil:
		key := s.current.Bounds
		o := geom.PitchBendRatio(p, key, key.Width()*insetRatio)
		if o.Outside {
			ratio = o.Ratio
		}
		if s.BendDirection == geom.None {
			s.BendDirection = o.Direction
		}
	default:
		s.BendDirection = geom.None
	}

	if sensitivity <= 0 {
		return uint16(8192)
	}
	bend := math.Round(8192 + 8192*semitoneDiff*ratio/(sensitivity*2))
	return uint16(geom.Clamp(bend, 0, 16383))
}

// overlapRatio is the position of v in [lo,hi], measured from lo whichever
// way the pointer travels
func overlapRatio(v, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	return geom.Clamp((v-lo)/(hi-lo), 0, 1)
}

// ExpressionFromMovement maps movement across the bend axis, inside the
// current key, to an expression value. ok is false without a current key
// or an established bend direction.
func ExpressionFromMovement(p geom.Point, s *PointerState) (value uint8, ok bool) {
	if s.current == nil || s.BendDirection == geom.None {
		return 0, false
	}
	key := s.current.Key
	var ratio float64
	if s.BendDirection == geom.Horizontal {
		if key.Height() <= 0 {
			return 0, false
		}
		y := geom.Clamp(p.Y-key.Top, 0, key.Height())
		ratio = 1 - y/key.Height()
	} else {
		if key.Width() <= 0 {
			return 0, false
		}
		x := geom.Clamp(p.X-key.Left, 0, key.Width())
		ratio = x / key.Width()
	}
	return geom.ToMidiValue(ratio), true
}
