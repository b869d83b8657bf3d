package gesture

import "isotone/debug"

// Zone selects the lower (0) or upper (1) keyboard zone
type Zone int

const (
	ZoneLower Zone = iota
	ZoneUpper
)

func (z Zone) String() string {
	if z == ZoneUpper {
		return "upper"
	}
	return "lower"
}

// maxMembers is the number of channels left once the two manager channels
// (0 and 15) are reserved
const maxMembers = 14

// Allocator hands out one MIDI channel per pointer from two disjoint pools.
// Lower zone members are 1..lower, upper zone members are 15-upper..14.
// Allocation takes from the front of a pool and release returns to the back.
type Allocator struct {
	pools  [2][]uint8
	ranges [2][2]uint8 // inclusive first/last member channel, first > last means empty
	held   [16]bool
}

// NewAllocator sizes the pools from the MPE zone member counts
func NewAllocator(lowerMembers, upperMembers int) *Allocator {
	lowerMembers = clampMembers(lowerMembers)
	upperMembers = clampMembers(upperMembers)
	if lowerMembers+upperMembers > maxMembers {
		upperMembers = maxMembers - lowerMembers
	}

	a := &Allocator{}
	a.ranges[ZoneLower] = [2]uint8{1, uint8(lowerMembers)}
	a.ranges[ZoneUpper] = [2]uint8{uint8(15 - upperMembers), 14}
	for z := range a.ranges {
		first, last := a.ranges[z][0], a.ranges[z][1]
		for ch := first; ch <= last && first <= last; ch++ {
			a.pools[z] = append(a.pools[z], ch)
		}
	}
	return a
}

func clampMembers(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxMembers {
		return maxMembers
	}
	return n
}

// Allocate takes the next free channel of zone. ok is false when the pool
// is empty or the zone is unknown.
func (a *Allocator) Allocate(zone Zone) (channel uint8, ok bool) {
	if zone != ZoneLower && zone != ZoneUpper {
		return 0, false
	}
	pool := a.pools[zone]
	if len(pool) == 0 {
		debug.Log("alloc", "%s pool exhausted", zone)
		return 0, false
	}
	channel = pool[0]
	a.pools[zone] = pool[1:]
	a.held[channel] = true
	debug.Log("alloc", "%s ch=%d free=%d", zone, channel, len(a.pools[zone]))
	return channel, true
}

// Release returns channel to the pool whose range contains it. Channels
// outside both ranges, or not currently allocated, are ignored.
func (a *Allocator) Release(channel uint8) {
	if channel > 15 || !a.held[channel] {
		return
	}
	zone, ok := a.ZoneOf(channel)
	if !ok {
		return
	}
	a.held[channel] = false
	a.pools[zone] = append(a.pools[zone], channel)
	debug.Log("alloc", "%s release ch=%d free=%d", zone, channel, len(a.pools[zone]))
}

// ZoneOf reports which pool range contains channel
func (a *Allocator) ZoneOf(channel uint8) (Zone, bool) {
	for z, r := range a.ranges {
		if r[0] <= r[1] && channel >= r[0] && channel <= r[1] {
			return Zone(z), true
		}
	}
	return 0, false
}

// Free returns the number of unallocated channels in zone
func (a *Allocator) Free(zone Zone) int {
	if zone != ZoneLower && zone != ZoneUpper {
		return 0
	}
	return len(a.pools[zone])
}

// Size returns the number of member channels configured for zone
func (a *Allocator) Size(zone Zone) int {
	if zone != ZoneLower && zone != ZoneUpper {
		return 0
	}
	r := a.ranges[zone]
	if r[0] > r[1] {
		return 0
	}
	return int(r[1]-r[0]) + 1
}

// Held reports whether channel is currently allocated
func (a *Allocator) Held(channel uint8) bool {
	return channel <= 15 && a.held[channel]
}
