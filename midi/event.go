package midi

import "fmt"

// MIDI message types. PitchBendRange and MPEZone are expanded into RPN
// control change sequences when encoded.
const (
	NoteOff        uint8 = 0x80
	NoteOn         uint8 = 0x90
	CC             uint8 = 0xB0
	ProgramChange  uint8 = 0xC0
	PitchBend      uint8 = 0xE0
	PitchBendRange uint8 = 0xF1
	MPEZone        uint8 = 0xF2
)

// Controller numbers used by the keyboard
const (
	CCBankMSB      uint8 = 0
	CCModulation   uint8 = 1
	CCDataEntryMSB uint8 = 6
	CCExpression   uint8 = 11
	CCDataEntryLSB uint8 = 38
	CCRPNLSB       uint8 = 100
	CCRPNMSB       uint8 = 101
)

// Channels outside the MPE member pools
const (
	LowerManager uint8 = 0
	DrumChannel  uint8 = 9
	UpperManager uint8 = 15
)

// PitchBendCenter is the 14-bit value for no bend
const PitchBendCenter uint16 = 8192

// Event is a single command for the synth
type Event struct {
	Type     uint8  // NoteOn, NoteOff, CC, ...
	Channel  uint8  // 0-15
	Note     uint8  // note number, controller number or program
	Velocity uint8  // note velocity or controller value
	Value    uint16 // pitch bend (0-16383), bend range in cents, or zone member count
}

func NoteOnEvent(channel, note, velocity uint8) Event {
	return Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity}
}

func NoteOffEvent(channel, note uint8) Event {
	return Event{Type: NoteOff, Channel: channel, Note: note}
}

func ControlChangeEvent(channel, controller, value uint8) Event {
	return Event{Type: CC, Channel: channel, Note: controller, Velocity: value}
}

func ProgramChangeEvent(channel, program uint8) Event {
	return Event{Type: ProgramChange, Channel: channel, Note: program}
}

// PitchBendEvent takes an absolute 14-bit value, center 8192
func PitchBendEvent(channel uint8, value uint16) Event {
	if value > 16383 {
		value = 16383
	}
	return Event{Type: PitchBend, Channel: channel, Value: value}
}

func PitchBendRangeEvent(channel uint8, cents uint16) Event {
	return Event{Type: PitchBendRange, Channel: channel, Value: cents}
}

// MPEZoneEvent configures the zone managed by channel 0 (lower) or 15
// (upper) with the given number of member channels
func MPEZoneEvent(manager uint8, members uint8) Event {
	return Event{Type: MPEZone, Channel: manager, Value: uint16(members)}
}

func (e Event) String() string {
	switch e.Type {
	case NoteOn:
		return fmt.Sprintf("ch%-2d note-on  %3d vel %3d", e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("ch%-2d note-off %3d", e.Channel, e.Note)
	case CC:
		return fmt.Sprintf("ch%-2d cc%-3d    %3d", e.Channel, e.Note, e.Velocity)
	case ProgramChange:
		return fmt.Sprintf("ch%-2d program  %3d", e.Channel, e.Note)
	case PitchBend:
		return fmt.Sprintf("ch%-2d bend   %5d", e.Channel, e.Value)
	case PitchBendRange:
		return fmt.Sprintf("ch%-2d bend range %d cents", e.Channel, e.Value)
	case MPEZone:
		return fmt.Sprintf("ch%-2d mpe zone %d members", e.Channel, e.Value)
	}
	return fmt.Sprintf("ch%-2d type 0x%02X", e.Channel, e.Type)
}
