package midi

// Channel controls offered on the manager channels
const (
	CCVibratoRate  uint8 = 76
	CCVibratoDepth uint8 = 77
	CCVibratoDelay uint8 = 78
	CCReverb       uint8 = 91
	CCChorus       uint8 = 93
)

// SoundControls lists the adjustable controllers in display order
var SoundControls = []uint8{CCModulation, CCVibratoRate, CCVibratoDepth, CCVibratoDelay, CCReverb, CCChorus}

// Bank select values for melodic and drum sounds
const (
	bankDrum    uint8 = 120
	bankMelodic uint8 = 121
)

// Sound is the instrument selection of one zone, sent on its manager
// channel
type Sound struct {
	Channel uint8
	Program uint8
	Drum    bool
}

// Apply returns the commands that select the sound
func (s *Sound) Apply() []Event {
	if s.Drum {
		return []Event{
			ControlChangeEvent(s.Channel, CCBankMSB, bankDrum),
			ProgramChangeEvent(s.Channel, 0),
		}
	}
	return []Event{
		ControlChangeEvent(s.Channel, CCBankMSB, bankMelodic),
		ProgramChangeEvent(s.Channel, s.Program),
	}
}

// SetProgram selects a melodic program. While the drum kit is on the
// program is only remembered.
func (s *Sound) SetProgram(program int) []Event {
	s.Program = uint8(min(max(program, 0), 127))
	if s.Drum {
		return nil
	}
	return []Event{ProgramChangeEvent(s.Channel, s.Program)}
}

// ToggleDrum switches between the drum kit and the melodic program
func (s *Sound) ToggleDrum() []Event {
	s.Drum = !s.Drum
	return s.Apply()
}

// SetControl sets one of the channel controls
func (s *Sound) SetControl(controller uint8, value int) []Event {
	return []Event{ControlChangeEvent(s.Channel, controller, uint8(min(max(value, 0), 127)))}
}
