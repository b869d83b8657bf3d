package midi

import (
	"errors"
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrNoPort is returned when a named output port cannot be found
var ErrNoPort = errors.New("midi output port not found")

// Synth is the sound-producing collaborator the keyboard drives
type Synth interface {
	NoteOn(channel, note, velocity uint8) error
	NoteOff(channel, note uint8) error
	ControlChange(channel, controller, value uint8) error
	PitchBend(channel uint8, value uint16) error
	PitchBendRange(channel uint8, cents uint16) error
	ProgramChange(channel, program uint8) error
	MPEZone(manager, members uint8) error
}

// Dispatch applies events to s in order. All events are attempted; the
// errors are joined.
func Dispatch(s Synth, events []Event) error {
	var errs []error
	for _, e := range events {
		if err := apply(s, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e, err))
		}
	}
	return errors.Join(errs...)
}

func apply(s Synth, e Event) error {
	switch e.Type {
	case NoteOn:
		return s.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return s.NoteOff(e.Channel, e.Note)
	case CC:
		return s.ControlChange(e.Channel, e.Note, e.Velocity)
	case PitchBend:
		return s.PitchBend(e.Channel, e.Value)
	case PitchBendRange:
		return s.PitchBendRange(e.Channel, e.Value)
	case ProgramChange:
		return s.ProgramChange(e.Channel, e.Note)
	case MPEZone:
		return s.MPEZone(e.Channel, uint8(e.Value))
	}
	return fmt.Errorf("unknown event type 0x%02X", e.Type)
}

// Messages encodes an event as wire messages. Pitch-bend range and zone
// configuration become RPN sequences closed with the null RPN.
func Messages(e Event) []gomidi.Message {
	ch := e.Channel
	switch e.Type {
	case NoteOn:
		return []gomidi.Message{gomidi.NoteOn(ch, e.Note, e.Velocity)}
	case NoteOff:
		return []gomidi.Message{gomidi.NoteOff(ch, e.Note)}
	case CC:
		return []gomidi.Message{gomidi.ControlChange(ch, e.Note, e.Velocity)}
	case ProgramChange:
		return []gomidi.Message{gomidi.ProgramChange(ch, e.Note)}
	case PitchBend:
		return []gomidi.Message{gomidi.Pitchbend(ch, int16(int(e.Value)-int(PitchBendCenter)))}
	case PitchBendRange:
		semitones := uint8(e.Value / 100)
		cents := uint8(e.Value % 100)
		return rpn(ch, 0, 0, semitones, cents)
	case MPEZone:
		return rpn(ch, 0, 6, uint8(e.Value), 0)
	}
	return nil
}

func rpn(ch, msb, lsb, dataMSB, dataLSB uint8) []gomidi.Message {
	return []gomidi.Message{
		gomidi.ControlChange(ch, CCRPNMSB, msb),
		gomidi.ControlChange(ch, CCRPNLSB, lsb),
		gomidi.ControlChange(ch, CCDataEntryMSB, dataMSB),
		gomidi.ControlChange(ch, CCDataEntryLSB, dataLSB),
		gomidi.ControlChange(ch, CCRPNMSB, 127),
		gomidi.ControlChange(ch, CCRPNLSB, 127),
	}
}

// Decode turns a channel message back into an Event. RPN sequences decode
// as their individual control changes.
func Decode(msg gomidi.Message) (Event, bool) {
	var channel, key, velocity, controller, value, program uint8
	var relative int16
	var absolute uint16
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		return NoteOnEvent(channel, key, velocity), true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return NoteOffEvent(channel, key), true
	case msg.GetControlChange(&channel, &controller, &value):
		return ControlChangeEvent(channel, controller, value), true
	case msg.GetProgramChange(&channel, &program):
		return ProgramChangeEvent(channel, program), true
	case msg.GetPitchBend(&channel, &relative, &absolute):
		return PitchBendEvent(channel, absolute), true
	}
	return Event{}, false
}

// PortSynth sends to a MIDI output through a gomidi send function
type PortSynth struct {
	name  string
	send  func(msg gomidi.Message) error
	close func() error // closes the driver port, nil when not owned
}

// NewPortSynth wraps a send function (e.g. from gomidi.SendTo)
func NewPortSynth(name string, send func(msg gomidi.Message) error) *PortSynth {
	return &PortSynth{name: name, send: send}
}

// OpenPortSynth opens the named output port
func OpenPortSynth(portName string) (*PortSynth, error) {
	out, err := gomidi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNoPort, portName)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", portName, err)
	}
	p := NewPortSynth(out.String(), send)
	p.close = out.Close
	return p, nil
}

func (p *PortSynth) Name() string {
	return p.name
}

// Close releases the driver port opened by OpenPortSynth. Later sends fail.
func (p *PortSynth) Close() error {
	if p.close == nil {
		return nil
	}
	err := p.close()
	p.close = nil
	p.send = func(gomidi.Message) error { return fmt.Errorf("output %q closed", p.name) }
	return err
}

func (p *PortSynth) write(e Event) error {
	for _, msg := range Messages(e) {
		if err := p.send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *PortSynth) NoteOn(channel, note, velocity uint8) error {
	return p.write(NoteOnEvent(channel, note, velocity))
}

func (p *PortSynth) NoteOff(channel, note uint8) error {
	return p.write(NoteOffEvent(channel, note))
}

func (p *PortSynth) ControlChange(channel, controller, value uint8) error {
	return p.write(ControlChangeEvent(channel, controller, value))
}

func (p *PortSynth) PitchBend(channel uint8, value uint16) error {
	return p.write(PitchBendEvent(channel, value))
}

func (p *PortSynth) PitchBendRange(channel uint8, cents uint16) error {
	return p.write(PitchBendRangeEvent(channel, cents))
}

func (p *PortSynth) ProgramChange(channel, program uint8) error {
	return p.write(ProgramChangeEvent(channel, program))
}

func (p *PortSynth) MPEZone(manager, members uint8) error {
	return p.write(MPEZoneEvent(manager, members))
}

// Recorder is a Synth that keeps what it was asked to play. It doubles as
// a gomidi send function (Send) so encoded output can be inspected.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	keep   int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Keep bounds the recorder to the n most recent events, 0 for no bound
func (r *Recorder) Keep(n int) {
	r.mu.Lock()
	r.keep = n
	r.trim()
	r.mu.Unlock()
}

func (r *Recorder) trim() {
	if r.keep > 0 && len(r.events) > r.keep {
		r.events = append(r.events[:0], r.events[len(r.events)-r.keep:]...)
	}
}

func (r *Recorder) add(e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.trim()
	r.mu.Unlock()
	return nil
}

// Send decodes a wire message and records it
func (r *Recorder) Send(msg gomidi.Message) error {
	e, ok := Decode(msg)
	if !ok {
		return fmt.Errorf("unsupported message %s", msg)
	}
	return r.add(e)
}

// Events returns a snapshot of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns up to n most recent events
func (r *Recorder) Last(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > len(r.events) {
		n = len(r.events)
	}
	out := make([]Event, n)
	copy(out, r.events[len(r.events)-n:])
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func (r *Recorder) NoteOn(channel, note, velocity uint8) error {
	return r.add(NoteOnEvent(channel, note, velocity))
}

func (r *Recorder) NoteOff(channel, note uint8) error {
	return r.add(NoteOffEvent(channel, note))
}

func (r *Recorder) ControlChange(channel, controller, value uint8) error {
	return r.add(ControlChangeEvent(channel, controller, value))
}

func (r *Recorder) PitchBend(channel uint8, value uint16) error {
	return r.add(PitchBendEvent(channel, value))
}

func (r *Recorder) PitchBendRange(channel uint8, cents uint16) error {
	return r.add(PitchBendRangeEvent(channel, cents))
}

func (r *Recorder) ProgramChange(channel, program uint8) error {
	return r.add(ProgramChangeEvent(channel, program))
}

func (r *Recorder) MPEZone(manager, members uint8) error {
	return r.add(MPEZoneEvent(manager, members))
}

// Tee fans every call out to several synths
type Tee []Synth

func (t Tee) each(f func(Synth) error) error {
	var errs []error
	for _, s := range t {
		if s == nil {
			continue
		}
		if err := f(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t Tee) NoteOn(channel, note, velocity uint8) error {
	return t.each(func(s Synth) error { return s.NoteOn(channel, note, velocity) })
}

func (t Tee) NoteOff(channel, note uint8) error {
	return t.each(func(s Synth) error { return s.NoteOff(channel, note) })
}

func (t Tee) ControlChange(channel, controller, value uint8) error {
	return t.each(func(s Synth) error { return s.ControlChange(channel, controller, value) })
}

func (t Tee) PitchBend(channel uint8, value uint16) error {
	return t.each(func(s Synth) error { return s.PitchBend(channel, value) })
}

func (t Tee) PitchBendRange(channel uint8, cents uint16) error {
	return t.each(func(s Synth) error { return s.PitchBendRange(channel, cents) })
}

func (t Tee) ProgramChange(channel, program uint8) error {
	return t.each(func(s Synth) error { return s.ProgramChange(channel, program) })
}

func (t Tee) MPEZone(manager, members uint8) error {
	return t.each(func(s Synth) error { return s.MPEZone(manager, members) })
}
