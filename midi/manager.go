package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"isotone/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// PortEvent is emitted when the synth output connects/disconnects
type PortEvent struct {
	Type PortEventType
	Port string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// OutputManager keeps the configured synth output open across hot-plug.
// It is itself a Synth: commands go to the open port, or nowhere while
// disconnected.
type OutputManager struct {
	want     string
	current  *PortSynth
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration

	listPorts func() []string
	openPort  func(name string) (*PortSynth, error)
}

// NewOutputManager watches for an output whose name contains want (case
// insensitive). An empty want picks the first port found.
func NewOutputManager(want string) *OutputManager {
	return &OutputManager{
		want:      strings.ToLower(want),
		events:    make(chan PortEvent, 16),
		pollRate:  time.Second,
		listPorts: outPortNames,
		openPort:  OpenPortSynth,
	}
}

// Events returns a channel of connect/disconnect events
func (om *OutputManager) Events() <-chan PortEvent {
	return om.events
}

// Port returns the name of the open port, or ""
func (om *OutputManager) Port() string {
	om.mu.RLock()
	defer om.mu.RUnlock()
	if om.current == nil {
		return ""
	}
	return om.current.Name()
}

// Run starts the polling loop (blocking - run in goroutine)
func (om *OutputManager) Run(ctx context.Context) {
	ticker := time.NewTicker(om.pollRate)
	defer ticker.Stop()

	om.scan()

	for {
		select {
		case <-ctx.Done():
			om.mu.Lock()
			current := om.current
			om.current = nil
			om.mu.Unlock()
			if current != nil {
				om.closePort(current)
			}
			close(om.events)
			return
		case <-ticker.C:
			om.scan()
		}
	}
}

func (om *OutputManager) matches(name string) bool {
	return om.want == "" || strings.Contains(strings.ToLower(name), om.want)
}

func (om *OutputManager) scan() {
	ports := om.listPorts()
	if ports == nil {
		return
	}

	om.mu.RLock()
	current := om.current
	om.mu.RUnlock()

	if current != nil {
		for _, name := range ports {
			if name == current.Name() {
				return
			}
		}
		debug.Log("port", "output %q disappeared", current.Name())
		om.mu.Lock()
		om.current = nil
		om.mu.Unlock()
		om.closePort(current)
		om.emit(PortEvent{Type: PortDisconnected, Port: current.Name()})
		return
	}

	for _, name := range ports {
		if !om.matches(name) {
			continue
		}
		synth, err := om.openPort(name)
		if err != nil {
			debug.Log("port", "open %q failed: %v", name, err)
			continue
		}
		om.mu.Lock()
		om.current = synth
		om.mu.Unlock()
		debug.Log("port", "output %q connected", name)
		om.emit(PortEvent{Type: PortConnected, Port: name})
		return
	}
}

func (om *OutputManager) closePort(p *PortSynth) {
	if err := p.Close(); err != nil {
		debug.Log("port", "close %q: %v", p.Name(), err)
	}
}

func (om *OutputManager) emit(e PortEvent) {
	select {
	case om.events <- e:
	default:
		debug.Log("port", "event dropped: %v", e)
	}
}

// outPortNames lists output ports with a timeout (CoreMIDI can hang)
func outPortNames() []string {
	ch := make(chan []string, 1)
	go func() {
		var names []string
		for _, p := range gomidi.GetOutPorts() {
			names = append(names, p.String())
		}
		ch <- names
	}()

	select {
	case names := <-ch:
		if names == nil {
			names = []string{}
		}
		return names
	case <-time.After(3 * time.Second):
		return nil
	}
}

func (om *OutputManager) synth() Synth {
	om.mu.RLock()
	defer om.mu.RUnlock()
	if om.current == nil {
		return nil
	}
	return om.current
}

func (om *OutputManager) NoteOn(channel, note, velocity uint8) error {
	if s := om.synth(); s != nil {
		return s.NoteOn(channel, note, velocity)
	}
	return nil
}

func (om *OutputManager) NoteOff(channel, note uint8) error {
	if s := om.synth(); s != nil {
		return s.NoteOff(channel, note)
	}
	return nil
}

func (om *OutputManager) ControlChange(channel, controller, value uint8) error {
	if s := om.synth(); s != nil {
		return s.ControlChange(channel, controller, value)
	}
	return nil
}

func (om *OutputManager) PitchBend(channel uint8, value uint16) error {
	if s := om.synth(); s != nil {
		return s.PitchBend(channel, value)
	}
	return nil
}

func (om *OutputManager) PitchBendRange(channel uint8, cents uint16) error {
	if s := om.synth(); s != nil {
		return s.PitchBendRange(channel, cents)
	}
	return nil
}

func (om *OutputManager) ProgramChange(channel, program uint8) error {
	if s := om.synth(); s != nil {
		return s.ProgramChange(channel, program)
	}
	return nil
}

func (om *OutputManager) MPEZone(manager, members uint8) error {
	if s := om.synth(); s != nil {
		return s.MPEZone(manager, members)
	}
	return nil
}
