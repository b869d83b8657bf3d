package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"isotone/config"
	"isotone/debug"
	"isotone/geom"
	"isotone/gesture"
	"isotone/keys"
	"isotone/midi"
	"isotone/theme"
	"isotone/widgets"
)

// The mouse is a single pointer
const mousePointer gesture.PointerID = 0

// keyboardTop is the screen row of the first key row (header, blank line)
const keyboardTop = 2

const logRows = 6

// bendStep is how far < and > move the pitch-bend range, in cents
const bendStep = 100

var helpSections = []widgets.KeySection{
	{Title: "Keyboard", Keys: []widgets.KeyBinding{
		{Key: "h", Desc: "hands"},
		{Key: "</>", Desc: "bend range"},
		{Key: "esc", Desc: "all off"},
	}},
	{Title: "Sound", Keys: []widgets.KeyBinding{
		{Key: "tab", Desc: "zone"},
		{Key: "[/]", Desc: "program"},
		{Key: "d", Desc: "drums"},
		{Key: "c", Desc: "control"},
		{Key: "+/-", Desc: "value"},
	}},
	{Title: "App", Keys: []widgets.KeyBinding{
		{Key: "?", Desc: "help"},
		{Key: "q", Desc: "quit"},
	}},
}

// helpLine is the footer shown while the help overlay is closed
var helpLine = []widgets.KeySection{{Keys: []widgets.KeyBinding{
	{Key: "?", Desc: "help"},
	{Key: "q", Desc: "quit"},
}}}

type Model struct {
	Engine  *gesture.Engine
	Layout  *keys.Layout
	Config  *config.Config
	Theme   *theme.Theme
	Persist bool // save player settings to the config file on quit

	synth    midi.Synth
	log      *midi.Recorder
	ports    <-chan midi.PortEvent
	port     string
	sounds   [2]midi.Sound
	controls [2][]int
	zone     gesture.Zone // zone the sound keys act on
	control  int          // index into midi.SoundControls
	status   string
	showHelp bool
	quitting bool
}

type PortEventMsg midi.PortEvent

// NewModel wires the keyboard to synth. ports may be nil when the output
// is fixed.
func NewModel(cfg *config.Config, layout *keys.Layout, engine *gesture.Engine, synth midi.Synth, ports <-chan midi.PortEvent, th *theme.Theme) Model {
	log := midi.NewRecorder()
	log.Keep(logRows)
	m := Model{
		Engine: engine,
		Layout: layout,
		Config: cfg,
		Theme:  th,
		synth:  midi.Tee{synth, log},
		log:    log,
		ports:  ports,
		sounds: cfg.Sounds(),
	}
	for z := range m.controls {
		m.controls[z] = make([]int, len(midi.SoundControls))
		for i, cc := range midi.SoundControls {
			if cc != midi.CCModulation {
				m.controls[z][i] = 64
			}
		}
	}
	return m
}

func ListenForPorts(ports <-chan midi.PortEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ports
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	if m.ports == nil {
		return nil
	}
	return ListenForPorts(m.ports)
}

func (m *Model) send(events []midi.Event) {
	if len(events) == 0 {
		return
	}
	if err := midi.Dispatch(m.synth, events); err != nil {
		debug.Log("synth", "dispatch: %v", err)
		m.status = err.Error()
	}
}

// Setup prepares a freshly connected synth
func (m *Model) Setup() {
	m.send(m.Engine.Setup())
	for i := range m.sounds {
		m.send(m.sounds[i].Apply())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case PortEventMsg:
		event := midi.PortEvent(msg)
		switch event.Type {
		case midi.PortConnected:
			m.port = event.Port
			m.status = "connected " + event.Port
			m.Setup()
		case midi.PortDisconnected:
			m.port = ""
			m.status = "lost " + event.Port
			m.send(m.Engine.ReleaseAll())
		}
		if m.ports == nil {
			return m, nil
		}
		return m, ListenForPorts(m.ports)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sound := &m.sounds[m.zone]
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.send(m.Engine.ReleaseAll())
		if m.Persist {
			m.Config.SetSounds(m.sounds)
			m.Config.Keyboard.HandMode = m.Layout.HandMode()
			if err := m.Config.Save(); err != nil {
				debug.Log("tui", "save config: %v", err)
			}
		}
		return m, tea.Quit

	case "esc":
		m.send(m.Engine.ReleaseAll())
		m.status = "all notes off"

	case "h":
		// keys about to disappear must not keep sounding
		m.send(m.Engine.ReleaseAll())
		mode := 1
		if m.Layout.HandMode() == 1 {
			mode = 2
		}
		m.Layout.Place(m.Layout.Geometry(), mode)
		if mode == 1 {
			m.zone = gesture.ZoneLower
		}

	case "tab":
		if m.Layout.HandMode() == 2 && m.zone == gesture.ZoneLower {
			m.zone = gesture.ZoneUpper
		} else {
			m.zone = gesture.ZoneLower
		}

	case "[":
		m.send(sound.SetProgram(int(sound.Program) - 1))
	case "]":
		m.send(sound.SetProgram(int(sound.Program) + 1))

	case "d":
		m.send(sound.ToggleDrum())

	case "c":
		m.control = (m.control + 1) % len(midi.SoundControls)

	case "<", ">":
		step := bendStep
		if msg.String() == "<" {
			step = -bendStep
		}
		m.setBendRange(int(m.Config.MPE.PitchBendRangeCents) + step)

	case "?":
		m.showHelp = !m.showHelp

	case "+", "=", "-", "_":
		step := 8
		if k := msg.String(); k == "-" || k == "_" {
			step = -8
		}
		v := min(max(m.controls[m.zone][m.control]+step, 0), 127)
		m.controls[m.zone][m.control] = v
		m.send(sound.SetControl(midi.SoundControls[m.control], v))
	}
	return m, nil
}

// surfacePoint maps a terminal cell to the center of that cell on the
// keyboard surface
func surfacePoint(x, y int) geom.Point {
	return geom.Point{X: float64(x) + 0.5, Y: float64(y-keyboardTop) + 0.5}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := surfacePoint(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if b, ok := m.Layout.ButtonAt(p); ok {
			m.shiftOctave(b)
			return
		}
		hits := m.Layout.HitTest(p)
		if len(hits) == 0 {
			return
		}
		// a pointer plays in one zone, the first key hit picks it
		r, _ := m.Layout.Region(hits[0].Region)
		m.send(m.Engine.PointerDown(mousePointer, r.Zone, p, m.Layout.HitTestZone(p, r.Zone)))

	case tea.MouseActionMotion:
		s, ok := m.Engine.State(mousePointer)
		if !ok {
			return
		}
		debug.LogEvery(20, "tui", "drag %.1f,%.1f", p.X, p.Y)
		m.send(m.Engine.PointerMove(mousePointer, p, m.Layout.HitTestZone(p, s.Zone)))

	case tea.MouseActionRelease:
		m.send(m.Engine.PointerUp(mousePointer))
	}
}

// setBendRange retunes every channel. Sounding notes are released first
// since their bends were computed for the old range.
func (m *Model) setBendRange(cents int) {
	cents = min(max(cents, bendStep), 127*bendStep)
	if uint16(cents) == m.Config.MPE.PitchBendRangeCents {
		return
	}
	m.send(m.Engine.ReleaseAll())
	m.Config.MPE.PitchBendRangeCents = uint16(cents)
	for ch := uint8(0); ch < 16; ch++ {
		m.send(m.Engine.SetPitchBendRange(ch, uint16(cents)))
	}
	m.status = fmt.Sprintf("bend range %g semitones", float64(cents)/100)
}

func (m *Model) shiftOctave(b keys.Button) {
	ok, err := m.Layout.ShiftOctave(b.Zone, b.Direction)
	switch {
	case err != nil:
		m.status = err.Error()
	case !ok:
		m.status = fmt.Sprintf("%s zone octave limit", b.Zone)
	default:
		m.status = fmt.Sprintf("%s zone octave %d", b.Zone, m.Layout.Octave(b.Zone))
	}
}

func (m Model) soundLabel(z gesture.Zone) string {
	s := m.sounds[z]
	if s.Drum {
		return "drums"
	}
	return fmt.Sprintf("prog %d", s.Program)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Bold(true)

	port := m.port
	if port == "" {
		port = "no output"
	}
	zones := []string{}
	for z := gesture.ZoneLower; z <= gesture.ZoneUpper; z++ {
		if z == gesture.ZoneUpper && m.Layout.HandMode() == 1 {
			break
		}
		label := fmt.Sprintf("%s: %s", z, m.soundLabel(z))
		if z == m.zone {
			cc := midi.SoundControls[m.control]
			label = selStyle.Render(fmt.Sprintf("%s cc%d=%d", label, cc, m.controls[z][m.control]))
		}
		zones = append(zones, label)
	}
	header := headerStyle.Render("isotone  "+port) + "  " + strings.Join(zones, "  ")
	if s, ok := m.Engine.State(mousePointer); ok {
		header += fmt.Sprintf("  %c ch%d %v", m.Theme.Symbols.Pointer, s.Channel, s.BaseNotes())
	}

	keyboard := widgets.RenderKeyboard(m.Layout, m.Theme, m.Engine.Highlights())
	events := widgets.RenderEventLog(m.log.Events(), logRows, dimStyle)

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(keyboard)
	out.WriteString("\n\n")
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(helpSections, headerStyle))
	} else {
		out.WriteString(events)
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelpLine(helpLine)))
	}
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(m.status)
	}
	return out.String()
}
