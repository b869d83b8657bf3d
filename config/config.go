package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"isotone/gesture"
	"isotone/keys"
	"isotone/midi"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Spacing in cells between keys and between the two zones
const (
	keyGap  = 1
	zoneGap = 3
)

// SynthConfig defines the synth MIDI output and the sound of each zone
type SynthConfig struct {
	PortName string   `json:"portName,omitempty"` // substring match, empty = first port
	Programs [2]uint8 `json:"programs"`           // lower, upper
	Drums    [2]bool  `json:"drums"`
}

// MPEConfig sizes the zones
type MPEConfig struct {
	LowerMembers        int    `json:"lowerMembers"`
	UpperMembers        int    `json:"upperMembers"`
	PitchBendRangeCents uint16 `json:"pitchBendRangeCents"`
	VelocityFromY       bool   `json:"velocityFromY,omitempty"`
}

// KeyboardConfig sizes the on-screen keys, in terminal cells
type KeyboardConfig struct {
	HandMode   int     `json:"handMode"`
	KeyWidth   int     `json:"keyWidth"`
	KeyHeight  int     `json:"keyHeight"`
	HitOverlap float64 `json:"hitOverlap"`
	LayoutFile string  `json:"layoutFile,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file
	Debug   bool   `json:"debug,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Synth    SynthConfig    `json:"synth"`
	MPE      MPEConfig      `json:"mpe"`
	Keyboard KeyboardConfig `json:"keyboard"`
	UI       UIConfig       `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MPE: MPEConfig{
			LowerMembers:        7,
			UpperMembers:        7,
			PitchBendRangeCents: 1200,
		},
		Keyboard: KeyboardConfig{
			HandMode:   2,
			KeyWidth:   7,
			KeyHeight:  3,
			HitOverlap: 1,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "isotone"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file. Fields missing from the file keep their
// defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	m := c.MPE
	if m.LowerMembers < 0 || m.UpperMembers < 0 || m.LowerMembers+m.UpperMembers > 14 {
		return fmt.Errorf("%w: zones need 0..14 member channels in total, got %d+%d", ErrInvalid, m.LowerMembers, m.UpperMembers)
	}
	if m.PitchBendRangeCents == 0 || m.PitchBendRangeCents > 12799 {
		return fmt.Errorf("%w: pitch bend range %d cents", ErrInvalid, m.PitchBendRangeCents)
	}
	for _, p := range c.Synth.Programs {
		if p > 127 {
			return fmt.Errorf("%w: program %d", ErrInvalid, p)
		}
	}
	k := c.Keyboard
	if k.HandMode != 1 && k.HandMode != 2 {
		return fmt.Errorf("%w: hand mode %d", ErrInvalid, k.HandMode)
	}
	if k.KeyWidth < 3 || k.KeyHeight < 1 {
		return fmt.Errorf("%w: key size %dx%d", ErrInvalid, k.KeyWidth, k.KeyHeight)
	}
	if k.HitOverlap < 0 || k.HitOverlap*2 >= float64(min(k.KeyWidth, k.KeyHeight)) {
		return fmt.Errorf("%w: hit overlap %g", ErrInvalid, k.HitOverlap)
	}
	// hit boxes of the two zones must not meet across the zone gap
	if k.HitOverlap*2 >= zoneGap {
		return fmt.Errorf("%w: hit overlap %g spans the %d cell zone gap", ErrInvalid, k.HitOverlap, zoneGap)
	}
	return nil
}

// Engine returns the gesture engine settings
func (c *Config) Engine() gesture.Config {
	return gesture.Config{
		LowerMembers:   c.MPE.LowerMembers,
		UpperMembers:   c.MPE.UpperMembers,
		PitchBendRange: c.MPE.PitchBendRangeCents,
		VelocityFromY:  c.MPE.VelocityFromY,
	}
}

// Geometry lays keys out one cell apart, zones three cells apart
func (c *Config) Geometry() keys.Geometry {
	return keys.Geometry{
		KeyWidth:   float64(c.Keyboard.KeyWidth),
		KeyHeight:  float64(c.Keyboard.KeyHeight),
		Gap:        keyGap,
		ZoneGap:    zoneGap,
		HitOverlap: c.Keyboard.HitOverlap,
	}
}

// Labels returns the key labels from the layout file, or the default grid
func (c *Config) Labels() ([][]string, error) {
	if c.Keyboard.LayoutFile == "" {
		return keys.DefaultLabels, nil
	}
	return keys.LoadLabels(c.Keyboard.LayoutFile)
}

// Sounds returns the saved sound of each zone
func (c *Config) Sounds() [2]midi.Sound {
	return [2]midi.Sound{
		{Channel: midi.LowerManager, Program: c.Synth.Programs[0], Drum: c.Synth.Drums[0]},
		{Channel: midi.UpperManager, Program: c.Synth.Programs[1], Drum: c.Synth.Drums[1]},
	}
}

// SetSounds stores the sound of each zone
func (c *Config) SetSounds(s [2]midi.Sound) {
	for i := range s {
		c.Synth.Programs[i] = s[i].Program
		c.Synth.Drums[i] = s[i].Drum
	}
}
