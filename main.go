package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"isotone/config"
	"isotone/debug"
	"isotone/gesture"
	"isotone/keys"
	"isotone/midi"
	"isotone/theme"
	"isotone/tui"
)

func main() {
	debugFlag := flag.Bool("debug", false, "log to ~/.config/isotone/debug.log")
	portFlag := flag.String("port", "", "synth output port (substring match)")
	configFlag := flag.String("config", "", "config file (default ~/.config/isotone/config.json)")
	flag.Parse()

	if err := run(*configFlag, *portFlag, *debugFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, port string, debugOn bool) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Synth.PortName = port
	}

	if debugOn || cfg.UI.Debug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}

	labels, err := cfg.Labels()
	if err != nil {
		return err
	}
	layout, err := keys.New(labels)
	if err != nil {
		return err
	}
	layout.Place(cfg.Geometry(), cfg.Keyboard.HandMode)

	var palette *theme.Palette
	if cfg.UI.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.UI.Palette); err != nil {
			return err
		}
	}
	th := theme.New(palette)

	engine := gesture.NewEngine(cfg.Engine())

	// Output manager reconnects the synth on hot-plug
	defer gomidi.CloseDriver()
	outputs := midi.NewOutputManager(cfg.Synth.PortName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go outputs.Run(ctx)

	m := tui.NewModel(cfg, layout, engine, outputs, outputs.Events(), th)
	m.Persist = configPath == ""
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err = p.Run()
	return err
}
