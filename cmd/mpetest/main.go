package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"isotone/geom"
	"isotone/gesture"
	"isotone/keys"
	"isotone/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer gomidi.CloseDriver()

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "setup":
		err = withPort(func(s midi.Synth) error {
			return midi.Dispatch(s, gesture.NewEngine(gesture.DefaultConfig()).Setup())
		})
	case "glide":
		from, to := arg(3, "C4"), arg(4, "D4")
		err = withPort(func(s midi.Synth) error { return glide(s, from, to) })
	case "poll":
		pollPorts(arg(2, ""))
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MPE Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                  - List MIDI output ports")
	fmt.Println("  setup <port>          - Send MPE zones and bend ranges")
	fmt.Println("  glide <port> [a] [b]  - Press key a, slide to key b, release")
	fmt.Println("  poll [port]           - Watch an output come and go")
	fmt.Println("")
	fmt.Println("Use - as port to print the commands instead of sending them.")
}

func arg(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

// withPort runs f against the port named by the second argument
func withPort(f func(midi.Synth) error) error {
	name := arg(2, "")
	if name == "" {
		usage()
		return nil
	}
	if name == "-" {
		rec := midi.NewRecorder()
		err := f(rec)
		for _, e := range rec.Events() {
			fmt.Println(e)
		}
		return err
	}
	synth, err := midi.OpenPortSynth(name)
	if err != nil {
		return err
	}
	fmt.Printf("Using output: %s\n", synth.Name())
	return f(synth)
}

func listPorts() {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

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
		for i, n := range names {
			fmt.Printf("  %d: %s\n", i, n)
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! MIDI driver is hung.")
	}
}

// glide plays a one-pointer gesture through the engine using the default
// layout: press the middle of key a, move in steps to the middle of key b,
// then release
func glide(s midi.Synth, from, to string) error {
	layout, err := keys.New(keys.DefaultLabels)
	if err != nil {
		return err
	}
	layout.Place(keys.Geometry{KeyWidth: 100, KeyHeight: 100, Gap: 0, ZoneGap: 50, HitOverlap: 10}, 2)

	a, ok := findKey(layout, from)
	if !ok {
		return fmt.Errorf("no key %q in the lower zone", from)
	}
	b, ok := findKey(layout, to)
	if !ok {
		return fmt.Errorf("no key %q in the lower zone", to)
	}

	engine := gesture.NewEngine(gesture.DefaultConfig())
	if err := midi.Dispatch(s, engine.Setup()); err != nil {
		return err
	}

	const steps = 40
	start, end := geom.Center(a.Key), geom.Center(b.Key)
	p := start
	if err := midi.Dispatch(s, engine.PointerDown(0, a.Zone, p, layout.HitTest(p))); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / steps
		p = geom.Point{X: start.X + (end.X-start.X)*t, Y: start.Y + (end.Y-start.Y)*t}
		if err := midi.Dispatch(s, engine.PointerMove(0, p, layout.HitTest(p))); err != nil {
			return err
		}
		time.Sleep(25 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)
	return midi.Dispatch(s, engine.PointerUp(0))
}

func findKey(l *keys.Layout, label string) (keys.Region, bool) {
	for _, r := range l.Regions() {
		if r.Zone == gesture.ZoneLower && r.Label == label {
			return r, true
		}
	}
	return keys.Region{}, false
}

func pollPorts(want string) {
	fmt.Println("Polling for the synth output. Ctrl+C to exit.")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	om := midi.NewOutputManager(want)
	go om.Run(ctx)

	for e := range om.Events() {
		state := "connected"
		if e.Type == midi.PortDisconnected {
			state = "disconnected"
		}
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), state, e.Port)
	}
}
