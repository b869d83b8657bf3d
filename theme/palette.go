package theme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type Palette struct {
	Name   string
	Colors []colorful.Color
}

// DefaultPalette is a dark blue ramp, used when no palette file is set
func DefaultPalette() *Palette {
	p := &Palette{Name: "isotone"}
	for _, hex := range []string{"#0b1220", "#16243a", "#23385a", "#3b5b85", "#7fa7d6", "#d6e6f7", "#f2b84b"} {
		c, _ := colorful.Hex(hex)
		p.Colors = append(p.Colors, c)
	}
	return p
}

// LoadGPL reads a GIMP palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		var rgb [3]uint8
		ok := true
		for i := range rgb {
			v, err := strconv.Atoi(fields[i])
			if err != nil || v < 0 || v > 255 {
				ok = false
				break
			}
			rgb[i] = uint8(v)
		}
		if ok {
			p.Colors = append(p.Colors, colorful.Color{
				R: float64(rgb[0]) / 255,
				G: float64(rgb[1]) / 255,
				B: float64(rgb[2]) / 255,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", path)
	}

	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) colorful.Color {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 || len(p.Colors) == 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	return p.Colors[i].BlendRgb(p.Colors[i+1], pos-float64(i))
}
