package keys

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidNoteFormat is returned for labels that are not like "C#4"
var ErrInvalidNoteFormat = errors.New("invalid note format")

var (
	noteLabel   = regexp.MustCompile(`^([A-Ga-g][#b]?)(-?\d+)$`)
	noteNumber  = regexp.MustCompile(`^([A-Ga-g])([#b]?)(\d+)$`)
	pitchOffset = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}
)

// ParseNote splits a label into its pitch name and octave. The letter is
// upper-cased, the accidental kept as written.
func ParseNote(label string) (name string, octave int, err error) {
	m := noteLabel.FindStringSubmatch(label)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidNoteFormat, label)
	}
	octave, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidNoteFormat, label)
	}
	return strings.ToUpper(m[1][:1]) + m[1][1:], octave, nil
}

// NoteNumber converts a label to a MIDI note number with C4 = 60. Labels
// that are not notes give -1.
func NoteNumber(label string) int {
	m := noteNumber.FindStringSubmatch(label)
	if m == nil {
		return -1
	}
	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return -1
	}
	n := pitchOffset[strings.ToUpper(m[1])]
	switch m[2] {
	case "#":
		n++
	case "b":
		n--
	}
	return n + (octave+1)*12
}

// IsAccidental reports whether a note label is a sharp or flat
func IsAccidental(label string) bool {
	return strings.ContainsAny(label[min(1, len(label)):], "#b")
}
