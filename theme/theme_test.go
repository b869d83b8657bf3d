package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lightness(t *testing.T, hex string) float64 {
	t.Helper()
	c, err := colorful.Hex(hex)
	require.NoError(t, err)
	_, _, l := c.Hsl()
	return l
}

func TestKeyColorLightnessFollowsLevel(t *testing.T) {
	assert.InDelta(t, 0.3, lightness(t, string(KeyColor(0))), 0.01)
	assert.InDelta(t, 0.5, lightness(t, string(KeyColor(64))), 0.01)
	assert.InDelta(t, 0.7, lightness(t, string(KeyColor(127))), 0.01)
	assert.Equal(t, KeyColor(127), KeyColor(255))

	c, _ := colorful.Hex(string(KeyColor(100)))
	h, _, _ := c.Hsl()
	assert.InDelta(t, 200, h, 2)
}

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	data := "GIMP Palette\nName: Test\nColumns: 2\n# comment\n  0   0   0\tBlack\n255 255 255 White\n300 0 0 bad\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	p, err := LoadGPL(path)
	require.NoError(t, err)
	assert.Equal(t, "Test", p.Name)
	require.Len(t, p.Colors, 2)
	assert.Equal(t, "#000000", p.Lookup(0).Hex())
	assert.Equal(t, "#ffffff", p.Lookup(1).Hex())
	assert.Equal(t, "#808080", p.Lookup(0.5).Hex())

	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\n"), 0644))
	_, err = LoadGPL(path)
	assert.Error(t, err)
}

func TestNewFallsBackToDefaultPalette(t *testing.T) {
	th := New(nil)
	require.NotNil(t, th.Palette)
	assert.Equal(t, "isotone", th.Palette.Name)
	assert.NotEqual(t, th.Key(true), th.Key(false))

	single := New(&Palette{Colors: []colorful.Color{{R: 1}}})
	assert.Equal(t, single.FG(), single.BG())
}
