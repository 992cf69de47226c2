package viz

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a colour scheme for the live view. Fabric colours the mesh on
// screen and in recorded GIFs.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Fabric    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

// palette order: primary, secondary, fabric, text, muted, success, warning, error.
func palette(name string, hex ...string) Theme {
	c := make([]lipgloss.Color, len(hex))
	for i, h := range hex {
		c[i] = lipgloss.Color(h)
	}
	return Theme{name, c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7]}
}

// Themes in cycling order; the first is the default.
var Themes = []Theme{
	palette("neon", "#ff00ff", "#00ffff", "#00ffff", "#ffffff", "#666666", "#00ff00", "#ff8800", "#ff0000"),
	palette("linen", "#d9b48f", "#a3826b", "#f2e6d0", "#fff8ee", "#7d6b5d", "#8fbf6a", "#e0a040", "#d0504a"),
	palette("phosphor", "#00ff00", "#00cc00", "#66ff66", "#00ff00", "#005500", "#88ff88", "#ffff00", "#ff0000"),
	palette("ocean", "#0077be", "#00a8cc", "#7fd4f0", "#e0f0ff", "#4488aa", "#00ff88", "#ffcc00", "#ff4444"),
	palette("mono", "#ffffff", "#cccccc", "#ffffff", "#ffffff", "#888888", "#dddddd", "#aaaaaa", "#ff0000"),
}

// GetTheme returns a theme by name, or the default when the name is unknown.
func GetTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return Themes[0], false
}

// NextTheme returns the theme after t in cycling order.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// FabricRGBA is the fabric colour for raster output.
func (t Theme) FabricRGBA() color.RGBA {
	r, g, b := parseHex(string(t.Fabric))
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}
