package viz

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a colormap for field values plus the panel colors drawn next
// to it. Ramp runs from the lowest to the highest value.
type Theme struct {
	Name   string
	Ramp   []lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
}

var (
	ThemeViridis = Theme{
		Name:   "viridis",
		Ramp:   []lipgloss.Color{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
		Text:   "#ffffff",
		Muted:  "#666688",
		Accent: "#fde725",
	}

	ThemeInferno = Theme{
		Name:   "inferno",
		Ramp:   []lipgloss.Color{"#000004", "#57106e", "#bc3754", "#f98e09", "#fcffa4"},
		Text:   "#fff5f5",
		Muted:  "#8b6b8c",
		Accent: "#f98e09",
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Ramp:   []lipgloss.Color{"#001a33", "#0077be", "#00a8cc", "#e0f0ff"},
		Text:   "#e0f0ff",
		Muted:  "#4488aa",
		Accent: "#ffd700",
	}

	ThemeGray = Theme{
		Name:   "gray",
		Ramp:   []lipgloss.Color{"#000000", "#ffffff"},
		Text:   "#ffffff",
		Muted:  "#888888",
		Accent: "#0088ff",
	}

	CurrentTheme = ThemeViridis

	Themes = []Theme{
		ThemeViridis,
		ThemeInferno,
		ThemeOcean,
		ThemeGray,
	}
)

// GetTheme returns a theme by name, viridis when unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeViridis
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after name in Themes.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// Levels samples the ramp at n evenly spaced points.
func (t Theme) Levels(n int) []lipgloss.Color {
	out := make([]lipgloss.Color, n)
	for i := range out {
		f := 0.0
		if n > 1 {
			f = float64(i) / float64(n-1)
		}
		r, g, b := t.rgb(f)
		out[i] = lipgloss.Color(hexColor(r, g, b))
	}
	return out
}

// Palette is Levels as image colors, for GIF frames.
func (t Theme) Palette(n int) color.Palette {
	p := make(color.Palette, n)
	for i, c := range t.Levels(n) {
		r, g, b := parseHex(string(c))
		p[i] = color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
	}
	return p
}

// rgb interpolates the ramp linearly at f in [0, 1].
func (t Theme) rgb(f float64) (r, g, b int) {
	if len(t.Ramp) == 0 {
		return 255, 255, 255
	}
	if len(t.Ramp) == 1 || f <= 0 {
		return parseHex(string(t.Ramp[0]))
	}
	if f >= 1 {
		return parseHex(string(t.Ramp[len(t.Ramp)-1]))
	}
	pos := f * float64(len(t.Ramp)-1)
	i := int(pos)
	frac := pos - float64(i)
	sr, sg, sb := parseHex(string(t.Ramp[i]))
	er, eg, eb := parseHex(string(t.Ramp[i+1]))
	mix := func(a, b int) int { return int(float64(a) + frac*float64(b-a) + 0.5) }
	return mix(sr, er), mix(sg, eg), mix(sb, eb)
}
