package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// colorLevels is the number of distinct colors a heatmap uses.
const colorLevels = 32

// Sample resamples a frame given as rows of y onto w x h cells by nearest
// neighbour. Row 0 of the result holds the largest y.
func Sample(frame [][]float64, w, h int) [][]float64 {
	ny, nx := len(frame), len(frame[0])
	out := make([][]float64, h)
	for r := range out {
		iy := ny - 1 - r*ny/h
		out[r] = make([]float64, w)
		for c := range out[r] {
			out[r][c] = frame[iy][c*nx/w]
		}
	}
	return out
}

// Level maps v onto 0..n-1 over [lo, hi].
func Level(v, lo, hi float64, n int) int {
	if hi <= lo {
		return 0
	}
	return min(max(int((v-lo)/(hi-lo)*float64(n-1)+0.5), 0), n-1)
}

// Heatmap renders a frame on w x h text cells. Each cell is an upper half
// block, so it shows two sample rows.
func Heatmap(frame [][]float64, w, h int, lo, hi float64, theme Theme) string {
	cells := Sample(frame, w, 2*h)
	levels := theme.Levels(colorLevels)

	styles := make(map[int]lipgloss.Style)
	style := func(top, bottom int) lipgloss.Style {
		key := top*colorLevels + bottom
		s, ok := styles[key]
		if !ok {
			s = lipgloss.NewStyle().Foreground(levels[top]).Background(levels[bottom])
			styles[key] = s
		}
		return s
	}

	var b strings.Builder
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			top := Level(cells[2*r][c], lo, hi, colorLevels)
			bottom := Level(cells[2*r+1][c], lo, hi, colorLevels)
			b.WriteString(style(top, bottom).Render("▀"))
		}
		if r < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend is a one-line color bar from lo to hi.
func Legend(width int, theme Theme) string {
	levels := theme.Levels(max(width, 1))
	var b strings.Builder
	for _, c := range levels {
		b.WriteString(lipgloss.NewStyle().Background(c).Render(" "))
	}
	return b.String()
}
