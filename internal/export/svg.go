package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/blobfield/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// FrameToSVG draws one time slice as a grid of colored cells, y = 0 at
// the bottom. Values are colored over [lo, hi].
func FrameToSVG(frame [][]float64, cell int, lo, hi float64, theme viz.Theme) string {
	if len(frame) == 0 || len(frame[0]) == 0 || cell <= 0 {
		return ""
	}

	ny, nx := len(frame), len(frame[0])
	width, height := nx*cell, ny*cell
	levels := theme.Levels(64)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, width, height, width, height))
	sb.WriteString(`<g shape-rendering="crispEdges">` + "\n")
	for iy, row := range frame {
		y := (ny - 1 - iy) * cell
		for ix, v := range row {
			c := levels[viz.Level(v, lo, hi, len(levels))]
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
				ix*cell, y, cell, cell, c))
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to SVG dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.Pixels()
	width := int(math.Ceil(float64(pw) * scale))
	height := int(math.Ceil(float64(ph) * scale))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<g fill="%s">`+"\n", fill))

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Series is one line of a profile plot.
type Series struct {
	Name   string
	Values []float64
	Color  string
	Dashed bool
}

// ProfileToSVG plots every series against x on shared, padded axes. With
// logY the values are drawn on a log scale and non-positive samples break
// the line.
func ProfileToSVG(x []float64, series []Series, width, height int, logY bool) string {
	if len(x) < 2 || len(series) == 0 {
		return ""
	}

	tr := func(v float64) float64 {
		if logY {
			if v <= 0 {
				return math.NaN()
			}
			return math.Log10(v)
		}
		return v
	}

	minX, maxX := x[0], x[len(x)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if t := tr(v); !math.IsNaN(t) {
				minY = math.Min(minY, t)
				maxY = math.Max(maxY, t)
			}
		}
	}
	if math.IsInf(minY, 0) {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, width, height, width, height))

	for i, s := range series {
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="6,4"`
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="`, s.Color, dash))
		pen := false
		for j, v := range s.Values {
			t := tr(v)
			if j >= len(x) || math.IsNaN(t) {
				pen = false
				continue
			}
			px := (x[j] - minX) / rangeX * float64(width)
			py := float64(height) - (t-minY)/rangeY*float64(height)
			op := "L"
			if !pen {
				op = "M"
			}
			sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", op, px, py))
			pen = true
		}
		sb.WriteString(`"/>` + "\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>`+"\n",
			16*(i+1), s.Color, s.Name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
