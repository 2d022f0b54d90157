package viz

import (
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/blobfield/internal/grid"
	"github.com/san-kum/blobfield/internal/storage"
)

func dataset(ny int, labels bool) *storage.Dataset {
	ly := 4.0
	if ny == 1 {
		ly = 0
	}
	g := grid.New(grid.Params{Nx: 8, Ny: ny, Lx: 8, Ly: ly, Dt: 1, T: 5})
	ds := &storage.Dataset{Grid: g, Density: g.NewField()}
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < 8; ix++ {
			for it := 0; it < 5; it++ {
				ds.Density.Set(iy, ix, it, float64(ix+it))
			}
		}
	}
	if labels {
		ds.Labels = g.NewField()
		ds.Labels.Set(0, 0, 0, 1)
	}
	return ds
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != brailleBlank|0x1 {
		t.Errorf("unexpected first cell %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBlank|0x80 {
		t.Errorf("unexpected second cell %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("clear should reset all dots")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d, %d) not set", i, i)
		}
	}
	if lines := strings.Count(c.String(), "\n"); lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}
}

func TestCanvasDrawMask(t *testing.T) {
	frame := [][]float64{
		{1, 0},
		{0, 0},
	}
	c := NewCanvas(1, 1)
	c.DrawMask(frame, 0.5)

	// y = 0 is the bottom half, x = 0 the left column.
	if !c.IsSet(0, 3) || !c.IsSet(0, 2) {
		t.Error("bottom-left dots should be set")
	}
	if c.IsSet(0, 0) || c.IsSet(1, 3) {
		t.Error("only the bottom-left quadrant should be set")
	}
}

func TestSampleAndLevel(t *testing.T) {
	frame := [][]float64{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
	}
	cells := Sample(frame, 2, 2)
	if cells[0][0] != 4 || cells[0][1] != 6 || cells[1][0] != 0 || cells[1][1] != 2 {
		t.Errorf("unexpected resampling %v", cells)
	}

	tests := []struct {
		v    float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{0.5, 5},
		{1, 9},
		{2, 9},
	}
	for _, tt := range tests {
		if got := Level(tt.v, 0, 1, 10); got != tt.want {
			t.Errorf("Level(%f) = %d, want %d", tt.v, got, tt.want)
		}
	}
	if Level(3, 1, 1, 10) != 0 {
		t.Error("empty range should map to level 0")
	}
}

func TestHeatmapSize(t *testing.T) {
	frame := dataset(4, false).Density.Frame(2)
	out := Heatmap(frame, 10, 3, 0, 10, ThemeGray)
	if lines := strings.Split(out, "\n"); len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(lines))
	}
	if n := strings.Count(out, "▀"); n != 30 {
		t.Errorf("expected 30 cells, got %d", n)
	}
}

func TestThemeLevels(t *testing.T) {
	levels := ThemeGray.Levels(3)
	want := []string{"#000000", "#808080", "#ffffff"}
	for i := range want {
		if string(levels[i]) != want[i] {
			t.Errorf("level %d: expected %s, got %s", i, want[i], levels[i])
		}
	}
	if len(ThemeViridis.Palette(colorLevels)) != colorLevels {
		t.Error("palette size mismatch")
	}
	if GetTheme("missing").Name != "viridis" {
		t.Error("unknown theme should fall back to viridis")
	}
	if NextTheme("gray").Name != Themes[0].Name {
		t.Error("theme cycle should wrap")
	}
}

func TestPlayerKeys(t *testing.T) {
	p := NewPlayer(dataset(4, true), "test")

	press := func(p Player, key string) Player {
		var msg tea.KeyMsg
		switch key {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		m, _ := p.Update(msg)
		return m.(Player)
	}

	p = press(p, "[")
	if p.Frame() != 4 || p.running {
		t.Errorf("stepping back from frame 0 should wrap to 4 and pause, got %d", p.Frame())
	}
	p = press(p, "]")
	if p.Frame() != 0 {
		t.Errorf("expected frame 0, got %d", p.Frame())
	}

	p = press(p, "right")
	p = press(p, "up")
	if p.probeX != 1 || p.probeY != 1 {
		t.Errorf("unexpected probe (%d, %d)", p.probeX, p.probeY)
	}

	p = press(p, "tab")
	if !p.labels {
		t.Error("tab should switch to labels")
	}

	theme := p.theme.Name
	p = press(p, "t")
	if p.theme.Name == theme {
		t.Error("t should change the theme")
	}

	if !strings.Contains(p.View(), "TEST") {
		t.Error("view should show the title")
	}
}

func TestPlayerTick(t *testing.T) {
	p := NewPlayer(dataset(1, false), "one dim")
	for i := 0; i < 7; i++ {
		m, cmd := p.Update(TickMsg{})
		if cmd == nil {
			t.Fatal("tick should schedule the next tick")
		}
		p = m.(Player)
	}
	if p.Frame() != 2 {
		t.Errorf("expected frame 2 after 7 ticks over 5 frames, got %d", p.Frame())
	}
	if p.View() == "" {
		t.Error("expected a line plot view")
	}
}

func TestRecordGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.gif")
	if err := RecordGIF(dataset(4, false), path, WithSize(8, 4)); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(anim.Image) != 5 {
		t.Errorf("expected 5 frames, got %d", len(anim.Image))
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 8*gifCell || b.Dy() != 8*gifCell {
		t.Errorf("unexpected frame size %v", b)
	}
}

func TestSparklineChart(t *testing.T) {
	out := SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 4, ThemeGray)
	n := 0
	for _, r := range out {
		if strings.ContainsRune("▁▂▃▄▅▆▇█", r) {
			n++
		}
	}
	if n != 4 {
		t.Errorf("expected 4 blocks, got %d", n)
	}
	if SparklineChart(nil, 3, ThemeGray) != "───" {
		t.Error("expected a flat line without data")
	}
}

func TestHexRoundTrip(t *testing.T) {
	r, g, b := parseHex("#21918c")
	if r != 0x21 || g != 0x91 || b != 0x8c {
		t.Errorf("unexpected rgb (%d, %d, %d)", r, g, b)
	}
	if got := hexColor(r, g, b); got != "#21918c" {
		t.Errorf("expected #21918c, got %s", got)
	}
	if hexColor(-4, 300, 16) != "#00ff10" {
		t.Error("components should be clamped")
	}
	if r, _, _ := parseHex("red"); r != 255 {
		t.Error("invalid colors should read as white")
	}
}
