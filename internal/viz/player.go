package viz

import (
	"fmt"
	"image"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/blobfield/internal/storage"
)

const (
	defaultWidth  = 64
	defaultHeight = 24
	defaultFPS    = 10
	probeHistory  = 200
	gifCell       = 4
)

type TickMsg time.Time

// Player animates a stored realization frame by frame.
type Player struct {
	ds      *storage.Dataset
	title   string
	it      int
	running bool
	labels  bool
	theme   Theme

	probeX, probeY int
	width, height  int
	lo, hi         float64
	labelHi        float64
	fps            int

	recording bool
	frames    []*image.Paletted
	gifPath   string
	showHelp  bool
	err       error
}

type PlayerOption func(*Player)

// WithSize sets the heatmap size in text cells.
func WithSize(w, h int) PlayerOption {
	return func(p *Player) {
		if w > 0 && h > 0 {
			p.width, p.height = w, h
		}
	}
}

func WithFPS(fps int) PlayerOption {
	return func(p *Player) {
		if fps > 0 {
			p.fps = fps
		}
	}
}

func WithTheme(name string) PlayerOption {
	return func(p *Player) { p.theme = GetTheme(name) }
}

// WithGIFPath sets where a recording is written when it stops.
func WithGIFPath(path string) PlayerOption {
	return func(p *Player) { p.gifPath = path }
}

func NewPlayer(ds *storage.Dataset, title string, opts ...PlayerOption) Player {
	p := Player{
		ds:      ds,
		title:   title,
		running: true,
		theme:   CurrentTheme,
		width:   defaultWidth,
		height:  defaultHeight,
		fps:     defaultFPS,
		gifPath: "blobfield.gif",
		lo:      floats.Min(ds.Density.Data),
		hi:      floats.Max(ds.Density.Data),
	}
	if ds.Labels != nil {
		p.labelHi = floats.Max(ds.Labels.Data)
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Player) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(p.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p Player) Init() tea.Cmd {
	return p.tick()
}

// Frame is the index of the time sample on screen.
func (p Player) Frame() int { return p.it }

func (p Player) Err() error { return p.err }

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if p.recording {
				p.stopRecording()
			}
			return p, tea.Quit
		case " ":
			p.running = !p.running
		case "r":
			p.it = 0
		case "[":
			p.running = false
			p.step(-1)
		case "]":
			p.running = false
			p.step(1)
		case "left", "h":
			p.probeX = max(p.probeX-1, 0)
		case "right", "l":
			p.probeX = min(p.probeX+1, p.ds.Density.Nx-1)
		case "down", "j":
			p.probeY = max(p.probeY-1, 0)
		case "up", "k":
			p.probeY = min(p.probeY+1, p.ds.Density.Ny-1)
		case "tab":
			p.labels = !p.labels && p.ds.Labels != nil
		case "t":
			p.theme = NextTheme(p.theme.Name)
		case "g":
			if p.recording {
				p.stopRecording()
			} else {
				p.recording = true
				p.frames = make([]*image.Paletted, 0)
			}
		case "?":
			p.showHelp = !p.showHelp
		}
	case TickMsg:
		if p.running {
			p.step(1)
		}
		if p.recording {
			p.captureFrame()
		}
		return p, p.tick()
	}
	return p, nil
}

// step moves dir frames and wraps at both ends.
func (p *Player) step(dir int) {
	nt := p.ds.Density.Nt
	p.it = ((p.it+dir)%nt + nt) % nt
}

func (p *Player) field() (frame [][]float64, lo, hi float64) {
	if p.labels && p.ds.Labels != nil {
		return p.ds.Labels.Frame(p.it), 0, p.labelHi
	}
	return p.ds.Density.Frame(p.it), p.lo, p.hi
}

func (p Player) View() string {
	frame, lo, hi := p.field()

	var left string
	if len(frame) == 1 {
		c := NewCanvas(p.width, p.height)
		c.DrawSeries(frame[0], lo, hi)
		left = c.String()
	} else {
		left = Heatmap(frame, p.width, p.height, lo, hi, p.theme)
	}
	left = lipgloss.NewStyle().Padding(1, 2).Render(left + "\n" + Legend(p.width, p.theme))

	g := p.ds.Grid
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(p.title)) + "\n")
	s.WriteString(p.status() + "\n\n")

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2f", g.T[p.it])) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d/%d", p.it+1, len(g.T))) + "\n")
	s.WriteString(ProgressBar(float64(p.it+1)/float64(len(g.T)), 28) + "\n")

	peak, mean := frameStats(frame)
	s.WriteString(labelStyle.Render("Max") + valueStyle.Render(fmt.Sprintf("%.3f", peak)) + "\n")
	s.WriteString(labelStyle.Render("Mean") + valueStyle.Render(fmt.Sprintf("%.3f", mean)) + "\n")
	s.WriteString(labelStyle.Render("Scale") + valueStyle.Render(fmt.Sprintf("[%.2f, %.2f] %s", lo, hi, p.theme.Name)) + "\n")
	s.WriteString(labelStyle.Render("Along x") + SparklineChart(columnMeans(frame), 28, p.theme) + "\n\n")

	x, y := g.X[p.probeX], g.Y[p.probeY]
	series := p.ds.Density.Series(p.probeY, p.probeX)[:p.it+1]
	s.WriteString(labelStyle.Render("Probe") + valueStyle.Render(fmt.Sprintf("(%.2f, %.2f) = %.3f", x, y, series[p.it])) + "\n")
	if len(series) > probeHistory {
		series = series[len(series)-probeHistory:]
	}
	if len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("n at probe"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if p.err != nil {
		s.WriteString(StatusRecording.Render("error: "+p.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Pause R:Restart Q:Quit\n[ ]:Step ←→↑↓:Probe TAB:Labels\nT:Theme G:Record ?:Help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, left, panelStyle.Render(s.String()))
	if p.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `
  Space   pause / resume
  R       restart from the first frame
  [ ]     step one frame back / forward
  Arrows  move the probe (also h j k l)
  Tab     toggle density / labels
  T       cycle color themes
  G       start / stop GIF recording
  Q       quit
`

func (p Player) status() string {
	switch {
	case p.recording:
		return StatusRecording.Render("● REC")
	case !p.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("PLAYING")
}

func frameStats(frame [][]float64) (peak, mean float64) {
	n := 0
	peak = frame[0][0]
	for _, row := range frame {
		peak = max(peak, floats.Max(row))
		mean += floats.Sum(row)
		n += len(row)
	}
	return peak, mean / float64(n)
}

// captureFrame rasterizes the current frame at gifCell pixels per sample.
// columnMeans averages a frame over y.
func columnMeans(frame [][]float64) []float64 {
	if len(frame) == 0 {
		return nil
	}
	out := make([]float64, len(frame[0]))
	for _, row := range frame {
		floats.Add(out, row)
	}
	floats.Scale(1/float64(len(frame)), out)
	return out
}

func (p *Player) captureFrame() {
	frame, lo, hi := p.field()
	cells := Sample(frame, p.width, 2*p.height)
	img := image.NewPaletted(image.Rect(0, 0, p.width*gifCell, 2*p.height*gifCell), p.theme.Palette(colorLevels))
	for r, row := range cells {
		for c, v := range row {
			idx := uint8(Level(v, lo, hi, colorLevels))
			for py := 0; py < gifCell; py++ {
				for px := 0; px < gifCell; px++ {
					img.SetColorIndex(c*gifCell+px, r*gifCell+py, idx)
				}
			}
		}
	}
	p.frames = append(p.frames, img)
}

func (p *Player) stopRecording() {
	p.err = p.SaveGIF(p.gifPath)
	p.recording = false
	p.frames = nil
}

// SaveGIF writes the recorded frames as an animation.
func (p *Player) SaveGIF(path string) error {
	if len(p.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	delay := max(100/p.fps, 1)
	for _, frame := range p.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RecordGIF renders every frame of ds without a terminal.
func RecordGIF(ds *storage.Dataset, path string, opts ...PlayerOption) error {
	p := NewPlayer(ds, "", opts...)
	for p.it = 0; p.it < ds.Density.Nt; p.it++ {
		p.captureFrame()
	}
	p.it = 0
	return p.SaveGIF(path)
}

func Run(p Player) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
