package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clothsim/internal/interact"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/scene"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	canvasCols      = 60
	canvasRows      = 24
	historyCapacity = 600
	fps             = 60

	// canvasStyle padding: the canvas starts this many cells in.
	canvasLeft = 2
	canvasTop  = 1

	orbitStep = 0.15
	zoomStep  = 1.15
)

var canvasStyle = lipgloss.NewStyle().Padding(canvasTop, canvasLeft)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// BuildFunc creates a fresh simulation; the live view calls it again on
// reset.
type BuildFunc func() (*sim.Simulation, error)

type Options struct {
	Theme   string
	GIFPath string
}

// Model drives one simulation per tick and maps mouse input onto its
// grabber.
type Model struct {
	sim    *sim.Simulation
	build  BuildFunc
	canvas *Canvas
	theme  Theme
	styles Styles

	running   bool
	showHelp  bool
	recording bool
	frames    []*image.Paletted
	gifPath   string
	status    string
	err       error

	energy []float64
	strain []float64

	// camera orbit eased towards the targets
	spring                         harmonica.Spring
	yaw, pitch, dist               float64
	yawVel, pitchVel, distVel      float64
	yawTarget, pitchTarget, distTo float64

	dragging     bool
	lastX, lastY int
}

func NewModel(build BuildFunc, opts Options) (Model, error) {
	s, err := build()
	if err != nil {
		return Model{}, err
	}
	if s.Camera == nil || s.Grabber == nil {
		return Model{}, errors.New("simulation has no camera attached")
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "clothsim.gif"
	}
	theme := GetTheme(opts.Theme)
	m := Model{
		build:   build,
		canvas:  NewCanvas(canvasCols, canvasRows),
		theme:   theme,
		styles:  NewStyles(theme),
		running: true,
		gifPath: opts.GIFPath,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		energy:  make([]float64, 0, historyCapacity),
		strain:  make([]float64, 0, historyCapacity),
	}
	m.attach(s)
	return m, nil
}

func (m *Model) attach(s *sim.Simulation) {
	m.sim = s
	FitCamera(s.Camera, m.canvas)
	m.yaw, m.pitch, m.dist = s.Camera.Spherical()
	m.yawTarget, m.pitchTarget, m.distTo = m.yaw, m.pitch, m.dist
	m.yawVel, m.pitchVel, m.distVel = 0, 0, 0
	m.energy = m.energy[:0]
	m.strain = m.strain[:0]
	m.dragging = false
	m.err = nil
	m.draw()
}

// Sim exposes the running simulation.
func (m Model) Sim() *sim.Simulation { return m.sim }

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "left", "h":
			m.yawTarget -= orbitStep
		case "right", "l":
			m.yawTarget += orbitStep
		case "up", "k":
			m.pitchTarget += orbitStep
		case "down", "j":
			m.pitchTarget -= orbitStep
		case "+", "=":
			m.distTo /= zoomStep
		case "-", "_":
			m.distTo *= zoomStep
		case "p":
			m.togglePolicy()
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		m.ease()
		if m.running && m.err == nil {
			m.step()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.sim.Frame(); err != nil {
		m.err = err
		m.running = false
		return
	}
	sys := m.sim.System
	m.energy = appendCapped(m.energy, metrics.Kinetic(sys)+metrics.Potential(sys))
	m.strain = appendCapped(m.strain, metrics.FrameMaxStrain(sys, nil))
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) ease() {
	m.yaw, m.yawVel = m.spring.Update(m.yaw, m.yawVel, m.yawTarget)
	m.pitch, m.pitchVel = m.spring.Update(m.pitch, m.pitchVel, m.pitchTarget)
	m.dist, m.distVel = m.spring.Update(m.dist, m.distVel, m.distTo)
	m.sim.Camera.SetSpherical(m.yaw, m.pitch, m.dist)
}

// pixelAt maps a terminal cell to canvas sub-pixels.
func (m *Model) pixelAt(col, row int) (int, int, bool) {
	col -= canvasLeft
	row -= canvasTop
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return 0, 0, false
	}
	x, y := m.canvas.CellToPixel(col, row)
	return x, y, true
}

func (m *Model) mouse(msg tea.MouseMsg) {
	g := m.sim.Grabber
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			x, y, ok := m.pixelAt(msg.X, msg.Y)
			if !ok {
				return
			}
			m.dragging = g.GrabPoint(x, y)
			m.lastX, m.lastY = msg.X, msg.Y
		case tea.MouseButtonWheelUp:
			m.distTo /= zoomStep
		case tea.MouseButtonWheelDown:
			m.distTo *= zoomStep
		}
	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		dx, dy := msg.X-m.lastX, msg.Y-m.lastY
		if dx == 0 && dy == 0 {
			return
		}
		g.MoveScreen(float64(2*dx), float64(4*dy))
		m.lastX, m.lastY = msg.X, msg.Y
	case tea.MouseActionRelease:
		if m.dragging {
			g.ReleasePoint()
			m.dragging = false
		}
	}
}

func (m *Model) togglePolicy() {
	g := m.sim.Grabber
	if g.Policy() == interact.Unpin {
		g.SetPolicy(interact.KeepPinned)
	} else {
		g.SetPolicy(interact.Unpin)
	}
	m.status = "release: " + g.Policy().String()
}

func (m *Model) reset() {
	s, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	policy := m.sim.Grabber.Policy()
	m.attach(s)
	s.Grabber.SetPolicy(policy)
	m.running = true
	m.status = "reset"
}

func (m *Model) draw() {
	m.canvas.Clear()
	cam := m.sim.Camera
	FitCamera(cam, m.canvas)
	DrawCloth(m.canvas, cam, m.sim.System)
	if sp, ok := scene.Sphere(m.sim); ok {
		DrawSphere(m.canvas, cam, sp)
	}
	DrawPins(m.canvas, cam, m.sim.System, m.sim.Fix)
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.styles.Canvas.Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(m.styles.Title.Render(strings.ToUpper(m.sim.Name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(m.styles.Error.Render("STOPPED") + "\n")
	case m.recording:
		s.WriteString(m.styles.Recording.Render("● REC") + "\n")
	case m.running:
		s.WriteString(m.styles.Running.Render("RUNNING") + "\n")
	default:
		s.WriteString(m.styles.Paused.Render("PAUSED") + "\n")
	}
	if idx, ok := m.sim.Grabber.Grabbed(); ok {
		s.WriteString(m.styles.Grabbing.Render(fmt.Sprintf("holding particle %d", idx)) + "\n")
	}
	s.WriteString("\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(chart + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.styles.Label.Width(10).Render(label) + m.styles.Value.Render(value) + "\n")
	}
	sys := m.sim.System
	row("Frame", fmt.Sprintf("%d", m.sim.FrameCount()))
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Particles", fmt.Sprintf("%d", len(sys.Particles)))
	row("Solver", fmt.Sprintf("%s x%d", m.sim.Solver.Name(), m.sim.Iterations))
	row("Pins", fmt.Sprintf("%d", m.sim.Fix.Len()))
	row("Release", m.sim.Grabber.Policy().String())
	if len(m.strain) > 0 {
		row("Strain", fmt.Sprintf("%.3f", m.strain[len(m.strain)-1]))
		s.WriteString(Sparkline(m.strain, 30) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + m.styles.Error.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + m.styles.Hint.Render(m.status) + "\n")
	}
	s.WriteString(m.styles.Hint.Render("\nSP:Pause R:Reset Q:Quit\nT:Theme G:Record ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Mouse     grab, drag, release a particle
  Space     pause/resume
  R         rebuild the demo
  Arrows    orbit camera     +/-  zoom
  P         toggle release policy
  G         toggle GIF recording
  T         cycle themes     ?    help
  Q         quit
`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.status = err.Error()
	} else {
		m.status = "saved " + m.gifPath
	}
	m.frames = nil
}

// captureFrame rasterises the braille canvas, one 4x4 block per dot.
func (m *Model) captureFrame() {
	const dot = 4
	w, h := m.canvas.Pixels()
	img := image.NewPaletted(image.Rect(0, 0, w*dot, h*dot), color.Palette{color.Black, color.White})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/fps+1)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// Run opens the live view full screen with mouse tracking.
func Run(build BuildFunc, opts Options) error {
	m, err := NewModel(build, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
