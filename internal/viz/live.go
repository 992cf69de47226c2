package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/metrics"
)

const (
	canvasWidth     = 72
	canvasHeight    = 26
	historyCapacity = 600
	fitMargin       = 4
)

// tunable lists the body parameters adjustable from the keyboard.
var tunable = []string{"ks", "kd", "air", "wind_x", "wind_z", "gravity_y", "mass"}

// Builder creates a fresh body. It is called on start and on every reset.
type Builder func() (*cloth.Body, error)

type Options struct {
	Title         string
	Dt            float64
	StepsPerFrame int
	FPS           int
	View          View
	Theme         string
	GIFPath       string
}

func DefaultOptions() Options {
	return Options{
		Title:         "cloth",
		Dt:            1.0 / 60,
		StepsPerFrame: 1,
		FPS:           60,
		View:          ViewIso,
		Theme:         Themes[0].Name,
		GIFPath:       "cloth.gif",
	}
}

type TickMsg time.Time

// Model is the bubbletea model of the live cloth view.
type Model struct {
	build Builder
	opts  Options

	body   *cloth.Body
	scene  Scene
	sag    *metrics.Sag
	cam    *Camera
	view   View
	vp     Viewport
	canvas *Canvas

	theme  Theme
	styles Styles

	running   bool
	selected  int
	energy    []float64
	sagHist   []float64
	stepTime  time.Duration
	recording bool
	frames    []*image.Paletted
	showHelp  bool
	status    string
	err       error
}

// NewModel builds the first body and frames the camera on it.
func NewModel(build Builder, opts Options) (Model, error) {
	def := DefaultOptions()
	if opts.Dt <= 0 {
		opts.Dt = def.Dt
	}
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.GIFPath == "" {
		opts.GIFPath = def.GIFPath
	}
	theme, _ := GetTheme(opts.Theme)
	m := Model{
		build:   build,
		opts:    opts,
		cam:     NewCamera(opts.View),
		view:    opts.View,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   theme,
		styles:  NewStyles(theme),
		running: true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "s":
			if !m.running {
				m.step()
			}
		case "v":
			m.view = m.view.Next()
			m.cam.SetView(m.view)
			m.refit()
		case "tab":
			m.selected = (m.selected + 1) % len(tunable)
		case "up", "k":
			m.adjust(1.1)
		case "down", "j":
			m.adjust(1 / 1.1)
		case "left", "h":
			m.cam.RotateYaw(-0.1)
			m.refit()
		case "right", "l":
			m.cam.RotateYaw(0.1)
			m.refit()
		case "[":
			m.cam.RotatePitch(-0.1)
			m.refit()
		case "]":
			m.cam.RotatePitch(0.1)
			m.refit()
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case "g":
			if m.recording {
				m.saveGIF()
			} else {
				m.recording = true
				m.frames = m.frames[:0]
				m.status = "recording"
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, m.canvas.Image(8, 16, m.theme.FabricRGBA(), color.Black))
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the body by StepsPerFrame steps of Dt.
func (m *Model) step() {
	start := time.Now()
	for k := 0; k < m.opts.StepsPerFrame; k++ {
		if err := m.body.Step(m.opts.Dt); err != nil {
			m.err = err
			m.running = false
			dynamo.Logger().Error("live step failed", "time", m.body.Time(), "err", err)
			return
		}
	}
	m.stepTime = time.Since(start)

	m.sag.Observe(m.body.Frame())
	m.energy = appendCapped(m.energy, m.body.Energy())
	m.sagHist = appendCapped(m.sagHist, m.sag.Current())
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// adjust scales the selected parameter. A zero parameter is nudged off zero
// so it can grow; gravity keeps its sign.
func (m *Model) adjust(factor float64) {
	key := tunable[m.selected]
	v := m.body.GetParams()[key]
	if dynamo.IsZero(v) {
		v = 0.01
		if factor < 1 {
			v = -0.01
		}
	} else {
		v *= factor
	}
	if err := m.body.SetParam(key, v); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s = %.4g", key, v)
}

// reset rebuilds the body, keeping the camera orientation.
func (m *Model) reset() error {
	b, err := m.build()
	if err != nil {
		return err
	}
	m.body = b
	m.scene = NewScene(b)
	m.sag = metrics.NewSag(nil)
	m.sag.Observe(b.Frame())
	m.energy = m.energy[:0]
	m.sagHist = m.sagHist[:0]
	m.err = nil
	m.status = ""
	m.refit()
	m.draw()
	return nil
}

func (m *Model) refit() {
	zoom := m.cam.Zoom
	m.cam.Zoom = 1
	m.vp = Fit(m.cam, m.scene.Extent(m.body.Positions()), float64(m.canvas.PixelWidth()), float64(m.canvas.PixelHeight()), fitMargin)
	m.cam.Zoom = zoom
}

func (m *Model) draw() {
	m.canvas.Clear()
	vp := m.vp
	vp.CenterX *= m.cam.Zoom
	vp.CenterY *= m.cam.Zoom
	m.scene.Draw(m.canvas, m.cam, vp, m.body.Positions())
}

func (m *Model) saveGIF() {
	m.recording = false
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{}
	delay := max(1, 100/m.opts.FPS)
	for _, f := range m.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, delay)
	}
	m.frames = nil
	if err := writeGIF(m.opts.GIFPath, &anim); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved " + m.opts.GIFPath
}

func writeGIF(path string, anim *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// View renders the TUI.
func (m Model) View() string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.Header.Render(GradientText(strings.ToUpper(m.opts.Title), m.theme.Primary, m.theme.Secondary)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(st.Error.Render("HALTED") + "\n")
	case m.recording:
		s.WriteString(st.Recording.Render("● REC") + "\n")
	case m.running:
		s.WriteString(st.Running.Render("RUNNING") + "\n")
	default:
		s.WriteString(st.Paused.Render("PAUSED") + "\n")
	}
	s.WriteString("\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.body.Time()))
	row("Integrator", m.body.Integrator())
	row("Force", m.body.Params().ForceModel.String())
	row("Points", fmt.Sprintf("%d / %d springs", m.body.Len(), len(m.body.Springs())))
	row("View", m.view.String())
	row("Step", m.stepTime.Round(time.Microsecond).String())
	if n := m.body.Saturations(); n > 0 {
		row("Clamped", fmt.Sprintf("%d", n))
	}
	row("Sag", fmt.Sprintf("%.3f (max %.3f)", m.sag.Current(), m.sag.Value()))
	s.WriteString(st.Sparkline(m.sagHist, 30) + "\n")

	if len(m.energy) > 1 {
		s.WriteString("\n" + asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy")) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.body.GetParams()
	for i, k := range tunable {
		line := fmt.Sprintf("%-10s %10.4g", k, params[k])
		if i == m.selected {
			s.WriteString(st.Active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.Label.UnsetWidth().Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + st.Error.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + st.Hint.Render(m.status) + "\n")
	}
	s.WriteString(st.Hint.Render("\nSP:Pause R:Reset V:View Q:Quit\nTab ↑↓:Tune ←→[]:Orbit ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.Canvas.Render(m.canvas.String()), st.Panel.Render(s.String()))
	if m.showHelp {
		return helpText() + "\n\n" + main
	}
	return main
}

var keyHelp = map[string]string{
	"space":  "pause / resume",
	"s":      "single step while paused",
	"r":      "rebuild the cloth",
	"v":      "cycle front, side, top, iso",
	"tab":    "select parameter",
	"up/k":   "parameter +10%",
	"down/j": "parameter -10%",
	"←/→":    "orbit",
	"[/]":    "tilt",
	"+/-":    "zoom",
	"t":      "cycle theme",
	"g":      "toggle GIF recording",
	"q":      "quit",
}

func helpText() string {
	keys := make([]string, 0, len(keyHelp))
	for k := range keyHelp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("KEYS\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-7s %s\n", k, keyHelp[k])
	}
	return lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1).Render(b.String())
}

// Run starts the live view in the alternate screen and blocks until quit.
func Run(build Builder, opts Options) error {
	m, err := NewModel(build, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
