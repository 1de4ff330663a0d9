package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/metrics"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 36
	historyCapacity = 240

	// Nominal terminal cell size in pixels, used to turn mouse cells into
	// pointer pixels.
	cellWidthPx  = 8
	cellHeightPx = 16

	// The canvas style pads one row and two columns.
	canvasPadX = 2
	canvasPadY = 1

	groundY = -4.0
)

type TickMsg time.Time

type configMsg struct{ cfg *config.Config }

type configErrMsg struct{ err error }

type exportedMsg struct {
	path string
	err  error
}

// Exporter saves a snapshot of the canvas and reports where it went.
type Exporter func(c *Canvas, t Theme) (string, error)

type Options struct {
	Config   *config.Config
	Watcher  *config.Watcher
	Exporter Exporter
}

// Model runs a particle field in the terminal. Mouse motion over the canvas
// drives the field's pointer.
type Model struct {
	cfg     *config.Config
	seed    int64
	pointer *field.Pointer
	anim    *field.Animator
	mean    *metrics.MeanScale
	history []float64

	canvas        *Canvas
	camera        *Camera
	width, height int
	theme         Theme
	styles        styles

	running   bool
	lastFrame time.Time
	fps       float64
	status    string

	watcher  *config.Watcher
	exporter Exporter
}

func NewModel(opts Options) (Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	theme := GetTheme(cfg.Theme)

	m := Model{
		cfg:      cfg,
		seed:     cfg.Seed,
		pointer:  field.NewPointer(),
		mean:     metrics.NewMeanScale(),
		history:  make([]float64, 0, historyCapacity),
		canvas:   NewCanvas(width, height),
		camera:   NewCamera(),
		width:    width,
		height:   height,
		theme:    theme,
		styles:   newStyles(theme),
		running:  true,
		watcher:  opts.Watcher,
		exporter: opts.Exporter,
	}
	if cfg.Camera.FOV > 0 {
		m.camera.FOV = cfg.Camera.FOV
	}
	if pos := mgl64.Vec3(cfg.Camera.Position); pos.Len() > 0 {
		m.camera.Position = pos
	}

	if err := m.rebuild(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) rebuild() error {
	anim, err := field.New(m.cfg.Count, m.pointer, nil, nil,
		field.WithSeed(m.seed), field.WithWorkers(m.cfg.Workers))
	if err != nil {
		return err
	}
	m.anim = anim
	m.mean.Reset()
	m.history = m.history[:0]
	return nil
}

func tick(fps int) tea.Cmd {
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func waitForConfig(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case cfg := <-w.Updates:
			return configMsg{cfg}
		case err := <-w.Errors:
			return configErrMsg{err}
		}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.cfg.FPS), waitForConfig(m.watcher))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.trackMouse(msg.X, msg.Y)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
				m.fps = 0.9*m.fps + 0.1/dt
			}
		}
		m.lastFrame = now
		if m.running {
			m.step()
		}
		m.draw()
		return m, tick(m.cfg.FPS)
	case configMsg:
		m.applyConfig(msg.cfg)
		return m, waitForConfig(m.watcher)
	case configErrMsg:
		m.status = "config: " + msg.err.Error()
		return m, waitForConfig(m.watcher)
	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "saved " + msg.path
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.seed++
		if err := m.rebuild(); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("reseeded %d", m.seed)
		}
	case "t":
		m.theme = m.theme.Next()
		m.styles = newStyles(m.theme)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "e":
		return m, m.export()
	default:
		return m, nil
	}
	m.draw()
	return m, nil
}

// trackMouse converts a terminal cell to a pixel offset from the canvas
// center, y growing downward like screen coordinates.
func (m *Model) trackMouse(col, row int) {
	cx := float64(col-canvasPadX) - float64(m.width)/2
	cy := float64(row-canvasPadY) - float64(m.height)/2
	m.pointer.Set(cx*cellWidthPx, cy*cellHeightPx)
}

func (m *Model) resize(w, h int) {
	cw := w - panelWidth - 2*canvasPadX - 2
	ch := h - 2*canvasPadY
	if cw < 10 {
		cw = 10
	}
	if ch < 5 {
		ch = 5
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
	m.draw()
}

// Aspect is the pixels-per-unit ratio handed to the animator each tick.
func (m *Model) Aspect() float64 {
	return field.PixelsPerUnit(m.width*cellWidthPx, m.height*cellHeightPx, m.camera.FOV, m.camera.Distance())
}

func (m *Model) step() {
	m.anim.Tick(m.Aspect())
	m.mean.Observe(int(m.anim.Ticks()), m.anim.Transforms())
	m.history = append(m.history, m.mean.Last())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) draw() {
	m.anim.Buffer().Flush()
	m.canvas.Clear()
	DrawGround(m.canvas, m.camera, groundY)
	DrawField(m.canvas, m.camera, m.anim.Buffer().Matrices)
	DrawLight(m.canvas, m.camera, m.anim.Light().Position)
}

func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	reseed := cfg.Count != m.cfg.Count || cfg.Seed != m.cfg.Seed
	m.cfg = cfg
	m.anim.SetWorkers(cfg.Workers)
	if cfg.Theme != m.theme.Name {
		m.theme = GetTheme(cfg.Theme)
		m.styles = newStyles(m.theme)
	}
	if reseed {
		m.seed = cfg.Seed
		if err := m.rebuild(); err != nil {
			m.status = err.Error()
			return
		}
	}
	slog.Debug("live view reconfigured", "count", cfg.Count, "seed", cfg.Seed, "theme", cfg.Theme)
	m.status = "config reloaded"
}

func (m Model) export() tea.Cmd {
	if m.exporter == nil {
		return nil
	}
	snap, theme, exporter := m.canvas.Clone(), m.theme, m.exporter
	return func() tea.Msg {
		path, err := exporter(snap, theme)
		return exportedMsg{path: path, err: err}
	}
}

func (m Model) View() string {
	canvasView := m.styles.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.header.Render("GLOWFIELD") + "\n")
	if m.running {
		s.WriteString(m.styles.active.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(m.styles.paused.Render("PAUSED") + "\n\n")
	}

	px, py := m.pointer.Load()
	light := m.anim.Light().Position
	s.WriteString(m.styles.row("Particles", fmt.Sprintf("%d", m.anim.Len())))
	s.WriteString(m.styles.row("Seed", fmt.Sprintf("%d", m.seed)))
	s.WriteString(m.styles.row("Tick", fmt.Sprintf("%d", m.anim.Ticks())))
	s.WriteString(m.styles.row("FPS", fmt.Sprintf("%.0f", m.fps)))
	s.WriteString(m.styles.row("Pointer", fmt.Sprintf("%.0f, %.0f", px, py)))
	s.WriteString(m.styles.label.Render("Light") + m.styles.light.Render(fmt.Sprintf("%.2f, %.2f", light.X(), light.Y())) + "\n")
	s.WriteString(m.styles.row("Mean |s|", fmt.Sprintf("%.3f", m.mean.Last())))
	s.WriteString(m.styles.row("Theme", m.theme.Name))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(panelWidth-10), asciigraph.Caption("mean scale"))
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	s.WriteString(Separator(panelWidth-4, m.theme) + "\n")
	s.WriteString(m.styles.help.Render("SP:Pause R:Reseed T:Theme\n+/-:Zoom X/Y:Rotate\nE:Export Q:Quit"))
	if m.status != "" {
		s.WriteString("\n" + m.styles.value.Render(m.status))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.panel.Render(s.String()))
}
