package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/config"
)

func TestCanvasDots(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.DotSize(); w != 8 || h != 8 {
		t.Fatalf("DotSize = %d x %d, want 8 x 8", w, h)
	}

	c.Set(0, 0)
	c.Set(7, 7)
	c.Set(-1, 3)
	c.Set(8, 0)
	if c.Count() != 2 {
		t.Errorf("expected 2 lit dots, got %d", c.Count())
	}
	if !c.Dot(0, 0) || !c.Dot(7, 7) || c.Dot(1, 0) {
		t.Error("Dot reports the wrong pixels")
	}

	c.Unset(0, 0)
	if c.Dot(0, 0) {
		t.Error("Unset left the dot lit")
	}

	c.Clear()
	if c.Count() != 0 {
		t.Errorf("expected empty canvas after clear, got %d", c.Count())
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Set(0, 0)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if []rune(lines[0])[0] != brailleBase|0x01 {
		t.Errorf("top-left glyph = %q", []rune(lines[0])[0])
	}
	if []rune(lines[1])[2] != brailleBase {
		t.Errorf("expected blank glyph, got %q", []rune(lines[1])[2])
	}
}

func TestCanvasLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"point", 3, 3, 3, 3, 1},
		{"horizontal", 0, 0, 9, 0, 10},
		{"vertical", 2, 7, 2, 0, 8},
		{"diagonal", 0, 0, 5, 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(10, 4)
			c.Line(tt.x0, tt.y0, tt.x1, tt.y1)
			if c.Count() != tt.want {
				t.Errorf("expected %d dots, got %d", tt.want, c.Count())
			}
			if !c.Dot(tt.x0, tt.y0) || !c.Dot(tt.x1, tt.y1) {
				t.Error("endpoints not drawn")
			}
		})
	}
}

func TestCanvasClone(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(1, 1)
	cp := c.Clone()
	c.Clear()
	if !cp.Dot(1, 1) {
		t.Error("clone shares cells with the original")
	}
}

func TestCameraProjectCenter(t *testing.T) {
	cam := NewCamera()
	cam.Position = mgl64.Vec3{0, 0, 20}

	x, y, depth, ok := cam.Project(mgl64.Vec3{}, 100, 60)
	if !ok {
		t.Fatal("origin should be visible")
	}
	if x != 50 || y != 30 {
		t.Errorf("origin projected to (%d, %d), want (50, 30)", x, y)
	}
	if depth <= 0 {
		t.Errorf("expected positive depth, got %f", depth)
	}

	if _, _, _, ok := cam.Project(mgl64.Vec3{0, 0, 30}, 100, 60); ok {
		t.Error("point behind the camera should be hidden")
	}

	xr, _, _, _ := cam.Project(mgl64.Vec3{1, 0, 0}, 100, 60)
	_, yu, _, _ := cam.Project(mgl64.Vec3{0, 1, 0}, 100, 60)
	if xr <= x {
		t.Error("+x should project right of center")
	}
	if yu >= y {
		t.Error("+y should project above center")
	}
}

func TestCameraZoomBounds(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom != 10 {
		t.Errorf("zoom should clamp at 10, got %f", cam.Zoom)
	}
	for i := 0; i < 100; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom != 0.1 {
		t.Errorf("zoom should clamp at 0.1, got %f", cam.Zoom)
	}
}

func TestDrawField(t *testing.T) {
	c := NewCanvas(40, 20)
	cam := NewCamera()
	matrices := []mgl32.Mat4{
		mgl32.Translate3D(0, 0, 0).Mul4(mgl32.Scale3D(1, 1, 1)),
		mgl32.Translate3D(1, 1, 0).Mul4(mgl32.Scale3D(0.1, 0.1, 0.1)),
		mgl32.Translate3D(0, 0, 40),
	}
	if n := DrawField(c, cam, matrices); n != 2 {
		t.Errorf("expected 2 visible particles, got %d", n)
	}
	if c.Count() != 10 {
		t.Errorf("expected a 9-dot blob and a single dot, got %d dots", c.Count())
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("retro").Name != "retro" {
		t.Error("GetTheme did not find retro")
	}
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back to cyberpunk")
	}

	seen := map[string]bool{}
	th := Themes[0]
	for range Themes {
		seen[th.Name] = true
		th = th.Next()
	}
	if len(seen) != len(Themes) || th.Name != Themes[0].Name {
		t.Error("Next should cycle through every theme")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Count = 50
	cfg.Seed = 11
	m, err := NewModel(Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		next, cmd := m.Update(TickMsg(now.Add(time.Duration(i) * time.Second / 60)))
		m = next.(Model)
		if cmd == nil {
			t.Fatal("tick should schedule the next tick")
		}
	}
	if m.anim.Ticks() != 3 {
		t.Errorf("expected 3 ticks, got %d", m.anim.Ticks())
	}
	if len(m.history) != 3 {
		t.Errorf("expected 3 history points, got %d", len(m.history))
	}
	if !strings.Contains(m.View(), "GLOWFIELD") {
		t.Error("view missing header")
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	if m.running {
		t.Fatal("space should pause")
	}
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if m.anim.Ticks() != 0 {
		t.Error("paused model should not step")
	}
}

func TestModelReseed(t *testing.T) {
	m := newTestModel(t)
	before := m.anim.Particles()[0]
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Model)
	if m.seed != 12 {
		t.Errorf("expected seed 12, got %d", m.seed)
	}
	if m.anim.Particles()[0] == before {
		t.Error("reseed kept the old particles")
	}
}

func TestModelMouseMovesPointer(t *testing.T) {
	m := newTestModel(t)
	col := canvasPadX + m.width/2 + 3
	row := canvasPadY + m.height/2 - 2
	next, _ := m.Update(tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionMotion})
	m = next.(Model)

	x, y := m.pointer.Load()
	if x != 3*cellWidthPx || y != -2*cellHeightPx {
		t.Errorf("pointer = (%f, %f), want (%d, %d)", x, y, 3*cellWidthPx, -2*cellHeightPx)
	}

	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	light := m.anim.Light().Position
	if light.X() <= 0 || light.Y() <= 0 {
		t.Errorf("light should follow the pointer up and right, got %v", light)
	}
}

func TestModelConfigReload(t *testing.T) {
	m := newTestModel(t)
	cfg := m.cfg.Clone()
	cfg.Count = 80
	cfg.Theme = "sunset"

	next, _ := m.Update(configMsg{cfg})
	m = next.(Model)
	if m.anim.Len() != 80 {
		t.Errorf("expected 80 particles after reload, got %d", m.anim.Len())
	}
	if m.theme.Name != "sunset" {
		t.Errorf("expected sunset theme, got %s", m.theme.Name)
	}
}

func TestModelExport(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Count = 10
	var got *Canvas
	m, err := NewModel(Options{Config: cfg, Exporter: func(c *Canvas, th Theme) (string, error) {
		got = c
		return "snap.svg", nil
	}})
	if err != nil {
		t.Fatal(err)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if cmd == nil {
		t.Fatal("export key should return a command")
	}
	msg := cmd()
	if got == nil || got == m.canvas {
		t.Error("exporter should receive a copy of the canvas")
	}
	next, _ := m.Update(msg)
	if s := next.(Model).status; s != "saved snap.svg" {
		t.Errorf("unexpected status %q", s)
	}

	next, _ = m.Update(exportedMsg{err: errors.New("disk full")})
	if s := next.(Model).status; !strings.Contains(s, "disk full") {
		t.Errorf("unexpected status %q", s)
	}
}
