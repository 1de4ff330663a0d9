package gui

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/scene"
	"github.com/san-kum/glowfield/internal/spring"
)

var (
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColField   = rl.NewColor(0x77, 0x77, 0x77, 255)
)

const (
	groundY       = -4.0
	groundSize    = 1000.0
	particleSize  = 0.2
	lightMarkerSz = 0.05
)

// App is the desktop scene: the particle field, the pointer light, the
// ground plane and an optional model that grows while hovered.
type App struct {
	cfg     *config.Config
	watcher *config.Watcher
	seed    int64

	pointer *field.Pointer
	anim    *field.Animator
	hover   *spring.Hover
	orbit   *scene.Orbit
	camera  rl.Camera3D

	rig      []scene.Light
	fogColor [3]float32
	clear    rl.Color

	particle  rl.Mesh
	material  rl.Material
	instances []rl.Matrix
	ground    rl.Model
	model     rl.Model
	hasModel  bool

	target rl.RenderTexture2D
	fieldS fieldShader
	bloomS bloomShader

	width, height int
	running       bool
	quit          bool
}

func initWindow(w config.WindowConfig, fps int) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(int32(w.Width), int32(w.Height), "glowfield")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed. watcher may be nil.
func Run(cfg *config.Config, watcher *config.Watcher) error {
	initWindow(cfg.Window, cfg.FPS)
	defer rl.CloseWindow()

	app, err := NewApp(cfg, watcher)
	if err != nil {
		return err
	}
	defer app.Close()

	app.RunLoop()
	return nil
}

// NewApp loads GPU resources, so the window must already be open.
func NewApp(cfg *config.Config, watcher *config.Watcher) (*App, error) {
	a := &App{
		cfg:     cfg,
		watcher: watcher,
		seed:    cfg.Seed,
		pointer: field.NewPointer(),
		hover:   spring.NewHover(cfg.FPS, cfg.Hover.Rest, cfg.Hover.Active),
		width:   rl.GetScreenWidth(),
		height:  rl.GetScreenHeight(),
		running: true,
	}

	if err := a.applyLook(cfg); err != nil {
		return nil, err
	}
	if err := a.rebuild(); err != nil {
		return nil, err
	}

	pos := mgl64.Vec3(cfg.Camera.Position)
	a.orbit = scene.NewOrbit(pos, mgl64.Vec3{}, cfg.Camera.MinPolar, cfg.Camera.MaxPolar, cfg.Camera.Damping)
	a.camera = rl.NewCamera3D(
		toVec3(pos),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		float32(cfg.Camera.FOV),
		rl.CameraPerspective,
	)

	a.fieldS = loadFieldShader()
	a.bloomS = loadBloomShader()
	a.fieldS.setRig(a.rig)
	a.fieldS.setFog(a.fogColor, cfg.Fog)

	a.particle = rl.GenMeshSphere(particleSize, 4, 6)
	a.material = rl.LoadMaterialDefault()
	a.material.Shader = a.fieldS.Shader
	a.material.GetMap(rl.MapDiffuse).Color = ColField

	a.ground = rl.LoadModelFromMesh(rl.GenMeshPlane(groundSize, groundSize, 1, 1))
	a.loadModel(cfg.ModelPath)

	a.target = rl.LoadRenderTexture(int32(a.width), int32(a.height))
	return a, nil
}

// applyLook resolves the configured lights and fog colour.
func (a *App) applyLook(cfg *config.Config) error {
	rig, err := scene.Rig(cfg.Lights)
	if err != nil {
		return err
	}
	fog, err := scene.ParseColor(cfg.Fog.Color)
	if err != nil {
		return fmt.Errorf("fog colour: %w", err)
	}
	a.rig = rig
	a.fogColor = [3]float32{float32(fog[0]), float32(fog[1]), float32(fog[2])}
	r, g, b := scene.Bytes(fog)
	a.clear = rl.NewColor(r, g, b, 255)
	return nil
}

func (a *App) rebuild() error {
	anim, err := field.New(a.cfg.Count, a.pointer, nil, nil,
		field.WithSeed(a.seed), field.WithWorkers(a.cfg.Workers))
	if err != nil {
		return err
	}
	a.anim = anim
	a.instances = make([]rl.Matrix, anim.Len())
	return nil
}

func (a *App) loadModel(path string) {
	if a.hasModel {
		rl.UnloadModel(a.model)
		a.hasModel = false
	}
	if path == "" {
		return
	}
	m := rl.LoadModel(path)
	if m.MeshCount == 0 {
		slog.Warn("model not loaded", "path", path)
		return
	}
	a.model, a.hasModel = m, true
}

func (a *App) Close() {
	if a.hasModel {
		rl.UnloadModel(a.model)
	}
	rl.UnloadModel(a.ground)
	rl.UnloadMesh(&a.particle)
	rl.UnloadShader(a.fieldS.Shader)
	rl.UnloadShader(a.bloomS.Shader)
	rl.UnloadRenderTexture(a.target)
}

func (a *App) RunLoop() {
	for !a.quit && !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

// reload applies a config that changed on disk.
func (a *App) reload(cfg *config.Config) {
	if err := a.applyLook(cfg); err != nil {
		slog.Warn("config reload rejected", "err", err)
		return
	}
	a.fieldS.setRig(a.rig)
	a.fieldS.setFog(a.fogColor, cfg.Fog)

	reseed := cfg.Count != a.cfg.Count || cfg.Seed != a.cfg.Seed
	remodel := cfg.ModelPath != a.cfg.ModelPath
	a.cfg = cfg
	a.anim.SetWorkers(cfg.Workers)
	a.hover = spring.NewHover(cfg.FPS, cfg.Hover.Rest, cfg.Hover.Active)
	rl.SetTargetFPS(int32(cfg.FPS))

	if reseed {
		a.seed = cfg.Seed
		if err := a.rebuild(); err != nil {
			slog.Warn("field rebuild failed", "err", err)
		}
	}
	if remodel {
		a.loadModel(cfg.ModelPath)
	}
	slog.Info("scene reconfigured", "count", cfg.Count, "lights", len(a.rig))
}

func (a *App) pollConfig() {
	if a.watcher == nil {
		return
	}
	select {
	case cfg := <-a.watcher.Updates:
		a.reload(cfg)
	case err := <-a.watcher.Errors:
		slog.Warn("config watch", "err", err)
	default:
	}
}

// Aspect is the pixels-per-unit ratio the field uses to place its light.
func (a *App) Aspect() float64 {
	return field.PixelsPerUnit(a.width, a.height, a.cfg.Camera.FOV, a.orbit.Radius)
}

func (a *App) Update() {
	a.pollConfig()

	if rl.IsWindowResized() {
		a.width, a.height = rl.GetScreenWidth(), rl.GetScreenHeight()
		rl.UnloadRenderTexture(a.target)
		a.target = rl.LoadRenderTexture(int32(a.width), int32(a.height))
	}

	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.running = !a.running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.seed++
		if err := a.rebuild(); err != nil {
			slog.Warn("reseed failed", "err", err)
		}
	}

	mouse := rl.GetMousePosition()
	a.pointer.Set(float64(mouse.X)-float64(a.width)/2, float64(mouse.Y)-float64(a.height)/2)

	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		d := rl.GetMouseDelta()
		a.orbit.Drag(float64(d.X), float64(d.Y), a.height)
	}
	a.camera.Position = toVec3(a.orbit.Update())

	half := float32(a.cfg.Hover.Box / 2)
	box := rl.NewBoundingBox(rl.NewVector3(-half, -half, -half), rl.NewVector3(half, half, half))
	a.hover.Set(rl.GetRayCollisionBox(rl.GetMouseRay(mouse, a.camera), box).Hit)
	a.hover.Update()

	if a.running {
		a.anim.Tick(a.Aspect())
	}
	if a.anim.Buffer().Flush() {
		toMatrices(a.instances, a.anim.Buffer().Matrices)
	}
}
