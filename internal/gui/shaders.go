package gui

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/scene"
)

//go:embed shaders/field.vs
var fieldVS string

//go:embed shaders/field.fs
var fieldFS string

//go:embed shaders/bloom.fs
var bloomFS string

// fieldShader lights the instanced particles with the rig and the pointer
// light.
type fieldShader struct {
	rl.Shader
	pointerPos, pointerColor     int32
	pointerIntensity, pointerDst int32
	lightCount                   int32
	lightPos, lightColor         int32
	lightIntensity               int32
	fogColor, fogNear, fogFar    int32
}

func loadFieldShader() fieldShader {
	sh := rl.LoadShaderFromMemory(fieldVS, fieldFS)
	sh.UpdateLocation(rl.ShaderLocMatrixMvp, rl.GetShaderLocation(sh, "mvp"))
	sh.UpdateLocation(rl.ShaderLocVectorView, rl.GetShaderLocation(sh, "viewPos"))
	sh.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(sh, "instanceTransform"))

	return fieldShader{
		Shader:           sh,
		pointerPos:       rl.GetShaderLocation(sh, "pointerPos"),
		pointerColor:     rl.GetShaderLocation(sh, "pointerColor"),
		pointerIntensity: rl.GetShaderLocation(sh, "pointerIntensity"),
		pointerDst:       rl.GetShaderLocation(sh, "pointerDistance"),
		lightCount:       rl.GetShaderLocation(sh, "lightCount"),
		lightPos:         rl.GetShaderLocation(sh, "lightPos"),
		lightColor:       rl.GetShaderLocation(sh, "lightColor"),
		lightIntensity:   rl.GetShaderLocation(sh, "lightIntensity"),
		fogColor:         rl.GetShaderLocation(sh, "fogColor"),
		fogNear:          rl.GetShaderLocation(sh, "fogNear"),
		fogFar:           rl.GetShaderLocation(sh, "fogFar"),
	}
}

func (s fieldShader) setRig(lights []scene.Light) {
	pos, col, intensity := scene.Flatten(lights)
	n := int32(scene.MaxLights)
	rl.SetShaderValue(s.Shader, s.lightCount, []float32{float32(min(len(lights), scene.MaxLights))}, rl.ShaderUniformFloat)
	rl.SetShaderValueV(s.Shader, s.lightPos, pos, rl.ShaderUniformVec3, n)
	rl.SetShaderValueV(s.Shader, s.lightColor, col, rl.ShaderUniformVec3, n)
	rl.SetShaderValueV(s.Shader, s.lightIntensity, intensity, rl.ShaderUniformFloat, n)
}

func (s fieldShader) setFog(color [3]float32, fog config.FogConfig) {
	rl.SetShaderValue(s.Shader, s.fogColor, color[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(s.Shader, s.fogNear, []float32{float32(fog.Near)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(s.Shader, s.fogFar, []float32{float32(fog.Far)}, rl.ShaderUniformFloat)
}

func (s fieldShader) setPointer(l *field.Light, view rl.Vector3) {
	rl.SetShaderValue(s.Shader, s.GetLocation(rl.ShaderLocVectorView), []float32{view.X, view.Y, view.Z}, rl.ShaderUniformVec3)
	p, c := l.Position, l.Color
	rl.SetShaderValue(s.Shader, s.pointerPos, []float32{float32(p[0]), float32(p[1]), float32(p[2])}, rl.ShaderUniformVec3)
	rl.SetShaderValue(s.Shader, s.pointerColor, []float32{float32(c[0]), float32(c[1]), float32(c[2])}, rl.ShaderUniformVec3)
	rl.SetShaderValue(s.Shader, s.pointerIntensity, []float32{float32(l.Intensity) * 0.1}, rl.ShaderUniformFloat)
	rl.SetShaderValue(s.Shader, s.pointerDst, []float32{float32(l.Distance)}, rl.ShaderUniformFloat)
}

// bloomShader is a single-pass threshold blur added back onto the frame.
type bloomShader struct {
	rl.Shader
	resolution, strength, radius, threshold int32
}

func loadBloomShader() bloomShader {
	sh := rl.LoadShaderFromMemory("", bloomFS)
	return bloomShader{
		Shader:     sh,
		resolution: rl.GetShaderLocation(sh, "resolution"),
		strength:   rl.GetShaderLocation(sh, "strength"),
		radius:     rl.GetShaderLocation(sh, "radius"),
		threshold:  rl.GetShaderLocation(sh, "threshold"),
	}
}

func (s bloomShader) set(b config.BloomConfig, w, h int) {
	rl.SetShaderValue(s.Shader, s.resolution, []float32{float32(w), float32(h)}, rl.ShaderUniformVec2)
	rl.SetShaderValue(s.Shader, s.strength, []float32{float32(b.Strength)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(s.Shader, s.radius, []float32{float32(b.Radius)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(s.Shader, s.threshold, []float32{float32(b.Threshold)}, rl.ShaderUniformFloat)
}
