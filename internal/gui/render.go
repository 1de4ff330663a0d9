package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func toVec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

// toMatrices copies column-major instance matrices into raylib's layout.
func toMatrices(dst []rl.Matrix, src []mgl32.Mat4) {
	for i := range src {
		m := &src[i]
		dst[i] = rl.Matrix{
			M0: m[0], M4: m[4], M8: m[8], M12: m[12],
			M1: m[1], M5: m[5], M9: m[9], M13: m[13],
			M2: m[2], M6: m[6], M10: m[10], M14: m[14],
			M3: m[3], M7: m[7], M11: m[11], M15: m[15],
		}
	}
}

func (a *App) Draw() {
	rl.BeginTextureMode(a.target)
	rl.ClearBackground(a.clear)
	rl.BeginMode3D(a.camera)
	a.drawScene()
	rl.EndMode3D()
	rl.EndTextureMode()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	a.bloomS.set(a.cfg.Bloom, a.width, a.height)
	rl.BeginShaderMode(a.bloomS.Shader)
	// Render textures are stored upside down.
	src := rl.NewRectangle(0, 0, float32(a.target.Texture.Width), -float32(a.target.Texture.Height))
	rl.DrawTextureRec(a.target.Texture, src, rl.NewVector2(0, 0), rl.White)
	rl.EndShaderMode()

	a.drawHUD()
	rl.EndDrawing()
}

func (a *App) drawScene() {
	rl.DrawModel(a.ground, rl.NewVector3(0, groundY, 0), 1, rl.Black)

	light := a.anim.Light()
	a.fieldS.setPointer(light, a.camera.Position)
	rl.DrawMeshInstanced(a.particle, a.material, a.instances, len(a.instances))

	if a.hasModel {
		s := float32(a.hover.Value())
		rl.DrawModelEx(a.model, rl.NewVector3(0, groundY, 0), rl.NewVector3(0, 1, 0), 0, rl.NewVector3(s, s, s), rl.White)
	}

	rl.DrawSphere(toVec3(light.Position), lightMarkerSz, rl.NewColor(173, 216, 230, 255))
}

func (a *App) drawHUD() {
	rl.DrawText("glowfield", 30, 30, 24, ColSelect)
	rl.DrawText(fmt.Sprintf(":: %d particles  seed %d", a.anim.Len(), a.seed), 160, 36, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.running {
		status, col = "PAUSED", ColTextDim
	}
	rl.DrawText(status, int32(a.width)-130, 30, 16, col)

	bottom := int32(a.height) - 40
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, bottom, 14, ColTextDim)
	rl.DrawText("[DRAG] ORBIT  [SPACE] PAUSE  [R] RESEED  [Q] QUIT", int32(a.width)-480, bottom, 14, ColTextDim)
}
