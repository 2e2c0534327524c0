package lighting

import (
	"fmt"
	"time"

	"shadowview/internal/config"
	"shadowview/internal/graphics"
	"shadowview/pkg/meshload"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ShadowUnit is the texture unit the shadow map is sampled from
const ShadowUnit uint32 = 1

// SceneRenderer draws the scene with a caller-chosen shader
type SceneRenderer interface {
	RenderScene(shader *graphics.Shader)
}

// BoundsProvider lets a SceneRenderer size the shadow frustum to its content
type BoundsProvider interface {
	SceneBounds() (min, max mgl32.Vec3, ok bool)
}

type Options struct {
	// Direction points from the scene towards the light. Its length is the
	// light's distance from the focus point.
	Direction     mgl32.Vec3
	Color         mgl32.Vec3
	ShadowMapSize int32
	// Radius bounds the shadow frustum when the renderer has no bounds
	Radius      float32
	MarkerScale float32
}

// DirectionalLight renders a shadow map from its own orthographic view and
// feeds it to the lit shader. Its matrices never depend on the camera.
type DirectionalLight struct {
	Direction   mgl32.Vec3
	Color       mgl32.Vec3
	Focus       mgl32.Vec3
	Radius      float32
	MarkerScale float32

	ctx         *graphics.Context
	depthShader *graphics.Shader
	target      graphics.DepthTarget
	marker      *graphics.Mesh

	lightSpace    mgl32.Mat4
	shadowsActive bool

	warn zerolog.Logger
}

// NewDirectionalLight allocates the shadow map and marker mesh
func NewDirectionalLight(ctx *graphics.Context, depthShader *graphics.Shader, opts Options) (*DirectionalLight, error) {
	if depthShader == nil {
		return nil, fmt.Errorf("directional light needs a depth shader")
	}
	if opts.Direction.Len() == 0 {
		return nil, fmt.Errorf("light direction must be non-zero")
	}

	target, err := ctx.Backend().CreateDepthTarget(opts.ShadowMapSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow map: %w", err)
	}
	marker, err := graphics.UploadGeometry(ctx, meshload.Cube())
	if err != nil {
		ctx.Backend().DeleteDepthTarget(target)
		return nil, fmt.Errorf("failed to create light marker: %w", err)
	}

	l := &DirectionalLight{
		Direction:   opts.Direction,
		Color:       opts.Color,
		Radius:      opts.Radius,
		MarkerScale: opts.MarkerScale,
		ctx:         ctx,
		depthShader: depthShader,
		target:      target,
		marker:      marker,
		lightSpace:  mgl32.Ident4(),
		warn:        log.Sample(&zerolog.BurstSampler{Burst: 1, Period: 5 * time.Second}),
	}
	if l.Radius <= 0 {
		l.Radius = 40
	}
	if l.MarkerScale <= 0 {
		l.MarkerScale = 1
	}
	return l, nil
}

// Position is where the light sits relative to the focus point
func (l *DirectionalLight) Position() mgl32.Vec3 {
	return l.Focus.Add(l.Direction)
}

// ShadowsActive reports whether this frame's shadow pass succeeded
func (l *DirectionalLight) ShadowsActive() bool {
	return l.shadowsActive
}

// LightSpaceMatrix is the projection*view used by the last shadow pass
func (l *DirectionalLight) LightSpaceMatrix() mgl32.Mat4 {
	return l.lightSpace
}

// ComputeLightSpace builds the light's orthographic projection*view,
// covering the renderer's bounds when it reports any.
func (l *DirectionalLight) ComputeLightSpace(renderer SceneRenderer) mgl32.Mat4 {
	focus, radius := l.Focus, l.Radius
	if bp, ok := renderer.(BoundsProvider); ok {
		if min, max, ok := bp.SceneBounds(); ok {
			focus = min.Add(max).Mul(0.5)
			radius = max.Sub(min).Len() / 2
			if radius < 1 {
				radius = 1
			}
		}
	}

	dir := l.Direction.Normalize()
	distance := l.Direction.Len()
	if distance < radius {
		distance = radius
	}
	eye := focus.Add(dir.Mul(distance))

	up := mgl32.Vec3{0, 1, 0}
	if abs(dir.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(eye, focus, up)
	proj := mgl32.Ortho(-radius, radius, -radius, radius, distance-radius, distance+radius)
	return proj.Mul4(view)
}

// RenderSceneWithShadows renders the depth-only shadow pass. If the shadow
// map can't be bound the pass is skipped and the frame renders unshadowed.
func (l *DirectionalLight) RenderSceneWithShadows(renderer SceneRenderer) {
	l.lightSpace = l.ComputeLightSpace(renderer)
	l.shadowsActive = false

	if !config.GetShadowsEnabled() {
		return
	}
	if err := l.ctx.BindTarget(&l.target); err != nil {
		l.warn.Warn().Err(err).Msg("shadow pass skipped")
		return
	}

	l.ctx.Clear(graphics.ClearDepth)
	l.depthShader.Use()
	l.depthShader.SetMat4("lightSpaceMatrix", l.lightSpace)
	renderer.RenderScene(l.depthShader)

	l.ctx.BindDefaultTarget()
	l.shadowsActive = true
}

// Render pushes the lighting uniforms to shader, draws the unlit light
// marker and binds the shadow map for the lit pass.
func (l *DirectionalLight) Render(shader *graphics.Shader, viewPos mgl32.Vec3) {
	shader.Use()
	shader.SetVec3("lightDir", l.Direction.Normalize())
	shader.SetVec3("lightColor", l.Color)
	shader.SetVec3("viewPos", viewPos)
	shader.SetMat4("lightSpaceMatrix", l.lightSpace)
	shader.SetBool("shadowsEnabled", l.shadowsActive)
	shader.SetInt("shadowMap", int32(ShadowUnit))

	pos := l.Position()
	model := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(mgl32.Scale3D(l.MarkerScale, l.MarkerScale, l.MarkerScale))
	shader.SetBool("unlit", true)
	shader.SetMat4("model", model)
	shader.SetVec3("color", l.Color)
	l.ctx.Draw(l.marker)
	shader.SetBool("unlit", false)

	l.ctx.BindTexture(ShadowUnit, l.target.Texture)
}

// Dispose frees the shadow map and marker
func (l *DirectionalLight) Dispose() {
	b := l.ctx.Backend()
	b.DeleteDepthTarget(l.target)
	if l.marker != nil {
		b.DeleteMesh(*l.marker)
		l.marker = nil
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
