package renderable

import (
	"errors"
	"math"

	"shadowview/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderable is anything the scene can draw with a caller-chosen shader.
// Draw may only set per-object uniforms (model, color) on the shader.
type Renderable interface {
	Draw(shader *graphics.Shader)
}

// Bounded renderables report a world-space bounding box
type Bounded interface {
	WorldBounds() (min, max mgl32.Vec3)
}

// Model is a mesh placed in the world with a flat color
type Model struct {
	Name      string
	Transform *graphics.Transform
	Color     mgl32.Vec3

	mesh     *graphics.Mesh
	localMin mgl32.Vec3
	localMax mgl32.Vec3
}

// NewModel wraps an uploaded mesh. localMin/localMax are the mesh's
// object-space bounds.
func NewModel(name string, mesh *graphics.Mesh, color, localMin, localMax mgl32.Vec3) (*Model, error) {
	if mesh == nil {
		return nil, errors.New("model needs a mesh")
	}
	return &Model{
		Name:      name,
		Transform: graphics.NewTransform(),
		Color:     color,
		mesh:      mesh,
		localMin:  localMin,
		localMax:  localMax,
	}, nil
}

func (m *Model) Mesh() *graphics.Mesh {
	return m.mesh
}

// SwapMesh replaces the geometry and returns the previous mesh so the caller
// can free it. The transform and color are kept.
func (m *Model) SwapMesh(mesh *graphics.Mesh, localMin, localMax mgl32.Vec3) (*graphics.Mesh, error) {
	if mesh == nil {
		return nil, errors.New("model needs a mesh")
	}
	old := m.mesh
	m.mesh = mesh
	m.localMin, m.localMax = localMin, localMax
	return old, nil
}

func (m *Model) Draw(shader *graphics.Shader) {
	shader.SetMat4("model", m.Transform.Matrix())
	shader.SetVec3("color", m.Color)
	shader.Context().Draw(m.mesh)
}

// WorldBounds transforms the eight local corners and boxes them
func (m *Model) WorldBounds() (min, max mgl32.Vec3) {
	mat := m.Transform.Matrix()
	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	ext := [2]mgl32.Vec3{m.localMin, m.localMax}
	for i := 0; i < 8; i++ {
		c := mgl32.Vec3{ext[i&1][0], ext[(i>>1)&1][1], ext[(i>>2)&1][2]}
		p := mgl32.TransformCoordinate(c, mat)
		for a := 0; a < 3; a++ {
			min[a] = float32(math.Min(float64(min[a]), float64(p[a])))
			max[a] = float32(math.Max(float64(max[a]), float64(p[a])))
		}
	}
	return min, max
}
