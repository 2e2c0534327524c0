package graphics

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ClearMask selects which buffers of the bound target Clear resets
type ClearMask uint32

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// VertexLayout describes how MeshData.Vertices is interleaved
type VertexLayout int

const (
	// LayoutPositionNormal is 3 position floats followed by 3 normal floats
	LayoutPositionNormal VertexLayout = iota
	// LayoutScreenUV is 2 screen-space position floats followed by 2 texcoords
	LayoutScreenUV
)

// Stride returns the number of floats per vertex
func (l VertexLayout) Stride() int {
	switch l {
	case LayoutScreenUV:
		return 4
	default:
		return 6
	}
}

// MeshData is CPU-side vertex data ready for upload
type MeshData struct {
	Layout   VertexLayout
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of whole vertices in Vertices
func (d MeshData) VertexCount() int {
	return len(d.Vertices) / d.Layout.Stride()
}

// Mesh is a GPU-resident vertex array
type Mesh struct {
	VAO     uint32
	VBO     uint32
	EBO     uint32
	Count   int32 // indices when Indexed, vertices otherwise
	Indexed bool
	Layout  VertexLayout
}

// DepthTarget is an off-screen depth-only framebuffer with a sampleable texture
type DepthTarget struct {
	FBO     uint32
	Texture uint32
	Size    int32
}

// Backend is the GPU command surface. Every call must happen on the thread
// that owns the GL context.
type Backend interface {
	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformMat4(program uint32, name string, m mgl32.Mat4)
	UniformVec3(program uint32, name string, v mgl32.Vec3)
	UniformFloat(program uint32, name string, v float32)
	UniformInt(program uint32, name string, v int32)

	CreateDepthTarget(size int32) (DepthTarget, error)
	DeleteDepthTarget(t DepthTarget)
	// BindFramebuffer binds fbo for drawing; 0 is the window. A non-zero
	// framebuffer that is not complete yields an error and leaves 0 bound.
	BindFramebuffer(fbo uint32) error
	Viewport(width, height int32)
	ClearColor(c mgl32.Vec4)
	Clear(mask ClearMask)
	BindTexture(unit uint32, texture uint32)

	UploadMesh(data MeshData) (Mesh, error)
	UpdateMesh(m *Mesh, data MeshData) error
	DeleteMesh(m Mesh)
	DrawMesh(m Mesh)

	UploadAlphaTexture(img *image.Alpha) (uint32, error)
	DeleteTexture(texture uint32)
	// SetOverlay switches between 3D state (depth test, back-face culling)
	// and 2D overlay state (no depth, alpha blending).
	SetOverlay(enabled bool)
}
