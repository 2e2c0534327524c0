// Package graphicstest provides a GPU-free graphics.Backend that records
// every command for assertions.
package graphicstest

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"shadowview/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded backend command
type Call struct {
	Op      string
	Program uint32
	Name    string
	Value   any
}

func (c Call) String() string {
	if c.Name != "" {
		return fmt.Sprintf("%s(%d,%s)", c.Op, c.Program, c.Name)
	}
	return fmt.Sprintf("%s(%v)", c.Op, c.Value)
}

// Recorder implements graphics.Backend in memory
type Recorder struct {
	Calls []Call

	// Uniforms holds the last value written per program and uniform name,
	// mirroring GL where uniform state is per program
	Uniforms map[uint32]map[string]any

	// FailCompile makes CompileProgram fail for sources containing it
	FailCompile string
	// FailBind makes BindFramebuffer fail for every non-zero framebuffer
	FailBind bool
	// FailDepthTarget makes CreateDepthTarget fail
	FailDepthTarget bool

	Program     uint32
	Framebuffer uint32
	nextID      uint32

	LiveMeshes   map[uint32]bool
	LiveTextures map[uint32]bool
	LivePrograms map[uint32]bool
}

var _ graphics.Backend = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		Uniforms:     make(map[uint32]map[string]any),
		LiveMeshes:   make(map[uint32]bool),
		LiveTextures: make(map[uint32]bool),
		LivePrograms: make(map[uint32]bool),
	}
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

func (r *Recorder) record(c Call) {
	r.Calls = append(r.Calls, c)
}

// Reset forgets recorded calls but keeps GPU state
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Ops returns the op names of recorded calls, optionally filtered by prefix
func (r *Recorder) Ops(prefix string) []string {
	var out []string
	for _, c := range r.Calls {
		if strings.HasPrefix(c.Op, prefix) {
			out = append(out, c.Op)
		}
	}
	return out
}

// Count returns how many calls have the given op
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Uniform returns the last value set for name on program
func (r *Recorder) Uniform(program uint32, name string) (any, bool) {
	v, ok := r.Uniforms[program][name]
	return v, ok
}

// UniformWrites returns every value written to name on program, in order
func (r *Recorder) UniformWrites(program uint32, name string) []any {
	var out []any
	for _, c := range r.Calls {
		if c.Program == program && c.Name == name {
			out = append(out, c.Value)
		}
	}
	return out
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if r.FailCompile != "" && (strings.Contains(vertexSrc, r.FailCompile) || strings.Contains(fragmentSrc, r.FailCompile)) {
		return 0, errors.New("failed to compile shader: forced failure")
	}
	p := r.id()
	r.LivePrograms[p] = true
	r.record(Call{Op: "CompileProgram", Value: p})
	return p, nil
}

func (r *Recorder) DeleteProgram(program uint32) {
	delete(r.LivePrograms, program)
	r.record(Call{Op: "DeleteProgram", Value: program})
}

func (r *Recorder) UseProgram(program uint32) {
	r.Program = program
	r.record(Call{Op: "UseProgram", Value: program})
}

func (r *Recorder) setUniform(op string, program uint32, name string, v any) {
	if r.Uniforms[program] == nil {
		r.Uniforms[program] = make(map[string]any)
	}
	r.Uniforms[program][name] = v
	r.record(Call{Op: op, Program: program, Name: name, Value: v})
}

func (r *Recorder) UniformMat4(program uint32, name string, m mgl32.Mat4) {
	r.setUniform("UniformMat4", program, name, m)
}

func (r *Recorder) UniformVec3(program uint32, name string, v mgl32.Vec3) {
	r.setUniform("UniformVec3", program, name, v)
}

func (r *Recorder) UniformFloat(program uint32, name string, v float32) {
	r.setUniform("UniformFloat", program, name, v)
}

func (r *Recorder) UniformInt(program uint32, name string, v int32) {
	r.setUniform("UniformInt", program, name, v)
}

func (r *Recorder) CreateDepthTarget(size int32) (graphics.DepthTarget, error) {
	if r.FailDepthTarget {
		return graphics.DepthTarget{}, errors.New("framebuffer incomplete: forced failure")
	}
	t := graphics.DepthTarget{FBO: r.id(), Texture: r.id(), Size: size}
	r.LiveTextures[t.Texture] = true
	r.record(Call{Op: "CreateDepthTarget", Value: t})
	return t, nil
}

func (r *Recorder) DeleteDepthTarget(t graphics.DepthTarget) {
	delete(r.LiveTextures, t.Texture)
	r.record(Call{Op: "DeleteDepthTarget", Value: t})
}

func (r *Recorder) BindFramebuffer(fbo uint32) error {
	if fbo != 0 && r.FailBind {
		r.Framebuffer = 0
		r.record(Call{Op: "BindFramebufferFailed", Value: fbo})
		return graphics.ErrTargetIncomplete
	}
	r.Framebuffer = fbo
	r.record(Call{Op: "BindFramebuffer", Value: fbo})
	return nil
}

func (r *Recorder) Viewport(width, height int32) {
	r.record(Call{Op: "Viewport", Value: [2]int32{width, height}})
}

func (r *Recorder) ClearColor(c mgl32.Vec4) {
	r.record(Call{Op: "ClearColor", Value: c})
}

func (r *Recorder) Clear(mask graphics.ClearMask) {
	r.record(Call{Op: "Clear", Value: mask})
}

func (r *Recorder) BindTexture(unit uint32, texture uint32) {
	r.record(Call{Op: "BindTexture", Value: [2]uint32{unit, texture}})
}

func (r *Recorder) UploadMesh(data graphics.MeshData) (graphics.Mesh, error) {
	if data.VertexCount() == 0 {
		return graphics.Mesh{}, errors.New("empty mesh")
	}
	m := graphics.Mesh{VAO: r.id(), VBO: r.id(), Layout: data.Layout}
	if len(data.Indices) > 0 {
		m.EBO = r.id()
		m.Indexed = true
		m.Count = int32(len(data.Indices))
	} else {
		m.Count = int32(data.VertexCount())
	}
	r.LiveMeshes[m.VAO] = true
	r.record(Call{Op: "UploadMesh", Value: m.VAO})
	return m, nil
}

func (r *Recorder) UpdateMesh(m *graphics.Mesh, data graphics.MeshData) error {
	if !r.LiveMeshes[m.VAO] {
		return fmt.Errorf("update of unknown mesh %d", m.VAO)
	}
	m.Indexed = len(data.Indices) > 0
	if m.Indexed {
		m.Count = int32(len(data.Indices))
	} else {
		m.Count = int32(data.VertexCount())
	}
	r.record(Call{Op: "UpdateMesh", Value: m.VAO})
	return nil
}

func (r *Recorder) DeleteMesh(m graphics.Mesh) {
	delete(r.LiveMeshes, m.VAO)
	r.record(Call{Op: "DeleteMesh", Value: m.VAO})
}

// DrawMesh records the draw together with the program and framebuffer it hit
func (r *Recorder) DrawMesh(m graphics.Mesh) {
	r.record(Call{Op: "DrawMesh", Program: r.Program, Value: DrawInfo{VAO: m.VAO, Framebuffer: r.Framebuffer}})
}

// DrawInfo is the Value of a recorded DrawMesh call
type DrawInfo struct {
	VAO         uint32
	Framebuffer uint32
}

// Draws returns every recorded draw in order
func (r *Recorder) Draws() []DrawInfo {
	var out []DrawInfo
	for _, c := range r.Calls {
		if c.Op == "DrawMesh" {
			out = append(out, c.Value.(DrawInfo))
		}
	}
	return out
}

func (r *Recorder) UploadAlphaTexture(img *image.Alpha) (uint32, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, errors.New("empty texture")
	}
	t := r.id()
	r.LiveTextures[t] = true
	r.record(Call{Op: "UploadAlphaTexture", Value: t})
	return t, nil
}

func (r *Recorder) DeleteTexture(texture uint32) {
	delete(r.LiveTextures, texture)
	r.record(Call{Op: "DeleteTexture", Value: texture})
}

func (r *Recorder) SetOverlay(enabled bool) {
	r.record(Call{Op: "SetOverlay", Value: enabled})
}
