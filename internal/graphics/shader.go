package graphics

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Shader is a handle to a linked GPU program bound to a render context
type Shader struct {
	ID   uint32
	Name string
	ctx  *Context
}

// NewShader compiles and links a program from GLSL sources
func NewShader(ctx *Context, name, vertexSrc, fragmentSrc string) (*Shader, error) {
	program, err := ctx.backend.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return &Shader{ID: program, Name: name, ctx: ctx}, nil
}

// LoadShader creates a shader program from vertex and fragment shader files in fsys
func LoadShader(ctx *Context, fsys fs.FS, vertexPath, fragmentPath string) (*Shader, error) {
	vertexSource, err := fs.ReadFile(fsys, vertexPath)
	if err != nil {
		return nil, fmt.Errorf("could not read vertex shader file: %w", err)
	}

	fragmentSource, err := fs.ReadFile(fsys, fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("could not read fragment shader file: %w", err)
	}

	name := strings.TrimSuffix(path.Base(vertexPath), path.Ext(vertexPath))
	return NewShader(ctx, name, string(vertexSource), string(fragmentSource))
}

// Use activates the shader program
func (s *Shader) Use() {
	s.ctx.Use(s)
}

// IsActive reports whether s is the program uniforms currently go to
func (s *Shader) IsActive() bool {
	return s.ctx.active == s
}

// Context returns the render context the shader belongs to
func (s *Shader) Context() *Context {
	return s.ctx
}

// SetBool sets a boolean uniform
func (s *Shader) SetBool(name string, value bool) {
	var intValue int32
	if value {
		intValue = 1
	}
	s.SetInt(name, intValue)
}

// SetInt sets an integer uniform
func (s *Shader) SetInt(name string, value int32) {
	if s.checkActive(name) {
		s.ctx.backend.UniformInt(s.ID, name, value)
	}
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, value float32) {
	if s.checkActive(name) {
		s.ctx.backend.UniformFloat(s.ID, name, value)
	}
}

// SetVec3 sets a vector3 uniform
func (s *Shader) SetVec3(name string, value mgl32.Vec3) {
	if s.checkActive(name) {
		s.ctx.backend.UniformVec3(s.ID, name, value)
	}
}

// SetMat4 sets a 4x4 matrix uniform
func (s *Shader) SetMat4(name string, value mgl32.Mat4) {
	if s.checkActive(name) {
		s.ctx.backend.UniformMat4(s.ID, name, value)
	}
}

// Delete releases the program. The shader must not be used afterwards.
func (s *Shader) Delete() {
	if s.ctx.active == s {
		s.ctx.active = nil
	}
	s.ctx.backend.DeleteProgram(s.ID)
}

func (s *Shader) checkActive(uniform string) bool {
	if s.ctx.active == s {
		return true
	}
	s.ctx.violation(fmt.Errorf("%w: %s.%s", ErrInactiveShader, s.Name, uniform))
	return false
}
