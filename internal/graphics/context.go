package graphics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInactiveShader is raised when a uniform is set on a shader that is
	// not the active program of its context
	ErrInactiveShader = errors.New("uniform set on inactive shader")
	// ErrTargetIncomplete is returned when a render target cannot be bound
	ErrTargetIncomplete = errors.New("render target incomplete")
)

// Context is the render context threaded through a frame. It owns the two
// global GPU slots: the active shader and the active render target. Only the
// holder of a slot may issue commands that depend on it.
type Context struct {
	backend Backend

	active *Shader
	target *DepthTarget

	width  int32
	height int32

	// Debug turns contract violations into panics instead of logged no-ops
	Debug bool

	reported map[string]bool
}

// NewContext wraps a backend for a window of the given framebuffer size
func NewContext(b Backend, width, height int) *Context {
	return &Context{
		backend:  b,
		width:    int32(width),
		height:   int32(height),
		reported: make(map[string]bool),
	}
}

// Backend exposes the underlying command surface
func (c *Context) Backend() Backend {
	return c.backend
}

// Use makes s the active program. Binding the already active shader is a no-op.
func (c *Context) Use(s *Shader) {
	if s == nil {
		c.violation(errors.New("use of nil shader"))
		return
	}
	if s.ctx != c {
		c.violation(fmt.Errorf("shader %q belongs to another context", s.Name))
		return
	}
	if c.active == s {
		return
	}
	c.backend.UseProgram(s.ID)
	c.active = s
}

// Active returns the currently bound shader, or nil before the first Use
func (c *Context) Active() *Shader {
	return c.active
}

// BindTarget makes t the render target and sizes the viewport to it. On
// failure the window framebuffer stays bound.
func (c *Context) BindTarget(t *DepthTarget) error {
	if t == nil || t.FBO == 0 {
		c.BindDefaultTarget()
		return fmt.Errorf("bind depth target: %w", ErrTargetIncomplete)
	}
	if err := c.backend.BindFramebuffer(t.FBO); err != nil {
		c.BindDefaultTarget()
		return fmt.Errorf("bind depth target %d: %w", t.FBO, err)
	}
	c.target = t
	c.backend.Viewport(t.Size, t.Size)
	return nil
}

// BindDefaultTarget restores the window framebuffer and viewport
func (c *Context) BindDefaultTarget() {
	// the window framebuffer is always complete
	_ = c.backend.BindFramebuffer(0)
	c.target = nil
	c.backend.Viewport(c.width, c.height)
}

// Target returns the bound off-screen target, nil when drawing to the window
func (c *Context) Target() *DepthTarget {
	return c.target
}

// SetViewport records a new window framebuffer size. The GL viewport is only
// touched when the window framebuffer is the active target.
func (c *Context) SetViewport(width, height int) {
	c.width, c.height = int32(width), int32(height)
	if c.target == nil {
		c.backend.Viewport(c.width, c.height)
	}
}

// Viewport returns the window framebuffer size
func (c *Context) Viewport() (int, int) {
	return int(c.width), int(c.height)
}

// ClearColor sets the color used by Clear for the window target
func (c *Context) ClearColor(color mgl32.Vec4) {
	c.backend.ClearColor(color)
}

// Clear resets the selected buffers of the bound target
func (c *Context) Clear(mask ClearMask) {
	c.backend.Clear(mask)
}

// BindTexture binds a texture to a sampler unit
func (c *Context) BindTexture(unit, texture uint32) {
	c.backend.BindTexture(unit, texture)
}

// Draw issues a draw call with whatever program is active
func (c *Context) Draw(m *Mesh) {
	if m == nil {
		return
	}
	if c.active == nil {
		c.violation(errors.New("draw without an active shader"))
		return
	}
	c.backend.DrawMesh(*m)
}

// violation handles a broken binding contract: panic in debug mode,
// otherwise log each distinct message once and carry on.
func (c *Context) violation(err error) {
	if c.Debug {
		panic(err)
	}
	msg := err.Error()
	if c.reported[msg] {
		return
	}
	c.reported[msg] = true
	log.Warn().Err(err).Msg("render contract violation ignored")
}
