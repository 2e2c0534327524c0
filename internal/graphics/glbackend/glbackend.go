// Package glbackend implements graphics.Backend on OpenGL 4.1 core.
package glbackend

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"shadowview/internal/graphics"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Backend issues GL commands. gl.Init must have been called on the current
// thread before any method is used.
type Backend struct {
	// uniform locations per program, looked up once
	locations map[uint32]map[string]int32
}

var _ graphics.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{locations: make(map[uint32]map[string]int32)}
}

// Init loads GL function pointers and sets the default 3D state
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	return nil
}

// Version returns the driver's GL version string
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (b *Backend) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00"))
	}
	b.locations[program] = make(map[string]int32)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (b *Backend) DeleteProgram(program uint32) {
	delete(b.locations, program)
	gl.DeleteProgram(program)
}

func (b *Backend) UseProgram(program uint32) {
	gl.UseProgram(program)
}

// location returns -1 for uniforms the linker optimized out; GL ignores
// writes to -1 so callers need not check.
func (b *Backend) location(program uint32, name string) int32 {
	cache := b.locations[program]
	if cache == nil {
		cache = make(map[string]int32)
		b.locations[program] = cache
	}
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	cache[name] = loc
	return loc
}

func (b *Backend) UniformMat4(program uint32, name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(b.location(program, name), 1, false, &m[0])
}

func (b *Backend) UniformVec3(program uint32, name string, v mgl32.Vec3) {
	gl.Uniform3f(b.location(program, name), v[0], v[1], v[2])
}

func (b *Backend) UniformFloat(program uint32, name string, v float32) {
	gl.Uniform1f(b.location(program, name), v)
}

func (b *Backend) UniformInt(program uint32, name string, v int32) {
	gl.Uniform1i(b.location(program, name), v)
}

// CreateDepthTarget allocates a depth-only framebuffer backed by a
// sampleable depth texture. Texels outside the map read as fully lit.
func (b *Backend) CreateDepthTarget(size int32) (graphics.DepthTarget, error) {
	if size <= 0 {
		return graphics.DepthTarget{}, errors.New("depth target size must be positive")
	}
	var t graphics.DepthTarget
	t.Size = size

	gl.GenTextures(1, &t.Texture)
	gl.BindTexture(gl.TEXTURE_2D, t.Texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, size, size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.Texture, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		b.DeleteDepthTarget(t)
		return graphics.DepthTarget{}, fmt.Errorf("framebuffer not complete: 0x%x", status)
	}
	return t, nil
}

func (b *Backend) DeleteDepthTarget(t graphics.DepthTarget) {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
	}
	if t.Texture != 0 {
		gl.DeleteTextures(1, &t.Texture)
	}
}

func (b *Backend) BindFramebuffer(fbo uint32) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	if fbo == 0 {
		return nil
	}
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("%w: status 0x%x", graphics.ErrTargetIncomplete, status)
	}
	return nil
}

func (b *Backend) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

func (b *Backend) ClearColor(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

func (b *Backend) Clear(mask graphics.ClearMask) {
	var bits uint32
	if mask&graphics.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&graphics.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (b *Backend) BindTexture(unit uint32, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

func (b *Backend) UploadMesh(data graphics.MeshData) (graphics.Mesh, error) {
	if data.VertexCount() == 0 {
		return graphics.Mesh{}, errors.New("empty mesh")
	}
	m := graphics.Mesh{Layout: data.Layout}
	gl.GenVertexArrays(1, &m.VAO)
	gl.GenBuffers(1, &m.VBO)
	if len(data.Indices) > 0 {
		gl.GenBuffers(1, &m.EBO)
	}

	gl.BindVertexArray(m.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	setupAttributes(data.Layout)
	gl.BindVertexArray(0)

	if err := b.UpdateMesh(&m, data); err != nil {
		b.DeleteMesh(m)
		return graphics.Mesh{}, err
	}
	return m, nil
}

func setupAttributes(layout graphics.VertexLayout) {
	stride := int32(layout.Stride() * 4)
	switch layout {
	case graphics.LayoutScreenUV:
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	default:
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	}
}

// UpdateMesh replaces the buffer contents of an uploaded mesh. The layout
// must match the one the mesh was created with.
func (b *Backend) UpdateMesh(m *graphics.Mesh, data graphics.MeshData) error {
	if data.Layout != m.Layout {
		return fmt.Errorf("mesh layout mismatch: %d != %d", data.Layout, m.Layout)
	}
	if data.VertexCount() == 0 {
		return errors.New("empty mesh")
	}
	gl.BindVertexArray(m.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*4, gl.Ptr(data.Vertices), gl.DYNAMIC_DRAW)

	m.Indexed = len(data.Indices) > 0
	if m.Indexed {
		if m.EBO == 0 {
			gl.GenBuffers(1, &m.EBO)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.DYNAMIC_DRAW)
		m.Count = int32(len(data.Indices))
	} else {
		m.Count = int32(data.VertexCount())
	}
	gl.BindVertexArray(0)
	return nil
}

func (b *Backend) DeleteMesh(m graphics.Mesh) {
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
	}
	if m.VBO != 0 {
		gl.DeleteBuffers(1, &m.VBO)
	}
	if m.VAO != 0 {
		gl.DeleteVertexArrays(1, &m.VAO)
	}
}

func (b *Backend) DrawMesh(m graphics.Mesh) {
	if m.Count == 0 {
		return
	}
	gl.BindVertexArray(m.VAO)
	if m.Indexed {
		gl.DrawElements(gl.TRIANGLES, m.Count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.Count)
	}
	gl.BindVertexArray(0)
}

// UploadAlphaTexture uploads a single-channel image sampled through .r
func (b *Backend) UploadAlphaTexture(img *image.Alpha) (uint32, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, errors.New("empty texture")
	}
	size := img.Bounds().Size()
	pix := img.Pix
	if img.Stride != size.X {
		pix = make([]byte, 0, size.X*size.Y)
		for y := 0; y < size.Y; y++ {
			start := y * img.Stride
			pix = append(pix, img.Pix[start:start+size.X]...)
		}
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	// Ensure tight byte alignment for single-channel (alpha) upload
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(size.X), int32(size.Y), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture, nil
}

func (b *Backend) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (b *Backend) SetOverlay(enabled bool) {
	if enabled {
		gl.Disable(gl.DEPTH_TEST)
		gl.Disable(gl.CULL_FACE)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		return
	}
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
}
