package gui

import (
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"time"

	"shadowview/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"
)

const (
	textVertexShader   = "shaders/text.vert"
	textFragmentShader = "shaders/text.frag"

	// how long the "loaded" notice stays after a model swap
	noticeDuration = 3 * time.Second
)

// Container is the window region the panel is laid out in, in pixels from
// the top-left corner
type Container struct {
	X, Y          int
	Width, Height int
}

// Status is the viewer state the panel displays
type Status struct {
	Model     string
	Triangles int
	Camera    mgl32.Vec3
	Yaw       float32
	Pitch     float32
	Shadows   bool
	FPS       float64
}

// Source supplies the panel with fresh status each update
type Source interface {
	Status() Status
}

type Options struct {
	Font     string
	FontSize float64
	Color    mgl32.Vec3
}

// Panel is an in-window text overlay showing viewer status and controls
type Panel struct {
	ctx    *graphics.Context
	assets fs.FS
	source Source
	opts   Options

	atlas   *Atlas
	texture uint32
	shader  *graphics.Shader
	mesh    *graphics.Mesh

	container Container
	lines     []string
	dirty     bool
	visible   bool
	created   bool

	notice      string
	noticeUntil time.Time

	now func() time.Time
}

// NewPanel prepares a panel. No GPU resources are created until CreateGui.
func NewPanel(ctx *graphics.Context, assets fs.FS, source Source, opts Options) *Panel {
	if opts.FontSize <= 0 {
		opts.FontSize = 13
	}
	if opts.Color == (mgl32.Vec3{}) {
		opts.Color = mgl32.Vec3{1, 1, 1}
	}
	return &Panel{
		ctx:     ctx,
		assets:  assets,
		source:  source,
		opts:    opts,
		visible: true,
		now:     time.Now,
	}
}

// CreateGui bakes the font, compiles the text shader and lays the panel
// out inside container
func (p *Panel) CreateGui(container Container) error {
	if p.created {
		return fmt.Errorf("gui already created")
	}

	face, err := LoadFace(p.assets, p.opts.Font, p.opts.FontSize)
	if err != nil {
		log.Warn().Err(err).Str("font", p.opts.Font).Msg("falling back to built-in font")
		face, _ = LoadFace(p.assets, "", 0)
	}
	atlas, err := BuildAtlas(face)
	if err != nil {
		return fmt.Errorf("build font atlas: %w", err)
	}

	b := p.ctx.Backend()
	texture, err := b.UploadAlphaTexture(atlas.Image)
	if err != nil {
		return fmt.Errorf("upload font atlas: %w", err)
	}

	shader, err := graphics.LoadShader(p.ctx, p.assets, textVertexShader, textFragmentShader)
	if err != nil {
		b.DeleteTexture(texture)
		return err
	}

	// a degenerate quad; real text replaces it on the first Update
	placeholder := graphics.MeshData{Layout: graphics.LayoutScreenUV, Vertices: make([]float32, 6*4)}
	mesh, err := b.UploadMesh(placeholder)
	if err != nil {
		b.DeleteTexture(texture)
		shader.Delete()
		return fmt.Errorf("upload text mesh: %w", err)
	}

	p.atlas = atlas
	p.texture = texture
	p.shader = shader
	p.mesh = &mesh
	p.container = container
	p.created = true
	p.dirty = true
	return nil
}

// Update refreshes the displayed lines from the source
func (p *Panel) Update() {
	if !p.created {
		return
	}
	lines := p.buildLines()
	if !p.dirty && slices.Equal(lines, p.lines) {
		return
	}
	p.lines = lines
	p.dirty = false

	vertices := p.layout()
	if len(vertices) == 0 {
		return
	}
	data := graphics.MeshData{Layout: graphics.LayoutScreenUV, Vertices: vertices}
	if err := p.ctx.Backend().UpdateMesh(p.mesh, data); err != nil {
		log.Warn().Err(err).Msg("gui text update failed")
	}
}

func (p *Panel) buildLines() []string {
	var s Status
	if p.source != nil {
		s = p.source.Status()
	}
	shadows := "off"
	if s.Shadows {
		shadows = "on"
	}
	lines := []string{
		"model: " + s.Model + " (" + strconv.Itoa(s.Triangles) + " tris)",
		fmt.Sprintf("camera: %.1f %.1f %.1f", s.Camera.X(), s.Camera.Y(), s.Camera.Z()),
		fmt.Sprintf("yaw %.0f pitch %.0f", s.Yaw, s.Pitch),
		"shadows: " + shadows,
		"fps: " + strconv.FormatFloat(s.FPS, 'f', 0, 64),
		"",
		"E / middle mouse: look",
		"WASD: move, shift: fast",
		"F: shadows, P: profiling",
		"drop .obj or .json to load",
	}
	if p.notice != "" && p.now().Before(p.noticeUntil) {
		lines = append(lines, "", p.notice)
	}
	return lines
}

// layout places lines top-down inside the container
func (p *Panel) layout() []float32 {
	var vertices []float32
	x := float32(p.container.X)
	y := float32(p.container.Y + p.atlas.LineHeight)
	bottom := float32(p.container.Y + p.container.Height)
	for _, line := range p.lines {
		if p.container.Height > 0 && y > bottom {
			break
		}
		vertices = p.atlas.AppendText(vertices, line, x, y)
		y += float32(p.atlas.LineHeight)
	}
	return vertices
}

// ReplaceModel is told the primary model changed
func (p *Panel) ReplaceModel() {
	var name string
	if p.source != nil {
		name = p.source.Status().Model
	}
	p.notice = "loaded " + name
	p.noticeUntil = p.now().Add(noticeDuration)
	p.dirty = true
}

// UpdatePosition re-anchors the panel after the window moved or resized
func (p *Panel) UpdatePosition() {
	w, h := p.ctx.Viewport()
	if p.container.Width > w {
		p.container.Width = w
	}
	if p.container.Height > h || p.container.Height == 0 {
		p.container.Height = h - p.container.Y
	}
	p.dirty = true
}

// SetAlwaysOnTop shows the panel while the viewer window has focus
func (p *Panel) SetAlwaysOnTop(onTop bool) {
	p.visible = onTop
}

func (p *Panel) Visible() bool {
	return p.visible
}

// Lines returns what the panel currently shows
func (p *Panel) Lines() []string {
	return p.lines
}

// Draw renders the overlay over the finished 3D frame
func (p *Panel) Draw() {
	if !p.created || !p.visible || len(p.lines) == 0 {
		return
	}
	w, h := p.ctx.Viewport()
	b := p.ctx.Backend()

	b.SetOverlay(true)
	p.shader.Use()
	p.shader.SetMat4("projection", mgl32.Ortho(0, float32(w), float32(h), 0, -1, 1))
	p.shader.SetVec3("textColor", p.opts.Color)
	p.shader.SetInt("text", 0)
	p.ctx.BindTexture(0, p.texture)
	p.ctx.Draw(p.mesh)
	b.SetOverlay(false)
}

// Dispose frees GPU resources. Safe to call more than once.
func (p *Panel) Dispose() {
	if !p.created {
		return
	}
	b := p.ctx.Backend()
	b.DeleteMesh(*p.mesh)
	b.DeleteTexture(p.texture)
	p.shader.Delete()
	p.mesh = nil
	p.created = false
}
