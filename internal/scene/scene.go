package scene

import (
	"fmt"
	"io/fs"

	"shadowview/internal/config"
	"shadowview/internal/game"
	"shadowview/internal/graphics"
	"shadowview/internal/gui"
	"shadowview/internal/input"
	"shadowview/internal/lighting"
	"shadowview/internal/profiling"
	"shadowview/internal/renderable"
	"shadowview/pkg/meshload"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"
)

const (
	defaultVertexShader   = "shaders/default.vert"
	defaultFragmentShader = "shaders/default.frag"
	depthVertexShader     = "shaders/depth.vert"
	depthFragmentShader   = "shaders/depth.frag"
)

var clearColor = mgl32.Vec4{0.1, 0.1, 0.12, 1}

// Bridge is the GUI the scene drives. The scene never looks inside it.
type Bridge interface {
	CreateGui(container gui.Container) error
	Update()
	ReplaceModel()
	UpdatePosition()
	SetAlwaysOnTop(onTop bool)
	Dispose()
}

// Drawer is implemented by bridges that render inside the viewer window
type Drawer interface {
	Draw()
}

// Input is the part of the input manager the scene reads
type Input interface {
	IsActive(action input.Action) bool
	JustPressed(action input.Action) bool
	JustReleased(action input.Action) bool
	MouseDelta() mgl32.Vec2
	ResetMouse()
}

// GUIFactory builds the bridge once the scene content exists. Returning nil
// runs the scene without a GUI.
type GUIFactory func(ctx *graphics.Context, s *Scene) Bridge

type Option func(*Scene)

// WithGUI replaces the default panel factory
func WithGUI(f GUIFactory) Option {
	return func(s *Scene) { s.newGUI = f }
}

// WithLoader shares a model loader, e.g. one that already has a warm cache
func WithLoader(l *meshload.Loader) Option {
	return func(s *Scene) { s.loader = l }
}

// Scene owns everything drawn in the viewer and implements game.Handler
type Scene struct {
	cfg     *config.Config
	backend graphics.Backend
	in      Input
	assets  fs.FS
	loader  *meshload.Loader
	newGUI  GUIFactory

	window        game.Window
	ctx           *graphics.Context
	camera        *graphics.Camera
	defaultShader *graphics.Shader
	depthShader   *graphics.Shader
	light         *lighting.DirectionalLight
	objects       *renderable.Registry
	primary       *renderable.Model
	primaryTris   int
	gui           Bridge

	looking  bool
	rendered bool
	fps      float64
}

var _ game.Handler = (*Scene)(nil)

func New(cfg *config.Config, backend graphics.Backend, in Input, assets fs.FS, opts ...Option) *Scene {
	s := &Scene{
		cfg:     cfg,
		backend: backend,
		in:      in,
		assets:  assets,
		objects: renderable.NewRegistry(),
		newGUI:  defaultGUI,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = meshload.NewLoader(assets)
	}
	return s
}

func defaultGUI(ctx *graphics.Context, s *Scene) Bridge {
	if !s.cfg.GUI.Enabled {
		return nil
	}
	return gui.NewPanel(ctx, s.assets, s, gui.Options{
		Font:     s.cfg.GUI.Font,
		FontSize: float64(s.cfg.GUI.FontSize),
	})
}

// OnWindowOpen acquires every GPU resource. The GUI is created last so it
// can describe the finished scene.
func (s *Scene) OnWindowOpen(w game.Window) error {
	s.window = w
	width, height := w.Size()

	s.ctx = graphics.NewContext(s.backend, width, height)
	s.ctx.Debug = s.cfg.Debug

	cam := s.cfg.Camera
	s.camera = graphics.NewCamera(width, height, mgl32.Vec3(cam.Position))
	s.camera.FOV = cam.FOV
	s.camera.NearPlane = cam.Near
	s.camera.FarPlane = cam.Far
	s.camera.Sensitivity = cam.Sensitivity

	var err error
	s.defaultShader, err = graphics.LoadShader(s.ctx, s.assets, defaultVertexShader, defaultFragmentShader)
	if err != nil {
		return fmt.Errorf("default shader: %w", err)
	}
	s.depthShader, err = graphics.LoadShader(s.ctx, s.assets, depthVertexShader, depthFragmentShader)
	if err != nil {
		return fmt.Errorf("depth shader: %w", err)
	}

	lc := s.cfg.Light
	s.light, err = lighting.NewDirectionalLight(s.ctx, s.depthShader, lighting.Options{
		Direction:     mgl32.Vec3(lc.Direction),
		Color:         mgl32.Vec3(lc.Color),
		ShadowMapSize: int32(lc.ShadowMapSize),
		Radius:        lc.ShadowRadius,
		MarkerScale:   lc.MarkerScale,
	})
	if err != nil {
		return err
	}

	if err := s.buildModels(); err != nil {
		return err
	}

	if s.newGUI != nil {
		if bridge := s.newGUI(s.ctx, s); bridge != nil {
			if err := bridge.CreateGui(s.guiContainer(width, height)); err != nil {
				return fmt.Errorf("create gui: %w", err)
			}
			s.gui = bridge
		}
	}

	log.Info().
		Int("width", width).
		Int("height", height).
		Str("model", s.primary.Name).
		Int("objects", s.objects.Len()).
		Msg("scene ready")
	return nil
}

func (s *Scene) buildModels() error {
	sc := s.cfg.Scene

	asset, err := s.loader.Load(sc.Model)
	if err != nil {
		return fmt.Errorf("load model %s: %w", sc.Model, err)
	}
	primary, err := s.newModel(asset.Name, &asset.Geometry, asset.Material.Color)
	if err != nil {
		return err
	}
	if err := primary.Transform.SetUniformScale(sc.ModelScale); err != nil {
		return fmt.Errorf("model scale: %w", err)
	}
	s.primaryTris = asset.Geometry.TriangleCount()

	floor, err := s.newModel("floor", meshload.Plane(), mgl32.Vec3(sc.FloorColor))
	if err != nil {
		return err
	}
	if err := floor.Transform.SetScale(mgl32.Vec3{sc.FloorSize, 1, sc.FloorSize}); err != nil {
		return fmt.Errorf("floor size: %w", err)
	}

	cube, err := s.newModel("cube", meshload.Cube(), mgl32.Vec3(sc.CubeColor))
	if err != nil {
		return err
	}
	cube.Transform.SetPosition(mgl32.Vec3{0, 1, 10})

	s.objects.Add(floor)
	s.objects.Add(primary)
	s.objects.Add(cube)
	s.primary = primary
	return nil
}

func (s *Scene) newModel(name string, g *meshload.Geometry, color mgl32.Vec3) (*renderable.Model, error) {
	mesh, err := graphics.UploadGeometry(s.ctx, g)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	min, max := g.Bounds()
	return renderable.NewModel(name, mesh, color, min, max)
}

func (s *Scene) guiContainer(width, height int) gui.Container {
	m := s.cfg.GUI.Margin
	return gui.Container{X: m, Y: m, Width: s.cfg.GUI.Width, Height: height - 2*m}
}

// OnWindowClose disposes the GUI, then frees what OnWindowOpen acquired.
// It copes with a partially completed open.
func (s *Scene) OnWindowClose() {
	if s.gui != nil {
		s.gui.Dispose()
		s.gui = nil
	}
	if s.ctx == nil {
		return
	}
	s.objects.Each(func(slot renderable.Slot, r renderable.Renderable) {
		if m, ok := r.(*renderable.Model); ok {
			s.backend.DeleteMesh(*m.Mesh())
		}
		s.objects.Remove(slot)
	})
	s.primary = nil
	if s.light != nil {
		s.light.Dispose()
		s.light = nil
	}
	if s.depthShader != nil {
		s.depthShader.Delete()
		s.depthShader = nil
	}
	if s.defaultShader != nil {
		s.defaultShader.Delete()
		s.defaultShader = nil
	}
}

func (s *Scene) OnNewFrame(f game.Frame) {
	if f.Delta <= 0 {
		return
	}
	inst := 1 / float64(f.Delta)
	if s.fps == 0 {
		s.fps = inst
	} else {
		s.fps = s.fps*0.9 + inst*0.1
	}
}

func (s *Scene) OnRealtimeUpdate(f game.Frame) {
	s.processCameraInput(f.Delta)

	if s.in.JustPressed(input.ActionToggleShadows) {
		log.Info().Bool("enabled", config.ToggleShadows()).Msg("shadows toggled")
	}
	if s.in.JustPressed(input.ActionToggleProfiling) {
		log.Info().Bool("enabled", config.ToggleProfilingReport()).Msg("profiling report toggled")
	}

	if s.gui != nil {
		s.gui.Update()
	}
}

func (s *Scene) processCameraInput(dt float32) {
	if s.in.IsActive(input.ActionLook) {
		if !s.looking {
			s.window.SetCursorDisabled(true)
			s.looking = true
		}
		d := s.in.MouseDelta()
		s.camera.ProcessMouseMovement(d.X(), d.Y())
	} else if s.in.JustReleased(input.ActionLook) || s.looking {
		s.window.SetCursorDisabled(false)
		s.looking = false
		s.in.ResetMouse()
	}

	speed := s.cfg.Camera.MoveSpeed
	if s.in.IsActive(input.ActionFast) {
		speed *= s.cfg.Camera.FastMultiplier
	}

	if s.in.IsActive(input.ActionMoveForward) {
		s.camera.ProcessKeyboard(graphics.Forward, dt, speed)
	}
	if s.in.IsActive(input.ActionMoveBackward) {
		s.camera.ProcessKeyboard(graphics.Backward, dt, speed)
	}
	if s.in.IsActive(input.ActionMoveLeft) {
		s.camera.ProcessKeyboard(graphics.Left, dt, speed)
	}
	if s.in.IsActive(input.ActionMoveRight) {
		s.camera.ProcessKeyboard(graphics.Right, dt, speed)
	}
}

// OnRealtimeRender draws the frame: shadow pass, light pass, then the lit
// scene with the default shader
func (s *Scene) OnRealtimeRender(game.Frame) {
	s.ctx.ClearColor(clearColor)
	s.ctx.Clear(graphics.ClearColor | graphics.ClearDepth)

	s.defaultShader.Use()
	s.defaultShader.SetMat4("projection", s.camera.GetProjectionMatrix())
	s.defaultShader.SetMat4("view", s.camera.GetViewMatrix())

	stop := profiling.Track("light.ShadowPass")
	s.light.RenderSceneWithShadows(s)
	stop()

	s.light.Render(s.defaultShader, s.camera.Position)

	defer profiling.Track("scene.Render")()
	s.RenderScene(s.defaultShader)
	s.rendered = true
}

// RenderScene draws every object with shader. Only per-object uniforms are
// touched, so it is safe inside the shadow pass.
func (s *Scene) RenderScene(shader *graphics.Shader) {
	s.objects.DrawAll(shader)
}

// SceneBounds sizes the light's shadow frustum
func (s *Scene) SceneBounds() (min, max mgl32.Vec3, ok bool) {
	return s.objects.Bounds()
}

func (s *Scene) OnFinishFrame(game.Frame) {
	if d, ok := s.gui.(Drawer); ok {
		d.Draw()
	}
}

// OnFileDrop swaps the primary model's geometry in place. On any failure
// the previous model stays and the GUI is not told.
func (s *Scene) OnFileDrop(path string) {
	if err := s.replacePrimary(path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not load dropped model")
		return
	}
	log.Info().Str("path", path).Str("model", s.primary.Name).Int("triangles", s.primaryTris).Msg("model replaced")
	if s.gui != nil {
		s.gui.ReplaceModel()
	}
}

func (s *Scene) replacePrimary(path string) error {
	if s.primary == nil {
		return fmt.Errorf("scene is not open")
	}
	asset, err := s.loader.Reload(path)
	if err != nil {
		return err
	}
	mesh, err := graphics.UploadGeometry(s.ctx, &asset.Geometry)
	if err != nil {
		return err
	}
	min, max := asset.Geometry.Bounds()
	old, err := s.primary.SwapMesh(mesh, min, max)
	if err != nil {
		s.backend.DeleteMesh(*mesh)
		return err
	}
	s.backend.DeleteMesh(*old)

	s.primary.Name = asset.Name
	s.primary.Color = asset.Material.Color
	s.primaryTris = asset.Geometry.TriangleCount()
	return nil
}

func (s *Scene) OnWindowMove(x, y int) {
	if s.gui != nil {
		s.gui.UpdatePosition()
	}
}

func (s *Scene) OnWindowFocus(focused bool) {
	if s.gui != nil {
		s.gui.SetAlwaysOnTop(focused)
	}
}

// OnResize follows the framebuffer size. A minimized window reports zero
// and is ignored.
func (s *Scene) OnResize(width, height int) {
	if width <= 0 || height <= 0 || s.ctx == nil {
		return
	}
	s.camera.SetViewport(width, height)
	s.ctx.SetViewport(width, height)
	if s.gui != nil {
		s.gui.UpdatePosition()
	}
}

// Status reports what the GUI shows
func (s *Scene) Status() gui.Status {
	st := gui.Status{
		Triangles: s.primaryTris,
		Shadows:   config.GetShadowsEnabled(),
		FPS:       s.fps,
	}
	if s.primary != nil {
		st.Model = s.primary.Name
	}
	if s.light != nil && s.rendered {
		st.Shadows = st.Shadows && s.light.ShadowsActive()
	}
	if s.camera != nil {
		st.Camera = s.camera.Position
		st.Yaw = s.camera.Yaw()
		st.Pitch = s.camera.Pitch()
	}
	return st
}

// Camera exposes the scene camera
func (s *Scene) Camera() *graphics.Camera {
	return s.camera
}

// Primary returns the model file drops replace
func (s *Scene) Primary() *renderable.Model {
	return s.primary
}

// Objects returns the draw list
func (s *Scene) Objects() *renderable.Registry {
	return s.objects
}

// Light returns the scene's directional light
func (s *Scene) Light() *lighting.DirectionalLight {
	return s.light
}
