package scene

import (
	"errors"
	"testing"
	"testing/fstest"

	"shadowview/internal/config"
	"shadowview/internal/game"
	"shadowview/internal/graphics"
	"shadowview/internal/graphics/graphicstest"
	"shadowview/internal/gui"
	"shadowview/internal/input"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pyramidOBJ = `v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
v 0 2 0
f 1 2 3
f 1 3 4
f 1 5 2
f 2 5 3
f 3 5 4
f 4 5 1
`

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"shaders/default.vert": {Data: []byte("// default vertex")},
		"shaders/default.frag": {Data: []byte("// default fragment")},
		"shaders/depth.vert":   {Data: []byte("// depth vertex")},
		"shaders/depth.frag":   {Data: []byte("// depth fragment")},
		"models/pyramid.obj":   {Data: []byte(pyramidOBJ)},
		"models/broken.obj":    {Data: []byte("v 0 0 0\n")},
	}
}

type fakeWindow struct {
	cursorDisabled []bool
}

func (w *fakeWindow) ShouldClose() bool        { return false }
func (w *fakeWindow) SwapBuffers()             {}
func (w *fakeWindow) PollEvents()              {}
func (w *fakeWindow) Size() (int, int)         { return 1280, 720 }
func (w *fakeWindow) SetCursorDisabled(d bool) { w.cursorDisabled = append(w.cursorDisabled, d) }
func (w *fakeWindow) Destroy()                 {}

// fakeBridge records calls and what the scene looked like at construction
type fakeBridge struct {
	calls      []string
	container  gui.Container
	createErr  error
	sawObjects int
	sawLight   bool
}

func (b *fakeBridge) CreateGui(c gui.Container) error {
	b.calls = append(b.calls, "create")
	b.container = c
	return b.createErr
}
func (b *fakeBridge) Update()             { b.calls = append(b.calls, "update") }
func (b *fakeBridge) ReplaceModel()       { b.calls = append(b.calls, "replace") }
func (b *fakeBridge) UpdatePosition()     { b.calls = append(b.calls, "position") }
func (b *fakeBridge) SetAlwaysOnTop(bool) { b.calls = append(b.calls, "ontop") }
func (b *fakeBridge) Dispose()            { b.calls = append(b.calls, "dispose") }
func (b *fakeBridge) Draw()               { b.calls = append(b.calls, "draw") }

func (b *fakeBridge) count(c string) int {
	n := 0
	for _, s := range b.calls {
		if s == c {
			n++
		}
	}
	return n
}

type fixture struct {
	cfg    *config.Config
	rec    *graphicstest.Recorder
	in     *input.InputManager
	window *fakeWindow
	bridge *fakeBridge
	scene  *Scene
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	config.SetShadowsEnabled(true)

	f := &fixture{
		cfg:    config.Default(),
		rec:    graphicstest.NewRecorder(),
		in:     input.NewInputManager(),
		window: &fakeWindow{},
		bridge: &fakeBridge{},
	}
	f.cfg.Scene.Model = "models/pyramid.obj"
	f.scene = New(f.cfg, f.rec, f.in, testAssets(), WithGUI(func(ctx *graphics.Context, s *Scene) Bridge {
		f.bridge.sawObjects = s.Objects().Len()
		f.bridge.sawLight = s.Light() != nil
		return f.bridge
	}))
	return f
}

func (f *fixture) open(t *testing.T) {
	t.Helper()
	require.NoError(t, f.scene.OnWindowOpen(f.window))
}

func (f *fixture) frame(delta float32) {
	fr := game.Frame{Delta: delta}
	f.scene.OnNewFrame(fr)
	f.scene.OnRealtimeUpdate(fr)
	f.scene.OnRealtimeRender(fr)
	f.scene.OnFinishFrame(fr)
	f.in.PostUpdate()
}

func TestOpenBuildsSceneBeforeGUI(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	assert.Equal(t, 3, f.bridge.sawObjects)
	assert.True(t, f.bridge.sawLight)
	assert.Equal(t, []string{"create"}, f.bridge.calls)
	assert.Equal(t, gui.Container{X: 12, Y: 12, Width: 300, Height: 696}, f.bridge.container)

	p := f.scene.Primary()
	require.NotNil(t, p)
	assert.Equal(t, "pyramid", p.Name)
	assert.Equal(t, mgl32.Vec3{}, p.Transform.Position)

	st := f.scene.Status()
	assert.Equal(t, "pyramid", st.Model)
	assert.Equal(t, 6, st.Triangles)
	assert.Equal(t, mgl32.Vec3{0, 15, 30}, st.Camera)
}

func TestOpenFailsOnShaderError(t *testing.T) {
	f := newFixture(t)
	f.rec.FailCompile = "depth"

	err := f.scene.OnWindowOpen(f.window)
	require.Error(t, err)
	assert.ErrorContains(t, err, "depth shader")
	assert.Empty(t, f.bridge.calls, "gui is never built for a failed scene")

	// close after a partial open frees what was acquired
	f.scene.OnWindowClose()
	assert.Empty(t, f.rec.LivePrograms)
}

func TestOpenFailsOnMissingModel(t *testing.T) {
	f := newFixture(t)
	f.cfg.Scene.Model = "models/missing.obj"

	err := f.scene.OnWindowOpen(f.window)
	require.Error(t, err)
	assert.ErrorContains(t, err, "models/missing.obj")

	f.scene.OnWindowClose()
	assert.Empty(t, f.rec.LiveMeshes)
	assert.Empty(t, f.rec.LiveTextures)
	assert.Empty(t, f.rec.LivePrograms)
}

func TestGUIFailureFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.bridge.createErr = errors.New("no font")

	err := f.scene.OnWindowOpen(f.window)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no font")
}

func TestNoGUIWhenDisabled(t *testing.T) {
	f := newFixture(t)
	f.cfg.GUI.Enabled = false
	f.scene = New(f.cfg, f.rec, f.in, testAssets())
	f.open(t)

	// every forwarding hook copes with the missing GUI
	f.frame(0.016)
	f.scene.OnWindowMove(10, 10)
	f.scene.OnWindowFocus(true)
	f.scene.OnResize(640, 480)
	f.scene.OnFileDrop("primitive:cube")
	f.scene.OnWindowClose()
	assert.Empty(t, f.rec.LiveMeshes)
}

func TestFrameRendersShadowThenScene(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	f.rec.Reset()

	f.frame(0.016)

	depth := f.scene.depthShader.ID
	lit := f.scene.defaultShader.ID
	assert.NotEqual(t, mgl32.Mat4{}, f.scene.Light().LightSpaceMatrix())

	var depthDraws, litDraws int
	for _, c := range f.rec.Calls {
		if c.Op != "DrawMesh" {
			continue
		}
		info := c.Value.(graphicstest.DrawInfo)
		switch c.Program {
		case depth:
			assert.NotZero(t, info.Framebuffer)
			depthDraws++
		case lit:
			assert.Zero(t, info.Framebuffer)
			litDraws++
		}
	}
	assert.Equal(t, 3, depthDraws, "every object casts a shadow")
	assert.Equal(t, 4, litDraws, "light marker plus every object")

	proj, ok := f.rec.Uniform(lit, "projection")
	require.True(t, ok)
	assert.Equal(t, f.scene.Camera().GetProjectionMatrix(), proj)
	shadows, _ := f.rec.Uniform(lit, "shadowsEnabled")
	assert.Equal(t, int32(1), shadows)

	assert.Equal(t, 1, f.bridge.count("update"))
	assert.Equal(t, 1, f.bridge.count("draw"))
}

func TestShadowFailureStillDrawsScene(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	f.rec.FailBind = true
	f.rec.Reset()

	f.frame(0.016)

	draws := f.rec.Draws()
	require.Len(t, draws, 4)
	for _, d := range draws {
		assert.Zero(t, d.Framebuffer)
	}
	shadows, _ := f.rec.Uniform(f.scene.defaultShader.ID, "shadowsEnabled")
	assert.Equal(t, int32(0), shadows)
	assert.False(t, f.scene.Status().Shadows)
	assert.Equal(t, 1, f.bridge.count("draw"), "the frame completes")
}

func TestShadowToggleKey(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	f.in.HandleKeyEvent(input.KeyF, true)
	f.rec.Reset()
	f.frame(0.016)
	assert.False(t, config.GetShadowsEnabled())
	assert.Zero(t, countDepthDraws(f), "no shadow pass while disabled")
	assert.Len(t, f.rec.Draws(), 4)
	assert.False(t, f.scene.Status().Shadows)

	f.in.HandleKeyEvent(input.KeyF, false)
	f.frame(0.016)
	f.in.HandleKeyEvent(input.KeyF, true)
	f.rec.Reset()
	f.frame(0.016)
	assert.True(t, config.GetShadowsEnabled())
	assert.Equal(t, 3, countDepthDraws(f))
}

func countDepthDraws(f *fixture) int {
	n := 0
	for _, d := range f.rec.Draws() {
		if d.Framebuffer != 0 {
			n++
		}
	}
	return n
}

func TestFileDropSwapsPrimaryInPlace(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	p := f.scene.Primary()
	p.Transform.SetPosition(mgl32.Vec3{1, 2, 3})
	oldMesh := *p.Mesh()

	f.scene.OnFileDrop("primitive:cube")

	assert.Same(t, p, f.scene.Primary())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, p.Transform.Position)
	assert.NotEqual(t, oldMesh.VAO, p.Mesh().VAO)
	assert.False(t, f.rec.LiveMeshes[oldMesh.VAO], "old mesh is freed")
	assert.True(t, f.rec.LiveMeshes[p.Mesh().VAO])
	assert.Equal(t, 1, f.bridge.count("replace"))

	st := f.scene.Status()
	assert.Equal(t, "cube", st.Model)
	assert.Equal(t, 12, st.Triangles)
}

func TestFailedDropKeepsModel(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	before := *f.scene.Primary().Mesh()

	f.scene.OnFileDrop("models/broken.obj")
	f.scene.OnFileDrop("models/nothing.obj")
	f.scene.OnFileDrop("models/readme.txt")

	assert.Equal(t, before, *f.scene.Primary().Mesh())
	assert.Equal(t, "pyramid", f.scene.Status().Model)
	assert.Zero(t, f.bridge.count("replace"))
}

func TestKeyboardMovesCamera(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	start := f.scene.Camera().Position
	front := f.scene.Camera().Front()

	f.in.HandleKeyEvent(input.KeyW, true)
	f.frame(0.5)
	moved := f.scene.Camera().Position.Sub(start)
	assert.InDelta(t, 5, moved.Len(), 1e-4)
	assert.InDelta(t, 1, moved.Normalize().Dot(front), 1e-4)

	f.in.HandleKeyEvent(input.KeyLeftShift, true)
	start = f.scene.Camera().Position
	f.frame(0.5)
	assert.InDelta(t, 15, f.scene.Camera().Position.Sub(start).Len(), 1e-4)
}

func TestLookCapturesCursor(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	yaw := f.scene.Camera().Yaw()

	f.in.HandleKeyEvent(input.KeyE, true)
	f.in.HandleCursorPos(100, 100)
	f.in.HandleCursorPos(150, 100)
	f.frame(0.016)
	assert.InDelta(t, yaw+50*f.cfg.Camera.Sensitivity, f.scene.Camera().Yaw(), 1e-4)

	f.frame(0.016)
	assert.Equal(t, []bool{true}, f.window.cursorDisabled, "cursor is disabled once")

	f.in.HandleKeyEvent(input.KeyE, false)
	f.frame(0.016)
	assert.Equal(t, []bool{true, false}, f.window.cursorDisabled)
	assert.Equal(t, mgl32.Vec2{}, f.in.MouseDelta())
}

func TestWindowEventsReachGUI(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	f.scene.OnWindowMove(5, 5)
	f.scene.OnWindowFocus(false)
	f.scene.OnResize(0, 0)
	f.scene.OnResize(800, 600)

	assert.Equal(t, []string{"create", "position", "ontop", "position"}, f.bridge.calls)
	w, h := f.scene.ctx.Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.InDelta(t, 800.0/600.0, f.scene.Camera().AspectRatio(), 1e-5)
}

func TestCloseReleasesEverything(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	f.frame(0.016)
	f.rec.Reset()

	f.scene.OnWindowClose()

	assert.Equal(t, 1, f.bridge.count("dispose"))
	assert.Empty(t, f.rec.LiveMeshes)
	assert.Empty(t, f.rec.LiveTextures)
	assert.Empty(t, f.rec.LivePrograms)
	assert.Zero(t, f.scene.Objects().Len())
}

func TestDefaultGUIIsTextPanel(t *testing.T) {
	f := newFixture(t)
	assets := testAssets()
	assets["shaders/text.vert"] = &fstest.MapFile{Data: []byte("// text vertex")}
	assets["shaders/text.frag"] = &fstest.MapFile{Data: []byte("// text fragment")}
	f.scene = New(f.cfg, f.rec, f.in, assets)
	f.open(t)

	panel, ok := f.scene.gui.(*gui.Panel)
	require.True(t, ok)

	f.rec.Reset()
	f.frame(0.016)
	assert.Equal(t, 2, f.rec.Count("SetOverlay"))
	require.NotEmpty(t, panel.Lines())
	assert.Equal(t, "model: pyramid (6 tris)", panel.Lines()[0])

	f.scene.OnFileDrop("primitive:sphere")
	f.frame(0.016)
	assert.Contains(t, panel.Lines(), "loaded sphere")

	f.scene.OnWindowClose()
	assert.Empty(t, f.rec.LiveTextures)
	assert.Empty(t, f.rec.LivePrograms)
}
