package renderable

import (
	"testing"

	"shadowview/internal/graphics"
	"shadowview/internal/graphics/graphicstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, rec *graphicstest.Recorder, name string) *Model {
	t.Helper()
	mesh, err := rec.UploadMesh(graphics.MeshData{Vertices: make([]float32, 18)})
	require.NoError(t, err)
	m, err := NewModel(name, &mesh, mgl32.Vec3{1, 0, 1}, mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})
	require.NoError(t, err)
	return m
}

func TestModelDrawSetsOnlyPerObjectUniforms(t *testing.T) {
	rec := graphicstest.NewRecorder()
	ctx := graphics.NewContext(rec, 640, 480)
	shader, err := graphics.NewShader(ctx, "default", "", "")
	require.NoError(t, err)
	shader.Use()

	m := newTestModel(t, rec, "cube")
	m.Transform.SetPosition(mgl32.Vec3{0, 1, 10})

	rec.Reset()
	m.Draw(shader)

	var names []string
	for _, c := range rec.Calls {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	assert.ElementsMatch(t, []string{"model", "color"}, names)
	require.Len(t, rec.Draws(), 1)
	assert.Equal(t, m.Mesh().VAO, rec.Draws()[0].VAO)

	model, _ := rec.Uniform(shader.ID, "model")
	assert.Equal(t, mgl32.Translate3D(0, 1, 10), model)
}

func TestNewModelRequiresMesh(t *testing.T) {
	_, err := NewModel("empty", nil, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{})
	assert.Error(t, err)
}

func TestSwapMeshKeepsTransform(t *testing.T) {
	rec := graphicstest.NewRecorder()
	m := newTestModel(t, rec, "primary")
	m.Transform.SetPosition(mgl32.Vec3{3, 0, 0})
	require.NoError(t, m.Transform.SetUniformScale(2))
	before := m.Transform.Matrix()
	oldMesh := m.Mesh()

	next, err := rec.UploadMesh(graphics.MeshData{Vertices: make([]float32, 36)})
	require.NoError(t, err)
	old, err := m.SwapMesh(&next, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)

	assert.Same(t, oldMesh, old)
	assert.Same(t, &next, m.Mesh())
	assert.Equal(t, before, m.Transform.Matrix())

	_, err = m.SwapMesh(nil, mgl32.Vec3{}, mgl32.Vec3{})
	assert.Error(t, err)
	assert.Same(t, &next, m.Mesh())
}

func TestWorldBounds(t *testing.T) {
	rec := graphicstest.NewRecorder()
	m := newTestModel(t, rec, "cube")
	m.Transform.SetPosition(mgl32.Vec3{0, 1, 10})
	require.NoError(t, m.Transform.SetUniformScale(2))

	min, max := m.WorldBounds()
	assert.Equal(t, mgl32.Vec3{-1, 0, 9}, min)
	assert.Equal(t, mgl32.Vec3{1, 2, 11}, max)
}

func TestRegistrySlotsAreStable(t *testing.T) {
	rec := graphicstest.NewRecorder()
	reg := NewRegistry()
	a := reg.Add(newTestModel(t, rec, "a"))
	b := reg.Add(newTestModel(t, rec, "b"))
	c := reg.Add(newTestModel(t, rec, "c"))

	removed := reg.Remove(b)
	require.NotNil(t, removed)
	assert.Nil(t, reg.Get(b))
	assert.Nil(t, reg.Remove(b))
	assert.Equal(t, 2, reg.Len())

	assert.Equal(t, "a", reg.Get(a).(*Model).Name)
	assert.Equal(t, "c", reg.Get(c).(*Model).Name)

	d := reg.Add(newTestModel(t, rec, "d"))
	assert.NotEqual(t, b, d)

	var order []string
	reg.Each(func(_ Slot, r Renderable) { order = append(order, r.(*Model).Name) })
	assert.Equal(t, []string{"a", "c", "d"}, order)
	assert.Nil(t, reg.Get(Slot(99)))
}

func TestRegistryBounds(t *testing.T) {
	rec := graphicstest.NewRecorder()
	reg := NewRegistry()
	_, _, ok := reg.Bounds()
	assert.False(t, ok)

	a := newTestModel(t, rec, "a")
	b := newTestModel(t, rec, "b")
	b.Transform.SetPosition(mgl32.Vec3{4, 0, 0})
	reg.Add(a)
	reg.Add(b)

	min, max, ok := reg.Bounds()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, min)
	assert.Equal(t, mgl32.Vec3{4.5, 0.5, 0.5}, max)
}

func TestRegistryDrawAll(t *testing.T) {
	rec := graphicstest.NewRecorder()
	ctx := graphics.NewContext(rec, 640, 480)
	shader, err := graphics.NewShader(ctx, "default", "", "")
	require.NoError(t, err)
	shader.Use()

	reg := NewRegistry()
	reg.Add(newTestModel(t, rec, "a"))
	s := reg.Add(newTestModel(t, rec, "b"))
	reg.Add(newTestModel(t, rec, "c"))
	reg.Remove(s)

	rec.Reset()
	reg.DrawAll(shader)
	assert.Len(t, rec.Draws(), 2)
}
