package meshload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pyramidOBJ = `# square pyramid
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
v 0 2 0
vn 0 -1 0
f 1//1 2//1 3//1 4//1
f 4 3 5
f 3 2 5
f -4 -5 -1
f 1 4 5
`

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"models/pyramid.obj": {Data: []byte(pyramidOBJ)},
		"models/base.json": {Data: []byte(`{
			"color": [0.2, 0.4, 0.6],
			"elements": [ { "from": [0,0,0], "to": [16,16,16] } ]
		}`)},
		"models/child.json": {Data: []byte(`{ "parent": "base" }`)},
		"models/tinted.json": {Data: []byte(`{ "parent": "base", "color": [1, 0, 0] }`)},
		"models/bad.json":    {Data: []byte(`{ "elements": [ { "from": [0,0,0], "to": [0,16,16] } ] }`)},
		"models/orphan.json": {Data: []byte(`{ "parent": "missing" }`)},
	}
}

func TestParseOBJFanTriangulates(t *testing.T) {
	g, err := ParseOBJ(strings.NewReader(pyramidOBJ))
	require.NoError(t, err)

	// quad base = 2 triangles, 4 sides = 4 triangles
	assert.Equal(t, 6, g.TriangleCount())
	assert.Len(t, g.Normals, len(g.Positions))
	for i := 0; i < 6; i++ {
		assert.Equal(t, mgl32.Vec3{0, -1, 0}, g.Normals[i], "explicit normal on base vertex %d", i)
	}

	min, max := g.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, 0, -1}, min)
	assert.Equal(t, mgl32.Vec3{1, 2, 1}, max)
}

func TestParseOBJFlatNormalsAreUnit(t *testing.T) {
	g, err := ParseOBJ(strings.NewReader(pyramidOBJ))
	require.NoError(t, err)
	for i := 6; i < len(g.Normals); i++ {
		assert.InDelta(t, 1.0, g.Normals[i].Len(), 1e-5)
		assert.Greater(t, g.Normals[i].Y(), float32(0), "side faces point up and out")
	}
}

func TestParseOBJErrors(t *testing.T) {
	cases := map[string]string{
		"no faces":     "v 0 0 0\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"zero index":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"bad float":    "v 0 x 0\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestPrimitives(t *testing.T) {
	cube, err := Primitive(PrimitiveCube)
	require.NoError(t, err)
	assert.Equal(t, 12, cube.Geometry.TriangleCount())

	plane, err := Primitive(PrimitivePlane)
	require.NoError(t, err)
	assert.Equal(t, 2, plane.Geometry.TriangleCount())

	sphere, err := Primitive(PrimitiveSphere)
	require.NoError(t, err)
	assert.NotEmpty(t, sphere.Geometry.Indices)
	for _, p := range sphere.Geometry.Positions {
		assert.InDelta(t, 0.5, p.Len(), 1e-5)
	}
	for _, idx := range sphere.Geometry.Indices {
		assert.Less(t, int(idx), len(sphere.Geometry.Positions))
	}

	_, err = Primitive("torus")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestLoaderCachesAndReloads(t *testing.T) {
	l := NewLoader(testAssets())

	a, err := l.Load("models/pyramid.obj")
	require.NoError(t, err)
	assert.Equal(t, "pyramid", a.Name)
	assert.Equal(t, DefaultColor, a.Material.Color)

	b, err := l.Load("models/pyramid.obj")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := l.Reload("models/pyramid.obj")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestLoaderPrimitiveTag(t *testing.T) {
	l := NewLoader(testAssets())
	a, err := l.Load("primitive:sphere")
	require.NoError(t, err)
	assert.Equal(t, "sphere", a.Name)
}

func TestLoaderUnsupported(t *testing.T) {
	l := NewLoader(testAssets())
	_, err := l.Load("models/scene.fbx")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestElementModelInheritsFromParent(t *testing.T) {
	l := NewLoader(testAssets())

	child, err := l.Load("models/child.json")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0.2, 0.4, 0.6}, child.Material.Color)
	assert.Equal(t, 12, child.Geometry.TriangleCount())

	min, max := child.Geometry.Bounds()
	assert.Equal(t, mgl32.Vec3{-0.5, 0, -0.5}, min)
	assert.Equal(t, mgl32.Vec3{0.5, 1, 0.5}, max)

	tinted, err := l.Load("models/tinted.json")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, tinted.Material.Color)

	// the child override must not leak into the shared parent
	base, err := l.LoadElementModel("models/base.json")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{0.2, 0.4, 0.6}, *base.Color)
}

func TestElementModelErrors(t *testing.T) {
	l := NewLoader(testAssets())

	_, err := l.Load("models/bad.json")
	assert.ErrorContains(t, err, "empty extent")

	_, err = l.Load("models/orphan.json")
	assert.ErrorContains(t, err, "could not load parent model 'missing'")

	_, err = l.Load("models/nope.json")
	assert.Error(t, err)
}

func TestElementRotation(t *testing.T) {
	m := &ElementModel{Elements: []Element{{
		From:     [3]float32{0, 0, 0},
		To:       [3]float32{16, 16, 16},
		Rotation: &Rotation{Origin: [3]float32{8, 8, 8}, Angle: 45, Axis: "y"},
	}}}
	g, err := m.Geometry()
	require.NoError(t, err)
	min, max := g.Bounds()
	assert.InDelta(t, -0.7071, min.X(), 1e-3)
	assert.InDelta(t, 0.7071, max.X(), 1e-3)

	m.Elements[0].Rotation.Axis = "w"
	_, err = m.Geometry()
	assert.ErrorContains(t, err, "unknown rotation axis")
}

func TestLoaderReadsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "dropped.obj")
	require.NoError(t, os.WriteFile(p, []byte(pyramidOBJ), 0o644))

	l := NewLoader(fstest.MapFS{})
	a, err := l.Reload(p)
	require.NoError(t, err)
	assert.Equal(t, "dropped", a.Name)
	assert.Equal(t, 6, a.Geometry.TriangleCount())
}
