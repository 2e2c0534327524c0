package meshload

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// gridUnit converts element coordinates (0..16 per block) to world units
const gridUnit = 1.0 / 16.0

// Geometry turns the model's boxes into triangles. The 16-unit grid maps to
// one world unit and the model is centred on X/Z with its base at y=0.
func (m *ElementModel) Geometry() (*Geometry, error) {
	if len(m.Elements) == 0 {
		return nil, fmt.Errorf("model has no elements")
	}
	g := &Geometry{}
	for i, el := range m.Elements {
		for axis := 0; axis < 3; axis++ {
			if el.To[axis] <= el.From[axis] {
				return nil, fmt.Errorf("element %d: empty extent on axis %d", i, axis)
			}
		}
		rot, err := el.rotation()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		appendBox(g, el.From, el.To, rot)
	}
	return g, nil
}

func (el Element) rotation() (mgl32.Mat4, error) {
	if el.Rotation == nil || el.Rotation.Angle == 0 {
		return mgl32.Ident4(), nil
	}
	var axis mgl32.Vec3
	switch el.Rotation.Axis {
	case "x":
		axis = mgl32.Vec3{1, 0, 0}
	case "y":
		axis = mgl32.Vec3{0, 1, 0}
	case "z":
		axis = mgl32.Vec3{0, 0, 1}
	default:
		return mgl32.Mat4{}, fmt.Errorf("unknown rotation axis %q", el.Rotation.Axis)
	}
	o := el.Rotation.Origin
	toOrigin := mgl32.Translate3D(-o[0], -o[1], -o[2])
	back := mgl32.Translate3D(o[0], o[1], o[2])
	return back.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(el.Rotation.Angle), axis)).Mul4(toOrigin), nil
}

// cube corner order per face, counter-clockwise seen from outside
var boxFaces = []struct {
	normal  mgl32.Vec3
	corners [4][3]int // 0 picks From, 1 picks To, per axis
}{
	{mgl32.Vec3{0, 0, 1}, [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{mgl32.Vec3{0, 0, -1}, [4][3]int{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
	{mgl32.Vec3{-1, 0, 0}, [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{mgl32.Vec3{1, 0, 0}, [4][3]int{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}},
	{mgl32.Vec3{0, 1, 0}, [4][3]int{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}},
	{mgl32.Vec3{0, -1, 0}, [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
}

func appendBox(g *Geometry, from, to [3]float32, rot mgl32.Mat4) {
	ext := [2][3]float32{from, to}
	for _, f := range boxFaces {
		var quad [4]mgl32.Vec3
		for i, c := range f.corners {
			p := mgl32.Vec3{ext[c[0]][0], ext[c[1]][1], ext[c[2]][2]}
			p = mgl32.TransformCoordinate(p, rot)
			quad[i] = mgl32.Vec3{(p[0] - 8) * gridUnit, p[1] * gridUnit, (p[2] - 8) * gridUnit}
		}
		n := mgl32.TransformNormal(f.normal, rot).Normalize()
		for _, idx := range [6]int{0, 1, 2, 0, 2, 3} {
			g.Positions = append(g.Positions, quad[idx])
			g.Normals = append(g.Normals, n)
		}
	}
}
