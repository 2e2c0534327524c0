package meshload

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type PrimitiveType string

const (
	PrimitiveCube   PrimitiveType = "cube"
	PrimitivePlane  PrimitiveType = "plane"
	PrimitiveSphere PrimitiveType = "sphere"
)

// sphere tessellation
const (
	sphereStacks  = 24
	sphereSectors = 32
)

// Primitive builds a built-in shape. All shapes fit the unit box centred on
// the origin; the plane lies in XZ facing +Y.
func Primitive(kind PrimitiveType) (*Asset, error) {
	var g *Geometry
	switch kind {
	case PrimitiveCube:
		g = Cube()
	case PrimitivePlane:
		g = Plane()
	case PrimitiveSphere:
		g = Sphere(sphereStacks, sphereSectors)
	default:
		return nil, fmt.Errorf("%w: primitive %q", ErrUnsupported, kind)
	}
	return &Asset{Name: string(kind), Geometry: *g, Material: Material{Color: DefaultColor}}, nil
}

// position xyz, normal xyz
var cubeVertices = []float32{
	-0.5, -0.5, 0.5, 0, 0, 1,
	0.5, -0.5, 0.5, 0, 0, 1,
	0.5, 0.5, 0.5, 0, 0, 1,
	0.5, 0.5, 0.5, 0, 0, 1,
	-0.5, 0.5, 0.5, 0, 0, 1,
	-0.5, -0.5, 0.5, 0, 0, 1,
	0.5, -0.5, -0.5, 0, 0, -1,
	-0.5, -0.5, -0.5, 0, 0, -1,
	-0.5, 0.5, -0.5, 0, 0, -1,
	-0.5, 0.5, -0.5, 0, 0, -1,
	0.5, 0.5, -0.5, 0, 0, -1,
	0.5, -0.5, -0.5, 0, 0, -1,
	-0.5, -0.5, -0.5, -1, 0, 0,
	-0.5, -0.5, 0.5, -1, 0, 0,
	-0.5, 0.5, 0.5, -1, 0, 0,
	-0.5, 0.5, 0.5, -1, 0, 0,
	-0.5, 0.5, -0.5, -1, 0, 0,
	-0.5, -0.5, -0.5, -1, 0, 0,
	0.5, -0.5, 0.5, 1, 0, 0,
	0.5, -0.5, -0.5, 1, 0, 0,
	0.5, 0.5, -0.5, 1, 0, 0,
	0.5, 0.5, -0.5, 1, 0, 0,
	0.5, 0.5, 0.5, 1, 0, 0,
	0.5, -0.5, 0.5, 1, 0, 0,
	-0.5, 0.5, 0.5, 0, 1, 0,
	0.5, 0.5, 0.5, 0, 1, 0,
	0.5, 0.5, -0.5, 0, 1, 0,
	0.5, 0.5, -0.5, 0, 1, 0,
	-0.5, 0.5, -0.5, 0, 1, 0,
	-0.5, 0.5, 0.5, 0, 1, 0,
	-0.5, -0.5, -0.5, 0, -1, 0,
	0.5, -0.5, -0.5, 0, -1, 0,
	0.5, -0.5, 0.5, 0, -1, 0,
	0.5, -0.5, 0.5, 0, -1, 0,
	-0.5, -0.5, 0.5, 0, -1, 0,
	-0.5, -0.5, -0.5, 0, -1, 0,
}

func Cube() *Geometry {
	n := len(cubeVertices) / 6
	g := &Geometry{
		Positions: make([]mgl32.Vec3, 0, n),
		Normals:   make([]mgl32.Vec3, 0, n),
	}
	for i := 0; i < len(cubeVertices); i += 6 {
		v := cubeVertices[i : i+6]
		g.Positions = append(g.Positions, mgl32.Vec3{v[0], v[1], v[2]})
		g.Normals = append(g.Normals, mgl32.Vec3{v[3], v[4], v[5]})
	}
	return g
}

func Plane() *Geometry {
	up := mgl32.Vec3{0, 1, 0}
	return &Geometry{
		Positions: []mgl32.Vec3{
			{-0.5, 0, 0.5}, {0.5, 0, 0.5}, {0.5, 0, -0.5},
			{0.5, 0, -0.5}, {-0.5, 0, -0.5}, {-0.5, 0, 0.5},
		},
		Normals: []mgl32.Vec3{up, up, up, up, up, up},
	}
}

// Sphere builds an indexed UV sphere of radius 0.5
func Sphere(stacks, sectors int) *Geometry {
	if stacks < 2 {
		stacks = 2
	}
	if sectors < 3 {
		sectors = 3
	}
	g := &Geometry{}
	for i := 0; i <= stacks; i++ {
		phi := math.Pi/2 - float64(i)*math.Pi/float64(stacks)
		y := math.Sin(phi)
		r := math.Cos(phi)
		for j := 0; j <= sectors; j++ {
			theta := float64(j) * 2 * math.Pi / float64(sectors)
			n := mgl32.Vec3{float32(r * math.Cos(theta)), float32(y), float32(r * math.Sin(theta))}
			g.Normals = append(g.Normals, n)
			g.Positions = append(g.Positions, n.Mul(0.5))
		}
	}
	row := uint32(sectors + 1)
	for i := 0; i < stacks; i++ {
		k1 := uint32(i) * row
		k2 := k1 + row
		for j := 0; j < sectors; j, k1, k2 = j+1, k1+1, k2+1 {
			if i != 0 {
				g.Indices = append(g.Indices, k1, k1+1, k2)
			}
			if i != stacks-1 {
				g.Indices = append(g.Indices, k1+1, k2+1, k2)
			}
		}
	}
	return g
}
