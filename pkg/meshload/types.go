package meshload

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is triangle-list mesh data. When Indices is empty every three
// consecutive vertices form a triangle.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// TriangleCount returns the number of triangles described by g
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Bounds returns the axis-aligned box around every position
func (g *Geometry) Bounds() (min, max mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range g.Positions {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// Material is the default surface data that comes with an asset
type Material struct {
	Color mgl32.Vec3
}

// Asset is what the loader hands to the scene: geometry plus its default material
type Asset struct {
	Name     string
	Geometry Geometry
	Material Material
}

// ElementModel is a JSON model built from axis-aligned boxes in a 16-unit
// grid, optionally inheriting elements and color from a parent model.
type ElementModel struct {
	Parent   string      `json:"parent"`
	Color    *[3]float32 `json:"color"`
	Elements []Element   `json:"elements"`
}

type Element struct {
	From     [3]float32 `json:"from"`
	To       [3]float32 `json:"to"`
	Rotation *Rotation  `json:"rotation"`
}

type Rotation struct {
	Origin [3]float32 `json:"origin"`
	Angle  float32    `json:"angle"`
	Axis   string     `json:"axis"`
}
