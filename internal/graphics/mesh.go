package graphics

import (
	"fmt"

	"shadowview/pkg/meshload"
)

// Interleave packs geometry into LayoutPositionNormal vertex data
func Interleave(g *meshload.Geometry) (MeshData, error) {
	if len(g.Positions) == 0 {
		return MeshData{}, fmt.Errorf("geometry has no vertices")
	}
	if len(g.Normals) != len(g.Positions) {
		return MeshData{}, fmt.Errorf("geometry has %d normals for %d positions", len(g.Normals), len(g.Positions))
	}
	data := MeshData{
		Layout:   LayoutPositionNormal,
		Vertices: make([]float32, 0, len(g.Positions)*6),
		Indices:  g.Indices,
	}
	for i, p := range g.Positions {
		n := g.Normals[i]
		data.Vertices = append(data.Vertices, p[0], p[1], p[2], n[0], n[1], n[2])
	}
	return data, nil
}

// UploadGeometry interleaves g and uploads it through the context's backend
func UploadGeometry(ctx *Context, g *meshload.Geometry) (*Mesh, error) {
	data, err := Interleave(g)
	if err != nil {
		return nil, err
	}
	m, err := ctx.Backend().UploadMesh(data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload mesh: %w", err)
	}
	return &m, nil
}
