package meshload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ParseOBJ reads the geometry subset of a Wavefront OBJ stream: v, vn and f
// records. Polygons are fan-triangulated, negative indices are relative and
// faces without normals get the flat face normal. Everything else is ignored.
func ParseOBJ(r io.Reader) (*Geometry, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		g         = &Geometry{}
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if v.Len() > 0 {
				v = v.Normalize()
			}
			normals = append(normals, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, f := range fields[1:] {
				c, err := parseCorner(f, len(positions), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				corners = append(corners, c)
			}
			for i := 1; i+1 < len(corners); i++ {
				appendTriangle(g, positions, normals, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(g.Positions) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	return g, nil
}

type objCorner struct {
	pos    int
	normal int // -1 when absent
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseCorner handles v, v/vt, v//vn and v/vt/vn
func parseCorner(s string, nPos, nNorm int) (objCorner, error) {
	parts := strings.Split(s, "/")
	pos, err := resolveIndex(parts[0], nPos)
	if err != nil {
		return objCorner{}, err
	}
	c := objCorner{pos: pos, normal: -1}
	if len(parts) == 3 && parts[2] != "" {
		n, err := resolveIndex(parts[2], nNorm)
		if err != nil {
			return objCorner{}, err
		}
		c.normal = n
	}
	return c, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("index 0 is invalid")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range", s)
	}
	return i, nil
}

func appendTriangle(g *Geometry, positions, normals []mgl32.Vec3, a, b, c objCorner) {
	pa, pb, pc := positions[a.pos], positions[b.pos], positions[c.pos]
	flat := pb.Sub(pa).Cross(pc.Sub(pa))
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	for _, corner := range [3]objCorner{a, b, c} {
		g.Positions = append(g.Positions, positions[corner.pos])
		if corner.normal >= 0 {
			g.Normals = append(g.Normals, normals[corner.normal])
		} else {
			g.Normals = append(g.Normals, flat)
		}
	}
}
