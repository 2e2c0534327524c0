package graphics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidScale is returned for scale components that are zero, NaN or infinite
var ErrInvalidScale = errors.New("scale components must be finite and non-zero")

// Transform places an entity in the world
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
}

// SetPosition moves the entity
func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.Position = p
}

// Scale returns the per-axis scale
func (t *Transform) Scale() mgl32.Vec3 {
	return t.scale
}

// SetScale replaces the scale. An invalid scale is rejected and the previous
// one kept.
func (t *Transform) SetScale(s mgl32.Vec3) error {
	for i, c := range s {
		f := float64(c)
		if c == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: axis %d is %v", ErrInvalidScale, i, c)
		}
	}
	t.scale = s
	return nil
}

// SetUniformScale sets the same scale on every axis
func (t *Transform) SetUniformScale(s float32) error {
	return t.SetScale(mgl32.Vec3{s, s, s})
}

// Matrix returns the object-to-world matrix, T * R * S
func (t *Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Normalize().Mat4()
	scale := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}
