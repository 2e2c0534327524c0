package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch is the gimbal-safe pitch bound in degrees
const MaxPitch = 89.0

// CameraMovement selects the axis ProcessKeyboard moves along
type CameraMovement int

const (
	Forward CameraMovement = iota
	Backward
	Left
	Right
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera is a free-flying perspective camera driven by yaw and pitch
type Camera struct {
	Position    mgl32.Vec3
	FOV         float32 // vertical, degrees
	NearPlane   float32
	FarPlane    float32
	Sensitivity float32

	width  float32
	height float32

	yaw   float32 // degrees
	pitch float32 // degrees

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3
}

// NewCamera creates a camera for a viewport, looking down -Z
func NewCamera(width, height int, position mgl32.Vec3) *Camera {
	c := &Camera{
		Position:    position,
		FOV:         45.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		Sensitivity: 0.1,
		yaw:         -90.0,
	}
	c.SetViewport(width, height)
	c.updateVectors()
	return c
}

// SetViewport updates the aspect ratio source. Non-positive sizes (a
// minimized window) are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width = float32(width)
	c.height = float32(height)
}

// AspectRatio returns width / height of the viewport
func (c *Camera) AspectRatio() float32 {
	return c.width / c.height
}

func (c *Camera) Yaw() float32   { return c.yaw }
func (c *Camera) Pitch() float32 { return c.pitch }

func (c *Camera) Front() mgl32.Vec3 { return c.front }
func (c *Camera) Right() mgl32.Vec3 { return c.right }
func (c *Camera) Up() mgl32.Vec3    { return c.up }

// SetOrientation sets yaw and pitch directly; pitch is clamped
func (c *Camera) SetOrientation(yaw, pitch float32) {
	c.yaw = yaw
	c.pitch = clampPitch(pitch)
	c.updateVectors()
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio(), c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
}

// ProcessMouseMovement turns the camera by a relative cursor motion in
// screen pixels. Screen Y grows downwards, so it is subtracted from pitch.
func (c *Camera) ProcessMouseMovement(dx, dy float32) {
	if dx != dx || dy != dy {
		return
	}
	c.yaw += dx * c.Sensitivity
	c.pitch = clampPitch(c.pitch - dy*c.Sensitivity)
	c.yaw = float32(math.Mod(float64(c.yaw), 360))
	c.updateVectors()
}

// ProcessKeyboard moves the camera by speed*deltaTime along the chosen axis
func (c *Camera) ProcessKeyboard(direction CameraMovement, deltaTime, speed float32) {
	if deltaTime <= 0 {
		return
	}
	velocity := speed * deltaTime
	switch direction {
	case Forward:
		c.Position = c.Position.Add(c.front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.right.Mul(velocity))
	}
}

func (c *Camera) updateVectors() {
	y := float64(mgl32.DegToRad(c.yaw))
	p := float64(mgl32.DegToRad(c.pitch))
	front := mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}
	c.front = front.Normalize()
	c.right = c.front.Cross(worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

func clampPitch(p float32) float32 {
	if p > MaxPitch {
		return MaxPitch
	}
	if p < -MaxPitch {
		return -MaxPitch
	}
	if p != p { // NaN input must not poison the vectors
		return 0
	}
	return p
}
