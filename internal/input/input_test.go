package input

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestKeyEdges(t *testing.T) {
	im := NewInputManager()

	im.HandleKeyEvent(KeyW, true)
	assert.True(t, im.IsActive(ActionMoveForward))
	assert.True(t, im.JustPressed(ActionMoveForward))

	im.PostUpdate()
	assert.True(t, im.IsActive(ActionMoveForward))
	assert.False(t, im.JustPressed(ActionMoveForward))

	// repeats arrive as presses and must not stack
	im.HandleKeyEvent(KeyW, true)
	assert.False(t, im.JustPressed(ActionMoveForward))

	im.HandleKeyEvent(KeyW, false)
	assert.False(t, im.IsActive(ActionMoveForward))
	assert.True(t, im.JustReleased(ActionMoveForward))
}

func TestLookSharedByKeyAndMouse(t *testing.T) {
	im := NewInputManager()

	im.HandleKeyEvent(KeyE, true)
	im.HandleMouseButtonEvent(MouseButtonMiddle, true)
	im.PostUpdate()

	im.HandleKeyEvent(KeyE, false)
	assert.True(t, im.IsActive(ActionLook), "middle mouse still holds look")
	assert.False(t, im.JustReleased(ActionLook))

	im.HandleMouseButtonEvent(MouseButtonMiddle, false)
	assert.False(t, im.IsActive(ActionLook))
	assert.True(t, im.JustReleased(ActionLook))
}

func TestUnboundKeyIgnored(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(Key(999), true)
	for a := Action(0); a < ActionCount; a++ {
		assert.False(t, im.IsActive(a))
	}
	assert.False(t, im.IsActive(ActionCount))
}

func TestMouseDelta(t *testing.T) {
	im := NewInputManager()

	im.HandleCursorPos(100, 100)
	assert.Equal(t, mgl32.Vec2{}, im.MouseDelta(), "first sample only sets the reference")

	im.HandleCursorPos(110, 95)
	im.HandleCursorPos(115, 90)
	assert.Equal(t, mgl32.Vec2{15, -10}, im.MouseDelta())

	im.PostUpdate()
	assert.Equal(t, mgl32.Vec2{}, im.MouseDelta())

	im.ResetMouse()
	im.HandleCursorPos(500, 500)
	assert.Equal(t, mgl32.Vec2{}, im.MouseDelta())
}
