package input

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Action represents a logical viewer action, not a physical key
type Action int

// Action constants using iota
const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionFast
	ActionLook
	ActionToggleShadows
	ActionToggleProfiling
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

// Key is a physical key code. Values match the GLFW key tokens so the
// platform layer can convert with a plain cast.
type Key int

const (
	KeyA          Key = 65
	KeyD          Key = 68
	KeyE          Key = 69
	KeyF          Key = 70
	KeyP          Key = 80
	KeyS          Key = 83
	KeyW          Key = 87
	KeyEscape     Key = 256
	KeyLeftShift  Key = 340
	KeyRightShift Key = 344
)

// MouseButton is a physical mouse button; values match GLFW.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// InputManager tracks keyboard and mouse state, maps physical keys/buttons to
// logical actions and accumulates the relative cursor motion of a frame
type InputManager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[Key][]Action

	// Mouse button to action mapping
	mouseButtonToActions map[MouseButton][]Action

	// Number of bound inputs currently held per action, so two keys bound to
	// the same action do not release each other
	held [ActionCount]int

	keysDown    map[Key]bool
	buttonsDown map[MouseButton]bool

	// Just pressed/released flags (reset each frame)
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool

	firstMouse bool
	lastX      float64
	lastY      float64
	delta      mgl32.Vec2
}

// NewInputManager creates a new InputManager with default key bindings
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions:         make(map[Key][]Action),
		mouseButtonToActions: make(map[MouseButton][]Action),
		keysDown:             make(map[Key]bool),
		buttonsDown:          make(map[MouseButton]bool),
		firstMouse:           true,
	}

	im.BindKey(KeyW, ActionMoveForward)
	im.BindKey(KeyS, ActionMoveBackward)
	im.BindKey(KeyA, ActionMoveLeft)
	im.BindKey(KeyD, ActionMoveRight)
	im.BindKey(KeyLeftShift, ActionFast)
	im.BindKey(KeyE, ActionLook)
	im.BindKey(KeyF, ActionToggleShadows)
	im.BindKey(KeyP, ActionToggleProfiling)
	im.BindKey(KeyEscape, ActionQuit)

	im.BindMouseButton(MouseButtonMiddle, ActionLook)

	return im
}

// BindKey binds a physical key to a logical action
func (im *InputManager) BindKey(key Key, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (im *InputManager) UnbindKey(key Key) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.keyToActions, key)
}

// BindMouseButton binds a mouse button to a logical action
func (im *InputManager) BindMouseButton(button MouseButton, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.mouseButtonToActions[button] = append(im.mouseButtonToActions[button], action)
}

// HandleKeyEvent records a key transition. Repeats should be reported as pressed.
func (im *InputManager) HandleKeyEvent(key Key, pressed bool) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.keysDown[key] == pressed {
		return
	}
	im.keysDown[key] = pressed
	im.apply(im.keyToActions[key], pressed)
}

// HandleMouseButtonEvent records a mouse button transition
func (im *InputManager) HandleMouseButtonEvent(button MouseButton, pressed bool) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.buttonsDown[button] == pressed {
		return
	}
	im.buttonsDown[button] = pressed
	im.apply(im.mouseButtonToActions[button], pressed)
}

// apply must be called with mu held
func (im *InputManager) apply(actions []Action, pressed bool) {
	for _, act := range actions {
		if act < 0 || act >= ActionCount {
			continue
		}
		wasActive := im.held[act] > 0
		if pressed {
			im.held[act]++
		} else if im.held[act] > 0 {
			im.held[act]--
		}
		isActive := im.held[act] > 0
		if isActive && !wasActive {
			im.justPressed[act] = true
		}
		if !isActive && wasActive {
			im.justReleased[act] = true
		}
	}
}

// HandleCursorPos accumulates relative motion from absolute cursor positions.
// The first sample after ResetMouse only establishes the reference point.
func (im *InputManager) HandleCursorPos(x, y float64) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if im.firstMouse {
		im.lastX, im.lastY = x, y
		im.firstMouse = false
		return
	}
	im.delta = im.delta.Add(mgl32.Vec2{float32(x - im.lastX), float32(y - im.lastY)})
	im.lastX, im.lastY = x, y
}

// ResetMouse drops pending motion and re-arms the reference point; call it
// whenever the cursor mode changes so the warp does not turn into a jump.
func (im *InputManager) ResetMouse() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.firstMouse = true
	im.delta = mgl32.Vec2{}
}

// MouseDelta returns the cursor motion in screen pixels accumulated since the
// last PostUpdate. Positive Y points down the screen.
func (im *InputManager) MouseDelta() mgl32.Vec2 {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.delta
}

// PostUpdate must be called at the end of each frame to clear edge flags and
// the accumulated mouse delta
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	for i := Action(0); i < ActionCount; i++ {
		im.justPressed[i] = false
		im.justReleased[i] = false
	}
	im.delta = mgl32.Vec2{}
}

// IsActive returns true if the action is currently being held down
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.held[action] > 0
}

// JustPressed returns true only if the action was pressed in the current frame
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}

// JustReleased returns true only if the action was released in the current frame
func (im *InputManager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justReleased[action]
}
