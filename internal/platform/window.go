// Package platform binds the viewer to a GLFW window.
package platform

import (
	"fmt"

	"shadowview/internal/game"
	"shadowview/internal/input"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

// Window is a GLFW window with an OpenGL 4.1 core context. Input goes
// straight to the input manager; everything else is queued for the game
// loop to dispatch between frames.
type Window struct {
	win    *glfw.Window
	input  *input.InputManager
	events *game.EventQueue
}

var _ game.Window = (*Window)(nil)

// NewWindow creates the window and makes its context current. glfw.Init must
// have been called on the main thread.
func NewWindow(opts Options, im *input.InputManager, events *game.EventQueue) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	// Without vsync the FPS limiter paces frames
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)

	w := &Window{win: win, input: im, events: events}
	w.setupCallbacks()
	return w, nil
}

func (w *Window) setupCallbacks() {
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		w.input.HandleKeyEvent(input.Key(key), action == glfw.Press)
	})

	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		w.input.HandleMouseButtonEvent(input.MouseButton(button), action == glfw.Press)
	})

	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.input.HandleCursorPos(x, y)
	})

	w.win.SetDropCallback(func(_ *glfw.Window, names []string) {
		for _, name := range names {
			w.events.Push(game.Event{Kind: game.EventFileDrop, Path: name})
		}
	})

	w.win.SetPosCallback(func(_ *glfw.Window, x, y int) {
		w.events.Push(game.Event{Kind: game.EventWindowMove, X: x, Y: y})
	})

	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.events.Push(game.Event{Kind: game.EventWindowFocus, Focused: focused})
	})

	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.Push(game.Event{Kind: game.EventResize, X: width, Y: height})
	})
}

// ShouldClose reports a close request from the window manager or the quit key
func (w *Window) ShouldClose() bool {
	if w.input.JustPressed(input.ActionQuit) {
		w.win.SetShouldClose(true)
	}
	return w.win.ShouldClose()
}

func (w *Window) SwapBuffers() {
	w.win.SwapBuffers()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Size returns the framebuffer size in pixels, which differs from the window
// size on HiDPI displays
func (w *Window) Size() (int, int) {
	return w.win.GetFramebufferSize()
}

// SetCursorDisabled hides and captures the cursor for mouse look
func (w *Window) SetCursorDisabled(disabled bool) {
	mode := glfw.CursorNormal
	if disabled {
		mode = glfw.CursorDisabled
	}
	w.win.SetInputMode(glfw.CursorMode, mode)
	if disabled && glfw.RawMouseMotionSupported() {
		w.win.SetInputMode(glfw.RawMouseMotion, glfw.True)
	}
}

func (w *Window) Destroy() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	log.Debug().Msg("window destroyed")
}
