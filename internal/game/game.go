package game

import (
	"errors"
	"fmt"
	"time"

	"shadowview/internal/config"
	"shadowview/internal/input"
	"shadowview/internal/profiling"

	"github.com/rs/zerolog/log"
)

var (
	// ErrFrameAborted wraps a panic raised by a hook during Run
	ErrFrameAborted = errors.New("frame aborted")
	// ErrNotOpen is returned by Run before a successful Open
	ErrNotOpen = errors.New("game is not open")
)

// Window is the platform window the driver runs against
type Window interface {
	ShouldClose() bool
	SwapBuffers()
	PollEvents()
	Size() (width, height int)
	SetCursorDisabled(disabled bool)
	Destroy()
}

// Frame identifies one loop iteration
type Frame struct {
	Index uint64
	Delta float32 // seconds since the previous frame
}

// Handler receives the driver's lifecycle hooks. Per-frame hooks run in the
// order new-frame, update, render, finish. Event hooks run only between
// frames.
type Handler interface {
	OnWindowOpen(w Window) error
	OnWindowClose()

	OnNewFrame(f Frame)
	OnRealtimeUpdate(f Frame)
	OnRealtimeRender(f Frame)
	OnFinishFrame(f Frame)

	OnFileDrop(path string)
	OnWindowMove(x, y int)
	OnWindowFocus(focused bool)
	OnResize(width, height int)
}

// NopHandler implements every hook as a no-op; embed it to override a few
type NopHandler struct{}

func (NopHandler) OnWindowOpen(Window) error { return nil }
func (NopHandler) OnWindowClose()            {}
func (NopHandler) OnNewFrame(Frame)          {}
func (NopHandler) OnRealtimeUpdate(Frame)    {}
func (NopHandler) OnRealtimeRender(Frame)    {}
func (NopHandler) OnFinishFrame(Frame)       {}
func (NopHandler) OnFileDrop(string)         {}
func (NopHandler) OnWindowMove(int, int)     {}
func (NopHandler) OnWindowFocus(bool)        {}
func (NopHandler) OnResize(int, int)         {}

// Game drives a Handler from a Window until the window asks to close
type Game struct {
	window  Window
	handler Handler
	input   *input.InputManager
	events  *EventQueue

	clock   *FrameClock
	limiter *FPSLimiter

	// SlowFrame is the budget above which a frame is logged with its
	// slowest tracked sections; zero disables the check
	SlowFrame time.Duration

	frame     uint64
	attempted bool
	open      bool
	closed    bool
}

// New wires a game. events may be nil when the platform pushes no events.
func New(window Window, handler Handler, in *input.InputManager, events *EventQueue) *Game {
	if events == nil {
		events = NewEventQueue()
	}
	return &Game{
		window:  window,
		handler: handler,
		input:   in,
		events:  events,
		clock:   NewFrameClock(),
		limiter: NewFPSLimiter(),
	}
}

// SetLimiter replaces the frame limiter; nil runs uncapped
func (g *Game) SetLimiter(l *FPSLimiter) {
	g.limiter = l
}

// SetClock replaces the frame clock
func (g *Game) SetClock(c *FrameClock) {
	g.clock = c
}

// Events returns the queue platform callbacks push into
func (g *Game) Events() *EventQueue {
	return g.events
}

// Open runs the window-open hook once. A failed open leaves the game unable
// to Run; Close must still be called.
func (g *Game) Open() error {
	if g.attempted {
		return errors.New("game already opened")
	}
	g.attempted = true

	stop := profiling.Track("game.Open")
	err := g.handler.OnWindowOpen(g.window)
	stop()
	if err != nil {
		return fmt.Errorf("window open: %w", err)
	}
	g.open = true
	g.clock.Reset()
	return nil
}

// Run loops until the window should close. The close request is observed
// only at frame boundaries, so the current frame always completes.
func (g *Game) Run() (err error) {
	if !g.open || g.closed {
		return ErrNotOpen
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFrameAborted, r)
			log.Error().Uint64("frame", g.frame).Interface("panic", r).Msg("frame aborted")
		}
	}()

	for !g.window.ShouldClose() {
		g.tick()
	}
	return nil
}

func (g *Game) tick() {
	profiling.ResetFrame()
	start := time.Now()

	f := Frame{Index: g.frame, Delta: g.clock.Tick()}
	g.frame++

	track("frame.New", func() { g.handler.OnNewFrame(f) })
	track("frame.Update", func() { g.handler.OnRealtimeUpdate(f) })
	track("frame.Render", func() { g.handler.OnRealtimeRender(f) })
	track("frame.Finish", func() { g.handler.OnFinishFrame(f) })

	g.window.SwapBuffers()

	elapsed := time.Since(start)
	if g.SlowFrame > 0 && elapsed > g.SlowFrame {
		log.Debug().Dur("elapsed", elapsed).Str("top", profiling.TopN(5)).Msg("slow frame")
	}
	if config.GetProfilingReport() && f.Index%120 == 0 {
		log.Info().
			Str("frame", profiling.FormatMs(elapsed)).
			Str("render", profiling.FormatMs(profiling.SumWithPrefix("frame.Render"))).
			Str("top", profiling.TopN(5)).
			Msg("profile")
	}

	// Clear "JustPressed" flags before the next batch of events arrives
	if g.input != nil {
		g.input.PostUpdate()
	}
	g.window.PollEvents()
	g.events.Drain(g.dispatch)

	if g.limiter != nil {
		g.limiter.Wait()
	}
}

func (g *Game) dispatch(e Event) {
	switch e.Kind {
	case EventFileDrop:
		g.handler.OnFileDrop(e.Path)
	case EventWindowMove:
		g.handler.OnWindowMove(e.X, e.Y)
	case EventWindowFocus:
		g.handler.OnWindowFocus(e.Focused)
	case EventResize:
		g.handler.OnResize(e.X, e.Y)
	}
}

// Close runs the window-close hook and destroys the window. Only the first
// call has any effect.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.attempted {
		g.handler.OnWindowClose()
	}
	g.window.Destroy()
}

// Play opens, runs and always closes g
func Play(g *Game) error {
	defer g.Close()
	if err := g.Open(); err != nil {
		return err
	}
	return g.Run()
}

func track(name string, fn func()) {
	defer profiling.Track(name)()
	fn()
}
