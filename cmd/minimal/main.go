package main

import (
	"flag"
	"os"
	"runtime"
	"time"

	"shadowview/internal/config"
	"shadowview/internal/game"
	"shadowview/internal/graphics/glbackend"
	"shadowview/internal/input"
	"shadowview/internal/platform"
	"shadowview/internal/scene"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	windowWidth  = 800
	windowHeight = 600
)

func init() {
	runtime.LockOSThread()
}

// fpsCounter logs the frame rate once per second
type fpsCounter struct {
	*scene.Scene
	frames int
	last   time.Time
}

func (h *fpsCounter) OnFinishFrame(f game.Frame) {
	h.Scene.OnFinishFrame(f)
	h.frames++

	now := time.Now()
	if h.last.IsZero() {
		h.last = now
		return
	}
	if elapsed := now.Sub(h.last); elapsed >= time.Second {
		log.Info().Int("fps", int(float64(h.frames)/elapsed.Seconds()+0.5)).Msg("frame rate")
		h.frames = 0
		h.last = now
	}
}

func main() {
	assetsDir := flag.String("assets", "assets", "assets directory")
	uncapped := flag.Bool("uncapped", true, "disable the FPS limiter")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if err := glfw.Init(); err != nil {
		log.Fatal().Err(err).Msg("init glfw")
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.Resizable, glfw.False)

	cfg := config.Default()
	cfg.AssetsDir = *assetsDir
	cfg.GUI.Enabled = false
	cfg.Scene.Model = "primitive:cube"
	cfg.Window = config.Window{Width: windowWidth, Height: windowHeight, Title: "shadowview - minimal"}
	if *uncapped {
		cfg.FPSLimit = 0
	}
	config.SetFPSLimit(cfg.FPSLimit)

	im := input.NewInputManager()
	events := game.NewEventQueue()
	window, err := platform.NewWindow(platform.Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
	}, im, events)
	if err != nil {
		log.Fatal().Err(err).Msg("create window")
	}
	if err := glbackend.Init(); err != nil {
		window.Destroy()
		log.Fatal().Err(err).Msg("init OpenGL")
	}

	s := scene.New(cfg, glbackend.New(), im, os.DirFS(cfg.AssetsDir))
	g := game.New(window, &fpsCounter{Scene: s}, im, events)
	if err := game.Play(g); err != nil {
		log.Error().Err(err).Msg("viewer stopped")
	}
}
