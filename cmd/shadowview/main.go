package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"shadowview/internal/config"
	"shadowview/internal/game"
	"shadowview/internal/graphics/glbackend"
	"shadowview/internal/input"
	"shadowview/internal/platform"
	"shadowview/internal/scene"
	"shadowview/pkg/meshload"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	defer closer.Close()

	configPath := flag.String("config", config.DefaultPath, "YAML config file")
	assetsDir := flag.String("assets", "", "assets directory (overrides config)")
	model := flag.String("model", "", "model file or primitive:<cube|plane|sphere> (overrides config)")
	debug := flag.Bool("debug", false, "panic on render contract violations")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Error().Err(err).Str("path", *configPath).Msg("invalid config")
		closer.Exit(1)
	}
	if *assetsDir != "" {
		cfg.AssetsDir = *assetsDir
	}
	if *model != "" {
		cfg.Scene.Model = modelPath(*model)
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid config")
		closer.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("viewer stopped")
		closer.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && path == config.DefaultPath {
		log.Debug().Str("path", path).Msg("no config file, using defaults")
		return config.Default(), nil
	}
	return cfg, err
}

// modelPath makes a model given on the command line absolute so it resolves
// against the working directory instead of the assets directory
func modelPath(m string) string {
	if strings.HasPrefix(m, meshload.PrimitivePrefix) {
		return m
	}
	if _, err := os.Stat(m); err != nil {
		return m
	}
	if abs, err := filepath.Abs(m); err == nil {
		return abs
	}
	return m
}

// interruptible lets a signal end the loop at a frame boundary
type interruptible struct {
	*platform.Window
	quit *atomic.Bool
}

func (w interruptible) ShouldClose() bool {
	return w.quit.Load() || w.Window.ShouldClose()
}

func run(cfg *config.Config) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	var quit atomic.Bool
	done := make(chan struct{})
	closer.Bind(func() {
		quit.Store(true)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			log.Warn().Msg("render loop did not stop in time")
		}
	})
	defer close(done)

	im := input.NewInputManager()
	events := game.NewEventQueue()
	window, err := platform.NewWindow(platform.Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
		VSync:  cfg.Window.VSync,
	}, im, events)
	if err != nil {
		return err
	}

	if err := glbackend.Init(); err != nil {
		window.Destroy()
		return err
	}
	log.Info().Str("gl", glbackend.Version()).Msg("OpenGL initialized")

	config.SetFPSLimit(cfg.FPSLimit)

	s := scene.New(cfg, glbackend.New(), im, os.DirFS(cfg.AssetsDir))
	g := game.New(interruptible{Window: window, quit: &quit}, s, im, events)
	g.SlowFrame = time.Duration(cfg.SlowFrameMS) * time.Millisecond

	return game.Play(g)
}
