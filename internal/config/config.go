package config

import "sync"

// RenderSettings holds the render toggles that can change while the viewer runs
type RenderSettings struct {
	mu        sync.RWMutex
	shadows   bool
	profiling bool
	fpsLimit  int
}

var globalRenderSettings = &RenderSettings{
	shadows:  true,
	fpsLimit: 120,
}

// GetShadowsEnabled reports whether the shadow pass should run
func GetShadowsEnabled() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.shadows
}

// SetShadowsEnabled enables or disables the shadow pass
func SetShadowsEnabled(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.shadows = enabled
}

// ToggleShadows flips the shadow pass and returns the new state
func ToggleShadows() bool {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.shadows = !globalRenderSettings.shadows
	return globalRenderSettings.shadows
}

// GetProfilingReport reports whether per-frame timings are logged
func GetProfilingReport() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.profiling
}

// ToggleProfilingReport flips per-frame timing reports and returns the new state
func ToggleProfilingReport() bool {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.profiling = !globalRenderSettings.profiling
	return globalRenderSettings.profiling
}

// GetFPSLimit returns the frame cap; zero or less means uncapped
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}

	globalRenderSettings.fpsLimit = limit
}
