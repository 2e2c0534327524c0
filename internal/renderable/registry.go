package renderable

import (
	"math"

	"shadowview/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// Slot is a stable handle into a Registry. Slots are never reused, so a
// handle held across a removal can't alias a newer entry.
type Slot int

// Registry owns the flat list of renderables in draw order
type Registry struct {
	items []Renderable
	live  int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends r and returns its slot
func (r *Registry) Add(item Renderable) Slot {
	r.items = append(r.items, item)
	r.live++
	return Slot(len(r.items) - 1)
}

// Get returns the renderable in slot s, or nil if removed or out of range
func (r *Registry) Get(s Slot) Renderable {
	if s < 0 || int(s) >= len(r.items) {
		return nil
	}
	return r.items[s]
}

// Remove empties a slot; later slots keep their handles
func (r *Registry) Remove(s Slot) Renderable {
	item := r.Get(s)
	if item == nil {
		return nil
	}
	r.items[s] = nil
	r.live--
	return item
}

func (r *Registry) Len() int {
	return r.live
}

// Each visits live renderables in insertion order
func (r *Registry) Each(fn func(Slot, Renderable)) {
	for i, item := range r.items {
		if item != nil {
			fn(Slot(i), item)
		}
	}
}

// DrawAll draws every live renderable with shader
func (r *Registry) DrawAll(shader *graphics.Shader) {
	for _, item := range r.items {
		if item != nil {
			item.Draw(shader)
		}
	}
}

// Bounds unions the world bounds of every Bounded renderable. ok is false
// when nothing reports bounds.
func (r *Registry) Bounds() (min, max mgl32.Vec3, ok bool) {
	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, item := range r.items {
		b, isBounded := item.(Bounded)
		if !isBounded {
			continue
		}
		lo, hi := b.WorldBounds()
		for a := 0; a < 3; a++ {
			if lo[a] < min[a] {
				min[a] = lo[a]
			}
			if hi[a] > max[a] {
				max[a] = hi[a]
			}
		}
		ok = true
	}
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return min, max, true
}
