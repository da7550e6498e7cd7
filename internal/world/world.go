// Package world is an in-memory host for the snake engine: named entities on
// a tile grid, terrain collision flags and a local observer.
package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"snake-arena/internal/game"
)

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrDuplicate     = errors.New("entity already exists")
	ErrEmptyName     = errors.New("entity name is empty")
)

// Entity is a named actor. Handles stay valid after removal; a removed entity
// simply stops moving.
type Entity struct {
	mu sync.RWMutex

	name      string
	loc       game.WorldPoint
	text      string
	animation int
	removed   bool
}

func (e *Entity) Name() string { return e.name }

func (e *Entity) Location() game.WorldPoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loc
}

func (e *Entity) SetOverheadText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

func (e *Entity) PlayAnimation(id int) {
	e.mu.Lock()
	e.animation = id
	e.mu.Unlock()
}

// OverheadText returns the last text shown above the entity
func (e *Entity) OverheadText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// Animation returns the last animation played, or -1
func (e *Entity) Animation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.animation
}

// Removed reports whether the entity left the world
func (e *Entity) Removed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.removed
}

func (e *Entity) moveTo(p game.WorldPoint) {
	e.mu.Lock()
	if !e.removed {
		e.loc = p
	}
	e.mu.Unlock()
}

// World implements game.World
type World struct {
	mu sync.RWMutex

	entities map[string]*Entity
	local    string
	flags    map[game.WorldPoint]int
}

// New creates an empty world
func New() *World {
	return &World{
		entities: make(map[string]*Entity),
		flags:    make(map[game.WorldPoint]int),
	}
}

// Spawn adds a named entity at a point
func (w *World) Spawn(name string, at game.WorldPoint) (*Entity, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.entities[name]; ok {
		return nil, fmt.Errorf("spawn %q: %w", name, ErrDuplicate)
	}
	e := &Entity{name: name, loc: at, animation: -1}
	w.entities[name] = e
	return e, nil
}

// Move teleports an entity to a point
func (w *World) Move(name string, to game.WorldPoint) error {
	e, ok := w.Entity(name)
	if !ok {
		return fmt.Errorf("move %q: %w", name, ErrUnknownEntity)
	}
	e.moveTo(to)
	return nil
}

// Step moves an entity by a tile offset on its plane
func (w *World) Step(name string, dx, dy int) error {
	e, ok := w.Entity(name)
	if !ok {
		return fmt.Errorf("step %q: %w", name, ErrUnknownEntity)
	}
	e.moveTo(e.Location().Dx(dx).Dy(dy))
	return nil
}

// Remove takes an entity out of the world. Existing handles keep their last state.
func (w *World) Remove(name string) error {
	w.mu.Lock()
	e, ok := w.entities[name]
	delete(w.entities, name)
	w.mu.Unlock()

	if !ok {
		return fmt.Errorf("remove %q: %w", name, ErrUnknownEntity)
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	return nil
}

// SetLocal names the observing player. The entity does not have to exist yet.
func (w *World) SetLocal(name string) {
	w.mu.Lock()
	w.local = name
	w.mu.Unlock()
}

// LocalName returns the configured observer name
func (w *World) LocalName() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.local
}

// SetFlags sets terrain collision flags for a tile; 0 means walkable
func (w *World) SetFlags(p game.WorldPoint, flags int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if flags == 0 {
		delete(w.flags, p)
		return
	}
	w.flags[p] = flags
}

// Entity looks up a present entity
func (w *World) Entity(name string) (*Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities[name]
	return e, ok
}

// Names returns present entity names in sorted order
func (w *World) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.entities))
	for name := range w.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *World) TileFlags(p game.WorldPoint) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.flags[p]
}

func (w *World) LocalPlayer() game.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if e, ok := w.entities[w.local]; ok {
		return e
	}
	return nil
}

func (w *World) Players() []game.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]game.Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	return out
}
