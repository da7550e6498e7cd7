package session

import "snake-arena/internal/game"

// Start initializes a game from the current configuration
type Start struct {
	Reply chan<- error
}

// Reset drops the current game
type Reset struct {
	Reply chan<- error
}

// Tick advances the engine once; used when the session has no ticker
type Tick struct {
	Reply chan<- error
}

// Chat delivers a sanitized public chat line
type Chat struct {
	Username string
	Text     string
}

// Spawn adds an entity to the host world
type Spawn struct {
	Name  string
	At    game.WorldPoint
	Reply chan<- error
}

// Despawn removes an entity from the host world
type Despawn struct {
	Name  string
	Reply chan<- error
}

// Move teleports an entity
type Move struct {
	Name  string
	To    game.WorldPoint
	Reply chan<- error
}

// Step moves an entity by a tile offset
type Step struct {
	Name   string
	Dx, Dy int
	Reply  chan<- error
}

// SetTerrain changes the collision flags of one tile
type SetTerrain struct {
	Point game.WorldPoint
	Flags int
	Reply chan<- error
}

// ConfigChanged is posted by the config store; it resets the game
type ConfigChanged struct {
	Key string
}
