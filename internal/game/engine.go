package game

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ReadyMessage is the chat token that marks a participant ready in the lobby
const ReadyMessage = "r"

const (
	ReadyCountdownTicks = 5
	MaxRandomPointTries = 100
)

// Phase is the engine's state machine position
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaitingToStart
	PhaseReady
	PhasePlaying
	PhaseGameOver
)

// String returns the phase name used in logs and JSON
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaitingToStart:
		return "waiting_to_start"
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidSize    = errors.New("game size must be at least 1")
	ErrNoLocalPlayer  = errors.New("no local player in the world")
	ErrNoParticipants = errors.New("no configured player is present in the world")
)

// Participant colours in assignment order; the local player always gets SelfColor
var (
	PlayerColors = []color.RGBA{
		{R: 0, G: 0, B: 255, A: 255},   // blue
		{R: 255, G: 255, B: 0, A: 255}, // yellow
		{R: 255, G: 0, B: 255, A: 255}, // magenta
		{R: 0, G: 255, B: 255, A: 255}, // cyan
		{R: 255, G: 0, B: 0, A: 255},   // red
	}
	SelfColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// World is the host the engine plays inside
type World interface {
	TerrainSource
	// LocalPlayer returns the observing player, or nil when logged out
	LocalPlayer() Entity
	// Players returns every entity currently present
	Players() []Entity
}

// Settings configures one game instance
type Settings struct {
	PlayerNames   []string
	GameSize      int // cells per side of the interior
	AllowRun      bool
	Multiplayer   bool
	SameFoodSpawn bool
	Seed          int64
}

// Hooks are invoked synchronously from Tick and lifecycle calls
type Hooks struct {
	OnPhaseChange func(from, to Phase)
	OnDeath       func(p *Participant, cause DeathCause)
	OnFoodEaten   func(p *Participant)
}

// Engine runs the Snake state machine.
// It is not safe for concurrent use: one goroutine owns it and every
// mutation (Initialize, Reset, Tick, HandleReadySignal) happens there.
type Engine struct {
	world World
	hooks Hooks

	phase        Phase
	participants []*Participant

	gameID        string
	corner        WorldPoint
	gameSize      int
	walkable      [][]bool
	allowRun      bool
	sameFoodSpawn bool

	readyCount        int
	countdown         int
	deadCount         int
	gameOverDeadCount int
	tickCount         uint64

	rng *rand.Rand
}

// NewEngine creates an idle engine bound to a host world
func NewEngine(world World) *Engine {
	return &Engine{
		world: world,
		phase: PhaseIdle,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetHooks replaces the event callbacks
func (e *Engine) SetHooks(h Hooks) {
	e.hooks = h
}

// Initialize builds a new game around the local player's current tile.
// On error the engine is left idle.
func (e *Engine) Initialize(s Settings) error {
	e.Reset()

	if s.GameSize < 1 {
		return fmt.Errorf("initialize: %w (got %d)", ErrInvalidSize, s.GameSize)
	}
	local := e.world.LocalPlayer()
	if local == nil {
		return fmt.Errorf("initialize: %w", ErrNoLocalPlayer)
	}

	e.corner = WallStartPoint(local.Location(), s.GameSize)
	e.gameSize = s.GameSize
	e.allowRun = s.AllowRun
	e.sameFoodSpawn = s.SameFoodSpawn

	seed := time.Now().UnixNano()
	if s.Multiplayer {
		seed = s.Seed
	}
	e.rng = rand.New(rand.NewSource(seed))

	e.walkable = WalkableMatrix(s.GameSize, e.corner.Dx(1).Dy(-1), e.world)
	e.participants = resolveParticipants(s.PlayerNames, e.world.Players(), local.Name())

	if len(e.participants) == 0 {
		return fmt.Errorf("initialize: %w", ErrNoParticipants)
	}

	n := len(e.participants)
	e.gameOverDeadCount = n
	if s.Multiplayer && n != 1 {
		e.gameOverDeadCount = n - 1
	}
	e.gameID = uuid.NewString()

	log.Printf("🐍 Game %s initialized: %d players, size %d, multiplayer=%v, sameFood=%v",
		e.gameID[:8], n, s.GameSize, s.Multiplayer, s.SameFoodSpawn)

	if !s.Multiplayer {
		e.participants[0].setReady(true)
		e.countdown = ReadyCountdownTicks
		e.setPhase(PhaseReady)
	} else {
		e.setPhase(PhaseWaitingToStart)
	}
	return nil
}

// resolveParticipants builds the roster in sorted unique name order so every
// client assigns the same colours and iterates in the same order.
func resolveParticipants(names []string, present []Entity, localName string) []*Participant {
	unique := make(map[string]struct{}, len(names))
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := unique[name]; ok {
			continue
		}
		unique[name] = struct{}{}
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	participants := make([]*Participant, 0, len(sorted))
	colorIndex := 0
	for _, name := range sorted {
		entity := findEntity(present, name)
		if entity == nil {
			continue
		}
		isActive := name == localName
		c := PlayerColors[colorIndex]
		if isActive {
			c = SelfColor
		}
		participants = append(participants, NewParticipant(entity, c, isActive))
		colorIndex = (colorIndex + 1) % len(PlayerColors)
	}
	return participants
}

func findEntity(entities []Entity, name string) Entity {
	for _, e := range entities {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Reset drops the current game and returns to idle
func (e *Engine) Reset() {
	e.participants = nil
	e.readyCount = 0
	e.countdown = 0
	e.deadCount = 0
	e.gameOverDeadCount = 0
	e.gameID = ""
	e.setPhase(PhaseIdle)
}

// Tick advances the game by one step
func (e *Engine) Tick() {
	e.tickCount++

	next := e.phase
	switch e.phase {
	case PhaseWaitingToStart:
		next = e.waiting()
	case PhaseReady:
		next = e.ready()
	case PhasePlaying:
		next = e.playing()
	case PhaseIdle, PhaseGameOver:
	}
	e.setPhase(next)
}

// HandleReadySignal marks a participant ready when they send the ready token
// in the lobby. It reports whether the signal changed anything.
func (e *Engine) HandleReadySignal(playerName, message string) bool {
	if e.phase != PhaseWaitingToStart || message != ReadyMessage {
		return false
	}

	changed := false
	for _, p := range e.participants {
		if p.Name() == playerName && !p.IsReady() {
			p.setReady(true)
			e.readyCount++
			changed = true
			log.Printf("✋ %s is ready (%d/%d)", playerName, e.readyCount, len(e.participants))
		}
	}
	return changed
}

func (e *Engine) waiting() Phase {
	e.shuffleTrails()

	if e.readyCount == len(e.participants) {
		e.countdown = ReadyCountdownTicks
		return PhaseReady
	}
	return e.phase
}

func (e *Engine) ready() Phase {
	e.shuffleTrails()

	e.countdown--
	e.setAllOverheadText(fmt.Sprint(e.countdown))
	if e.countdown <= 0 {
		for _, p := range e.participants {
			p.FillInitialTrail()
		}
		e.setAllOverheadText("Go!")
		e.respawnAllFood()
		return PhasePlaying
	}
	return e.phase
}

// shuffleTrails keeps trails following their owners while the game has not started
func (e *Engine) shuffleTrails() {
	for _, p := range e.participants {
		p.UpdatePosition()
		p.AdvanceTrail()
	}
}

// playing runs one simulation step. The order of the passes is part of the
// game rules: movement checks, game over check, food, then trails.
func (e *Engine) playing() Phase {
	e.updateAllParticipants()

	if e.deadCount >= e.gameOverDeadCount {
		return PhaseGameOver
	}

	e.updateParticipantsOnFood()
	e.updateAllTrails()

	return e.phase
}

func (e *Engine) updateAllParticipants() {
	for _, p := range e.participants {
		if !p.IsAlive() {
			continue
		}
		p.UpdatePosition()
		if cause := e.checkMovement(p); cause != DeathNone {
			e.kill(p, cause)
		}
	}
}

func (e *Engine) kill(p *Participant, cause DeathCause) {
	p.MarkDead(cause)
	e.deadCount++
	log.Printf("💀 %s died (%s) at (%d, %d) with score %d",
		p.Name(), cause, p.Current().X, p.Current().Y, p.FinalScore())
	if e.hooks.OnDeath != nil {
		e.hooks.OnDeath(p, cause)
	}
}

func (e *Engine) checkMovement(p *Participant) DeathCause {
	if !InArena(e.corner, e.gameSize, p.Current()) {
		return DeathOutOfBounds
	}
	if !e.allowRun && p.IsRunning() {
		return DeathRunning
	}
	if e.collides(p.Current()) {
		return DeathCollision
	}
	return DeathNone
}

func (e *Engine) collides(point WorldPoint) bool {
	for _, p := range e.participants {
		if p.occupies(point) {
			return true
		}
	}
	return false
}

func (e *Engine) updateParticipantsOnFood() {
	var onFood []*Participant
	for _, p := range e.participants {
		if p.IsAlive() && p.food != nil && p.Current() == *p.food {
			onFood = append(onFood, p)
		}
	}
	if len(onFood) == 0 {
		return
	}

	if e.sameFoodSpawn {
		winner := onFood[e.rng.Intn(len(onFood))]
		e.feed(winner)
		e.respawnAllFood()
		return
	}

	for _, p := range onFood {
		e.feed(p)
		p.setFood(e.randomPointInGrid())
	}
}

func (e *Engine) feed(p *Participant) {
	p.grow()
	p.SetOverheadText("+1")
	if e.hooks.OnFoodEaten != nil {
		e.hooks.OnFoodEaten(p)
	}
}

func (e *Engine) updateAllTrails() {
	for _, p := range e.participants {
		if p.IsAlive() {
			p.AdvanceTrail()
		}
	}
}

func (e *Engine) setAllOverheadText(text string) {
	for _, p := range e.participants {
		p.SetOverheadText(text)
	}
}

func (e *Engine) respawnAllFood() {
	if e.sameFoodSpawn {
		food := e.randomPointInGrid()
		for _, p := range e.participants {
			p.setFood(food)
		}
		return
	}
	for _, p := range e.participants {
		p.setFood(e.randomPointInGrid())
	}
}

// randomPointInGrid samples a walkable cell that holds no food. After
// MaxRandomPointTries rejections the last sample is used as is.
func (e *Engine) randomPointInGrid() WorldPoint {
	var point WorldPoint
	for tries := 0; tries < MaxRandomPointTries; tries++ {
		x := e.rng.Intn(e.gameSize)
		y := e.rng.Intn(e.gameSize)
		point = CellPoint(e.corner, x, y)
		if e.isFoodSpawnValid(point, x, y) {
			break
		}
	}
	return point
}

func (e *Engine) isFoodSpawnValid(point WorldPoint, x, y int) bool {
	if !e.walkable[x][y] {
		return false
	}
	for _, p := range e.participants {
		if p.food != nil && *p.food == point {
			return false
		}
	}
	return true
}

func (e *Engine) setPhase(next Phase) {
	if next == e.phase {
		return
	}
	prev := e.phase
	e.phase = next
	log.Printf("🎮 Phase %s -> %s", prev, next)
	if e.hooks.OnPhaseChange != nil {
		e.hooks.OnPhaseChange(prev, next)
	}
}

// Phase returns the current state machine phase
func (e *Engine) Phase() Phase { return e.phase }

// Participants returns the roster in deterministic order
func (e *Engine) Participants() []*Participant { return e.participants }

// Participant returns a participant by name (may be nil)
func (e *Engine) Participant(name string) *Participant {
	for _, p := range e.participants {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Countdown returns the remaining ready ticks
func (e *Engine) Countdown() int { return e.countdown }

// GameID identifies the current game instance; empty while idle
func (e *Engine) GameID() string { return e.gameID }

// Corner returns the arena's top-left wall tile
func (e *Engine) Corner() WorldPoint { return e.corner }

// Size returns the number of cells per arena side
func (e *Engine) Size() int { return e.gameSize }

// Walkable returns the walkability matrix indexed [x][y]
func (e *Engine) Walkable() [][]bool { return e.walkable }

// DeadCount returns how many participants died this game
func (e *Engine) DeadCount() int { return e.deadCount }

// GameOverDeadCount returns the number of deaths that ends the game
func (e *Engine) GameOverDeadCount() int { return e.gameOverDeadCount }

// TickCount returns the number of ticks processed since creation
func (e *Engine) TickCount() uint64 { return e.tickCount }
