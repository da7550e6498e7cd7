package game

import "image/color"

// InitialTrailSize is the trail length every participant starts playing with
const InitialTrailSize = 2

// DeathAnimationID is played on the host entity when a participant dies
const DeathAnimationID = 836

// Entity is a live named actor in the host world.
// The engine resolves it once per game and keeps it as an owned handle.
type Entity interface {
	Name() string
	Location() WorldPoint
	SetOverheadText(text string)
	PlayAnimation(id int)
}

// DeathCause explains why a participant was eliminated
type DeathCause string

const (
	DeathNone        DeathCause = ""
	DeathOutOfBounds DeathCause = "out-of-bounds"
	DeathRunning     DeathCause = "running"
	DeathCollision   DeathCause = "trail-collision"
)

// Participant is one snake: a host entity plus its trail and score
type Participant struct {
	entity   Entity
	name     string
	color    color.RGBA
	isActive bool

	alive      bool
	ready      bool
	shouldGrow bool
	cause      DeathCause
	finalScore int

	previous WorldPoint
	current  WorldPoint
	food     *WorldPoint

	// oldest-first; front is evicted on non-growth ticks
	trail []WorldPoint

	overheadText string
}

// NewParticipant wraps a resolved entity. The trail is seeded with its current tile.
func NewParticipant(entity Entity, c color.RGBA, isActive bool) *Participant {
	loc := entity.Location()
	return &Participant{
		entity:   entity,
		name:     entity.Name(),
		color:    c,
		isActive: isActive,
		alive:    true,
		previous: loc,
		current:  loc,
		trail:    []WorldPoint{loc},
	}
}

func (p *Participant) Name() string         { return p.name }
func (p *Participant) Color() color.RGBA    { return p.color }
func (p *Participant) IsActive() bool       { return p.isActive }
func (p *Participant) IsAlive() bool        { return p.alive }
func (p *Participant) IsReady() bool        { return p.ready }
func (p *Participant) Cause() DeathCause    { return p.cause }
func (p *Participant) Current() WorldPoint  { return p.current }
func (p *Participant) Previous() WorldPoint { return p.previous }
func (p *Participant) OverheadText() string { return p.overheadText }

// Food returns the pending food target, or nil before the first spawn
func (p *Participant) Food() *WorldPoint {
	if p.food == nil {
		return nil
	}
	f := *p.food
	return &f
}

// Trail returns a copy of the trail, oldest first
func (p *Participant) Trail() []WorldPoint {
	out := make([]WorldPoint, len(p.trail))
	copy(out, p.trail)
	return out
}

// TrailLen returns the current trail length
func (p *Participant) TrailLen() int {
	return len(p.trail)
}

// Score is the number of cells grown beyond the initial trail.
// The trail is cleared on death, so a dead participant scores 0.
func (p *Participant) Score() int {
	return max(0, len(p.trail)-InitialTrailSize)
}

// FinalScore is the score held at the moment of death, or the live score
// while alive.
func (p *Participant) FinalScore() int {
	if !p.alive {
		return p.finalScore
	}
	return p.Score()
}

// UpdatePosition snapshots the previous tile and re-reads the current one
func (p *Participant) UpdatePosition() {
	p.previous = p.current
	p.current = p.entity.Location()
}

// IsRunning reports a move of more than one tile since the last update
func (p *Participant) IsRunning() bool {
	return p.previous.DistanceTo(p.current) > 1
}

// AdvanceTrail grows the trail by the current tile when food was eaten,
// otherwise drops the oldest tile and appends the current one.
func (p *Participant) AdvanceTrail() {
	if p.shouldGrow {
		p.shouldGrow = false
		p.trail = append(p.trail, p.current)
		return
	}
	if len(p.trail) > 0 {
		p.trail = p.trail[1:]
	}
	p.trail = append(p.trail, p.current)
}

// FillInitialTrail pads the trail with the current tile up to InitialTrailSize
func (p *Participant) FillInitialTrail() {
	for len(p.trail) < InitialTrailSize {
		p.trail = append(p.trail, p.current)
	}
}

// MarkDead freezes the participant. Calling it again has no effect.
func (p *Participant) MarkDead(cause DeathCause) {
	if !p.alive {
		return
	}
	p.finalScore = p.Score()
	p.alive = false
	p.cause = cause
	p.shouldGrow = false
	p.trail = nil
	p.entity.PlayAnimation(DeathAnimationID)
}

// SetOverheadText shows transient text above the participant
func (p *Participant) SetOverheadText(text string) {
	p.overheadText = text
	p.entity.SetOverheadText(text)
}

func (p *Participant) setReady(ready bool) {
	p.ready = ready
}

func (p *Participant) setFood(point WorldPoint) {
	p.food = &point
}

func (p *Participant) grow() {
	p.shouldGrow = true
}

func (p *Participant) occupies(point WorldPoint) bool {
	for _, t := range p.trail {
		if t == point {
			return true
		}
	}
	return false
}
