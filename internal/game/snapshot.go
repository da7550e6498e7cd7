package game

import (
	"fmt"
	"image/color"
	"time"
)

// ParticipantSnapshot is an immutable copy of participant state for readers.
// Uses value types (no pointers into the engine) so it can cross goroutines.
type ParticipantSnapshot struct {
	Name         string       `json:"name"`
	Color        string       `json:"color"`
	RGBA         color.RGBA   `json:"-"`
	Active       bool         `json:"active"`
	Alive        bool         `json:"alive"`
	Ready        bool         `json:"ready"`
	Score        int          `json:"score"`
	FinalScore   int          `json:"finalScore"`
	Location     WorldPoint   `json:"location"`
	Trail        []WorldPoint `json:"trail"`
	Food         *WorldPoint  `json:"food,omitempty"`
	OverheadText string       `json:"overheadText,omitempty"`
	DeathCause   DeathCause   `json:"deathCause,omitempty"`
}

// ArenaSnapshot describes the walled grid of the current game
type ArenaSnapshot struct {
	Corner   WorldPoint `json:"corner"`
	Size     int        `json:"size"`
	Walkable [][]bool   `json:"walkable"`
}

// Snapshot is a complete immutable engine state.
// Presentation code reads only snapshots, never the engine itself.
type Snapshot struct {
	Sequence          uint64                `json:"sequence"`
	Timestamp         time.Time             `json:"timestamp"`
	TickNumber        uint64                `json:"tick"`
	GameID            string                `json:"gameId,omitempty"`
	Phase             Phase                 `json:"phase"`
	Countdown         int                   `json:"countdown"`
	SameFoodSpawn     bool                  `json:"sameFoodSpawn"`
	DeadCount         int                   `json:"deadCount"`
	GameOverDeadCount int                   `json:"gameOverDeadCount"`
	Arena             *ArenaSnapshot        `json:"arena,omitempty"`
	Participants      []ParticipantSnapshot `json:"participants"`
}

// Snapshot copies the current state. Call it from the goroutine that owns the engine.
func (e *Engine) Snapshot() *Snapshot {
	snap := &Snapshot{
		Timestamp:         time.Now(),
		TickNumber:        e.tickCount,
		GameID:            e.gameID,
		Phase:             e.phase,
		Countdown:         e.countdown,
		SameFoodSpawn:     e.sameFoodSpawn,
		DeadCount:         e.deadCount,
		GameOverDeadCount: e.gameOverDeadCount,
		Participants:      make([]ParticipantSnapshot, 0, len(e.participants)),
	}

	if e.phase != PhaseIdle && e.walkable != nil {
		walkable := make([][]bool, len(e.walkable))
		for x := range e.walkable {
			walkable[x] = append([]bool(nil), e.walkable[x]...)
		}
		snap.Arena = &ArenaSnapshot{
			Corner:   e.corner,
			Size:     e.gameSize,
			Walkable: walkable,
		}
	}

	for _, p := range e.participants {
		snap.Participants = append(snap.Participants, ParticipantSnapshot{
			Name:         p.Name(),
			Color:        HexColor(p.Color()),
			RGBA:         p.Color(),
			Active:       p.IsActive(),
			Alive:        p.IsAlive(),
			Ready:        p.IsReady(),
			Score:        p.Score(),
			FinalScore:   p.FinalScore(),
			Location:     p.Current(),
			Trail:        p.Trail(),
			Food:         p.Food(),
			OverheadText: p.OverheadText(),
			DeathCause:   p.Cause(),
		})
	}
	return snap
}

// ActiveParticipant returns the local observer's entry, if playing
func (s *Snapshot) ActiveParticipant() (ParticipantSnapshot, bool) {
	for _, p := range s.Participants {
		if p.Active {
			return p, true
		}
	}
	return ParticipantSnapshot{}, false
}

// AliveCount counts participants still in the game
func (s *Snapshot) AliveCount() int {
	n := 0
	for _, p := range s.Participants {
		if p.Alive {
			n++
		}
	}
	return n
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// HexColor formats a colour as #rrggbb
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
