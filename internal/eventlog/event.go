// Package eventlog writes a diagnostic trace of game events as
// newline-delimited JSON. The trace is write-only: nothing reads it back.
package eventlog

import (
	"encoding/json"
	"time"

	"snake-arena/internal/game"
)

// EventType classifies journal entries
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeGameStart
	EventTypePhase
	EventTypeReady
	EventTypeFood
	EventTypeDeath
)

// EventVersion is bumped when payload shapes change
const EventVersion uint8 = 1

// Event is one journal line
type Event struct {
	Version     uint8           `json:"version"`
	Type        EventType       `json:"type"`
	Timestamp   int64           `json:"timestamp"` // Unix nano
	Sequence    uint64          `json:"sequence"`
	TickNum     uint64          `json:"tick"`
	GameID      string          `json:"gameId,omitempty"`
	Participant string          `json:"participant,omitempty"` // also the rate limit key
	Payload     json.RawMessage `json:"payload,omitempty"`
}

func (t EventType) String() string {
	switch t {
	case EventTypeGameStart:
		return "game_start"
	case EventTypePhase:
		return "phase"
	case EventTypeReady:
		return "ready"
	case EventTypeFood:
		return "food"
	case EventTypeDeath:
		return "death"
	default:
		return "unknown"
	}
}

// MarshalText writes the type name instead of its number
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// GameStartPayload describes a freshly initialized game
type GameStartPayload struct {
	Participants []string        `json:"participants"`
	Corner       game.WorldPoint `json:"corner"`
	Size         int             `json:"size"`
	Seed         int64           `json:"seed"`
	Multiplayer  bool            `json:"multiplayer"`
}

// PhasePayload records a state machine transition
type PhasePayload struct {
	From game.Phase `json:"from"`
	To   game.Phase `json:"to"`
}

// FoodPayload records a participant eating
type FoodPayload struct {
	At    game.WorldPoint `json:"at"`
	Score int             `json:"score"`
}

// DeathPayload records how a participant died
type DeathPayload struct {
	Cause game.DeathCause `json:"cause"`
	At    game.WorldPoint `json:"at"`
	Score int             `json:"score"`
}

// NewEvent creates an event stamped with the current time
func NewEvent(eventType EventType, tickNum uint64, gameID, participant string, payload interface{}) Event {
	var raw json.RawMessage
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			raw = data
		}
	}
	return Event{
		Version:     EventVersion,
		Type:        eventType,
		Timestamp:   time.Now().UnixNano(),
		TickNum:     tickNum,
		GameID:      gameID,
		Participant: participant,
		Payload:     raw,
	}
}
