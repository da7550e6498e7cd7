// Package sound plays short terminal cues for game events.
package sound

import "snake-arena/internal/game"

// Cue is a game event worth a sound
type Cue int

const (
	CueStart Cue = iota
	CueFood
	CueDeath
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueStart:
		return "start"
	case CueFood:
		return "food"
	case CueDeath:
		return "death"
	case CueGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// DetectCues compares two consecutive snapshots. prev may be nil.
// Food cues only fire for the active participant; deaths fire for anyone.
func DetectCues(prev, next *game.Snapshot) []Cue {
	if next == nil {
		return nil
	}

	var cues []Cue
	if next.Phase == game.PhasePlaying && (prev == nil || prev.Phase != game.PhasePlaying) {
		cues = append(cues, CueStart)
	}

	// participant diffs only make sense within one game
	if prev != nil && prev.GameID == next.GameID {
		before := make(map[string]game.ParticipantSnapshot, len(prev.Participants))
		for _, p := range prev.Participants {
			before[p.Name] = p
		}
		for _, p := range next.Participants {
			old, ok := before[p.Name]
			if !ok {
				continue
			}
			if p.Active && p.Alive && p.Score > old.Score {
				cues = append(cues, CueFood)
			}
			if old.Alive && !p.Alive {
				cues = append(cues, CueDeath)
			}
		}
	}

	if next.Phase == game.PhaseGameOver && (prev == nil || prev.Phase != game.PhaseGameOver) {
		cues = append(cues, CueGameOver)
	}
	return cues
}
