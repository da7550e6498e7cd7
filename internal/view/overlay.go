package view

import (
	"fmt"
	"strconv"

	"snake-arena/internal/game"
)

// StartHint is shown while no game is running
const StartHint = "Start a new game from the menu"

// Line is one overlay row
type Line struct {
	Left  string `json:"left"`
	Right string `json:"right,omitempty"`
}

// Overlay is the status panel
type Overlay struct {
	Title string `json:"title"`
	Lines []Line `json:"lines"`
}

// StatusText names a phase for the overlay title
func StatusText(p game.Phase) string {
	switch p {
	case game.PhaseIdle:
		return "Idle"
	case game.PhasePlaying:
		return "Playing"
	case game.PhaseGameOver:
		return "Game Over"
	default:
		return "-"
	}
}

// BuildOverlay summarizes a snapshot for the status panel
func BuildOverlay(snap *game.Snapshot) Overlay {
	o := Overlay{Title: "Snake: " + StatusText(snap.Phase)}

	switch snap.Phase {
	case game.PhasePlaying, game.PhaseGameOver:
		o.Lines = append(o.Lines, Line{Left: "Scores"})
		for _, p := range snap.Participants {
			score := "Dead!"
			if p.Alive {
				score = strconv.Itoa(p.Score)
			}
			o.Lines = append(o.Lines, Line{Left: p.Name, Right: score})
		}
	case game.PhaseWaitingToStart:
		o.Lines = append(o.Lines, Line{Left: fmt.Sprintf("Type %q when ready", game.ReadyMessage)})
		for _, p := range snap.Participants {
			mark := "waiting"
			if p.Ready {
				mark = "ready"
			}
			o.Lines = append(o.Lines, Line{Left: p.Name, Right: mark})
		}
	case game.PhaseReady:
		o.Lines = append(o.Lines, Line{Left: "Starting in", Right: strconv.Itoa(snap.Countdown)})
	default:
		o.Lines = append(o.Lines, Line{Left: StartHint})
	}
	return o
}
