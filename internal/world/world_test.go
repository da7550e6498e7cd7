package world

import (
	"errors"
	"testing"

	"snake-arena/internal/game"
)

func TestSpawnAndMove(t *testing.T) {
	w := New()
	e, err := w.Spawn("alice", game.WorldPoint{X: 10, Y: 10})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if _, err := w.Spawn("alice", game.WorldPoint{}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
	if _, err := w.Spawn("", game.WorldPoint{}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected empty name error, got %v", err)
	}

	if err := w.Step("alice", 1, -1); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got := e.Location(); got != (game.WorldPoint{X: 11, Y: 9}) {
		t.Errorf("Unexpected location after step: %+v", got)
	}

	if err := w.Move("alice", game.WorldPoint{X: 3, Y: 4}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got := e.Location(); got != (game.WorldPoint{X: 3, Y: 4}) {
		t.Errorf("Unexpected location after move: %+v", got)
	}

	if err := w.Move("bob", game.WorldPoint{}); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Expected unknown entity, got %v", err)
	}
}

func TestRemovedHandleStaysValid(t *testing.T) {
	w := New()
	e, _ := w.Spawn("alice", game.WorldPoint{X: 1, Y: 1})

	if err := w.Remove("alice"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !e.Removed() {
		t.Error("Expected handle marked removed")
	}
	e.moveTo(game.WorldPoint{X: 5, Y: 5})
	if e.Location() != (game.WorldPoint{X: 1, Y: 1}) {
		t.Error("Removed entity should not move")
	}
	e.SetOverheadText("still here")
	if e.OverheadText() != "still here" {
		t.Error("Removed handle should still accept text")
	}
	if len(w.Players()) != 0 {
		t.Error("Removed entity should not be listed")
	}
	if err := w.Remove("alice"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Expected unknown entity on second remove, got %v", err)
	}
}

func TestLocalPlayer(t *testing.T) {
	w := New()
	w.SetLocal("me")
	if w.LocalPlayer() != nil {
		t.Fatal("Expected no local player before spawn")
	}
	w.Spawn("me", game.WorldPoint{})
	if lp := w.LocalPlayer(); lp == nil || lp.Name() != "me" {
		t.Fatalf("Expected local player me, got %v", lp)
	}
}

func TestTileFlags(t *testing.T) {
	w := New()
	p := game.WorldPoint{X: 2, Y: 2}
	w.SetFlags(p, 0x100)
	if w.TileFlags(p) != 0x100 {
		t.Errorf("Expected flags set, got %d", w.TileFlags(p))
	}
	w.SetFlags(p, 0)
	if w.TileFlags(p) != 0 {
		t.Error("Expected flags cleared")
	}
}

// The world drives a real engine through a solo game
func TestWorldHostsEngine(t *testing.T) {
	w := New()
	w.SetLocal("me")
	me, _ := w.Spawn("me", game.WorldPoint{X: 100, Y: 100})

	e := game.NewEngine(w)
	if err := e.Initialize(game.Settings{PlayerNames: []string{"me"}, GameSize: 5}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	for i := 0; i < game.ReadyCountdownTicks; i++ {
		e.Tick()
	}
	if me.OverheadText() != "Go!" {
		t.Errorf("Expected Go! on the entity, got %q", me.OverheadText())
	}

	w.Move("me", game.WorldPoint{X: 200, Y: 200})
	e.Tick()
	if e.Phase() != game.PhaseGameOver {
		t.Errorf("Expected game over, got %s", e.Phase())
	}
	if me.Animation() != game.DeathAnimationID {
		t.Errorf("Expected death animation, got %d", me.Animation())
	}
}
