package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"snake-arena/internal/game"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var m map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("Bad JSON line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitBeforeStart(t *testing.T) {
	l := New()
	if l.Emit(NewEvent(EventTypePhase, 1, "g", "", nil)) {
		t.Error("Emit should fail when not running")
	}
	l.Stop()
}

func TestLogWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.StartWriter(&buf)

	l.Emit(NewEvent(EventTypePhase, 0, "g1", "", PhasePayload{From: game.PhaseIdle, To: game.PhaseWaitingToStart}))
	l.Emit(NewEvent(EventTypeFood, 4, "g1", "alice", FoodPayload{At: game.WorldPoint{X: 3, Y: 4}, Score: 1}))
	l.Emit(NewEvent(EventTypeDeath, 9, "g1", "alice", DeathPayload{Cause: game.DeathCollision, Score: 1}))
	l.Stop()

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}

	tests := []struct {
		idx      int
		typ      string
		sequence float64
		tick     float64
	}{
		{0, "phase", 1, 0},
		{1, "food", 2, 4},
		{2, "death", 3, 9},
	}
	for _, tt := range tests {
		line := lines[tt.idx]
		if line["type"] != tt.typ {
			t.Errorf("line %d: expected type %s, got %v", tt.idx, tt.typ, line["type"])
		}
		if line["sequence"] != tt.sequence {
			t.Errorf("line %d: expected sequence %v, got %v", tt.idx, tt.sequence, line["sequence"])
		}
		if line["tick"] != tt.tick {
			t.Errorf("line %d: expected tick %v, got %v", tt.idx, tt.tick, line["tick"])
		}
	}

	phase := lines[0]["payload"].(map[string]interface{})
	if phase["from"] != "idle" || phase["to"] != "waiting_to_start" {
		t.Errorf("Unexpected phase payload %v", phase)
	}
	food := lines[1]["payload"].(map[string]interface{})
	if at := food["at"].(map[string]interface{}); at["x"] != 3.0 || at["y"] != 4.0 {
		t.Errorf("Unexpected food location %v", at)
	}
}

func TestParticipantRateLimit(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.StartWriter(&buf)

	accepted := 0
	for i := 0; i < MaxEventsPerPart+10; i++ {
		if l.Emit(NewEvent(EventTypeReady, uint64(i), "g", "spammer", nil)) {
			accepted++
		}
	}
	if accepted != MaxEventsPerPart {
		t.Errorf("Expected %d accepted, got %d", MaxEventsPerPart, accepted)
	}
	if !l.Emit(NewEvent(EventTypeReady, 0, "g", "other", nil)) {
		t.Error("Limits should be per participant")
	}
	l.Stop()

	total, dropped := l.Stats()
	if total != uint64(MaxEventsPerPart+1) || dropped != 10 {
		t.Errorf("Unexpected stats total=%d dropped=%d", total, dropped)
	}
}

func TestStartAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for run := 0; run < 2; run++ {
		l := New()
		if err := l.Start(path); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		l.Emit(NewEvent(EventTypeGameStart, 0, "g", "", GameStartPayload{Participants: []string{"a"}, Size: 10}))
		l.Stop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if n := len(decodeLines(t, data)); n != 2 {
		t.Errorf("Expected 2 lines across runs, got %d", n)
	}
}
