package chat

import (
	"context"
	"testing"
	"time"
)

type recordingSink struct {
	lines [][2]string
}

func (s *recordingSink) Chat(username, text string) {
	s.lines = append(s.lines, [2]string{username, text})
}

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"R", "r"},
		{"  r  ", "r"},
		{"<col=ff0000>R</col>", "r"},
		{"<img=2>R", "r"},
		{"Ready Now", "ready now"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeMessage(tt.in); got != tt.want {
			t.Errorf("SanitizeMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeNameKeepsCase(t *testing.T) {
	if got := SanitizeName("<img=1>Zezima Jr"); got != "Zezima Jr" {
		t.Errorf("Unexpected name %q", got)
	}
}

func TestProcessMessage(t *testing.T) {
	sink := &recordingSink{}
	h := NewHandler(sink, RateLimitConfig{MessagesPerSecond: 1000, Burst: 1000})
	defer h.Close()

	tests := []struct {
		name string
		msg  ChatMessage
		want bool
	}{
		{"public", ChatMessage{Type: MessagePublic, Username: "alice", Content: "<col=ff>R"}, true},
		{"private ignored", ChatMessage{Type: MessagePrivate, Username: "alice", Content: "r"}, false},
		{"clan ignored", ChatMessage{Type: MessageClan, Username: "alice", Content: "r"}, false},
		{"nameless ignored", ChatMessage{Type: MessagePublic, Username: "<img=1>", Content: "r"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.ProcessMessage(tt.msg); got != tt.want {
				t.Errorf("ProcessMessage() = %v, want %v", got, tt.want)
			}
		})
	}

	if len(sink.lines) != 1 || sink.lines[0] != [2]string{"alice", "r"} {
		t.Errorf("Unexpected forwarded lines %v", sink.lines)
	}
}

func TestProcessMessageRateLimited(t *testing.T) {
	sink := &recordingSink{}
	h := NewHandler(sink, RateLimitConfig{MessagesPerSecond: 0.001, Burst: 2})
	defer h.Close()

	msg := ChatMessage{Type: MessagePublic, Username: "spammer", Content: "r"}
	for i := 0; i < 5; i++ {
		h.ProcessMessage(msg)
	}
	if len(sink.lines) != 2 {
		t.Errorf("Expected burst of 2 forwarded, got %d", len(sink.lines))
	}

	h.ProcessMessage(ChatMessage{Type: MessagePublic, Username: "other", Content: "r"})
	if len(sink.lines) != 3 {
		t.Error("Limits should be per user")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MessagesPerSecond: 1, Burst: 1, IdleTimeout: time.Second})
	defer rl.Stop()

	rl.Allow("a")
	rl.cleanup(time.Now().Add(2 * time.Second))

	rl.mu.Lock()
	n := len(rl.users)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("Expected idle user dropped, %d remain", n)
	}
}

func TestRunStopsOnClose(t *testing.T) {
	sink := &recordingSink{}
	h := NewHandler(sink, DefaultRateLimitConfig)

	messages := make(chan ChatMessage, 2)
	messages <- ChatMessage{Type: MessagePublic, Username: "bob", Content: "hi"}
	close(messages)

	done := make(chan struct{})
	go func() {
		h.Run(context.Background(), messages)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
	if len(sink.lines) != 1 {
		t.Errorf("Expected 1 line, got %d", len(sink.lines))
	}
}

func TestParseMessageType(t *testing.T) {
	for _, typ := range []MessageType{MessagePublic, MessagePrivate, MessageClan, MessageGame} {
		if got := ParseMessageType(typ.String()); got != typ {
			t.Errorf("ParseMessageType(%q) = %v", typ.String(), got)
		}
	}
}
