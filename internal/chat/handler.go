package chat

import (
	"context"
	"log"
)

// Sink receives cleaned chat lines. The session implements it.
type Sink interface {
	Chat(username, text string)
}

// Handler filters host chat and forwards public lines to the game
type Handler struct {
	sink        Sink
	rateLimiter *RateLimiter
}

// NewHandler creates a new chat handler
func NewHandler(sink Sink, cfg RateLimitConfig) *Handler {
	return &Handler{
		sink:        sink,
		rateLimiter: NewRateLimiter(cfg),
	}
}

// ProcessMessage handles a single message and reports whether it was forwarded
func (h *Handler) ProcessMessage(msg ChatMessage) bool {
	if msg.Type != MessagePublic {
		return false
	}

	name := SanitizeName(msg.Username)
	if name == "" {
		return false
	}

	if !h.rateLimiter.Allow(name) {
		log.Printf("🚫 Rate limited: %s", name)
		return false
	}

	h.sink.Chat(name, SanitizeMessage(msg.Content))
	return true
}

// Run processes messages until the channel closes or ctx is cancelled
func (h *Handler) Run(ctx context.Context, messages <-chan ChatMessage) {
	defer h.rateLimiter.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("📜 Chat handler stopped")
			return
		case msg, ok := <-messages:
			if !ok {
				log.Println("📜 Chat handler stopped")
				return
			}
			h.ProcessMessage(msg)
		}
	}
}

// Close releases the rate limiter
func (h *Handler) Close() {
	h.rateLimiter.Stop()
}
