package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"snake-arena/internal/chat"
	"snake-arena/internal/config"
	"snake-arena/internal/session"
	"snake-arena/internal/view"

	"github.com/go-chi/chi/v5"
)

// chatQueueSize buffers WebSocket chat lines ahead of the chat handler
const chatQueueSize = 64

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	session     *session.Session
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	chat        *chat.Handler
	chatIn      chan chat.ChatMessage
	httpServer  *http.Server
}

// NewServer creates a new API server.
//
// Background workers do NOT start until Start() is called, so the server
// can be constructed in tests and exercised through Router().
func NewServer(sess *session.Session, cfg config.AppConfig) *Server {
	s := &Server{
		session:     sess,
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
		chat: chat.NewHandler(sess, chat.RateLimitConfig{
			MessagesPerSecond: cfg.Chat.MessagesPerSecond,
			Burst:             cfg.Chat.Burst,
		}),
		chatIn: make(chan chat.ChatMessage, chatQueueSize),
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.wsHub = NewWebSocketHub(sess, s.chatIn)

	SetAllowedOrigins(cfg.Server.AllowedOrigins)

	var corsOrigins []string
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsOrigins = append([]string{"http://localhost:*", "http://127.0.0.1:*"}, cfg.Server.AllowedOrigins...)
	}

	s.router = NewRouter(RouterConfig{
		Session:     sess,
		Chat:        s.chat,
		Renderer:    view.NewRenderer(cfg.Server.CellPixels),
		RateLimiter: s.rateLimiter,
		CORSOrigins: corsOrigins,
	})

	// WebSocket route needs the hub instance
	s.router.Get("/ws", s.wsHub.HandleWebSocket)
	s.httpServer.Handler = s.router

	return s
}

// Start begins the HTTP server AND starts background workers.
// It blocks until the listener fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	go s.wsHub.Run(ctx)
	go s.chat.Run(ctx, s.chatIn)

	snapshots, unsubscribe := s.session.Subscribe()
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	s.wsHub.StartBroadcastLoop(ctx, snapshots)

	log.Printf("🌐 API server starting on %s", s.httpServer.Addr)
	log.Printf("🐍 Scene: http://localhost%s/api/scene.png", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest
func (s *Server) Router() http.Handler {
	return s.router
}

// Shutdown stops the listener and background workers
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}
