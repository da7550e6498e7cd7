package api

import (
	"context"
	"net/http"

	"snake-arena/internal/chat"
	"snake-arena/internal/config"
	"snake-arena/internal/game"
	"snake-arena/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SessionInterface defines the session methods used by the API.
// This interface enables mocking for tests without running the session loop.
type SessionInterface interface {
	// Snapshot returns the latest published state (never nil)
	Snapshot() *game.Snapshot
	// Config returns the runtime configuration store
	Config() *config.Store
	Start(ctx context.Context) error
	Reset(ctx context.Context) error
	Spawn(ctx context.Context, name string, at game.WorldPoint) error
	Despawn(ctx context.Context, name string) error
	Move(ctx context.Context, name string, to game.WorldPoint) error
	Step(ctx context.Context, name string, dx, dy int) error
	SetTerrain(ctx context.Context, p game.WorldPoint, flags int) error
	AddPlayer(name string) error
	Entities() []string
}

// ChatProcessor filters a raw chat message and reports whether it reached the game
type ChatProcessor interface {
	ProcessMessage(msg chat.ChatMessage) bool
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Session: fakeSession,
//	    Chat:    chat.NewHandler(fakeSession, chat.DefaultRateLimitConfig),
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	ts := httptest.NewServer(api.NewRouter(cfg))
type RouterConfig struct {
	// Session is the running game session (required)
	Session SessionInterface

	// Chat filters chat lines posted through the API (required)
	Chat ChatProcessor

	// Renderer draws /api/scene.png. Zero value uses the default cell size.
	Renderer view.Renderer

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, only localhost is allowed.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	session  SessionInterface
	chat     ChatProcessor
	renderer view.Renderer
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// This function is pure: no goroutines besides the rate limiter cleanup,
// no listeners. It is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	renderer := cfg.Renderer
	if renderer.CellPixels <= 0 {
		renderer = view.NewRenderer(config.DefaultServer().CellPixels)
	}

	h := &routerHandlers{
		session:  cfg.Session,
		chat:     cfg.Chat,
		renderer: renderer,
	}

	r.Route("/api", func(r chi.Router) {
		// Read-only views
		r.Get("/state", h.handleGetState)
		r.Get("/overlay", h.handleGetOverlay)
		r.Get("/scene", h.handleGetScene)
		r.Get("/scene.png", h.handleGetScenePNG)
		r.Get("/leaderboard", h.handleGetLeaderboard)

		// Game lifecycle
		r.Post("/game/start", h.handleGameStart)
		r.Post("/game/reset", h.handleGameReset)
		r.Post("/chat", h.handleChat)

		// Host world
		r.Get("/entities", h.handleListEntities)
		r.Post("/entities", h.handleSpawnEntity)
		r.Put("/entities/{name}/position", h.handleMoveEntity)
		r.Post("/entities/{name}/step", h.handleStepEntity)
		r.Delete("/entities/{name}", h.handleDespawnEntity)
		r.Put("/terrain", h.handleSetTerrain)

		// Configuration
		r.Post("/players", h.handleAddPlayer)
		r.Get("/config", h.handleGetConfig)
		r.Put("/config", h.handlePutConfig)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	return r
}
