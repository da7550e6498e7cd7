package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"snake-arena/internal/api"
	"snake-arena/internal/config"
	"snake-arena/internal/eventlog"
	"snake-arena/internal/game"
	"snake-arena/internal/session"
	"snake-arena/internal/world"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🐍 ================================")
	log.Println("🐍  SNAKE ARENA - GO ENGINE")
	log.Println("🐍 ================================")

	appConfig := config.Load()
	gameCfg := appConfig.Game

	log.Printf("🎮 Config: size %d (radius %d), multiplayer=%v, run=%v, theme=%s, tick %v",
		gameCfg.GameSize, gameCfg.Radius(), gameCfg.Multiplayer, gameCfg.AllowRun, gameCfg.Theme, appConfig.Session.TickInterval)
	if gameCfg.Multiplayer {
		log.Printf("👥 Players: %v (seed %d)", gameCfg.Players(), gameCfg.Seed)
	}

	// Start debug server
	if err := api.StartDebugServer(api.ObservabilityFromServer(appConfig.Server)); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	w := world.New()
	store := config.NewStore(gameCfg)
	sess := session.New(appConfig.Session, store, w)

	events := eventlog.New()
	if path := appConfig.Session.EventLogPath; path != "" {
		if err := events.Start(path); err != nil {
			log.Printf("⚠️ Event trace disabled: %v", err)
		} else {
			sess.SetEventLog(events)
			log.Printf("📝 Event trace: %s", path)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionDone := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(sessionDone)
	}()
	log.Println("✅ Session started")

	// Place the local player so a solo game can start right away
	if gameCfg.LocalPlayer != "" {
		spawn := game.WorldPoint{X: getEnvInt("SPAWN_X", 3200), Y: getEnvInt("SPAWN_Y", 3200)}
		if err := sess.Spawn(ctx, gameCfg.LocalPlayer, spawn); err != nil {
			log.Printf("⚠️ Could not spawn %s: %v", gameCfg.LocalPlayer, err)
		} else {
			log.Printf("👤 Local player %s at (%d, %d)", gameCfg.LocalPlayer, spawn.X, spawn.Y)
		}
	}

	server := api.NewServer(sess, appConfig)

	go func() {
		if err := server.Start(ctx); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("")
	log.Println("📋 To play:")
	log.Println("   1. POST /api/entities to place players")
	log.Println("   2. POST /api/game/start")
	log.Println(`   3. POST /api/chat {"username": ..., "message": "r"} to ready up`)
	log.Println("   4. Watch /api/scene.png or connect to /ws")
	log.Println("")

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("✅ Server ready on :%d! Press Ctrl+C to stop.", appConfig.Server.Port)
	<-quit

	log.Println("🛑 Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
	cancel()
	<-sessionDone
	events.Stop()
	total, dropped := events.Stats()
	log.Printf("📝 Events recorded: %d (dropped %d)", total, dropped)
	log.Println("👋 Goodbye!")
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
