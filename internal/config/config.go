// Package config provides centralized configuration management.
// Defaults live here; environment variables override them at startup and the
// runtime Store lets the API change game settings between games.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"snake-arena/internal/game"
)

// =============================================================================
// GAME CONFIGURATION
// =============================================================================

// Theme names accepted by the theme key
const (
	ThemeOriginal = "ORIGINAL"
	ThemeTOA      = "TOA"
)

// GameConfig holds the user-facing game settings
type GameConfig struct {
	GameSize      int    // user value; the arena is 1 + 2*GameSize cells wide
	AllowRun      bool   // moving two tiles in one tick is allowed
	Multiplayer   bool   // lobby with ready signals and a shared seed
	PlayerNames   string // comma separated
	Seed          int64  // shared rng seed for multiplayer
	SameFoodSpawn bool   // one food shared by everyone
	Theme         string // ORIGINAL or TOA
	ShowAllFood   bool   // show every participant's food, not only your own
	LocalPlayer   string // name of the observing player
}

// DefaultGame returns the default game configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		GameSize: 2,
		Theme:    ThemeOriginal,
	}
}

// GameFromEnv returns game configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if n := getEnvInt("SNAKE_GAME_SIZE", 0); n > 0 {
		cfg.GameSize = n
	}
	if v := os.Getenv("SNAKE_PLAYERS"); v != "" {
		cfg.PlayerNames = v
	}
	if v := os.Getenv("SNAKE_LOCAL_PLAYER"); v != "" {
		cfg.LocalPlayer = v
	}
	if v := os.Getenv("SNAKE_THEME"); v != "" && validTheme(strings.ToUpper(v)) {
		cfg.Theme = strings.ToUpper(v)
	}
	cfg.Seed = getEnvInt64("SNAKE_SEED", cfg.Seed)
	cfg.AllowRun = getEnvBool("SNAKE_ALLOW_RUN", cfg.AllowRun)
	cfg.Multiplayer = getEnvBool("SNAKE_MULTIPLAYER", cfg.Multiplayer)
	cfg.SameFoodSpawn = getEnvBool("SNAKE_SAME_FOOD", cfg.SameFoodSpawn)
	cfg.ShowAllFood = getEnvBool("SNAKE_SHOW_ALL_FOOD", cfg.ShowAllFood)

	return cfg
}

// Radius returns the number of cells per arena side
func (c GameConfig) Radius() int {
	return 1 + 2*c.GameSize
}

// Players parses the comma separated name list. Blank entries are dropped.
// A solo game with no names falls back to the local player.
func (c GameConfig) Players() []string {
	var names []string
	for _, part := range strings.Split(c.PlayerNames, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 && !c.Multiplayer && c.LocalPlayer != "" {
		names = []string{c.LocalPlayer}
	}
	return names
}

// Settings converts the configuration into engine settings
func (c GameConfig) Settings() game.Settings {
	return game.Settings{
		PlayerNames:   c.Players(),
		GameSize:      c.Radius(),
		AllowRun:      c.AllowRun,
		Multiplayer:   c.Multiplayer,
		SameFoodSpawn: c.SameFoodSpawn,
		Seed:          c.Seed,
	}
}

func validTheme(name string) bool {
	return name == ThemeOriginal || name == ThemeTOA
}

// =============================================================================
// SESSION CONFIGURATION
// =============================================================================

// SessionConfig controls the tick loop
type SessionConfig struct {
	TickInterval time.Duration // one host game tick
	InboxSize    int           // buffered commands before callers block
	EventLogPath string        // JSONL diagnostic trace, empty disables it
}

// DefaultSession returns the default session configuration.
func DefaultSession() SessionConfig {
	return SessionConfig{
		TickInterval: 600 * time.Millisecond,
		InboxSize:    256,
	}
}

// SessionFromEnv returns session configuration with environment variable overrides.
func SessionFromEnv() SessionConfig {
	cfg := DefaultSession()
	if ms := getEnvInt("TICK_MS", 0); ms > 0 {
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	cfg.EventLogPath = os.Getenv("EVENT_LOG_PATH")
	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	DebugAddr      string // pprof and /metrics; empty disables
	AllowedOrigins []string
	CellPixels     int // PNG scene cell size
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:       3000,
		DebugAddr:  "localhost:6060",
		CellPixels: 24,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if v, ok := os.LookupEnv("DEBUG_ADDR"); ok {
		cfg.DebugAddr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	if px := getEnvInt("CELL_PIXELS", 0); px > 0 {
		cfg.CellPixels = px
	}

	return cfg
}

// =============================================================================
// CHAT CONFIGURATION
// =============================================================================

// ChatConfig limits how fast one user can send chat into the game
type ChatConfig struct {
	MessagesPerSecond float64
	Burst             int
}

// DefaultChat returns the default chat limits.
func DefaultChat() ChatConfig {
	return ChatConfig{
		MessagesPerSecond: 2,
		Burst:             5,
	}
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds terminal client sound settings.
type AudioConfig struct {
	Enabled   bool    // Event cues on/off
	MusicPath string  // Optional OGG Vorbis track looped in the background
	Volume    float64 // Music volume (0.0 to 1.0)
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		Enabled: true,
		Volume:  0.15,
	}
}

// AudioFromEnv returns audio configuration with environment variable overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	cfg.Enabled = getEnvBool("SOUND_ENABLED", cfg.Enabled)
	cfg.MusicPath = os.Getenv("MUSIC_PATH")
	if v := getEnvFloat("MUSIC_VOLUME", -1); v >= 0 && v <= 1 {
		cfg.Volume = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Game    GameConfig
	Session SessionConfig
	Server  ServerConfig
	Chat    ChatConfig
	Audio   AudioConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Game:    GameFromEnv(),
		Session: SessionFromEnv(),
		Server:  ServerFromEnv(),
		Chat:    DefaultChat(),
		Audio:   AudioFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
