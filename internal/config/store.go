package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Config keys, as exposed over the API
const (
	KeyGameSize      = "gameSize"
	KeyAllowRun      = "allowRun"
	KeyMultiplayer   = "multiplayer"
	KeyPlayerNames   = "playerNames"
	KeySeed          = "seed"
	KeySameFoodSpawn = "sameFoodSpawn"
	KeyTheme         = "theme"
	KeyShowAllFood   = "showAllFood"
	KeyLocalPlayer   = "localPlayer"
)

var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ChangeFunc is called after a key changes, with the configuration it produced
type ChangeFunc func(key string, cfg GameConfig)

// Store is the runtime game configuration. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	game      GameConfig
	listeners []ChangeFunc
}

// NewStore creates a store seeded with a configuration
func NewStore(initial GameConfig) *Store {
	return &Store{game: initial}
}

// Game returns a copy of the current configuration
func (s *Store) Game() GameConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

// OnChange registers a listener. Listeners run on the caller of Set, outside the lock.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Get returns one key as a string
func (s *Store) Get(key string) (string, error) {
	all := s.All()
	v, ok := all[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return v, nil
}

// All returns every key as strings
func (s *Store) All() map[string]string {
	c := s.Game()
	return map[string]string{
		KeyGameSize:      strconv.Itoa(c.GameSize),
		KeyAllowRun:      strconv.FormatBool(c.AllowRun),
		KeyMultiplayer:   strconv.FormatBool(c.Multiplayer),
		KeyPlayerNames:   c.PlayerNames,
		KeySeed:          strconv.FormatInt(c.Seed, 10),
		KeySameFoodSpawn: strconv.FormatBool(c.SameFoodSpawn),
		KeyTheme:         c.Theme,
		KeyShowAllFood:   strconv.FormatBool(c.ShowAllFood),
		KeyLocalPlayer:   c.LocalPlayer,
	}
}

// Keys returns the supported keys in sorted order
func Keys() []string {
	keys := make([]string, 0, 9)
	for k := range NewStore(DefaultGame()).All() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses and stores one key, then notifies listeners.
// Setting a key to its current value still notifies.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	next := s.game
	if err := apply(&next, key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.game = next
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(key, next)
	}
	return nil
}

// AddPlayer appends a name to the player list
func (s *Store) AddPlayer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ",") {
		return fmt.Errorf("%w: player name %q", ErrInvalidValue, name)
	}

	s.mu.Lock()
	next := s.game
	if next.PlayerNames == "" {
		next.PlayerNames = name
	} else {
		next.PlayerNames += "," + name
	}
	s.game = next
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(KeyPlayerNames, next)
	}
	return nil
}

func apply(c *GameConfig, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyGameSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be an integer >= 1, got %q", ErrInvalidValue, key, value)
		}
		c.GameSize = n
	case KeySeed:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidValue, key, value)
		}
		c.Seed = n
	case KeyAllowRun, KeyMultiplayer, KeySameFoodSpawn, KeyShowAllFood:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidValue, key, value)
		}
		switch key {
		case KeyAllowRun:
			c.AllowRun = b
		case KeyMultiplayer:
			c.Multiplayer = b
		case KeySameFoodSpawn:
			c.SameFoodSpawn = b
		case KeyShowAllFood:
			c.ShowAllFood = b
		}
	case KeyTheme:
		t := strings.ToUpper(value)
		if !validTheme(t) {
			return fmt.Errorf("%w: unknown theme %q", ErrInvalidValue, value)
		}
		c.Theme = t
	case KeyPlayerNames:
		c.PlayerNames = value
	case KeyLocalPlayer:
		c.LocalPlayer = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}
