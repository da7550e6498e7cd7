// Package session owns the engine and host world on a single goroutine.
//
// Every mutation travels through the inbox: ticks, chat, host movement and
// lifecycle commands. Readers use the immutable snapshot published after each
// processed command or tick. Multiplayer relies on every client ticking in
// lockstep from the same seed; drift between clients is not corrected.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"snake-arena/internal/config"
	"snake-arena/internal/eventlog"
	"snake-arena/internal/game"
	"snake-arena/internal/metrics"
	"snake-arena/internal/world"
)

// ErrStopped is returned to callers once Run has exited
var ErrStopped = errors.New("session stopped")

// Session runs one snake game for one host world
type Session struct {
	inbox    chan any
	interval time.Duration

	engine *game.Engine
	world  *world.World
	store  *config.Store
	events *eventlog.Log

	latest   atomic.Pointer[game.Snapshot]
	sequence uint64

	subsMu sync.Mutex
	subs   map[chan *game.Snapshot]struct{}

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a session. Call Run to start processing.
// A zero TickInterval disables the ticker; ticks then come from Tick.
func New(cfg config.SessionConfig, store *config.Store, w *world.World) *Session {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = config.DefaultSession().InboxSize
	}
	s := &Session{
		inbox:    make(chan any, cfg.InboxSize),
		interval: cfg.TickInterval,
		engine:   game.NewEngine(w),
		world:    w,
		store:    store,
		subs:     make(map[chan *game.Snapshot]struct{}),
		done:     make(chan struct{}),
	}

	s.engine.SetHooks(game.Hooks{
		OnPhaseChange: func(from, to game.Phase) {
			metrics.SetPhase(int(to))
			s.emit(eventlog.EventTypePhase, "", eventlog.PhasePayload{From: from, To: to})
		},
		OnDeath: func(p *game.Participant, cause game.DeathCause) {
			metrics.RecordDeath(string(cause))
			s.emit(eventlog.EventTypeDeath, p.Name(), eventlog.DeathPayload{
				Cause: cause,
				At:    p.Current(),
				Score: p.FinalScore(),
			})
		},
		OnFoodEaten: func(p *game.Participant) {
			metrics.RecordFoodEaten()
			s.emit(eventlog.EventTypeFood, p.Name(), eventlog.FoodPayload{At: p.Current(), Score: p.Score()})
		},
	})

	if local := store.Game().LocalPlayer; local != "" {
		w.SetLocal(local)
	}
	store.OnChange(func(key string, _ config.GameConfig) {
		select {
		case s.inbox <- ConfigChanged{Key: key}:
		case <-s.done:
		}
	})

	s.publish()
	return s
}

// Run processes the inbox and ticker until ctx is cancelled
func (s *Session) Run(ctx context.Context) error {
	defer s.doneOnce.Do(func() { close(s.done) })

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	log.Printf("🐍 Session running (tick %v)", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Session stopped")
			return ctx.Err()
		case cmd := <-s.inbox:
			s.handleCommand(cmd)
			s.publish()
		case <-tick:
			s.tick()
			s.publish()
		}
	}
}

func (s *Session) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Start:
		metrics.RecordCommand("start")
		reply(c.Reply, s.start())
	case Reset:
		metrics.RecordCommand("reset")
		s.engine.Reset()
		reply(c.Reply, nil)
	case Tick:
		metrics.RecordCommand("tick")
		s.tick()
		reply(c.Reply, nil)
	case Chat:
		metrics.RecordCommand("chat")
		if s.engine.HandleReadySignal(c.Username, c.Text) {
			metrics.RecordReadySignal()
			s.emit(eventlog.EventTypeReady, c.Username, nil)
		}
	case Spawn:
		metrics.RecordCommand("spawn")
		_, err := s.world.Spawn(c.Name, c.At)
		reply(c.Reply, err)
	case Despawn:
		metrics.RecordCommand("despawn")
		reply(c.Reply, s.world.Remove(c.Name))
	case Move:
		metrics.RecordCommand("move")
		reply(c.Reply, s.world.Move(c.Name, c.To))
	case Step:
		metrics.RecordCommand("step")
		reply(c.Reply, s.world.Step(c.Name, c.Dx, c.Dy))
	case SetTerrain:
		metrics.RecordCommand("terrain")
		s.world.SetFlags(c.Point, c.Flags)
		reply(c.Reply, nil)
	case ConfigChanged:
		metrics.RecordCommand("config")
		if local := s.store.Game().LocalPlayer; local != "" {
			s.world.SetLocal(local)
		}
		if s.engine.Phase() != game.PhaseIdle {
			log.Printf("⚙️ Config %s changed, game reset", c.Key)
		}
		s.engine.Reset()
	default:
		log.Printf("⚠️ Unknown session command %T", cmd)
	}
}

func (s *Session) start() error {
	cfg := s.store.Game()
	if cfg.LocalPlayer != "" {
		s.world.SetLocal(cfg.LocalPlayer)
	}
	if err := s.engine.Initialize(cfg.Settings()); err != nil {
		log.Printf("⚠️ Cannot start game: %v", err)
		return err
	}
	metrics.RecordGameStarted()

	settings := cfg.Settings()
	names := make([]string, 0, len(s.engine.Participants()))
	for _, p := range s.engine.Participants() {
		names = append(names, p.Name())
	}
	s.emit(eventlog.EventTypeGameStart, "", eventlog.GameStartPayload{
		Participants: names,
		Corner:       s.engine.Corner(),
		Size:         s.engine.Size(),
		Seed:         settings.Seed,
		Multiplayer:  settings.Multiplayer,
	})
	return nil
}

// SetEventLog attaches a journal. Call it before Run.
func (s *Session) SetEventLog(l *eventlog.Log) {
	s.events = l
}

func (s *Session) emit(t eventlog.EventType, participant string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Emit(eventlog.NewEvent(t, s.engine.TickCount(), s.engine.GameID(), participant, payload))
}

func (s *Session) tick() {
	start := time.Now()
	s.engine.Tick()
	metrics.RecordTick(time.Since(start))
}

// publish stores a fresh snapshot and wakes subscribers.
// Slow subscribers only ever see the newest snapshot.
func (s *Session) publish() {
	s.sequence++
	snap := s.engine.Snapshot()
	snap.Sequence = s.sequence
	s.latest.Store(snap)

	metrics.SetParticipants(len(snap.Participants), snap.AliveCount())

	s.subsMu.Lock()
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	s.subsMu.Unlock()
}

func reply(ch chan<- error, err error) {
	if ch != nil {
		ch <- err
	}
}

// Snapshot returns the latest published state. Never nil.
func (s *Session) Snapshot() *game.Snapshot {
	return s.latest.Load()
}

// Config returns the runtime configuration store
func (s *Session) Config() *config.Store {
	return s.store
}

// Subscribe returns a channel that receives every published snapshot.
// Call the returned func to unsubscribe.
func (s *Session) Subscribe() (<-chan *game.Snapshot, func()) {
	ch := make(chan *game.Snapshot, 1)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, ch)
			s.subsMu.Unlock()
		})
	}
}

// post enqueues a command without waiting for it to run
func (s *Session) post(ctx context.Context, cmd any) error {
	select {
	case s.inbox <- cmd:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// request enqueues a command and waits for its reply
func (s *Session) request(ctx context.Context, build func(chan<- error) any) error {
	ch := make(chan error, 1)
	if err := s.post(ctx, build(ch)); err != nil {
		return err
	}
	select {
	case err := <-ch:
		return err
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start initializes a game from the current configuration
func (s *Session) Start(ctx context.Context) error {
	return s.request(ctx, func(r chan<- error) any { return Start{Reply: r} })
}

// Reset drops the current game
func (s *Session) Reset(ctx context.Context) error {
	return s.request(ctx, func(r chan<- error) any { return Reset{Reply: r} })
}

// Tick advances the engine once
func (s *Session) Tick(ctx context.Context) error {
	return s.request(ctx, func(r chan<- error) any { return Tick{Reply: r} })
}

// Chat implements chat.Sink. Lines are dropped once the session stops.
func (s *Session) Chat(username, text string) {
	_ = s.post(context.Background(), Chat{Username: username, Text: text})
}

// Spawn adds an entity to the world
func (s *Session) Spawn(ctx context.Context, name string, at game.WorldPoint) error {
	return s.request(ctx, func(r chan<- error) any { return Spawn{Name: name, At: at, Reply: r} })
}

// Despawn removes an entity from the world
func (s *Session) Despawn(ctx context.Context, name string) error {
	return s.request(ctx, func(r chan<- error) any { return Despawn{Name: name, Reply: r} })
}

// Move teleports an entity
func (s *Session) Move(ctx context.Context, name string, to game.WorldPoint) error {
	return s.request(ctx, func(r chan<- error) any { return Move{Name: name, To: to, Reply: r} })
}

// Step moves an entity by a tile offset
func (s *Session) Step(ctx context.Context, name string, dx, dy int) error {
	return s.request(ctx, func(r chan<- error) any { return Step{Name: name, Dx: dx, Dy: dy, Reply: r} })
}

// SetTerrain sets tile collision flags
func (s *Session) SetTerrain(ctx context.Context, p game.WorldPoint, flags int) error {
	return s.request(ctx, func(r chan<- error) any { return SetTerrain{Point: p, Flags: flags, Reply: r} })
}

// AddPlayer appends a name to the configured player list. The change resets the game.
func (s *Session) AddPlayer(name string) error {
	return s.store.AddPlayer(name)
}

// Entities lists present entity names
func (s *Session) Entities() []string {
	return s.world.Names()
}
