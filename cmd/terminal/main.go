package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"snake-arena/internal/config"
	"snake-arena/internal/game"
	"snake-arena/internal/session"
	"snake-arena/internal/sound"
	"snake-arena/internal/view"
	"snake-arena/internal/world"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

const helpText = "arrows/wasd move  WASD run  enter start  r ready  x reset  esc quit"

// spawner places entities in the host world
type spawner interface {
	Spawn(ctx context.Context, name string, at game.WorldPoint) error
}

// spawnRoster places the local player at spawn and the other configured
// players beside it. Only a failure for the local player is returned.
func spawnRoster(ctx context.Context, s spawner, local string, names []string, spawn game.WorldPoint) error {
	if err := s.Spawn(ctx, local, spawn); err != nil {
		return err
	}
	for i, name := range names {
		if name == local {
			continue
		}
		if err := s.Spawn(ctx, name, spawn.Dx(i+1)); err != nil {
			log.Printf("⚠️ Could not spawn %s: %v", name, err)
		}
	}
	return nil
}

// client is the local terminal player
type client struct {
	screen tcell.Screen
	sess   *session.Session
	store  *config.Store
	sound  *sound.Player
	local  string
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "💡 No .env file found, using environment variables only")
	}

	// The screen owns stdout; logs go to a file
	if f, err := os.OpenFile("snake-terminal.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	appConfig := config.Load()
	gameCfg := appConfig.Game
	if gameCfg.LocalPlayer == "" {
		gameCfg.LocalPlayer = "player"
	}

	w := world.New()
	store := config.NewStore(gameCfg)
	sess := session.New(appConfig.Session, store, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	spawn := game.WorldPoint{X: 3200, Y: 3200}
	if err := spawnRoster(ctx, sess, gameCfg.LocalPlayer, gameCfg.Players(), spawn); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to spawn %s: %v\n", gameCfg.LocalPlayer, err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	player := &sound.Player{}
	if appConfig.Audio.Enabled {
		if err := player.Init(); err != nil {
			// Non-fatal, game can run without sound
			log.Printf("Audio initialization failed: %v", err)
		}
	}
	defer player.Close()
	if path := appConfig.Audio.MusicPath; path != "" {
		if err := player.PlayMusic(path, appConfig.Audio.Volume); err != nil {
			log.Printf("⚠️ Music disabled: %v", err)
		}
	}

	c := &client{screen: screen, sess: sess, store: store, sound: player, local: gameCfg.LocalPlayer}
	c.run(ctx)
}

func (c *client) run(ctx context.Context) {
	snapshots, unsubscribe := c.sess.Subscribe()
	defer unsubscribe()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	prev := c.sess.Snapshot()
	c.draw(prev)

	for {
		select {
		case ev := <-eventChan:
			if !c.handleInput(ctx, ev) {
				return
			}
			c.draw(c.sess.Snapshot())

		case snap := <-snapshots:
			for _, cue := range sound.DetectCues(prev, snap) {
				c.sound.Play(cue)
			}
			prev = snap
			c.draw(snap)
		}
	}
}

func (c *client) handleInput(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			if err := c.sess.Start(ctx); err != nil {
				log.Printf("⚠️ Start failed: %v", err)
			}
		case tcell.KeyUp:
			c.step(ctx, 0, 1)
		case tcell.KeyDown:
			c.step(ctx, 0, -1)
		case tcell.KeyLeft:
			c.step(ctx, -1, 0)
		case tcell.KeyRight:
			c.step(ctx, 1, 0)
		case tcell.KeyRune:
			c.handleRune(ctx, ev.Rune())
		}

	case *tcell.EventResize:
		c.screen.Sync()
	}
	return true
}

// handleRune maps letter keys; upper case moves two tiles
func (c *client) handleRune(ctx context.Context, r rune) {
	switch r {
	case 'w':
		c.step(ctx, 0, 1)
	case 's':
		c.step(ctx, 0, -1)
	case 'a':
		c.step(ctx, -1, 0)
	case 'd':
		c.step(ctx, 1, 0)
	case 'W':
		c.step(ctx, 0, 2)
	case 'S':
		c.step(ctx, 0, -2)
	case 'A':
		c.step(ctx, -2, 0)
	case 'D':
		c.step(ctx, 2, 0)
	case 'r':
		c.sess.Chat(c.local, game.ReadyMessage)
	case 'x':
		if err := c.sess.Reset(ctx); err != nil {
			log.Printf("⚠️ Reset failed: %v", err)
		}
	}
}

func (c *client) step(ctx context.Context, dx, dy int) {
	if err := c.sess.Step(ctx, c.local, dx, dy); err != nil {
		log.Printf("⚠️ Step failed: %v", err)
	}
}

func (c *client) draw(snap *game.Snapshot) {
	cfg := c.store.Game()
	scene := view.BuildScene(snap, view.ThemeByName(cfg.Theme), cfg.ShowAllFood)

	c.screen.Clear()
	view.DrawTerminal(c.screen, scene, view.BuildOverlay(snap))

	_, height := c.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, r := range []rune(helpText) {
		c.screen.SetContent(i, height-1, r, nil, style)
	}
	c.screen.Show()
}
