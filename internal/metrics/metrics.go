// Package metrics exposes game metrics to Prometheus.
// Labels are bounded: phases and death causes, never player names.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snake_tick_duration_seconds",
		Help:    "Time spent in one engine tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	phase = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snake_phase",
		Help: "Current engine phase (0 idle, 1 waiting, 2 ready, 3 playing, 4 game over)",
	})

	participants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snake_participants",
		Help: "Participants in the current game",
	})

	alive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snake_participants_alive",
		Help: "Participants still alive in the current game",
	})

	deaths = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snake_deaths_total",
		Help: "Participant deaths by cause",
	}, []string{"cause"}) // out-of-bounds, running, trail-collision

	foodEaten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snake_food_eaten_total",
		Help: "Food items eaten",
	})

	gamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snake_games_started_total",
		Help: "Games initialized",
	})

	readySignals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snake_ready_signals_total",
		Help: "Ready signals accepted in the lobby",
	})

	commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snake_session_commands_total",
		Help: "Commands processed by the session loop",
	}, []string{"command"})
)

// RecordTick records tick timing
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// SetPhase records the engine phase as its numeric value
func SetPhase(p int) {
	phase.Set(float64(p))
}

// SetParticipants updates roster gauges
func SetParticipants(total, aliveCount int) {
	participants.Set(float64(total))
	alive.Set(float64(aliveCount))
}

// RecordDeath counts a death. cause must be a game.DeathCause value.
func RecordDeath(cause string) {
	deaths.WithLabelValues(cause).Inc()
}

func RecordFoodEaten() {
	foodEaten.Inc()
}

func RecordGameStarted() {
	gamesStarted.Inc()
}

func RecordReadySignal() {
	readySignals.Inc()
}

// RecordCommand counts a session command by its kind
func RecordCommand(kind string) {
	commands.WithLabelValues(kind).Inc()
}
