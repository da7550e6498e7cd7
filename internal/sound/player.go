package sound

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// tone is one note of a cue
type tone struct {
	freq     float64
	duration time.Duration
}

var cueTones = map[Cue][]tone{
	CueStart:    {{660, 80 * time.Millisecond}, {880, 120 * time.Millisecond}},
	CueFood:     {{880, 50 * time.Millisecond}},
	CueDeath:    {{440, 120 * time.Millisecond}, {220, 220 * time.Millisecond}},
	CueGameOver: {{523, 150 * time.Millisecond}, {392, 150 * time.Millisecond}, {262, 300 * time.Millisecond}},
}

// Player plays cues on the default audio device.
// A Player whose Init failed stays silent.
type Player struct {
	mu      sync.Mutex
	enabled bool
	music   beep.StreamSeekCloser
}

// Init opens the speaker. Failure is reported but the Player remains usable.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	p.enabled = true
	return nil
}

// Play queues the tones of a cue
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	enabled := p.enabled
	p.mu.Unlock()
	if !enabled {
		return
	}

	tones, ok := cueTones[c]
	if !ok {
		return
	}

	streamers := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		sine, err := generators.SineTone(sampleRate, t.freq)
		if err != nil {
			log.Printf("⚠️ Tone %v Hz: %v", t.freq, err)
			return
		}
		streamers = append(streamers, beep.Take(sampleRate.N(t.duration), sine))
	}
	speaker.Play(beep.Seq(streamers...))
}

// Close releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled {
		speaker.Clear()
		speaker.Close()
		p.enabled = false
	}
	if p.music != nil {
		p.music.Close()
		p.music = nil
	}
}
