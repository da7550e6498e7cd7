package sound

import (
	"fmt"
	"math"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
)

// PlayMusic loops an OGG Vorbis file under the cues.
// The file is decoded on the fly rather than loaded into memory.
func (p *Player) PlayMusic(path string, volume float64) error {
	p.mu.Lock()
	enabled := p.enabled
	p.mu.Unlock()
	if !enabled {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open music: %w", err)
	}
	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode music: %w", err)
	}

	var s beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != sampleRate {
		s = beep.Resample(4, format.SampleRate, sampleRate, s)
	}
	speaker.Play(&effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeExponent(volume),
		Silent:   volume <= 0,
	})

	p.mu.Lock()
	p.music = streamer
	p.mu.Unlock()
	return nil
}

// volumeExponent maps a linear 0..1 level to a base 2 exponent
func volumeExponent(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v > 1 {
		v = 1
	}
	return math.Log2(v)
}
