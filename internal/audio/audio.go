package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// SampleRate of every synthesized cue
const SampleRate = beep.SampleRate(44100)

// Cue names
const (
	Select  = "select"
	Success = "success"
	Error   = "error"
)

type note struct {
	freq float64 // Hz, 0 is a rest
	dur  time.Duration
}

var cues = map[string][]note{
	Select: {
		{880, 40 * time.Millisecond},
	},
	Success: {
		{523.25, 90 * time.Millisecond},
		{659.25, 90 * time.Millisecond},
		{783.99, 160 * time.Millisecond},
	},
	Error: {
		{311.13, 140 * time.Millisecond},
		{0, 40 * time.Millisecond},
		{233.08, 260 * time.Millisecond},
	},
}

var (
	speakerOnce  sync.Once
	speakerReady bool
	quiet        bool
	verbose      bool
	logFunc      func(string, ...interface{})
)

// Init configures the audio package
func Init(quietMode, verboseMode bool, logger func(string, ...interface{})) {
	quiet = quietMode
	verbose = verboseMode
	logFunc = logger
}

func log(format string, args ...interface{}) {
	if logFunc != nil && verbose {
		logFunc(format, args...)
	}
}

func ensureSpeakerInitialized() bool {
	speakerOnce.Do(func() {
		log("Setting up audio...")
		if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
			log("Audio unavailable: %v", err)
			return
		}
		speakerReady = true
	})
	return speakerReady
}

// Cue builds the streamer for a named cue
func Cue(name string) (beep.Streamer, error) {
	notes, ok := cues[name]
	if !ok {
		return nil, fmt.Errorf("unknown sound %q", name)
	}

	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		samples := SampleRate.N(n.dur)
		if n.freq == 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(SampleRate, n.freq)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize %q: %w", name, err)
		}
		parts = append(parts, beep.Take(samples, tone))
	}

	return &effects.Volume{
		Streamer: beep.Seq(parts...),
		Base:     2,
		Volume:   -3,
	}, nil
}

func start(name string, done func()) bool {
	if quiet {
		return false
	}

	streamer, err := Cue(name)
	if err != nil {
		log("Couldn't play sound: %v", err)
		return false
	}
	if !ensureSpeakerInitialized() {
		return false
	}

	speaker.Play(beep.Seq(streamer, beep.Callback(done)))
	return true
}

// Play plays a cue synchronously (blocks until complete)
func Play(name string) {
	done := make(chan struct{})
	if !start(name, func() { close(done) }) {
		return
	}
	log("Playing %s sound...", name)
	<-done
}

// PlayAsync starts a cue and returns immediately
func PlayAsync(name string) {
	start(name, func() {})
}

// StopAll stops all currently playing sounds
func StopAll() {
	if !speakerReady {
		return
	}
	speaker.Clear()
}

// Player plays cues through the package-level speaker
type Player struct{}

func (Player) Play(name string)      { Play(name) }
func (Player) PlayAsync(name string) { PlayAsync(name) }
