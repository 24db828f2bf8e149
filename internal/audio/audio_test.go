package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func countSamples(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

// TestCue tests that each cue lasts exactly as long as its notes
func TestCue(t *testing.T) {
	for name, notes := range cues {
		t.Run(name, func(t *testing.T) {
			want := 0
			for _, n := range notes {
				want += SampleRate.N(n.dur)
			}

			s, err := Cue(name)
			if err != nil {
				t.Fatalf("Cue() error = %v", err)
			}
			if got := countSamples(s); got != want {
				t.Errorf("Cue(%q) samples = %d, want %d", name, got, want)
			}
		})
	}
}

// TestCue_Unknown tests an unknown cue name
func TestCue_Unknown(t *testing.T) {
	if _, err := Cue("fanfare"); err == nil {
		t.Error("Cue() expected error for unknown name")
	}
}

// TestPlay_Quiet tests that quiet mode never touches the speaker
func TestPlay_Quiet(t *testing.T) {
	Init(true, false, nil)
	t.Cleanup(func() { Init(false, false, nil) })

	done := make(chan struct{})
	go func() {
		Play(Error)
		PlayAsync(Success)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Play() blocked in quiet mode")
	}
	if speakerReady {
		t.Error("speaker initialized in quiet mode")
	}
}

// TestStopAll_Uninitialized tests that stopping before any playback is a no-op
func TestStopAll_Uninitialized(t *testing.T) {
	if speakerReady {
		t.Skip("speaker already initialized by an earlier test")
	}
	StopAll()
	if speakerReady {
		t.Error("StopAll() initialized the speaker")
	}
}
