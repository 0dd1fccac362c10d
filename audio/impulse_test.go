package audio

import (
	"math"
	"testing"

	"github.com/simukka/breath/breath"
	"github.com/simukka/breath/common"
)

func TestReverbImpulse_Shape(t *testing.T) {
	rng := common.NewSeededRNG(3)
	ir := ReverbImpulse(rng, 8000, 1, 3.4, 0.024)

	if len(ir) != 2 {
		t.Fatalf("Expected 2 channels, got %d", len(ir))
	}
	for ch, data := range ir {
		if len(data) != 8000 {
			t.Errorf("Expected 8000 frames on channel %d, got %d", ch, len(data))
		}
		for i := 0; i < 190; i++ {
			if data[i] != 0 {
				t.Errorf("Expected silent pre-delay on channel %d, got %v at %d", ch, data[i], i)
				break
			}
		}
	}

	energy := func(data []float32, from, to int) float64 {
		sum := 0.0
		for _, v := range data[from:to] {
			sum += float64(v) * float64(v)
		}
		return sum
	}
	if energy(ir[0], 192, 2000) <= energy(ir[0], 6000, 8000) {
		t.Errorf("Expected the impulse to decay")
	}
	if math.Abs(float64(ir[0][7999])) > 1e-6 {
		t.Errorf("Expected the tail to reach silence, got %v", ir[0][7999])
	}
}

func TestReverbImpulse_Deterministic(t *testing.T) {
	a := ReverbImpulse(common.NewSeededRNG(9), 8000, 0.5, 3.4, 0)
	b := ReverbImpulse(common.NewSeededRNG(9), 8000, 0.5, 3.4, 0)

	for ch := range a {
		for i := range a[ch] {
			if a[ch][i] != b[ch][i] {
				t.Fatalf("Expected identical impulses, differ at channel %d frame %d", ch, i)
			}
		}
	}
}

func TestSmoothedNoise(t *testing.T) {
	data := SmoothedNoise(common.NewSeededRNG(1), 8000, 2, 0.985)

	if len(data) != 16000 {
		t.Fatalf("Expected 16000 frames, got %d", len(data))
	}
	nonzero := false
	for i, v := range data {
		if math.Abs(float64(v)) > 1 {
			t.Fatalf("Expected noise within [-1, 1], got %v at %d", v, i)
		}
		if v != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Errorf("Expected noise to be non-silent")
	}
}

func TestEnvelope_Breakpoints(t *testing.T) {
	tests := []struct {
		name                   string
		start, dur, att, rel   float64
		peakAt, releaseAt, end float64
	}{
		{"long", 1, 4, 0.7, 3.1, 1.7, 1.9, 5},
		{"attack capped", 0, 0.5, 0.7, 0.8, 0.48, 0.48, 0.5},
		{"release after attack", 0, 4, 1, 1, 1, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnvelope(tt.start, tt.dur, tt.att, tt.rel)
			if math.Abs(env.peakAt-tt.peakAt) > 1e-9 {
				t.Errorf("Expected peak at %v, got %v", tt.peakAt, env.peakAt)
			}
			if math.Abs(env.releaseStart-tt.releaseAt) > 1e-9 {
				t.Errorf("Expected release at %v, got %v", tt.releaseAt, env.releaseStart)
			}
			if env.end != tt.end {
				t.Errorf("Expected end %v, got %v", tt.end, env.end)
			}
		})
	}
}

func TestFloor(t *testing.T) {
	if floor(0) != Silence {
		t.Errorf("Expected floor(0) = %v, got %v", Silence, floor(0))
	}
	if floor(0.5) != 0.5 {
		t.Errorf("Expected floor(0.5) = 0.5, got %v", floor(0.5))
	}
}

func TestProfileFor_Fallback(t *testing.T) {
	got := ProfileFor(breath.Phase(99))
	if got.Phase != breath.Inhale || got.ToneFreq != 293.66 {
		t.Errorf("Expected unknown phase to fall back to inhale, got %+v", got)
	}
}
