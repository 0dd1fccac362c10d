package offline

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/simukka/breath/audio"
)

func rms(samples [][2]float64, ch int) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s[ch] * s[ch]
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func risingCrossings(samples [][2]float64) int {
	n := 0
	for i := 1; i < len(samples); i++ {
		if samples[i-1][0] < 0 && samples[i][0] >= 0 {
			n++
		}
	}
	return n
}

func TestSession_StartsSuspended(t *testing.T) {
	s := NewSession(8000)

	if s.State() != audio.StateSuspended {
		t.Errorf("Expected suspended, got %s", s.State())
	}

	out := s.RenderSeconds(0.1)
	if s.CurrentTime() != 0 {
		t.Errorf("Expected clock frozen while suspended, got %f", s.CurrentTime())
	}
	if rms(out, 0) != 0 {
		t.Error("Expected silence while suspended")
	}
}

func TestSession_ResumeLifecycle(t *testing.T) {
	s := NewSession(8000)
	blocked := errors.New("not allowed")

	s.FailResume(blocked)
	if err := s.Resume(); !errors.Is(err, blocked) {
		t.Errorf("Expected injected failure, got %v", err)
	}
	if s.State() != audio.StateSuspended {
		t.Errorf("Expected still suspended, got %s", s.State())
	}

	s.FailResume(nil)
	if err := s.Resume(); err != nil {
		t.Fatalf("Expected resume to succeed, got %v", err)
	}
	s.RenderSeconds(0.032)
	if s.CurrentTime() != 256.0/8000 {
		t.Errorf("Expected clock at 2 quanta, got %f", s.CurrentTime())
	}

	s.Interrupt()
	if s.State() != audio.StateInterrupted {
		t.Errorf("Expected interrupted, got %s", s.State())
	}

	s.Close()
	if err := s.Resume(); !errors.Is(err, audio.ErrSessionClosed) {
		t.Errorf("Expected closed error, got %v", err)
	}
}

func TestParam_Automation(t *testing.T) {
	s := NewRunningSession(8000)
	p := newParam(s, "test", 5)

	p.SetValueAtTime(1, 1)
	p.LinearRampToValueAtTime(3, 2)
	p.ExponentialRampToValueAtTime(12, 4)

	tests := []struct {
		at       float64
		expected float64
	}{
		{0.5, 5},
		{1, 1},
		{1.5, 2},
		{2, 3},
		{3, 6},
		{4, 12},
		{9, 12},
	}

	for _, tc := range tests {
		if got := p.Value(tc.at); math.Abs(got-tc.expected) > 1e-9 {
			t.Errorf("At %.1fs expected %f, got %f", tc.at, tc.expected, got)
		}
	}
}

func TestParam_SetTargetApproaches(t *testing.T) {
	s := NewRunningSession(8000)
	p := newParam(s, "gain", 1)

	p.SetTargetAtTime(0, 1, 0.5)

	if got := p.Value(1.5); math.Abs(got-math.Exp(-1)) > 1e-9 {
		t.Errorf("Expected one time constant to reach 1/e, got %f", got)
	}
	if got := p.Value(20); got > 1e-12 {
		t.Errorf("Expected value near target, got %f", got)
	}
}

func TestParam_CancelScheduledValues(t *testing.T) {
	s := NewRunningSession(8000)
	p := newParam(s, "gain", 1)

	p.SetValueAtTime(0.0001, 0)
	p.ExponentialRampToValueAtTime(0.5, 1)
	p.ExponentialRampToValueAtTime(0.0001, 3)
	p.CancelScheduledValues(1)

	if len(p.Events()) != 1 {
		t.Fatalf("Expected one event left, got %d", len(p.Events()))
	}
	if got := p.Value(2); got != 0.0001 {
		t.Errorf("Expected value held at last event, got %f", got)
	}
}

func TestParam_ExponentialToZeroIsFault(t *testing.T) {
	s := NewRunningSession(8000)
	p := newParam(s, "gain", 1)

	p.ExponentialRampToValueAtTime(0, 1)

	if len(s.Faults()) != 1 {
		t.Errorf("Expected one fault, got %d", len(s.Faults()))
	}
	if len(p.Events()) != 0 {
		t.Error("Expected the ramp to be rejected")
	}
}

func TestParam_CompactKeepsValues(t *testing.T) {
	s := NewRunningSession(8000)
	p := newParam(s, "gain", 1)
	p.SetValueAtTime(0.0001, 0)
	p.ExponentialRampToValueAtTime(0.2, 0.5)
	p.ExponentialRampToValueAtTime(0.1, 1)
	p.ExponentialRampToValueAtTime(0.0001, 2)

	before := p.Value(1.5)
	p.compact(1.2)
	if len(p.Events()) != 2 {
		t.Errorf("Expected two events after compaction, got %d", len(p.Events()))
	}
	if after := p.Value(1.5); math.Abs(before-after) > 1e-12 {
		t.Errorf("Expected compaction to keep the curve, got %f and %f", before, after)
	}
}

func TestOscillator_Frequency(t *testing.T) {
	tests := []struct {
		name     string
		freq     float64
		detune   float64
		expected int
	}{
		{"plain", 100, 0, 100},
		{"octave up", 100, 1200, 200},
		{"octave down", 200, -1200, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewRunningSession(8000)
			osc := s.CreateOscillator(audio.Sine)
			osc.Frequency().SetValue(tc.freq)
			osc.Detune().SetValue(tc.detune)
			osc.Connect(s.Destination())
			if err := osc.Start(0); err != nil {
				t.Fatal(err)
			}

			got := risingCrossings(s.RenderSeconds(1))
			if got < tc.expected-1 || got > tc.expected+1 {
				t.Errorf("Expected about %d cycles, got %d", tc.expected, got)
			}
		})
	}
}

func TestOscillator_RespectsSchedule(t *testing.T) {
	s := NewRunningSession(8000)
	osc := s.CreateOscillator(audio.Square)
	osc.Frequency().SetValue(50)
	osc.Connect(s.Destination())

	if err := osc.Stop(1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected stop before start to fail, got %v", err)
	}
	if err := osc.Start(0.5); err != nil {
		t.Fatal(err)
	}
	if err := osc.Start(0.6); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected second start to fail, got %v", err)
	}
	if err := osc.Stop(1); err != nil {
		t.Fatal(err)
	}

	out := s.RenderSeconds(1.5)
	if rms(out[:3900], 0) != 0 {
		t.Error("Expected silence before start")
	}
	if rms(out[4100:7900], 0) < 0.9 {
		t.Error("Expected a full square wave while playing")
	}
	if rms(out[8100:], 0) != 0 {
		t.Error("Expected silence after stop")
	}
}

func TestGain_ModulatedByOscillator(t *testing.T) {
	s := NewRunningSession(8000)
	carrier := s.CreateOscillator(audio.Square)
	carrier.Frequency().SetValue(400)
	amp := s.CreateGain()
	amp.Gain().SetValue(0)
	lfo := s.CreateOscillator(audio.Square)
	lfo.Frequency().SetValue(1)

	carrier.Connect(amp)
	lfo.ConnectParam(amp.Gain())
	amp.Connect(s.Destination())
	carrier.Start(0)
	lfo.Start(0)

	out := s.RenderSeconds(1)
	if rms(out[100:3900], 0) < 0.9 {
		t.Error("Expected gain near 1 in the first half of the modulator cycle")
	}
	if rms(out[4100:7900], 0) < 0.9 {
		t.Error("Expected gain near -1 in the second half of the modulator cycle")
	}
}

func TestBiquad_Responses(t *testing.T) {
	tests := []struct {
		name  string
		kind  audio.FilterType
		freq  float64
		tone  float64
		check func(ratio float64) bool
	}{
		{"lowpass passes low", audio.Lowpass, 800, 100, func(r float64) bool { return r > 0.8 }},
		{"lowpass cuts high", audio.Lowpass, 200, 3000, func(r float64) bool { return r < 0.05 }},
		{"highpass cuts low", audio.Highpass, 2000, 100, func(r float64) bool { return r < 0.05 }},
		{"bandpass passes center", audio.Bandpass, 500, 500, func(r float64) bool { return r > 0.9 }},
		{"bandpass cuts far", audio.Bandpass, 500, 3500, func(r float64) bool { return r < 0.2 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewRunningSession(8000)
			osc := s.CreateOscillator(audio.Sine)
			osc.Frequency().SetValue(tc.tone)
			f := s.CreateFilter(tc.kind)
			f.Frequency().SetValue(tc.freq)
			f.Q().SetValue(1)
			osc.Connect(f)
			f.Connect(s.Destination())
			osc.Start(0)

			out := s.RenderSeconds(1)
			ratio := rms(out[2000:], 0) / (1 / math.Sqrt2)
			if !tc.check(ratio) {
				t.Errorf("Unexpected gain ratio %f", ratio)
			}
		})
	}
}

func TestBufferSource_Loops(t *testing.T) {
	s := NewRunningSession(8000)
	buf, err := s.CreateBuffer([][]float32{{1, 0, -1, 0}}, 8000)
	if err != nil {
		t.Fatal(err)
	}

	looped := s.CreateBufferSource(buf, true)
	looped.Connect(s.Destination())
	looped.Start(0)

	out := s.RenderSeconds(0.01)
	for i, v := range out {
		expected := []float64{1, 0, -1, 0}[i%4]
		if v[0] != expected || v[1] != expected {
			t.Fatalf("Frame %d: expected %f on both channels, got %v", i, expected, v)
		}
	}
}

func TestBufferSource_OneShotEnds(t *testing.T) {
	s := NewRunningSession(8000)
	buf, _ := s.CreateBuffer([][]float32{{0.5, 0.5}, {0.25, 0.25}}, 8000)

	src := s.CreateBufferSource(buf, false)
	src.Connect(s.Destination())
	src.Start(0)

	out := s.RenderSeconds(0.01)
	if out[0] != [2]float64{0.5, 0.25} || out[1] != [2]float64{0.5, 0.25} {
		t.Errorf("Expected buffer frames first, got %v %v", out[0], out[1])
	}
	if out[2] != [2]float64{} {
		t.Errorf("Expected silence after the buffer ends, got %v", out[2])
	}
}

func TestCreateBuffer_RejectsRaggedChannels(t *testing.T) {
	s := NewRunningSession(8000)

	if _, err := s.CreateBuffer([][]float32{{1, 2}, {1}}, 8000); err == nil {
		t.Error("Expected an error for ragged channels")
	}
	if _, err := s.CreateBuffer(nil, 8000); err == nil {
		t.Error("Expected an error for no channels")
	}
}

func TestDisconnect_RemovesFromGraph(t *testing.T) {
	s := NewRunningSession(8000)
	osc := s.CreateOscillator(audio.Sine)
	osc.Frequency().SetValue(100)
	g := s.CreateGain()
	osc.Connect(g)
	g.Connect(s.Destination())
	osc.Start(0)

	// Whole quanta, so nothing rendered before the disconnect is left over.
	if rms(s.RenderSeconds(0.096), 0) == 0 {
		t.Fatal("Expected sound while connected")
	}
	if err := g.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if rms(s.RenderSeconds(0.096), 0) != 0 {
		t.Error("Expected silence after disconnect")
	}
}

func TestConvolver_MatchesDirectConvolution(t *testing.T) {
	tests := []struct {
		name string
		lead int
		taps int
	}{
		{"head only", 0, 100},
		{"head and tail", 3, 1500},
		{"long pre-delay", 600, 2400},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			s := NewRunningSession(8000)

			ir := make([]float32, tc.taps)
			for i := tc.lead; i < tc.taps; i++ {
				ir[i] = float32(rng.Float64()*2-1) * 0.1
			}
			input := make([]float32, 4000)
			for i := range input {
				input[i] = float32(rng.Float64()*2 - 1)
			}

			irBuf, _ := s.CreateBuffer([][]float32{ir}, 8000)
			inBuf, _ := s.CreateBuffer([][]float32{input}, 8000)
			conv := newConvolver(s, irBuf.(*Buffer))
			src := s.CreateBufferSource(inBuf, false)
			src.Connect(conv)
			conv.Connect(s.Destination())
			src.Start(0)

			out := s.RenderSeconds(0.75)
			scale := conv.scale
			for n := 0; n < len(out); n += 7 {
				expected := 0.0
				for k := 0; k < len(ir) && k <= n; k++ {
					if n-k < len(input) {
						expected += float64(ir[k]) * float64(input[n-k])
					}
				}
				expected *= scale
				if math.Abs(out[n][0]-expected) > 1e-4*math.Max(1, math.Abs(expected)) {
					t.Fatalf("Frame %d: expected %f, got %f", n, expected, out[n][0])
				}
				if out[n][1] != out[n][0] {
					t.Fatalf("Frame %d: expected a mono response on both channels", n)
				}
			}
		})
	}
}

func TestConvolver_PartitionFollowsPreDelay(t *testing.T) {
	s := NewRunningSession(48000)
	ir := make([]float32, 48000)
	for i := 1152; i < len(ir); i++ {
		ir[i] = 0.01
	}
	buf, _ := s.CreateBuffer([][]float32{ir, ir}, 48000)

	conv := newConvolver(s, buf.(*Buffer))
	if conv.part != 1024 {
		t.Errorf("Expected partition 1024, got %d", conv.part)
	}
	if conv.headOn {
		t.Error("Expected the head partition to be silent")
	}
}

func TestCompressor_StaticCurve(t *testing.T) {
	s := NewRunningSession(8000)
	c := newCompressor(s, audio.CompressorSettings{Threshold: -14, Knee: 28, Ratio: 3, Attack: 0.02, Release: 0.3})

	if g := c.gain(0.001); math.Abs(g-1) > 1e-9 {
		t.Errorf("Expected unity gain far below the knee, got %f", g)
	}
	if g := c.gain(1); g >= 1 {
		t.Errorf("Expected gain reduction at full scale, got %f", g)
	}
	if c.makeup <= 1 {
		t.Errorf("Expected makeup gain above unity, got %f", c.makeup)
	}
	if c.gain(0.5) <= c.gain(1) {
		t.Error("Expected louder input to be reduced more")
	}
}

func TestStream_TicksOnHops(t *testing.T) {
	s := NewRunningSession(8000)
	var ticks []float64
	st := NewStream(s, 80, func(sec float64) { ticks = append(ticks, sec) })

	buf := make([][2]float64, 200)
	n, ok := st.Stream(buf)
	if n != 200 || !ok {
		t.Fatalf("Expected 200 frames, got %d %v", n, ok)
	}
	st.Stream(buf[:40])

	expected := []float64{0, 0.01, 0.02}
	if len(ticks) != len(expected) {
		t.Fatalf("Expected %d ticks, got %v", len(expected), ticks)
	}
	for i := range expected {
		if math.Abs(ticks[i]-expected[i]) > 1e-12 {
			t.Errorf("Tick %d: expected %f, got %f", i, expected[i], ticks[i])
		}
	}
	if st.Seconds() != 0.03 {
		t.Errorf("Expected 0.03s streamed, got %f", st.Seconds())
	}
	if st.Err() != nil {
		t.Error("Expected no error")
	}
}

func TestStream_ClockRunsWhileSuspended(t *testing.T) {
	s := NewSession(8000)
	st := NewStream(s, 128, nil)

	st.Stream(make([][2]float64, 800))
	if st.Seconds() != 0.1 {
		t.Errorf("Expected stream clock at 0.1s, got %f", st.Seconds())
	}
	if s.CurrentTime() != 0 {
		t.Errorf("Expected session clock frozen, got %f", s.CurrentTime())
	}
}
