package audio_test

import (
	"errors"
	"math"
	"testing"

	"github.com/simukka/breath/audio"
	"github.com/simukka/breath/audio/offline"
	"github.com/simukka/breath/breath"
)

const testRate = 8000

func newTestEngine(t *testing.T, opts ...audio.EngineOption) (*audio.Engine, *offline.Session) {
	t.Helper()
	s := offline.NewRunningSession(testRate)
	e := audio.NewEngine(s.Factory(), opts...)
	e.SetSoundEnabled(true)
	return e, s
}

func names(voices []*audio.Voice) []string {
	out := make([]string, len(voices))
	for i, v := range voices {
		out[i] = v.Name
	}
	return out
}

func gainEvents(t *testing.T, v *audio.Voice) []offline.Event {
	t.Helper()
	p, ok := v.Gain().Gain().(*offline.Param)
	if !ok {
		t.Fatalf("Expected offline gain param for %s", v.Name)
	}
	return p.Events()
}

func TestEngine_Unavailable(t *testing.T) {
	e := audio.NewEngine(nil)

	if e.Available() {
		t.Errorf("Expected engine without a backend to be unavailable")
	}
	if e.SetSoundEnabled(true) {
		t.Errorf("Expected sound to stay off without a backend")
	}
	if _, err := e.Wake(); !errors.Is(err, audio.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}

	e.PlayCue(breath.Inhale, 4)
	if len(e.Voices()) != 0 {
		t.Errorf("Expected no voices, got %d", len(e.Voices()))
	}
}

func TestEngine_CueComposition(t *testing.T) {
	for _, profile := range audio.AllProfiles() {
		t.Run(profile.Phase.String(), func(t *testing.T) {
			e, s := newTestEngine(t)
			e.PlayCue(profile.Phase, 4)

			voices := e.Voices()
			want := []string{"wind", "shimmer", "tone", "harmony", "strike"}
			got := names(voices)
			if len(got) != len(want) {
				t.Fatalf("Expected voices %v, got %v", want, got)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("Expected voice %d to be %s, got %s", i, want[i], got[i])
				}
			}

			wind, shimmer, tone, harmony, strike := voices[0], voices[1], voices[2], voices[3], voices[4]
			boost := e.Config().PadGainBoost

			if math.Abs(wind.Pad.Peak-profile.WindPeak*boost) > 1e-12 {
				t.Errorf("Expected wind peak %v, got %v", profile.WindPeak*boost, wind.Pad.Peak)
			}
			if wind.Pad.CenterStart != profile.WindCenter || wind.Pad.CenterEnd != profile.WindEnd {
				t.Errorf("Expected wind sweep %v -> %v, got %v -> %v",
					profile.WindCenter, profile.WindEnd, wind.Pad.CenterStart, wind.Pad.CenterEnd)
			}
			if shimmer.Pad.StartOffset != 0.04 {
				t.Errorf("Expected shimmer offset 0.04, got %v", shimmer.Pad.StartOffset)
			}
			if math.Abs(shimmer.Pad.Duration-3.84) > 1e-9 {
				t.Errorf("Expected shimmer duration 3.84, got %v", shimmer.Pad.Duration)
			}
			if tone.Layer.StartFreq != profile.ToneFreq || tone.Layer.Peak != profile.TonePeak {
				t.Errorf("Expected tone %v Hz at %v, got %v Hz at %v",
					profile.ToneFreq, profile.TonePeak, tone.Layer.StartFreq, tone.Layer.Peak)
			}
			if harmony.Layer.StartFreq != profile.HarmonyFreq {
				t.Errorf("Expected harmony %v Hz, got %v", profile.HarmonyFreq, harmony.Layer.StartFreq)
			}
			if math.Abs(harmony.Layer.StartCutoff-profile.ToneCutoff*0.96) > 1e-9 {
				t.Errorf("Expected harmony cutoff %v, got %v", profile.ToneCutoff*0.96, harmony.Layer.StartCutoff)
			}
			if strike.Layer.StartFreq != profile.BowlFreq {
				t.Errorf("Expected strike at %v Hz, got %v", profile.BowlFreq, strike.Layer.StartFreq)
			}
			if math.Abs(strike.Start-profile.BowlOffset) > 1e-9 {
				t.Errorf("Expected strike to start at %v, got %v", profile.BowlOffset, strike.Start)
			}
			if math.Abs(strike.End-strike.Start-3.4) > 1e-9 {
				t.Errorf("Expected strike duration 3.4, got %v", strike.End-strike.Start)
			}

			if !e.AmbientPlaying() {
				t.Errorf("Expected the ambient bed to start with the first cue")
			}
			if len(s.Faults()) != 0 {
				t.Errorf("Expected no scheduling faults, got %v", s.Faults())
			}
		})
	}
}

func TestEngine_ShortCueDuration(t *testing.T) {
	e, _ := newTestEngine(t)
	e.PlayCue(breath.Exhale, 0.2)

	wind := e.Voices()[0]
	if math.Abs(wind.End-wind.Start-0.8) > 1e-9 {
		t.Errorf("Expected cue duration to be raised to 0.8, got %v", wind.End-wind.Start)
	}
}

func TestEngine_EnvelopeBreakpoints(t *testing.T) {
	e, s := newTestEngine(t)
	e.PlayCue(breath.Inhale, 4)
	if _, err := e.ScheduleLayer(audio.LayerOptions{Name: "faint", Peak: 1e-9, Duration: 0.3}); err != nil {
		t.Fatalf("Expected layer to schedule, got %v", err)
	}

	for _, v := range e.Voices() {
		events := gainEvents(t, v)
		if len(events) != 4 {
			t.Fatalf("Expected 4 envelope events for %s, got %d", v.Name, len(events))
		}
		if events[0].Kind != offline.SetValue || events[0].Value != audio.Silence || events[0].Time != v.Start {
			t.Errorf("Expected %s to open at silence at %v, got %+v", v.Name, v.Start, events[0])
		}
		for i := 1; i < 4; i++ {
			if events[i].Kind != offline.ExponentialRamp {
				t.Errorf("Expected exponential ramp for %s event %d, got %v", v.Name, i, events[i].Kind)
			}
			if events[i].Value < audio.Silence {
				t.Errorf("Expected %s ramp target >= %v, got %v", v.Name, audio.Silence, events[i].Value)
			}
			if events[i].Time < events[i-1].Time {
				t.Errorf("Expected %s breakpoints in order, got %v after %v", v.Name, events[i].Time, events[i-1].Time)
			}
		}
		if events[2].Time > v.End-0.02+1e-9 {
			t.Errorf("Expected %s release to start before %v, got %v", v.Name, v.End-0.02, events[2].Time)
		}
		if events[3].Time != v.End {
			t.Errorf("Expected %s to end at %v, got %v", v.Name, v.End, events[3].Time)
		}
	}

	if len(s.Faults()) != 0 {
		t.Errorf("Expected no faults, got %v", s.Faults())
	}
}

func TestEngine_VoiceFlush(t *testing.T) {
	e, _ := newTestEngine(t)

	counts := []int{5, 10, 15, 5}
	for i, want := range counts {
		e.PlayCue(breath.Inhale, 4)
		if got := len(e.Voices()); got != want {
			t.Errorf("Expected %d voices after cue %d, got %d", want, i+1, got)
		}
	}
}

func TestEngine_StopVoices(t *testing.T) {
	e, _ := newTestEngine(t)
	e.PlayCue(breath.HoldHigh, 4)
	voices := e.Voices()

	e.StopVoices()
	if len(e.Voices()) != 0 {
		t.Errorf("Expected no voices after stop, got %d", len(e.Voices()))
	}
	for _, v := range voices {
		events := gainEvents(t, v)
		last := events[len(events)-1]
		if last.Kind != offline.SetTarget || last.Value != audio.Silence {
			t.Errorf("Expected %s to fade to silence, got %+v", v.Name, last)
		}
		if last.TimeConstant != e.Config().StopFade {
			t.Errorf("Expected fade time constant %v, got %v", e.Config().StopFade, last.TimeConstant)
		}
	}
}

func TestEngine_CollectExpired(t *testing.T) {
	e, s := newTestEngine(t)
	e.PlayCue(breath.Inhale, 1)

	latest := 0.0
	for _, v := range e.Voices() {
		latest = math.Max(latest, v.ExpiresAt)
	}

	s.RenderSeconds(0.5)
	e.Collect()
	if len(e.Voices()) == 0 {
		t.Errorf("Expected voices to survive before they end")
	}

	s.RenderSeconds(latest)
	e.Collect()
	if len(e.Voices()) != 0 {
		t.Errorf("Expected expired voices to be collected, got %v", names(e.Voices()))
	}
}

func TestEngine_AmbientOnce(t *testing.T) {
	e, s := newTestEngine(t)

	if !e.StartAmbient() {
		t.Fatalf("Expected ambient bed to start")
	}
	nodes := s.NodeCount()
	if !e.StartAmbient() {
		t.Errorf("Expected ambient bed to report playing")
	}
	e.PlayCue(breath.Inhale, 4)
	e.StopVoices()
	e.PlayCue(breath.Exhale, 4)
	created := s.NodeCount() - nodes

	e2, s2 := newTestEngine(t)
	e2.StartAmbient()
	before := s2.NodeCount()
	e2.PlayCue(breath.Inhale, 4)
	perCue := s2.NodeCount() - before

	if created != 2*perCue {
		t.Errorf("Expected only cue nodes to be created, got %d for two cues of %d", created, perCue)
	}

	e.StopAmbient()
	if e.AmbientPlaying() {
		t.Errorf("Expected ambient bed to stop")
	}
	if !e.StartAmbient() {
		t.Errorf("Expected a new bed to start during the fade")
	}
}

func TestEngine_AmbientNeedsSound(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetSoundEnabled(false)

	if e.StartAmbient() {
		t.Errorf("Expected ambient bed to stay off while sound is off")
	}
}

func TestEngine_SilentStates(t *testing.T) {
	t.Run("sound off", func(t *testing.T) {
		s := offline.NewRunningSession(testRate)
		e := audio.NewEngine(s.Factory())
		e.PlayCue(breath.Inhale, 4)
		if len(e.Voices()) != 0 {
			t.Errorf("Expected no voices, got %d", len(e.Voices()))
		}
		if e.Session() != nil {
			t.Errorf("Expected no session to be opened while sound is off")
		}
	})

	t.Run("suspended", func(t *testing.T) {
		s := offline.NewSession(testRate)
		e := audio.NewEngine(s.Factory())
		e.SetSoundEnabled(true)
		e.PlayCue(breath.Inhale, 4)
		if len(e.Voices()) != 0 {
			t.Errorf("Expected no voices, got %d", len(e.Voices()))
		}
		if e.AmbientPlaying() {
			t.Errorf("Expected no ambient bed while suspended")
		}
	})
}

func TestEngine_Wake(t *testing.T) {
	s := offline.NewSession(testRate)
	e := audio.NewEngine(s.Factory())
	e.SetSoundEnabled(true)

	blocked := errors.New("no gesture")
	s.FailResume(blocked)
	resumed, err := e.Wake()
	if !errors.Is(err, blocked) {
		t.Errorf("Expected resume error, got %v", err)
	}
	if resumed {
		t.Errorf("Expected failed wake to report not resumed")
	}
	if s.State() != audio.StateSuspended {
		t.Errorf("Expected session to stay suspended, got %s", s.State())
	}

	s.FailResume(nil)
	resumed, err = e.Wake()
	if err != nil || !resumed {
		t.Errorf("Expected wake to resume, got %v, %v", resumed, err)
	}

	resumed, err = e.Wake()
	if err != nil || resumed {
		t.Errorf("Expected wake on a running session to be a no-op, got %v, %v", resumed, err)
	}

	s.Interrupt()
	resumed, err = e.Wake()
	if err != nil || !resumed {
		t.Errorf("Expected wake to recover from an interruption, got %v, %v", resumed, err)
	}
}

func TestEngine_ClosedSession(t *testing.T) {
	var sessions []*offline.Session
	factory := func() (audio.Session, error) {
		s := offline.NewRunningSession(testRate)
		sessions = append(sessions, s)
		return s, nil
	}
	e := audio.NewEngine(factory)
	e.SetSoundEnabled(true)

	e.PlayCue(breath.Inhale, 4)
	sessions[0].Close()
	e.PlayCue(breath.HoldHigh, 4)

	if len(sessions) != 2 {
		t.Fatalf("Expected a new session after close, got %d", len(sessions))
	}
	if e.Session() != audio.Session(sessions[1]) {
		t.Errorf("Expected engine to use the new session")
	}
	if len(e.Voices()) != 5 {
		t.Errorf("Expected only voices of the new session, got %d", len(e.Voices()))
	}
	if !e.AmbientPlaying() {
		t.Errorf("Expected ambient bed to restart on the new session")
	}
}

func TestEngine_ClosedSessionWake(t *testing.T) {
	s := offline.NewRunningSession(testRate)
	s.Close()
	e := audio.NewEngine(s.Factory())

	if _, err := e.Wake(); !errors.Is(err, audio.ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
}

func TestEngine_SeededDetune(t *testing.T) {
	detunes := func(seed uint32) []float64 {
		e, _ := newTestEngine(t, audio.WithSeed(seed))
		e.PlayCue(breath.Inhale, 4)
		var out []float64
		for _, v := range e.Voices() {
			if v.Layer != nil {
				out = append(out, v.Layer.Detune, v.Layer.VibratoRate)
			}
		}
		return out
	}

	a, b, c := detunes(7), detunes(7), detunes(8)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Expected seed 7 to repeat value %d: %v vs %v", i, a[i], b[i])
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Errorf("Expected a different seed to change the jitter")
	}
}

func TestEngine_RenderedCue(t *testing.T) {
	e, s := newTestEngine(t)
	e.PlayCue(breath.Inhale, 2)

	out := s.RenderSeconds(2)
	peak := 0.0
	for i, frame := range out {
		for _, v := range frame {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("Expected finite output, got %v at frame %d", v, i)
			}
			peak = math.Max(peak, math.Abs(v))
		}
	}
	if peak == 0 {
		t.Errorf("Expected the cue to be audible")
	}
	if peak > 1 {
		t.Errorf("Expected the limiter to keep output within [-1, 1], got %v", peak)
	}
}

func TestEngine_DriverUnlock(t *testing.T) {
	s := offline.NewSession(testRate)
	e := audio.NewEngine(s.Factory())
	e.SetSoundEnabled(true)
	d := breath.NewDriver(0, e)

	d.Render(1000)
	if len(e.Voices()) != 0 {
		t.Errorf("Expected no voices before the unlock gesture")
	}

	d.Unlock(1000)
	if s.State() != audio.StateRunning {
		t.Errorf("Expected the gesture to resume the session, got %s", s.State())
	}
	voices := e.Voices()
	if len(voices) != 5 {
		t.Fatalf("Expected a cue after unlock, got %v", names(voices))
	}
	if math.Abs(voices[0].End-voices[0].Start-3) > 1e-9 {
		t.Errorf("Expected cue for the 3 s left of the phase, got %v", voices[0].End-voices[0].Start)
	}

	d.Pause(1500)
	if len(e.Voices()) != 0 || e.AmbientPlaying() {
		t.Errorf("Expected pause to silence the engine")
	}
}
