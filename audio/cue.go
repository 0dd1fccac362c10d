package audio

import (
	"math"

	"github.com/simukka/breath/breath"
	"github.com/simukka/breath/common"
)

// StrikeOptions shapes a bowl strike. Zero fields take their defaults.
type StrikeOptions struct {
	Freq        float64
	Duration    float64
	Peak        float64
	StartOffset float64
}

// ScheduleStrike schedules a struck-bowl layer: sine partials at 2.02x and
// 2.9x, a slight downward glide and a slow, closing filter.
func (e *Engine) ScheduleStrike(o StrikeOptions) (*Voice, error) {
	freq := or(o.Freq, 232)
	return e.ScheduleLayer(LayerOptions{
		Name:           "strike",
		Duration:       math.Max(1, or(o.Duration, 3.2)),
		StartOffset:    o.StartOffset,
		Wave:           Sine,
		HarmonicWave:   Sine,
		OvertoneWave:   Sine,
		StartFreq:      freq,
		EndFreq:        freq * 0.997,
		StartCutoff:    1200,
		EndCutoff:      860,
		FilterType:     Lowpass,
		Peak:           or(o.Peak, 0.004),
		Sustain:        0.82,
		HarmonicRatio:  2.02,
		HarmonicMix:    0.007,
		OvertoneRatio:  2.9,
		OvertoneMix:    0.0015,
		OvertoneDetune: -0.2,
		Detune:         e.rng.RandomFloat(-0.25, 0.25),
		Q:              0.34,
		Attack:         0.28,
		Release:        3.4,
		VibratoDepth:   0.2,
		VibratoRate:    e.rng.RandomFloat(0.08, 0.12),
		TremoloDepth:   0.0012,
		TremoloRate:    e.rng.RandomFloat(0.07, 0.1),
	})
}

// PlayCue voices phase p for the given number of seconds: the ambient bed
// if it is not already playing, wind and shimmer pads, the tone and harmony
// layers and a bowl strike. It does nothing while sound is off or the
// session is not running.
func (e *Engine) PlayCue(p breath.Phase, seconds float64) {
	if !e.soundEnabled {
		return
	}
	s, err := e.ensure()
	if err != nil {
		common.DebugWarn("cue skipped", "phase", p.String(), "err", err)
		return
	}
	if s.State() != StateRunning {
		return
	}

	e.Collect()
	e.StartAmbient()

	if len(e.voices) > e.cfg.MaxVoices {
		e.StopVoices()
	}

	duration := math.Max(0.8, seconds)
	profile := ProfileFor(p)
	common.Debug("phase cue", "phase", p.String(), "seconds", duration, "voices", len(e.voices))

	var errs []error
	keep := func(_ *Voice, err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	keep(e.SchedulePad(PadOptions{
		Name:        "wind",
		Duration:    duration,
		Peak:        profile.WindPeak,
		Sustain:     0.94,
		Attack:      0.72,
		Release:     3.1,
		CenterStart: profile.WindCenter,
		CenterEnd:   profile.WindEnd,
		Q:           0.42,
		Highpass:    profile.WindHighpass,
		DriftDepth:  22,
		DriftRate:   0.075,
	}))

	keep(e.SchedulePad(PadOptions{
		Name:        "shimmer",
		Duration:    math.Max(0.8, duration*0.96),
		StartOffset: 0.04,
		Peak:        profile.ShimmerPeak,
		Sustain:     0.88,
		Attack:      0.56,
		Release:     2.6,
		CenterStart: profile.ShimmerCenter,
		CenterEnd:   profile.ShimmerEnd,
		Q:           0.38,
		Highpass:    profile.ShimmerHighpass,
		DriftDepth:  16,
		DriftRate:   0.07,
	}))

	if profile.TonePeak > 0 {
		keep(e.ScheduleLayer(e.toneLayer("tone", duration, 0, profile.ToneFreq, profile.ToneCutoff, profile.TonePeak)))

		if profile.HarmonyPeak > 0 {
			keep(e.ScheduleLayer(e.toneLayer("harmony", duration, 0.05, profile.HarmonyFreq, profile.ToneCutoff*0.96, profile.HarmonyPeak)))
		}
	}

	if profile.BowlPeak > 0 {
		keep(e.ScheduleStrike(StrikeOptions{
			Duration:    math.Min(3.4, duration),
			Freq:        profile.BowlFreq,
			Peak:        profile.BowlPeak,
			StartOffset: profile.BowlOffset,
		}))
	}

	for _, err := range errs {
		common.DebugWarn("cue layer failed", "phase", p.String(), "err", err)
	}
}

// toneLayer builds the sustained sine voices. The harmony sits a touch
// quieter and darker than the tone.
func (e *Engine) toneLayer(name string, duration, offset, freq, cutoff, peak float64) LayerOptions {
	o := LayerOptions{
		Name:          name,
		Duration:      duration,
		StartOffset:   offset,
		Wave:          Sine,
		HarmonicWave:  Sine,
		OvertoneWave:  Sine,
		StartFreq:     freq,
		EndFreq:       freq,
		StartCutoff:   cutoff,
		EndCutoff:     cutoff,
		FilterType:    Lowpass,
		Peak:          peak,
		Sustain:       0.92,
		HarmonicRatio: 2,
	}
	if name == "harmony" {
		o.HarmonicMix = 0.003
		o.Detune = e.rng.RandomFloat(-0.16, 0.16)
		o.Q = 0.28
		o.Attack = 1.12
		o.Release = 3.3
		o.VibratoDepth = 0.14
		o.TremoloDepth = 0.001
	} else {
		o.HarmonicMix = 0.004
		o.Detune = e.rng.RandomFloat(-0.2, 0.2)
		o.Q = 0.3
		o.Attack = 1.05
		o.Release = 3.2
		o.VibratoDepth = 0.18
		o.TremoloDepth = 0.0015
	}
	o.VibratoRate = e.rng.RandomFloat(0.08, 0.12)
	o.TremoloRate = e.rng.RandomFloat(0.06, 0.09)
	return o
}
