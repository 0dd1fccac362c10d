package audio

import "math"

// LayerOptions shapes a tonal layer. Zero fields take their defaults.
type LayerOptions struct {
	Name        string
	StartOffset float64
	Duration    float64
	Attack      float64
	Release     float64
	Peak        float64
	Sustain     float64

	Wave         Waveform
	HarmonicWave Waveform
	OvertoneWave Waveform

	StartFreq      float64
	EndFreq        float64
	HarmonicRatio  float64
	HarmonicMix    float64
	OvertoneRatio  float64
	OvertoneMix    float64
	Detune         float64 // cents, applied to the harmonic
	OvertoneDetune float64 // cents

	VibratoDepth float64 // cents
	VibratoRate  float64 // Hz
	TremoloDepth float64
	TremoloRate  float64 // Hz

	NoiseMix       float64
	NoiseCenter    float64
	NoiseCenterEnd float64
	NoiseQ         float64

	FilterType  FilterType
	StartCutoff float64
	EndCutoff   float64
	Q           float64
}

func (o LayerOptions) withDefaults() LayerOptions {
	r := o
	r.Duration = math.Max(0.2, or(o.Duration, 4))
	r.Attack = math.Max(0.05, or(o.Attack, 0.7))
	r.Release = math.Max(0.2, or(o.Release, 0.8))
	r.Peak = or(o.Peak, 0.025)
	r.Sustain = or(o.Sustain, 0.82)

	if r.Wave == "" {
		r.Wave = Sine
	}
	if r.HarmonicWave == "" {
		r.HarmonicWave = Triangle
	}
	if r.OvertoneWave == "" {
		r.OvertoneWave = Sine
	}

	r.StartFreq = math.Max(20, or(o.StartFreq, 180))
	r.EndFreq = math.Max(20, or(o.EndFreq, r.StartFreq))
	r.HarmonicRatio = or(o.HarmonicRatio, 1.5)
	r.HarmonicMix = or(o.HarmonicMix, 0.09)
	r.Detune = or(o.Detune, 3)

	r.VibratoDepth = math.Max(0, o.VibratoDepth)
	r.VibratoRate = or(o.VibratoRate, 4.6)
	r.TremoloDepth = math.Max(0, o.TremoloDepth)
	r.TremoloRate = or(o.TremoloRate, 0.25)

	r.NoiseMix = math.Max(0, o.NoiseMix)
	r.NoiseCenter = math.Max(120, or(o.NoiseCenter, 1200))
	r.NoiseCenterEnd = math.Max(120, or(o.NoiseCenterEnd, r.NoiseCenter))
	r.NoiseQ = or(o.NoiseQ, 0.9)

	if r.FilterType == "" {
		r.FilterType = Lowpass
	}
	r.StartCutoff = or(o.StartCutoff, 820)
	r.EndCutoff = or(o.EndCutoff, r.StartCutoff)
	r.Q = or(o.Q, 0.55)
	return r
}

// ScheduleLayer schedules a tonal voice: a base oscillator with harmonic and
// optional overtone partials through one filter, shaped by the envelope,
// with optional vibrato, tremolo and a band of noise.
func (e *Engine) ScheduleLayer(opts LayerOptions) (*Voice, error) {
	s, err := e.ensure()
	if err != nil {
		return nil, err
	}
	o := opts.withDefaults()
	start := s.CurrentTime() + o.StartOffset
	env := newEnvelope(start, o.Duration, o.Attack, o.Release)
	stopAt := env.end + e.cfg.SourceOverrun

	base := s.CreateOscillator(o.Wave)
	base.Frequency().SetValueAtTime(o.StartFreq, start)
	base.Frequency().ExponentialRampToValueAtTime(o.EndFreq, env.end)

	harmonic := s.CreateOscillator(o.HarmonicWave)
	harmonic.Frequency().SetValueAtTime(o.StartFreq*o.HarmonicRatio, start)
	harmonic.Frequency().ExponentialRampToValueAtTime(o.EndFreq*o.HarmonicRatio, env.end)
	harmonic.Detune().SetValueAtTime(o.Detune, start)
	harmonicGain := s.CreateGain()
	harmonicGain.Gain().SetValueAtTime(o.HarmonicMix, start)

	filter := s.CreateFilter(o.FilterType)
	filter.Frequency().SetValueAtTime(o.StartCutoff, start)
	filter.Frequency().ExponentialRampToValueAtTime(o.EndCutoff, env.end)
	filter.Q().SetValueAtTime(o.Q, start)

	gain := s.CreateGain()
	env.apply(gain.Gain(), o.Peak, o.Sustain)

	tremolo := s.CreateGain()
	tremolo.Gain().SetValueAtTime(1, start)

	sources := []Source{base, harmonic}
	detunes := []Param{base.Detune(), harmonic.Detune()}
	var extras []Source

	base.Connect(filter)
	harmonic.Connect(harmonicGain)
	harmonicGain.Connect(filter)

	if o.OvertoneRatio > 0 {
		overtone := s.CreateOscillator(o.OvertoneWave)
		overtone.Frequency().SetValueAtTime(o.StartFreq*o.OvertoneRatio, start)
		overtone.Frequency().ExponentialRampToValueAtTime(o.EndFreq*o.OvertoneRatio, env.end)
		overtone.Detune().SetValueAtTime(o.OvertoneDetune, start)
		overtoneGain := s.CreateGain()
		overtoneGain.Gain().SetValueAtTime(o.OvertoneMix, start)
		overtone.Connect(overtoneGain)
		overtoneGain.Connect(filter)
		sources = append(sources, overtone)
		detunes = append(detunes, overtone.Detune())
	}

	if o.TremoloDepth > 0 {
		osc, depth := modulator(s, o.TremoloRate, o.TremoloDepth/2, start)
		tremolo.Gain().SetValueAtTime(1-o.TremoloDepth/2, start)
		depth.ConnectParam(tremolo.Gain())
		extras = append(extras, osc)
	}

	if o.VibratoDepth > 0 {
		osc, depth := modulator(s, o.VibratoRate, o.VibratoDepth, start)
		for _, p := range detunes {
			depth.ConnectParam(p)
		}
		extras = append(extras, osc)
	}

	if o.NoiseMix > 0 {
		buf, err := e.noiseBuffer(s)
		if err != nil {
			return nil, err
		}
		noise := s.CreateBufferSource(buf, true)
		band := s.CreateFilter(Bandpass)
		band.Frequency().SetValueAtTime(o.NoiseCenter, start)
		band.Frequency().ExponentialRampToValueAtTime(o.NoiseCenterEnd, env.end)
		band.Q().SetValueAtTime(o.NoiseQ, start)
		noiseGain := s.CreateGain()
		env.apply(noiseGain.Gain(), o.NoiseMix, o.Sustain)

		noise.Connect(band)
		band.Connect(noiseGain)
		noiseGain.Connect(filter)
		extras = append(extras, noise)
	}

	filter.Connect(gain)
	gain.Connect(tremolo)
	tremolo.Connect(e.output(s))

	sources = append(sources, extras...)
	if err := run(sources, start, stopAt); err != nil {
		return nil, err
	}

	v := &Voice{
		Name:    o.Name,
		Start:   start,
		End:     env.end,
		Layer:   &o,
		sources: sources,
		gain:    gain,
		out:     tremolo,
	}
	e.track(v)
	return v, nil
}

// modulator builds a sine LFO whose output is scaled by depth.
func modulator(s Session, rate, depth, at float64) (OscillatorNode, GainNode) {
	osc := s.CreateOscillator(Sine)
	osc.Frequency().SetValueAtTime(rate, at)
	amount := s.CreateGain()
	amount.Gain().SetValueAtTime(depth, at)
	osc.Connect(amount)
	return osc, amount
}

func run(sources []Source, start, stop float64) error {
	for _, src := range sources {
		if err := src.Start(start); err != nil {
			return err
		}
		if err := src.Stop(stop); err != nil {
			return err
		}
	}
	return nil
}
