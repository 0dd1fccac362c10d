package audio

import "math"

// PadOptions shapes a filtered noise pad. Zero fields take their defaults.
type PadOptions struct {
	Name        string
	StartOffset float64
	Duration    float64
	Attack      float64
	Release     float64
	Peak        float64 // before the pad gain boost
	Sustain     float64
	CenterStart float64
	CenterEnd   float64
	Q           float64
	Highpass    float64
	DriftDepth  float64 // Hz
	DriftRate   float64 // Hz
}

func (o PadOptions) withDefaults(boost float64) PadOptions {
	r := o
	r.Duration = math.Max(0.4, or(o.Duration, 4))
	r.Attack = math.Max(0.1, or(o.Attack, 0.5))
	r.Release = math.Max(0.2, or(o.Release, 1.8))
	r.Peak = or(o.Peak, 0.008) * boost
	r.Sustain = or(o.Sustain, 0.86)
	r.CenterStart = math.Max(120, or(o.CenterStart, 900))
	r.CenterEnd = math.Max(120, or(o.CenterEnd, r.CenterStart))
	r.Q = or(o.Q, 0.55)
	r.Highpass = or(o.Highpass, 140)
	r.DriftDepth = math.Max(0, o.DriftDepth)
	r.DriftRate = or(o.DriftRate, 0.12)
	return r
}

// SchedulePad schedules looping noise through a highpass and a sweeping
// bandpass, shaped by the envelope. Peak is in the resolved options
// after the gain boost.
func (e *Engine) SchedulePad(opts PadOptions) (*Voice, error) {
	s, err := e.ensure()
	if err != nil {
		return nil, err
	}
	buf, err := e.noiseBuffer(s)
	if err != nil {
		return nil, err
	}
	o := opts.withDefaults(e.cfg.PadGainBoost)
	start := s.CurrentTime() + o.StartOffset
	env := newEnvelope(start, o.Duration, o.Attack, o.Release)

	noise := s.CreateBufferSource(buf, true)

	highpass := s.CreateFilter(Highpass)
	highpass.Frequency().SetValueAtTime(o.Highpass, start)
	highpass.Q().SetValueAtTime(0.5, start)

	band := s.CreateFilter(Bandpass)
	band.Frequency().SetValueAtTime(o.CenterStart, start)
	band.Frequency().ExponentialRampToValueAtTime(o.CenterEnd, env.end)
	band.Q().SetValueAtTime(o.Q, start)

	gain := s.CreateGain()
	env.apply(gain.Gain(), o.Peak, o.Sustain)

	sources := []Source{noise}
	if o.DriftDepth > 0 {
		osc, depth := modulator(s, o.DriftRate, o.DriftDepth, start)
		depth.ConnectParam(band.Frequency())
		sources = append(sources, osc)
	}

	noise.Connect(highpass)
	highpass.Connect(band)
	band.Connect(gain)
	gain.Connect(e.output(s))

	if err := run(sources, start, env.end+e.cfg.SourceOverrun); err != nil {
		return nil, err
	}

	v := &Voice{
		Name:    o.Name,
		Start:   start,
		End:     env.end,
		Pad:     &o,
		sources: sources,
		gain:    gain,
		out:     gain,
	}
	e.track(v)
	return v, nil
}
