package audio

import "fmt"

// routing is the persistent master chain every voice feeds:
//
//	master -> tone -> dry ------> limiter -> destination
//	              \-> convolver -> wet --/
type routing struct {
	master    GainNode
	tone      FilterNode
	limiter   CompressorNode
	dry       GainNode
	wet       GainNode
	convolver ConvolverNode
}

// ensureRouting builds whatever part of the master chain is missing.
func (e *Engine) ensureRouting(s Session) error {
	r := &e.routing
	now := s.CurrentTime()

	if r.master == nil {
		r.master = s.CreateGain()
		r.master.Gain().SetValue(e.cfg.MasterGain)
	}

	if r.tone == nil {
		r.tone = s.CreateFilter(Lowpass)
		r.tone.Frequency().SetValueAtTime(e.cfg.ToneCutoff, now)
		r.tone.Q().SetValueAtTime(e.cfg.ToneQ, now)
	}

	if r.limiter == nil {
		r.limiter = s.CreateCompressor(e.cfg.Limiter)
	}

	if r.convolver == nil {
		ir := ReverbImpulse(e.noiseRNG, s.SampleRate(), e.cfg.ReverbSeconds, e.cfg.ReverbDecay, e.cfg.ReverbPreDelay)
		buf, err := s.CreateBuffer(ir, s.SampleRate())
		if err != nil {
			return fmt.Errorf("audio: reverb impulse: %w", err)
		}

		r.dry = s.CreateGain()
		r.wet = s.CreateGain()
		r.convolver = s.CreateConvolver(buf)
		r.dry.Gain().SetValue(e.cfg.DryLevel)
		r.wet.Gain().SetValue(e.cfg.WetLevel)

		r.master.Connect(r.tone)
		r.tone.Connect(r.dry)
		r.tone.Connect(r.convolver)
		r.convolver.Connect(r.wet)
		r.dry.Connect(r.limiter)
		r.wet.Connect(r.limiter)
		r.limiter.Connect(s.Destination())
	}
	return nil
}

// output is where voices connect.
func (e *Engine) output(s Session) Node {
	if e.routing.master != nil {
		return e.routing.master
	}
	return s.Destination()
}
