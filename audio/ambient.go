package audio

import "github.com/simukka/breath/common"

// ambientVoice is the continuous noise bed under the phase cues.
type ambientVoice struct {
	source BufferSourceNode
	drift  OscillatorNode
	gain   GainNode
}

// StartAmbient starts the ambient bed if sound is on, the session is
// running and no bed is playing. It reports whether a bed is playing
// afterwards.
func (e *Engine) StartAmbient() bool {
	if !e.soundEnabled {
		return false
	}
	if e.ambient != nil {
		return true
	}
	s, err := e.ensure()
	if err != nil || s.State() != StateRunning {
		return false
	}
	buf, err := e.noiseBuffer(s)
	if err != nil {
		common.DebugWarn("ambient bed unavailable", "err", err)
		return false
	}
	now := s.CurrentTime()
	cfg := e.cfg

	source := s.CreateBufferSource(buf, true)

	highpass := s.CreateFilter(Highpass)
	highpass.Frequency().SetValueAtTime(cfg.AmbientHighpass, now)
	highpass.Q().SetValueAtTime(cfg.AmbientHighpassQ, now)

	lowpass := s.CreateFilter(Lowpass)
	lowpass.Frequency().SetValueAtTime(cfg.AmbientLowpass, now)
	lowpass.Q().SetValueAtTime(cfg.AmbientLowpassQ, now)

	band := s.CreateFilter(Bandpass)
	band.Frequency().SetValueAtTime(cfg.AmbientBand, now)
	band.Q().SetValueAtTime(cfg.AmbientBandQ, now)

	drift, depth := modulator(s, cfg.AmbientDriftRate, cfg.AmbientDriftDepth, now)
	depth.ConnectParam(band.Frequency())

	gain := s.CreateGain()
	gain.Gain().SetValueAtTime(Silence, now)
	gain.Gain().ExponentialRampToValueAtTime(cfg.AmbientLevel, now+cfg.AmbientFadeIn)

	source.Connect(highpass)
	highpass.Connect(lowpass)
	lowpass.Connect(band)
	band.Connect(gain)
	gain.Connect(e.output(s))

	for _, src := range []Source{source, drift} {
		if err := src.Start(now); err != nil {
			common.DebugWarn("ambient bed failed to start", "err", err)
			return false
		}
	}

	e.ambient = &ambientVoice{source: source, drift: drift, gain: gain}
	common.Debug("ambient bed started", "at", now)
	return true
}

// StopAmbient fades the bed out and stops its sources shortly after. The
// bed is forgotten immediately so a new one may start during the fade.
func (e *Engine) StopAmbient() {
	if e.session == nil || e.ambient == nil {
		e.ambient = nil
		return
	}
	a := e.ambient
	e.ambient = nil

	now := e.session.CurrentTime()
	stopAt := now + e.cfg.AmbientStopDelay
	a.gain.Gain().CancelScheduledValues(now)
	a.gain.Gain().SetTargetAtTime(Silence, now, e.cfg.AmbientFadeOut)
	if err := a.source.Stop(stopAt); err != nil {
		common.Debug("ambient source already stopped", "err", err)
	}
	if err := a.drift.Stop(stopAt); err != nil {
		common.Debug("ambient drift already stopped", "err", err)
	}
	e.retire(a.gain, stopAt+e.cfg.VoiceGrace)
}

// AmbientPlaying reports whether the ambient bed is active.
func (e *Engine) AmbientPlaying() bool {
	return e.ambient != nil
}
