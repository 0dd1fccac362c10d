package audio

import "github.com/simukka/breath/common"

// Voice is one scheduled sound: the sources that make it and the gain node
// whose envelope shapes it. Exactly one of Layer and Pad is set and holds
// the options after defaults were applied.
type Voice struct {
	Name      string
	Start     float64
	End       float64
	ExpiresAt float64

	Layer *LayerOptions
	Pad   *PadOptions

	sources []Source
	gain    GainNode
	out     Node
}

// Sources returns every generator the voice started.
func (v *Voice) Sources() []Source {
	return v.sources
}

// Gain returns the node carrying the voice envelope.
func (v *Voice) Gain() GainNode {
	return v.gain
}

// retired is a node to disconnect from the master once its fade is over.
type retired struct {
	node Node
	at   float64
}

func (e *Engine) track(v *Voice) {
	v.ExpiresAt = v.End + e.cfg.VoiceGrace
	e.voices = append(e.voices, v)
}

// silence fades a voice out quickly and stops all of its sources.
func (e *Engine) silence(v *Voice, now float64) {
	stopAt := now + e.cfg.StopLead
	if v.gain != nil {
		v.gain.Gain().CancelScheduledValues(now)
		v.gain.Gain().SetTargetAtTime(Silence, now, e.cfg.StopFade)
	}
	for _, src := range v.sources {
		if err := src.Stop(stopAt); err != nil {
			common.Debug("voice source already stopped", "voice", v.Name, "err", err)
		}
	}
	e.retire(v.out, stopAt+e.cfg.VoiceGrace)
}

func (e *Engine) retire(n Node, at float64) {
	if n != nil {
		e.retired = append(e.retired, retired{node: n, at: at})
	}
}

// StopVoices fades every active phase voice and empties the collection.
func (e *Engine) StopVoices() {
	if e.session == nil || len(e.voices) == 0 {
		e.voices = nil
		return
	}
	now := e.session.CurrentTime()
	for _, v := range e.voices {
		e.silence(v, now)
	}
	common.Debug("stopped voices", "count", len(e.voices))
	e.voices = nil
}

// Collect removes voices whose lifetime has passed and disconnects nodes
// whose fade has finished.
func (e *Engine) Collect() {
	if e.session == nil {
		return
	}
	now := e.session.CurrentTime()

	live := e.voices[:0]
	for _, v := range e.voices {
		if v.ExpiresAt > now {
			live = append(live, v)
			continue
		}
		e.retire(v.out, now)
	}
	for i := len(live); i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = live

	pending := e.retired[:0]
	for _, r := range e.retired {
		if r.at > now {
			pending = append(pending, r)
			continue
		}
		if err := r.node.Disconnect(); err != nil {
			common.Debug("disconnect failed", "err", err)
		}
	}
	for i := len(pending); i < len(e.retired); i++ {
		e.retired[i] = retired{}
	}
	e.retired = pending
}

// Voices returns the active phase voices in scheduling order.
func (e *Engine) Voices() []*Voice {
	out := make([]*Voice, len(e.voices))
	copy(out, e.voices)
	return out
}
