package audio

import (
	"math"

	"github.com/simukka/breath/common"
)

// envelope holds the four breakpoints shared by layers and pads.
type envelope struct {
	start        float64
	peakAt       float64
	releaseStart float64
	end          float64
}

func newEnvelope(start, duration, attack, release float64) envelope {
	end := start + duration
	peakAt := math.Min(end-0.02, start+attack)
	releaseStart := common.Clamp(math.Max(start+attack+0.05, end-release), peakAt, end-0.02)
	return envelope{start: start, peakAt: peakAt, releaseStart: releaseStart, end: end}
}

// apply schedules silence -> peak -> peak*sustain -> silence on p. Every
// exponential target is floored at Silence.
func (env envelope) apply(p Param, peak, sustain float64) {
	p.SetValueAtTime(Silence, env.start)
	p.ExponentialRampToValueAtTime(floor(peak), env.peakAt)
	p.ExponentialRampToValueAtTime(floor(peak*sustain), env.releaseStart)
	p.ExponentialRampToValueAtTime(Silence, env.end)
}

func floor(v float64) float64 {
	return math.Max(Silence, v)
}

// or returns def when v is unset.
func or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
