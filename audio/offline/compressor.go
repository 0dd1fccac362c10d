package offline

import (
	"math"

	"github.com/simukka/breath/audio"
)

// compressor is a soft-knee dynamics compressor with automatic makeup
// gain. Both channels share one detector so the stereo image holds.
type compressor struct {
	base

	threshold float64 // dB
	knee      float64 // dB
	ratio     float64
	attack    float64 // coefficient
	release   float64 // coefficient
	makeup    float64

	env float64
}

func newCompressor(s *Session, c audio.CompressorSettings) *compressor {
	sr := s.sampleRate
	comp := &compressor{
		threshold: c.Threshold,
		knee:      math.Max(0, c.Knee),
		ratio:     math.Max(1, c.Ratio),
		attack:    coefficient(c.Attack, sr),
		release:   coefficient(c.Release, sr),
	}
	comp.makeup = math.Pow(1/comp.gain(1), 0.6)
	comp.init(s, comp.process)
	return comp
}

func coefficient(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1 - math.Exp(-1/(seconds*sampleRate))
}

func (c *compressor) process(frame int64) {
	c.mix(frame)
	for i := 0; i < Quantum; i++ {
		level := math.Max(math.Abs(float64(c.out[0][i])), math.Abs(float64(c.out[1][i])))
		if level > c.env {
			c.env += c.attack * (level - c.env)
		} else {
			c.env += c.release * (level - c.env)
		}
		g := float32(c.gain(c.env) * c.makeup)
		c.out[0][i] *= g
		c.out[1][i] *= g
	}
}

// gain returns the linear gain the static curve applies at a linear level.
func (c *compressor) gain(level float64) float64 {
	if level <= 0 {
		return 1
	}
	in := 20 * math.Log10(level)
	over := in - c.threshold

	var out float64
	switch {
	case 2*over < -c.knee:
		out = in
	case c.knee > 0 && 2*math.Abs(over) <= c.knee:
		d := over + c.knee/2
		out = in + (1/c.ratio-1)*d*d/(2*c.knee)
	default:
		out = c.threshold + over/c.ratio
	}
	return math.Pow(10, (out-in)/20)
}
