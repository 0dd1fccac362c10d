package audio

import (
	"math"

	"github.com/simukka/breath/common"
)

// ReverbImpulse generates a stereo impulse response: a silent pre-delay,
// then smoothed noise under a (1-progress)^decay envelope. The right
// channel is slightly quieter than the left.
func ReverbImpulse(rng *common.SeededRNG, sampleRate, seconds, decay, preDelay float64) [][]float32 {
	length := int(math.Floor(sampleRate * seconds))
	pre := int(math.Floor(sampleRate * preDelay))
	if length < 0 {
		length = 0
	}

	channels := make([][]float32, 2)
	for ch := range channels {
		data := make([]float32, length)
		scale := 1.0
		if ch == 1 {
			scale = 0.92
		}
		smoother := 0.0
		for i := pre; i < length; i++ {
			progress := float64(i-pre) / math.Max(1, float64(length-pre))
			envelope := math.Pow(1-progress, decay)
			smoother = smoother*0.72 + rng.Signed()*0.28
			data[i] = float32(smoother * envelope * scale)
		}
		channels[ch] = data
	}
	return channels
}

// SmoothedNoise generates mono low-passed white noise. smoothing is the
// one-pole feedback coefficient.
func SmoothedNoise(rng *common.SeededRNG, sampleRate, seconds, smoothing float64) []float32 {
	length := int(sampleRate * seconds)
	data := make([]float32, length)
	smoother := 0.0
	for i := range data {
		smoother = smoother*smoothing + rng.Signed()*(1-smoothing)
		data[i] = float32(smoother)
	}
	return data
}
