package offline

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	minPartition = 128
	maxPartition = 4096

	// Impulse responses are normalized to a calibrated loudness so that
	// reverb sends sit level with the dry path.
	gainCalibrationDB         = -58
	gainCalibrationSampleRate = 44100
	minImpulsePower           = 0.000125
)

// convolver is a zero-latency partitioned convolution reverb. The first
// partition of the impulse response is applied directly in the time
// domain; later partitions run through a frequency-domain delay line, one
// FFT per partition of input.
type convolver struct {
	base

	part   int
	parts  int // frequency-domain partitions after the head
	fftLen int
	scale  float64

	head    [2][]float64
	headOn  bool
	spectra [2][][]complex128

	fdl    [2][][]complex128
	fdlPos int
	acc    []complex128
	frame  []float64

	cur   [2][]float64
	prev  [2][]float64
	tail  [2][]float64
	carry [2][]float64
	pos   int
	quiet int
}

func newConvolver(s *Session, ir *Buffer) *convolver {
	c := &convolver{}
	c.init(s, c.process)
	if ir == nil || ir.Len() == 0 {
		return c
	}

	responses := [2][]float32{ir.data[0], ir.data[0]}
	if len(ir.data) > 1 {
		responses[1] = ir.data[1]
	}
	c.scale = normalization(ir)

	lead := ir.Len()
	for _, r := range responses {
		for i, v := range r {
			if v != 0 {
				lead = min(lead, i)
				break
			}
		}
	}
	c.part = minPartition
	for c.part*2 <= lead && c.part < maxPartition {
		c.part *= 2
	}
	c.fftLen = 2 * c.part
	c.parts = (ir.Len()+c.part-1)/c.part - 1

	for ch, r := range responses {
		c.head[ch] = make([]float64, c.part)
		for i := 0; i < c.part && i < len(r); i++ {
			c.head[ch][i] = float64(r[i]) * c.scale
			if c.head[ch][i] != 0 {
				c.headOn = true
			}
		}

		c.spectra[ch] = make([][]complex128, c.parts)
		for k := 1; k <= c.parts; k++ {
			seg := make([]float64, c.fftLen)
			for i := 0; i < c.part && k*c.part+i < len(r); i++ {
				seg[i] = float64(r[k*c.part+i]) * c.scale
			}
			c.spectra[ch][k-1] = fft.FFTReal(seg)
		}

		c.fdl[ch] = make([][]complex128, c.parts)
		for k := range c.fdl[ch] {
			c.fdl[ch][k] = make([]complex128, c.fftLen)
		}
		c.cur[ch] = make([]float64, c.part)
		c.prev[ch] = make([]float64, c.part)
		c.tail[ch] = make([]float64, c.part)
		c.carry[ch] = make([]float64, c.part)
	}
	c.acc = make([]complex128, c.fftLen)
	c.frame = make([]float64, c.fftLen)
	return c
}

// normalization returns the gain that brings ir to calibrated power.
func normalization(ir *Buffer) float64 {
	sum := 0.0
	for _, ch := range ir.data {
		for _, v := range ch {
			sum += float64(v) * float64(v)
		}
	}
	power := math.Sqrt(sum / float64(len(ir.data)*ir.Len()))
	power = math.Max(power, minImpulsePower)

	scale := 1 / power * math.Pow(10, gainCalibrationDB*0.05)
	if ir.sampleRate > 0 {
		scale *= gainCalibrationSampleRate / ir.sampleRate
	}
	return scale
}

func (c *convolver) process(frame int64) {
	c.mix(frame)
	if c.part == 0 {
		c.out = block{}
		return
	}

	for i := 0; i < Quantum; i++ {
		for ch := 0; ch < 2; ch++ {
			x := float64(c.out[ch][i])
			c.cur[ch][c.pos] = x
			y := c.tail[ch][c.pos]
			if c.headOn {
				y += c.direct(ch)
			}
			c.out[ch][i] = float32(y)
		}
		c.pos++
		if c.pos == c.part {
			c.flush()
		}
	}
}

// direct convolves the head partition with the most recent input.
func (c *convolver) direct(ch int) float64 {
	h, cur, prev := c.head[ch], c.cur[ch], c.prev[ch]
	y := 0.0
	for k := 0; k <= c.pos; k++ {
		y += h[k] * cur[c.pos-k]
	}
	for k := c.pos + 1; k < c.part; k++ {
		y += h[k] * prev[c.part+c.pos-k]
	}
	return y
}

// flush runs at the end of each input partition. It pushes the partition's
// spectrum into the delay line and precomputes the tail output for the
// next partition by overlap-add.
func (c *convolver) flush() {
	c.pos = 0

	silent := true
	for ch := 0; ch < 2 && silent; ch++ {
		for _, v := range c.cur[ch] {
			if v != 0 {
				silent = false
				break
			}
		}
	}
	if silent {
		c.quiet++
	} else {
		c.quiet = 0
	}

	if c.parts > 0 {
		c.fdlPos = (c.fdlPos + 1) % c.parts
	}
	for ch := 0; ch < 2; ch++ {
		if c.parts == 0 || c.quiet > c.parts+1 {
			clear(c.tail[ch])
			clear(c.carry[ch])
			if c.parts > 0 {
				clear(c.fdl[ch][c.fdlPos])
			}
		} else {
			c.convolveTail(ch)
		}
		c.prev[ch], c.cur[ch] = c.cur[ch], c.prev[ch]
	}
}

func (c *convolver) convolveTail(ch int) {
	copy(c.frame, c.cur[ch])
	clear(c.frame[c.part:])
	c.fdl[ch][c.fdlPos] = fft.FFTReal(c.frame)

	clear(c.acc)
	for k := 0; k < c.parts; k++ {
		x := c.fdl[ch][(c.fdlPos-k+c.parts)%c.parts]
		h := c.spectra[ch][k]
		for n := range c.acc {
			c.acc[n] += x[n] * h[n]
		}
	}

	z := fft.IFFT(c.acc)
	for n := 0; n < c.part; n++ {
		c.tail[ch][n] = real(z[n]) + c.carry[ch][n]
		c.carry[ch][n] = real(z[c.part+n])
	}
}
