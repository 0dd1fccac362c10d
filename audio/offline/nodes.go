package offline

import (
	"math"
	"slices"

	"github.com/simukka/breath/audio"
)

// base is the part every node shares: its connections and the output of
// the current quantum. Nodes are pulled from the destination and render
// at most once per quantum.
type base struct {
	s      *Session
	proc   func(frame int64)
	inputs []*base
	outs   []*base
	params []*Param

	pass int64
	out  block
}

type graphNode interface {
	node() *base
}

func (b *base) init(s *Session, proc func(frame int64)) {
	b.s = s
	b.proc = proc
	s.nodes++
}

func (b *base) node() *base {
	return b
}

func (b *base) pull(frame int64) *block {
	if b.pass != b.s.pass {
		b.pass = b.s.pass
		b.proc(frame)
	}
	return &b.out
}

// mix sums every input into b.out.
func (b *base) mix(frame int64) {
	b.out = block{}
	for _, in := range b.inputs {
		o := in.pull(frame)
		for ch := range b.out {
			for i := range b.out[ch] {
				b.out[ch][i] += o[ch][i]
			}
		}
	}
}

func (b *base) Connect(dst audio.Node) {
	d, ok := dst.(graphNode)
	if !ok {
		b.s.fault("connect: %T is not an offline node", dst)
		return
	}
	target := d.node()
	target.inputs = append(target.inputs, b)
	b.outs = append(b.outs, target)
}

func (b *base) ConnectParam(dst audio.Param) {
	p, ok := dst.(*Param)
	if !ok {
		b.s.fault("connect: %T is not an offline param", dst)
		return
	}
	p.inputs = append(p.inputs, b)
	b.params = append(b.params, p)
}

// Disconnect removes every outgoing connection.
func (b *base) Disconnect() error {
	self := func(n *base) bool { return n == b }
	for _, target := range b.outs {
		target.inputs = slices.DeleteFunc(target.inputs, self)
	}
	for _, p := range b.params {
		p.inputs = slices.DeleteFunc(p.inputs, self)
	}
	b.outs = nil
	b.params = nil
	return nil
}

type destination struct {
	base
}

func (d *destination) process(frame int64) {
	d.mix(frame)
}

type gain struct {
	base
	gain *Param
}

func newGain(s *Session) *gain {
	g := &gain{gain: newParam(s, "gain", 1)}
	g.init(s, g.process)
	return g
}

func (g *gain) Gain() audio.Param {
	return g.gain
}

func (g *gain) process(frame int64) {
	g.mix(frame)
	v := g.gain.values(frame)
	for ch := range g.out {
		for i := range g.out[ch] {
			g.out[ch][i] *= float32(v[i])
		}
	}
}

// schedule tracks when a source plays.
type schedule struct {
	started bool
	startAt float64
	stopAt  float64
}

func (sc *schedule) Start(t float64) error {
	if sc.started {
		return ErrInvalidState
	}
	sc.started = true
	sc.startAt = t
	sc.stopAt = math.Inf(1)
	return nil
}

// Stop sets when the source ends. A later call replaces an earlier one.
func (sc *schedule) Stop(t float64) error {
	if !sc.started {
		return ErrInvalidState
	}
	sc.stopAt = t
	return nil
}

func (sc *schedule) playing(t float64) bool {
	return sc.started && t >= sc.startAt && t < sc.stopAt
}

// silentDuring reports whether the source cannot sound between t0 and t1.
func (sc *schedule) silentDuring(t0, t1 float64) bool {
	return !sc.started || t1 <= sc.startAt || t0 >= sc.stopAt
}

type oscillator struct {
	base
	schedule
	wave   audio.Waveform
	freq   *Param
	detune *Param
	phase  float64
}

func newOscillator(s *Session, wave audio.Waveform) *oscillator {
	o := &oscillator{
		wave:   wave,
		freq:   newParam(s, "frequency", 440),
		detune: newParam(s, "detune", 0),
	}
	o.init(s, o.process)
	return o
}

func (o *oscillator) Frequency() audio.Param { return o.freq }
func (o *oscillator) Detune() audio.Param    { return o.detune }

func (o *oscillator) process(frame int64) {
	o.out = block{}
	if o.silentDuring(o.s.timeOf(frame), o.s.timeOf(frame+Quantum)) {
		return
	}
	freq := o.freq.values(frame)
	detune := o.detune.values(frame)
	flat := constant(detune)
	ratio := math.Exp2(detune[0] / 1200)

	for i := 0; i < Quantum; i++ {
		if !o.playing(o.s.timeOf(frame + int64(i))) {
			continue
		}
		if !flat {
			ratio = math.Exp2(detune[i] / 1200)
		}
		v := float32(waveform(o.wave, o.phase))
		o.out[0][i] = v
		o.out[1][i] = v
		o.phase += freq[i] * ratio / o.s.sampleRate
		o.phase -= math.Floor(o.phase)
	}
}

// waveform evaluates one cycle of wave at phase in [0, 1).
func waveform(wave audio.Waveform, phase float64) float64 {
	switch wave {
	case audio.Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case audio.Sawtooth:
		return 2*phase - 1
	case audio.Triangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

type bufferSource struct {
	base
	schedule
	buf  *Buffer
	loop bool
	pos  int
}

func newBufferSource(s *Session, buf *Buffer, loop bool) *bufferSource {
	b := &bufferSource{buf: buf, loop: loop}
	b.init(s, b.process)
	return b
}

func (b *bufferSource) process(frame int64) {
	b.out = block{}
	if b.buf == nil || b.buf.Len() == 0 || b.silentDuring(b.s.timeOf(frame), b.s.timeOf(frame+Quantum)) {
		return
	}
	n := b.buf.Len()
	left := b.buf.data[0]
	right := left
	if len(b.buf.data) > 1 {
		right = b.buf.data[1]
	}

	for i := 0; i < Quantum; i++ {
		if !b.playing(b.s.timeOf(frame + int64(i))) {
			continue
		}
		if b.pos >= n {
			if !b.loop {
				return
			}
			b.pos = 0
		}
		b.out[0][i] = left[b.pos]
		b.out[1][i] = right[b.pos]
		b.pos++
	}
}

// coefficientStride is how many frames pass between filter coefficient
// updates while frequency or Q are moving.
const coefficientStride = 8

type biquad struct {
	base
	kind audio.FilterType
	freq *Param
	q    *Param

	b0, b1, b2, a1, a2 float64
	lastF, lastQ       float64
	x1, x2, y1, y2     [2]float64
}

func newBiquad(s *Session, kind audio.FilterType) *biquad {
	f := &biquad{
		kind:  kind,
		freq:  newParam(s, "frequency", 350),
		q:     newParam(s, "Q", 1),
		lastF: math.NaN(),
		lastQ: math.NaN(),
	}
	f.init(s, f.process)
	return f
}

func (f *biquad) Frequency() audio.Param { return f.freq }
func (f *biquad) Q() audio.Param         { return f.q }

func (f *biquad) process(frame int64) {
	f.mix(frame)
	if len(f.inputs) == 0 {
		f.x1, f.x2, f.y1, f.y2 = [2]float64{}, [2]float64{}, [2]float64{}, [2]float64{}
		return
	}
	freq := f.freq.values(frame)
	q := f.q.values(frame)

	for i := 0; i < Quantum; i++ {
		if i%coefficientStride == 0 {
			f.update(freq[i], q[i])
		}
		for ch := 0; ch < 2; ch++ {
			x := float64(f.out[ch][i])
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			if math.Abs(y) < 1e-30 {
				y = 0
			}
			f.x2[ch], f.x1[ch] = f.x1[ch], x
			f.y2[ch], f.y1[ch] = f.y1[ch], y
			f.out[ch][i] = float32(y)
		}
	}
}

// update recomputes the coefficients. Lowpass and highpass take Q in dB;
// bandpass takes it as a plain ratio.
func (f *biquad) update(freq, q float64) {
	if freq == f.lastF && q == f.lastQ {
		return
	}
	f.lastF, f.lastQ = freq, q

	nyquist := f.s.sampleRate / 2
	freq = math.Min(math.Max(freq, 1), nyquist*0.999)
	w0 := 2 * math.Pi * freq / f.s.sampleRate
	cosw, sinw := math.Cos(w0), math.Sin(w0)

	var alpha, b0, b1, b2 float64
	switch f.kind {
	case audio.Highpass:
		alpha = sinw / (2 * math.Pow(10, q/20))
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
	case audio.Bandpass:
		alpha = sinw / (2 * math.Max(q, 1e-4))
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		alpha = sinw / (2 * math.Pow(10, q/20))
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
	}

	a0 := 1 + alpha
	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
}
