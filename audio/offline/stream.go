package offline

import "github.com/gopxl/beep"

// Stream adapts a Session to beep. Every hop frames it calls tick with the
// stream time in seconds before rendering, so control code runs on the
// audio clock. The stream clock keeps counting while the session is
// suspended; the session clock does not.
type Stream struct {
	s      *Session
	hop    int
	tick   func(seconds float64)
	frames int64
}

// NewStream returns a never-ending streamer over s.
func NewStream(s *Session, hop int, tick func(seconds float64)) *Stream {
	if hop <= 0 {
		hop = Quantum
	}
	return &Stream{s: s, hop: hop, tick: tick}
}

func (st *Stream) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		into := int(st.frames % int64(st.hop))
		if into == 0 && st.tick != nil {
			st.tick(st.Seconds())
		}
		chunk := min(st.hop-into, len(samples)-n)
		st.s.Render(samples[n : n+chunk])
		n += chunk
		st.frames += int64(chunk)
	}
	return n, true
}

func (st *Stream) Err() error {
	return nil
}

// Seconds is how much audio the stream has produced.
func (st *Stream) Seconds() float64 {
	return float64(st.frames) / st.s.sampleRate
}

// Format describes the stream as 16-bit stereo at the session rate.
func (s *Session) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(int(s.sampleRate)),
		NumChannels: 2,
		Precision:   2,
	}
}
