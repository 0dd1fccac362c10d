// Package offline renders an audio graph in Go, one 128-frame quantum at a
// time, with the scheduling semantics of the Web Audio API. It backs the
// native player and the engine tests.
package offline

import (
	"errors"
	"fmt"
	"math"

	"github.com/simukka/breath/audio"
)

// Quantum is the number of frames rendered per graph pass.
const Quantum = 128

// ErrInvalidState is returned for operations the node's lifecycle forbids,
// such as starting a source twice.
var ErrInvalidState = errors.New("offline: invalid state")

type block [2][Quantum]float32

// Session is an in-process audio context. Its clock only advances while it
// renders in the running state.
type Session struct {
	sampleRate float64
	state      audio.State
	resumeErr  error

	frame int64 // frames rendered so far
	pass  int64 // incremented once per quantum

	out    block
	outPos int

	dest   *destination
	faults []error
	nodes  int
}

// NewSession creates a session that starts suspended, like a browser
// context created outside a user gesture.
func NewSession(sampleRate float64) *Session {
	s := &Session{
		sampleRate: sampleRate,
		state:      audio.StateSuspended,
		outPos:     Quantum,
	}
	s.dest = &destination{}
	s.dest.init(s, s.dest.process)
	return s
}

// NewRunningSession creates a session that is already running.
func NewRunningSession(sampleRate float64) *Session {
	s := NewSession(sampleRate)
	s.state = audio.StateRunning
	return s
}

// Factory returns a session factory that always hands out s.
func (s *Session) Factory() audio.SessionFactory {
	return func() (audio.Session, error) {
		return s, nil
	}
}

func (s *Session) State() audio.State {
	return s.state
}

func (s *Session) SampleRate() float64 {
	return s.sampleRate
}

// CurrentTime is the start of the next quantum to be rendered, in seconds.
func (s *Session) CurrentTime() float64 {
	return float64(s.frame) / s.sampleRate
}

// Resume moves a suspended or interrupted session to running. A failure
// injected with FailResume is returned instead.
func (s *Session) Resume() error {
	switch s.state {
	case audio.StateClosed:
		return audio.ErrSessionClosed
	case audio.StateRunning:
		return nil
	}
	if s.resumeErr != nil {
		return s.resumeErr
	}
	s.state = audio.StateRunning
	return nil
}

// FailResume makes every following Resume fail with err until it is
// called again with nil.
func (s *Session) FailResume(err error) {
	s.resumeErr = err
}

// Suspend stops the clock.
func (s *Session) Suspend() error {
	if s.state == audio.StateClosed {
		return audio.ErrSessionClosed
	}
	s.state = audio.StateSuspended
	return nil
}

// Interrupt stops the clock the way an OS audio interruption does.
func (s *Session) Interrupt() {
	if s.state != audio.StateClosed {
		s.state = audio.StateInterrupted
	}
}

// Close ends the session for good.
func (s *Session) Close() {
	s.state = audio.StateClosed
}

// NodeCount returns how many nodes were created, the destination included.
func (s *Session) NodeCount() int {
	return s.nodes
}

// Faults returns the parameter misuse recorded so far, such as an
// exponential ramp towards zero.
func (s *Session) Faults() []error {
	return s.faults
}

func (s *Session) fault(format string, args ...any) {
	s.faults = append(s.faults, fmt.Errorf(format, args...))
}

func (s *Session) Destination() audio.Node {
	return s.dest
}

// Render fills dst with stereo output. While the session is not running
// it writes silence and the clock stays put.
func (s *Session) Render(dst [][2]float64) {
	for i := range dst {
		if s.state != audio.StateRunning {
			dst[i] = [2]float64{}
			continue
		}
		if s.outPos >= Quantum {
			s.renderQuantum()
		}
		dst[i][0] = float64(s.out[0][s.outPos])
		dst[i][1] = float64(s.out[1][s.outPos])
		s.outPos++
	}
}

// RenderSeconds renders the given length and returns it.
func (s *Session) RenderSeconds(seconds float64) [][2]float64 {
	out := make([][2]float64, int(math.Round(seconds*s.sampleRate)))
	s.Render(out)
	return out
}

func (s *Session) renderQuantum() {
	s.pass++
	start := s.frame
	s.frame += Quantum
	s.out = *s.dest.pull(start)
	s.outPos = 0
}

// timeOf returns the session time of frame index i.
func (s *Session) timeOf(i int64) float64 {
	return float64(i) / s.sampleRate
}

func (s *Session) CreateGain() audio.GainNode {
	return newGain(s)
}

func (s *Session) CreateFilter(kind audio.FilterType) audio.FilterNode {
	return newBiquad(s, kind)
}

func (s *Session) CreateOscillator(wave audio.Waveform) audio.OscillatorNode {
	return newOscillator(s, wave)
}

func (s *Session) CreateBufferSource(buf audio.Buffer, loop bool) audio.BufferSourceNode {
	b, _ := buf.(*Buffer)
	return newBufferSource(s, b, loop)
}

func (s *Session) CreateConvolver(ir audio.Buffer) audio.ConvolverNode {
	b, _ := ir.(*Buffer)
	return newConvolver(s, b)
}

func (s *Session) CreateCompressor(c audio.CompressorSettings) audio.CompressorNode {
	return newCompressor(s, c)
}

// CreateBuffer copies the channel data. Every channel must have the same
// length.
func (s *Session) CreateBuffer(channels [][]float32, sampleRate float64) (audio.Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("offline: buffer needs at least one channel")
	}
	n := len(channels[0])
	data := make([][]float32, len(channels))
	for i, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("offline: channel %d has %d frames, want %d", i, len(ch), n)
		}
		data[i] = append([]float32(nil), ch...)
	}
	return &Buffer{data: data, sampleRate: sampleRate}, nil
}

// Buffer is sample data owned by an offline session.
type Buffer struct {
	data       [][]float32
	sampleRate float64
}

func (b *Buffer) Channels() int {
	return len(b.data)
}

func (b *Buffer) Len() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data[0])
}

// Channel returns the samples of channel ch.
func (b *Buffer) Channel(ch int) []float32 {
	return b.data[ch]
}
