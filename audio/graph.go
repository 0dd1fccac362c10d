package audio

import "errors"

// State mirrors the lifecycle of a browser AudioContext.
type State string

const (
	StateSuspended   State = "suspended"
	StateRunning     State = "running"
	StateClosed      State = "closed"
	StateInterrupted State = "interrupted"
)

var (
	// ErrUnsupported is returned when the host has no audio backend.
	ErrUnsupported = errors.New("audio: no audio backend available")
	// ErrSessionClosed is returned when resuming a closed session.
	ErrSessionClosed = errors.New("audio: session closed")
)

// Waveform is an oscillator shape.
type Waveform string

const (
	Sine     Waveform = "sine"
	Triangle Waveform = "triangle"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
)

// FilterType selects the response of a biquad filter.
type FilterType string

const (
	Lowpass  FilterType = "lowpass"
	Highpass FilterType = "highpass"
	Bandpass FilterType = "bandpass"
)

// Param is a schedulable parameter. Times are in session seconds.
type Param interface {
	SetValue(v float64)
	SetValueAtTime(v, t float64)
	LinearRampToValueAtTime(v, t float64)
	ExponentialRampToValueAtTime(v, t float64)
	SetTargetAtTime(v, t, timeConstant float64)
	CancelScheduledValues(t float64)
}

// Node is a vertex in the audio graph.
type Node interface {
	Connect(dst Node)
	ConnectParam(dst Param)
	Disconnect() error
}

// Source is a node that is started and stopped on the session clock.
type Source interface {
	Node
	Start(t float64) error
	Stop(t float64) error
}

type GainNode interface {
	Node
	Gain() Param
}

type FilterNode interface {
	Node
	Frequency() Param
	Q() Param
}

type OscillatorNode interface {
	Source
	Frequency() Param
	Detune() Param
}

type BufferSourceNode interface {
	Source
}

type ConvolverNode interface {
	Node
}

type CompressorNode interface {
	Node
}

// Buffer is sample data owned by a session.
type Buffer interface {
	Channels() int
	Len() int
}

// CompressorSettings configures a dynamics compressor.
type CompressorSettings struct {
	Threshold float64 // dB
	Knee      float64 // dB
	Ratio     float64
	Attack    float64 // seconds
	Release   float64 // seconds
}

// Session is one audio output context. The browser build wraps an
// AudioContext; the native build renders the same graph in Go.
type Session interface {
	State() State
	CurrentTime() float64
	SampleRate() float64
	Resume() error
	Destination() Node

	CreateGain() GainNode
	CreateFilter(kind FilterType) FilterNode
	CreateOscillator(wave Waveform) OscillatorNode
	CreateBufferSource(buf Buffer, loop bool) BufferSourceNode
	CreateConvolver(ir Buffer) ConvolverNode
	CreateCompressor(c CompressorSettings) CompressorNode

	// CreateBuffer copies one slice per channel into a session buffer.
	CreateBuffer(channels [][]float32, sampleRate float64) (Buffer, error)
}

// SessionFactory opens a new session. A nil factory means audio is
// unavailable on this host.
type SessionFactory func() (Session, error)
