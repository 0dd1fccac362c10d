package audio

import (
	"fmt"

	"github.com/simukka/breath/common"
)

// Engine owns the audio session, the master routing, the shared noise
// buffer and every live voice. All scheduling goes through it. It is not
// safe for concurrent use.
type Engine struct {
	cfg        Config
	newSession SessionFactory

	rng      *common.SeededRNG // detune and modulation jitter
	noiseRNG *common.SeededRNG // noise and impulse buffers

	session Session
	routing routing
	noise   Buffer
	voices  []*Voice
	retired []retired
	ambient *ambientVoice

	soundEnabled bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConfig replaces the default tuning.
func WithConfig(cfg Config) EngineOption {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithSeed makes every random choice of the engine reproducible.
func WithSeed(seed uint32) EngineOption {
	return func(e *Engine) {
		e.rng = common.NewSeededRNG(seed)
		e.noiseRNG = e.rng.Derive(1)
	}
}

// NewEngine creates an engine that opens sessions with factory. No session
// is opened until sound is first needed. A nil factory yields an engine
// that reports itself unavailable.
func NewEngine(factory SessionFactory, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:        DefaultConfig(),
		newSession: factory,
	}
	WithSeed(0x5eed)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available reports whether the host can produce audio at all.
func (e *Engine) Available() bool {
	return e.newSession != nil
}

// Config returns the engine tuning.
func (e *Engine) Config() Config {
	return e.cfg
}

// Session returns the current session, or nil before one was opened.
func (e *Engine) Session() Session {
	return e.session
}

// Enabled reports whether sound is on.
func (e *Engine) Enabled() bool {
	return e.soundEnabled
}

// SetSoundEnabled records the user's sound preference. Sound cannot be
// turned on without a backend; the returned value is the effective state.
func (e *Engine) SetSoundEnabled(on bool) bool {
	e.soundEnabled = on && e.Available()
	return e.soundEnabled
}

// ensure returns a usable session, opening a new one when there is none or
// the previous one was closed, and builds any missing part of the routing.
func (e *Engine) ensure() (Session, error) {
	if e.newSession == nil {
		return nil, ErrUnsupported
	}

	if e.session != nil && e.session.State() == StateClosed {
		common.DebugWarn("audio session closed, rebuilding")
		e.discard()
	}

	if e.session == nil {
		s, err := e.newSession()
		if err != nil {
			return nil, fmt.Errorf("audio: open session: %w", err)
		}
		if s == nil {
			return nil, ErrUnsupported
		}
		e.session = s
		common.Debug("audio session opened", "sampleRate", s.SampleRate(), "state", string(s.State()))
	}

	if err := e.ensureRouting(e.session); err != nil {
		return nil, err
	}
	return e.session, nil
}

// discard forgets every node that belonged to the previous session.
func (e *Engine) discard() {
	e.session = nil
	e.routing = routing{}
	e.noise = nil
	e.voices = nil
	e.retired = nil
	e.ambient = nil
}

// Wake opens the session if needed and resumes it when it is suspended or
// interrupted. resumed is true when this call brought it to running.
func (e *Engine) Wake() (resumed bool, err error) {
	s, err := e.ensure()
	if err != nil {
		return false, err
	}

	switch s.State() {
	case StateRunning:
		return false, nil
	case StateSuspended, StateInterrupted:
		if err := s.Resume(); err != nil {
			return false, fmt.Errorf("audio: resume: %w", err)
		}
		running := s.State() == StateRunning
		if running {
			common.Debug("audio session resumed", "at", s.CurrentTime())
		}
		return running, nil
	default:
		return false, ErrSessionClosed
	}
}

// StopAll silences every phase voice and the ambient bed.
func (e *Engine) StopAll() {
	e.StopVoices()
	e.StopAmbient()
}

// noiseBuffer returns the shared looping noise buffer, generating it on
// first use.
func (e *Engine) noiseBuffer(s Session) (Buffer, error) {
	if e.noise != nil {
		return e.noise, nil
	}
	data := SmoothedNoise(e.noiseRNG, s.SampleRate(), e.cfg.NoiseSeconds, e.cfg.NoiseSmoothing)
	buf, err := s.CreateBuffer([][]float32{data}, s.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("audio: noise buffer: %w", err)
	}
	e.noise = buf
	return buf, nil
}
