package breath

import (
	"math"

	"github.com/simukka/breath/common"
)

// Cues is the audio side of a session. The driver calls it on phase
// boundaries and on the user actions that affect sound.
type Cues interface {
	// Enabled reports whether the user wants sound.
	Enabled() bool
	// Wake creates the audio session if needed and resumes it when it is
	// suspended or interrupted. resumed is true when this call moved the
	// session into the running state.
	Wake() (resumed bool, err error)
	// PlayCue schedules the sound for phase p lasting the given seconds.
	PlayCue(p Phase, seconds float64)
	// StopVoices fades and stops every phase voice.
	StopVoices()
	// StopAmbient fades and stops the ambient bed.
	StopAmbient()
	// Collect drops voices whose lifetime has passed.
	Collect()
}

// Clock holds the two anchors all timing is derived from. Both are
// monotonic milliseconds.
type Clock struct {
	PhaseStart   float64
	SessionStart float64
}

// Frame is everything the display needs for one rendered moment.
type Frame struct {
	Phase       Phase
	Instruction string

	// Progress is the raw, clamped fraction of the phase that has elapsed.
	Progress float64
	// Eased is Progress after easing. Holds are not eased.
	Eased float64

	Scale          float64
	ContainerFill  float64
	HoldProgress   float64
	HoldVisibility float64
	HoldAlert      float64
	// HoldRotation is the starting angle of the hold indicator in degrees.
	HoldRotation float64

	RemainingSeconds int
	ElapsedMs        float64

	// Changed is true when this frame entered a new phase.
	Changed bool
}

// ElapsedText formats the session clock for display.
func (f Frame) ElapsedText() string {
	return FormatElapsed(f.ElapsedMs)
}

// Driver owns the session clock and the phase state machine. It is not safe
// for concurrent use; the browser build calls it from a single event loop
// and the native build guards it with the speaker lock.
type Driver struct {
	clock    Clock
	phase    Phase
	rendered Phase
	running  bool
	pausedAt float64
	cues     Cues

	// OnPhase is called whenever a rendered frame enters a new phase.
	OnPhase func(p Phase)
}

// NewDriver starts a running session at now. A nil Cues runs silently.
func NewDriver(now float64, cues Cues) *Driver {
	if cues == nil {
		cues = silent{}
	}
	return &Driver{
		clock:    Clock{PhaseStart: now, SessionStart: now},
		phase:    Inhale,
		rendered: Inhale,
		running:  true,
		cues:     cues,
	}
}

// Running reports whether the session clock is advancing.
func (d *Driver) Running() bool {
	return d.running
}

// Clock returns the current anchors.
func (d *Driver) Clock() Clock {
	return d.clock
}

// Phase returns the current phase without advancing the clock.
func (d *Driver) Phase() Phase {
	return d.phase
}

// advance moves through as many whole phases as fit before now.
func (d *Driver) advance(now float64) {
	for {
		duration := d.phase.Spec().Duration
		if now-d.clock.PhaseStart < duration {
			return
		}
		d.clock.PhaseStart += duration
		d.phase = d.phase.Next()
	}
}

// Remaining returns the current phase and how many seconds of it are left,
// clamped to [0.2, phase duration].
func (d *Driver) Remaining(now float64) (Phase, float64) {
	d.advance(now)
	spec := d.phase.Spec()
	elapsed := now - d.clock.PhaseStart
	return d.phase, common.Clamp((spec.Duration-elapsed)/1000, 0.2, spec.Duration/1000)
}

// Render advances the clock to now and computes the frame. Entering a new
// phase fires OnPhase and, with sound on, a cue sized to what remains of
// the new phase.
func (d *Driver) Render(now float64) Frame {
	d.advance(now)
	d.cues.Collect()

	spec := d.phase.Spec()
	phaseElapsed := now - d.clock.PhaseStart
	progress := common.Clamp01(phaseElapsed / spec.Duration)
	hold := d.phase.IsHold()

	eased := progress
	if !hold {
		eased = EaseInOutSine(progress)
	}

	f := Frame{
		Phase:       d.phase,
		Instruction: spec.Instruction,
		Progress:    progress,
		Eased:       eased,
		Scale:       spec.From + (spec.To-spec.From)*eased,
		ElapsedMs:   math.Max(0, now-d.clock.SessionStart),
	}

	switch d.phase {
	case Inhale:
		f.ContainerFill = eased
	case HoldHigh:
		f.ContainerFill = 1
	case Exhale:
		f.ContainerFill = 1 - eased
	case HoldLow:
		f.ContainerFill = 0
	}

	release := 0.0
	if !hold {
		release = common.Clamp01(1 - phaseElapsed/HoldReleaseMs)
	}
	if hold {
		f.HoldProgress = progress
		f.HoldVisibility = 1
		f.HoldAlert = math.Max(0, (progress-0.65)/0.35)
	} else {
		if release > 0 {
			f.HoldProgress = 1
		}
		f.HoldVisibility = release
	}

	switch d.phase {
	case HoldLow, Inhale:
		f.HoldRotation = 180
	default:
		f.HoldRotation = 0
	}

	f.RemainingSeconds = int(math.Ceil(math.Max(0, spec.Duration-phaseElapsed) / 1000))

	if d.rendered != d.phase {
		d.rendered = d.phase
		f.Changed = true
		if d.OnPhase != nil {
			d.OnPhase(d.phase)
		}
		if d.cues.Enabled() {
			_, seconds := d.Remaining(now)
			d.cues.PlayCue(d.phase, seconds)
		}
	}
	return f
}

// Pause freezes the session. It reports false if already paused.
func (d *Driver) Pause(now float64) bool {
	if !d.running {
		return false
	}
	d.running = false
	d.pausedAt = now
	d.cues.StopVoices()
	d.cues.StopAmbient()
	return true
}

// Resume continues a paused session, shifting both anchors forward by the
// paused interval so no phase time is lost. With sound on it wakes the
// audio session and cues the remainder of the current phase.
func (d *Driver) Resume(now float64) bool {
	if d.running {
		return false
	}
	paused := now - d.pausedAt
	d.clock.PhaseStart += paused
	d.clock.SessionStart += paused
	d.running = true
	if d.cues.Enabled() {
		d.wakeAndCue(now)
	}
	return true
}

// Toggle pauses a running session or resumes a paused one.
func (d *Driver) Toggle(now float64) {
	if d.running {
		d.Pause(now)
		return
	}
	d.Resume(now)
}

// Reset restarts from the first phase at now and returns the fresh frame.
// A paused session stays paused with its pause anchored at now.
func (d *Driver) Reset(now float64) Frame {
	d.cues.StopVoices()
	d.cues.StopAmbient()
	d.phase = Inhale
	d.rendered = Inhale
	d.clock = Clock{PhaseStart: now, SessionStart: now}
	if !d.running {
		d.pausedAt = now
	}
	if d.OnPhase != nil {
		d.OnPhase(Inhale)
	}
	if d.running && d.cues.Enabled() {
		d.cues.PlayCue(Inhale, Inhale.Spec().Duration/1000)
	}
	return d.Render(now)
}

// SoundChanged applies a flip of the sound preference. Turning sound off
// silences everything. Turning it on wakes the audio session and cues the
// remainder of the current phase when the session is running.
func (d *Driver) SoundChanged(now float64) {
	if !d.cues.Enabled() {
		d.cues.StopVoices()
		d.cues.StopAmbient()
		return
	}
	d.wakeAndCue(now)
}

// Unlock handles a user gesture. Browsers only allow audio to start from
// one, so every gesture retries the resume until it succeeds.
func (d *Driver) Unlock(now float64) {
	resumed, err := d.cues.Wake()
	if err != nil {
		common.DebugWarn("audio unlock failed", "err", err)
		return
	}
	if resumed && d.running && d.cues.Enabled() {
		d.cueRemaining(now)
	}
}

func (d *Driver) wakeAndCue(now float64) {
	if _, err := d.cues.Wake(); err != nil {
		common.DebugWarn("audio resume failed", "err", err)
		return
	}
	if d.running {
		d.cueRemaining(now)
	}
}

// cueRemaining cues what is left of the phase at now. A boundary crossed
// since the last frame is marked as entered so Render does not cue it again.
func (d *Driver) cueRemaining(now float64) {
	p, seconds := d.Remaining(now)
	if d.rendered != p {
		d.rendered = p
		if d.OnPhase != nil {
			d.OnPhase(p)
		}
	}
	d.cues.PlayCue(p, seconds)
}

type silent struct{}

func (silent) Enabled() bool          { return false }
func (silent) Wake() (bool, error)    { return false, nil }
func (silent) PlayCue(Phase, float64) {}
func (silent) StopVoices()            {}
func (silent) StopAmbient()           {}
func (silent) Collect()               {}
