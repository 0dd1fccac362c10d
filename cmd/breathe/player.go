package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/simukka/breath/audio"
	"github.com/simukka/breath/audio/offline"
	"github.com/simukka/breath/breath"
)

// framesPerSecond is how often the driver renders, like a display refresh.
const framesPerSecond = 60

// player runs the breathing driver on the audio clock of an offline
// session.
type player struct {
	log     *slog.Logger
	session *offline.Session
	engine  *audio.Engine
	driver  *breath.Driver
	stream  *offline.Stream

	mu       sync.Mutex
	commands []Command
	next     int
	pending  []Action
}

func newPlayer(plan *Plan, sampleRate int, logger *slog.Logger) *player {
	p := &player{
		log:      logger,
		session:  offline.NewRunningSession(float64(sampleRate)),
		commands: plan.Commands,
	}
	p.engine = audio.NewEngine(p.session.Factory(), audio.WithSeed(plan.Seed))
	p.engine.SetSoundEnabled(plan.SoundOn())
	p.driver = breath.NewDriver(0, p.engine)
	p.driver.OnPhase = func(ph breath.Phase) {
		p.log.Info("phase", "phase", ph.Spec().ID, "at", p.stream.Seconds())
	}
	p.stream = offline.NewStream(p.session, sampleRate/framesPerSecond, p.tick)
	if p.engine.Enabled() {
		p.driver.SoundChanged(0)
	}
	return p
}

// tick runs on the audio clock once per frame. It applies commands that
// are due and renders a frame while the session runs.
func (p *player) tick(seconds float64) {
	now := seconds * 1000
	for p.next < len(p.commands) && p.commands[p.next].At <= seconds {
		p.apply(p.commands[p.next].Action, now)
		p.next++
	}

	p.mu.Lock()
	queued := p.pending
	p.pending = nil
	p.mu.Unlock()
	for _, a := range queued {
		p.apply(a, now)
	}

	if p.driver.Running() {
		f := p.driver.Render(now)
		if f.Changed {
			p.log.Debug("frame", "instruction", f.Instruction, "remaining", f.RemainingSeconds, "elapsed", f.ElapsedText())
		}
	}
}

// enqueue schedules an action for the next frame. It is safe to call from
// any goroutine.
func (p *player) enqueue(a Action) {
	p.mu.Lock()
	p.pending = append(p.pending, a)
	p.mu.Unlock()
}

func (p *player) apply(a Action, now float64) {
	p.log.Info("command", "action", string(a), "at", now/1000)
	switch a {
	case ActionPause:
		p.driver.Pause(now)
	case ActionResume:
		p.driver.Resume(now)
	case ActionToggle:
		p.driver.Toggle(now)
	case ActionReset:
		p.driver.Reset(now)
	case ActionSoundOn, ActionSoundOff:
		p.engine.SetSoundEnabled(a == ActionSoundOn)
		p.driver.SoundChanged(now)
	}
}

// writeWAV renders seconds of the session into a new file at path. The
// file is closed before returning and a failed close is reported.
func (p *player) writeWAV(path string, seconds float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	err = p.renderWAV(f, seconds)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return err
}

// renderWAV writes seconds of the session to w.
func (p *player) renderWAV(w io.WriteSeeker, seconds float64) error {
	format := p.session.Format()
	n := format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if err := wav.Encode(w, beep.Take(n, p.stream), format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// play sends the session to the speaker. With seconds > 0 it returns once
// that much has played; otherwise it plays until stop is closed.
func (p *player) play(seconds float64, stop <-chan struct{}) error {
	format := p.session.Format()
	sr := format.SampleRate
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	defer speaker.Close()

	done := make(chan struct{})
	var s beep.Streamer = p.stream
	if seconds > 0 {
		s = beep.Take(sr.N(time.Duration(seconds*float64(time.Second))), p.stream)
	}
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
	case <-stop:
		speaker.Clear()
	}
	return nil
}
