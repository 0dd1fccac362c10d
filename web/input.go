//go:build js
// +build js

package web

import (
	"strconv"

	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/breath/common"
)

// on adds an event listener.
func on(target *js.Object, event string, fn func(*js.Object)) {
	target.Call("addEventListener", event, fn)
}

// installUnlock resumes the audio session on every user gesture until it
// runs. Resuming waits on a promise, so it runs in its own goroutine.
func (a *App) installUnlock() {
	unlock := func(*js.Object) {
		go a.Driver.Unlock(now())
	}
	window := js.Global
	on(window, "pointerdown", unlock)
	on(window, "keydown", unlock)
	window.Call("addEventListener", "touchstart", unlock, map[string]any{"passive": true})
}

func (a *App) wireControls() {
	on(a.Nodes.StartPause, "click", func(*js.Object) {
		go a.toggle()
	})

	on(a.Nodes.Reset, "click", func(*js.Object) {
		a.render(a.Driver.Reset(now()))
		if a.Driver.Running() {
			a.startLoop()
		}
	})

	on(a.Nodes.SizeSlider, "input", func(e *js.Object) {
		raw, err := strconv.ParseFloat(e.Get("target").Get("value").String(), 64)
		if err != nil {
			raw = 100
		}
		a.applyScale(raw)
		a.persist()
	})

	on(a.Nodes.ToggleSound, "change", func(*js.Object) {
		a.syncSound(a.Nodes.ToggleSound.Get("checked").Bool())
		a.persist()
		common.Debug("sound toggled", "enabled", a.Engine.Enabled())
		go a.Driver.SoundChanged(now())
	})

	toggles := []struct {
		el  *js.Object
		dst *bool
	}{
		{a.Nodes.ToggleInstruction, &a.settings.ShowInstruction},
		{a.Nodes.ToggleCountdown, &a.settings.ShowCountdown},
		{a.Nodes.ToggleElapsed, &a.settings.ShowElapsed},
		{a.Nodes.ToggleQuotes, &a.settings.ShowQuotes},
		{a.Nodes.QuoteAutoToggle, &a.settings.QuoteAutoShuffle},
	}
	for _, t := range toggles {
		t := t
		on(t.el, "change", func(*js.Object) {
			*t.dst = t.el.Get("checked").Bool()
			a.applyVisibility()
			a.persist()
		})
	}
}

// toggle pauses or resumes the session and keeps the button label and the
// loop in step.
func (a *App) toggle() {
	t := now()
	if a.Driver.Running() {
		a.Driver.Pause(t)
		a.stopLoop()
		a.Nodes.StartPause.Set("textContent", "Start")
		return
	}
	a.Nodes.StartPause.Set("textContent", "Pause")
	a.startLoop()
	a.Driver.Resume(t)
}
