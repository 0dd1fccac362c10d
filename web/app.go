//go:build js
// +build js

// Package web drives the breathing page: the animation loop, the controls
// and the audio unlock.
package web

import (
	"fmt"

	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/breath/audio"
	"github.com/simukka/breath/breath"
	"github.com/simukka/breath/settings"
)

// Nodes are the page elements the app reads and writes.
type Nodes struct {
	Visualizer        *js.Object
	Scene             *js.Object
	Core              *js.Object
	Instruction       *js.Object
	Countdown         *js.Object
	Elapsed           *js.Object
	QuoteCard         *js.Object
	SizeSlider        *js.Object
	SizeValue         *js.Object
	StartPause        *js.Object
	Reset             *js.Object
	ToggleInstruction *js.Object
	ToggleCountdown   *js.Object
	ToggleElapsed     *js.Object
	ToggleQuotes      *js.Object
	ToggleSound       *js.Object
	QuoteAutoToggle   *js.Object
}

// LookupNodes finds every element by id.
func LookupNodes(doc *js.Object) (Nodes, error) {
	var missing []string
	get := func(id string) *js.Object {
		el := doc.Call("getElementById", id)
		if el == nil || el == js.Undefined {
			missing = append(missing, id)
		}
		return el
	}
	n := Nodes{
		Visualizer:        get("visualizer"),
		Scene:             get("scene"),
		Core:              get("breath-core"),
		Instruction:       get("instruction"),
		Countdown:         get("countdown"),
		Elapsed:           get("elapsed"),
		QuoteCard:         get("quote-card"),
		SizeSlider:        get("size-slider"),
		SizeValue:         get("size-value"),
		StartPause:        get("start-pause"),
		Reset:             get("reset"),
		ToggleInstruction: get("toggle-instruction"),
		ToggleCountdown:   get("toggle-countdown"),
		ToggleElapsed:     get("toggle-elapsed"),
		ToggleQuotes:      get("toggle-quotes"),
		ToggleSound:       get("toggle-sound"),
		QuoteAutoToggle:   get("quote-auto-toggle"),
	}
	if len(missing) > 0 {
		return n, fmt.Errorf("web: missing elements %v", missing)
	}
	return n, nil
}

// App ties the page to the breathing driver and the audio engine.
type App struct {
	Nodes  Nodes
	Driver *breath.Driver
	Engine *audio.Engine

	store    settings.Store
	settings settings.Settings

	body    *js.Object
	rafID   int
	looping bool
	last    renderedText
}

// renderedText remembers what was last written so unchanged text is not
// touched every frame.
type renderedText struct {
	instruction string
	countdown   string
	elapsed     string
}

// NewApp builds the app. store may be nil when the browser has no usable
// storage.
func NewApp(doc *js.Object, nodes Nodes, engine *audio.Engine, store settings.Store) *App {
	a := &App{
		Nodes:    nodes,
		Engine:   engine,
		store:    store,
		settings: settings.Load(store),
		body:     doc.Get("body"),
	}
	a.Driver = breath.NewDriver(now(), engine)
	a.Driver.OnPhase = a.setPhaseTheme
	return a
}

// Start applies the persisted settings, wires the controls and starts the
// animation loop.
func (a *App) Start() {
	a.applySettings()
	a.wireControls()
	a.installUnlock()
	a.persist()
	a.setPhaseTheme(a.Driver.Phase())
	a.startLoop()
}

func (a *App) applySettings() {
	s := a.settings
	a.Nodes.ToggleInstruction.Set("checked", s.ShowInstruction)
	a.Nodes.ToggleCountdown.Set("checked", s.ShowCountdown)
	a.Nodes.ToggleElapsed.Set("checked", s.ShowElapsed)
	a.Nodes.ToggleQuotes.Set("checked", s.ShowQuotes)
	a.Nodes.QuoteAutoToggle.Set("checked", s.QuoteAutoShuffle)
	a.syncSound(s.SoundEnabled)
	a.applyScale(float64(s.SizePercent))
	a.applyVisibility()
}

// syncSound turns sound on or off. Without Web Audio the toggle is forced
// off and disabled.
func (a *App) syncSound(on bool) {
	enabled := a.Engine.SetSoundEnabled(on)
	a.settings.SoundEnabled = enabled
	a.Nodes.ToggleSound.Set("checked", enabled)
	a.Nodes.ToggleSound.Set("disabled", !a.Engine.Available())
}

func (a *App) applyVisibility() {
	hide := func(el *js.Object, visible bool) {
		el.Get("classList").Call("toggle", "is-hidden", !visible)
	}
	hide(a.Nodes.Instruction, a.settings.ShowInstruction)
	hide(a.Nodes.Countdown, a.settings.ShowCountdown)
	hide(a.Nodes.Elapsed, a.settings.ShowElapsed)
	hide(a.Nodes.QuoteCard, a.settings.ShowQuotes)
}

func (a *App) persist() {
	settings.Save(a.store, a.settings)
}

// now is the page's monotonic clock in milliseconds.
func now() float64 {
	return js.Global.Get("performance").Call("now").Float()
}
