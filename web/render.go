//go:build js
// +build js

package web

import (
	"strconv"

	"github.com/simukka/breath/breath"
	"github.com/simukka/breath/settings"
)

func fixed(v float64, digits int) string {
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// render writes one frame to the page.
func (a *App) render(f breath.Frame) {
	scene := a.Nodes.Scene.Get("style")
	scene.Call("setProperty", "--container-fill", fixed(f.ContainerFill, 4))
	scene.Call("setProperty", "--hold-progress", fixed(f.HoldProgress, 4))
	scene.Call("setProperty", "--hold-visibility", fixed(f.HoldVisibility, 4))
	scene.Call("setProperty", "--hold-alert", fixed(f.HoldAlert, 4))
	scene.Call("setProperty", "--hold-start-rotation", strconv.Itoa(int(f.HoldRotation))+"deg")
	a.Nodes.Core.Get("style").Call("setProperty", "--core-scale", fixed(f.Scale, 4))

	countdown := strconv.Itoa(f.RemainingSeconds) + "s"
	elapsed := f.ElapsedText()
	if a.last.instruction != f.Instruction {
		a.last.instruction = f.Instruction
		a.Nodes.Instruction.Set("textContent", f.Instruction)
	}
	if a.last.countdown != countdown {
		a.last.countdown = countdown
		a.Nodes.Countdown.Set("textContent", countdown)
	}
	if a.last.elapsed != elapsed {
		a.last.elapsed = elapsed
		a.Nodes.Elapsed.Set("textContent", elapsed)
	}
}

// setPhaseTheme exposes the phase to CSS as body[data-phase].
func (a *App) setPhaseTheme(p breath.Phase) {
	a.body.Get("dataset").Set("phase", p.Spec().ID)
}

// applyScale clamps the slider value and applies it as --scene-scale.
func (a *App) applyScale(raw float64) {
	percent := settings.NormalizeSize(raw)
	a.settings.SizePercent = percent
	a.Nodes.Visualizer.Get("style").Call("setProperty", "--scene-scale", fixed(float64(percent)/100, 2))
	a.Nodes.SizeSlider.Set("value", strconv.Itoa(percent))
	a.Nodes.SizeValue.Set("textContent", strconv.Itoa(percent)+"%")
}
