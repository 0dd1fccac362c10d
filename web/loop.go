//go:build js
// +build js

package web

import "github.com/gopherjs/gopherjs/js"

// frame is the requestAnimationFrame callback. The loop only reschedules
// itself while the session runs.
func (a *App) frame(t float64) {
	a.render(a.Driver.Render(t))
	if a.Driver.Running() {
		a.rafID = js.Global.Call("requestAnimationFrame", a.frame).Int()
		return
	}
	a.looping = false
}

func (a *App) startLoop() {
	if a.looping {
		return
	}
	a.looping = true
	a.rafID = js.Global.Call("requestAnimationFrame", a.frame).Int()
}

func (a *App) stopLoop() {
	if !a.looping {
		return
	}
	js.Global.Call("cancelAnimationFrame", a.rafID)
	a.looping = false
}
