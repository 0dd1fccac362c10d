//go:build js
// +build js

package main

import (
	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/breath/audio"
	"github.com/simukka/breath/audio/webaudio"
	"github.com/simukka/breath/common"
	"github.com/simukka/breath/settings"
	"github.com/simukka/breath/web"
)

func main() {
	common.SetLogger(web.Console{})

	doc := js.Global.Get("document")
	nodes, err := web.LookupNodes(doc)
	if err != nil {
		panic(err)
	}

	engine := audio.NewEngine(webaudio.Factory())
	if !engine.Available() {
		common.DebugWarn("Web Audio unavailable, sound disabled")
	}

	var store settings.Store
	if ls := settings.NewLocalStorage(); ls != nil {
		store = ls
	}

	app := web.NewApp(doc, nodes, engine, store)
	app.Start()
}
