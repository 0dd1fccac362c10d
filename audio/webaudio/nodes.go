//go:build js
// +build js

package webaudio

import (
	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/breath/audio"
)

type param struct {
	o *js.Object
}

func (p param) SetValue(v float64) {
	p.o.Set("value", v)
}

func (p param) SetValueAtTime(v, t float64) {
	p.o.Call("setValueAtTime", v, t)
}

func (p param) LinearRampToValueAtTime(v, t float64) {
	p.o.Call("linearRampToValueAtTime", v, t)
}

func (p param) ExponentialRampToValueAtTime(v, t float64) {
	p.o.Call("exponentialRampToValueAtTime", v, t)
}

func (p param) SetTargetAtTime(v, t, timeConstant float64) {
	p.o.Call("setTargetAtTime", v, t, timeConstant)
}

func (p param) CancelScheduledValues(t float64) {
	p.o.Call("cancelScheduledValues", t)
}

type node struct {
	o *js.Object
}

type wrapped interface {
	object() *js.Object
}

func (n *node) object() *js.Object {
	return n.o
}

func (n *node) Connect(dst audio.Node) {
	if w, ok := dst.(wrapped); ok {
		n.o.Call("connect", w.object())
	}
}

func (n *node) ConnectParam(dst audio.Param) {
	if p, ok := dst.(param); ok {
		n.o.Call("connect", p.o)
	}
}

// Disconnect drops every outgoing connection. Disconnecting twice is
// harmless.
func (n *node) Disconnect() error {
	return try(func() { n.o.Call("disconnect") })
}

type gain struct {
	node
	gain param
}

func (g *gain) Gain() audio.Param { return g.gain }

type filter struct {
	node
	freq param
	q    param
}

func (f *filter) Frequency() audio.Param { return f.freq }
func (f *filter) Q() audio.Param         { return f.q }

// source is a scheduled node. Stopping a source that already stopped
// throws in some browsers; that is reported as an error.
type source struct {
	node
}

func (s *source) Start(t float64) error {
	return try(func() { s.o.Call("start", t) })
}

func (s *source) Stop(t float64) error {
	return try(func() { s.o.Call("stop", t) })
}

type oscillator struct {
	source
	freq   param
	detune param
}

func (o *oscillator) Frequency() audio.Param { return o.freq }
func (o *oscillator) Detune() audio.Param    { return o.detune }
