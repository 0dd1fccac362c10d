//go:build js
// +build js

// Package webaudio implements audio.Session on the browser's Web Audio API.
package webaudio

import (
	"errors"
	"fmt"

	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/breath/audio"
)

// Session wraps an AudioContext.
type Session struct {
	ctx  *js.Object
	dest *node
}

// constructor returns AudioContext, falling back to webkitAudioContext.
func constructor() *js.Object {
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return nil
	}
	return ctor
}

// Factory returns a factory that opens AudioContexts, or nil when the
// browser has no Web Audio support.
func Factory() audio.SessionFactory {
	ctor := constructor()
	if ctor == nil {
		return nil
	}
	return func() (audio.Session, error) {
		var ctx *js.Object
		if err := try(func() { ctx = ctor.New() }); err != nil {
			return nil, fmt.Errorf("webaudio: create context: %w", err)
		}
		return &Session{ctx: ctx, dest: &node{o: ctx.Get("destination")}}, nil
	}
}

func (s *Session) State() audio.State {
	return audio.State(s.ctx.Get("state").String())
}

func (s *Session) CurrentTime() float64 {
	return s.ctx.Get("currentTime").Float()
}

func (s *Session) SampleRate() float64 {
	return s.ctx.Get("sampleRate").Float()
}

// Resume waits for the context's resume promise. It blocks, so it must not
// be called directly from a JS event handler; run it in a goroutine.
func (s *Session) Resume() error {
	if s.State() == audio.StateClosed {
		return audio.ErrSessionClosed
	}
	var promise *js.Object
	if err := try(func() { promise = s.ctx.Call("resume") }); err != nil {
		return err
	}
	if promise == nil || promise == js.Undefined {
		return nil
	}

	done := make(chan error, 1)
	promise.Call("then", func() {
		done <- nil
	}, func(reason *js.Object) {
		done <- errors.New(describe(reason))
	})
	return <-done
}

func (s *Session) Destination() audio.Node {
	return s.dest
}

func (s *Session) CreateGain() audio.GainNode {
	o := s.ctx.Call("createGain")
	return &gain{node: node{o: o}, gain: param{o.Get("gain")}}
}

func (s *Session) CreateFilter(kind audio.FilterType) audio.FilterNode {
	o := s.ctx.Call("createBiquadFilter")
	o.Set("type", string(kind))
	return &filter{node: node{o: o}, freq: param{o.Get("frequency")}, q: param{o.Get("Q")}}
}

func (s *Session) CreateOscillator(wave audio.Waveform) audio.OscillatorNode {
	o := s.ctx.Call("createOscillator")
	o.Set("type", string(wave))
	return &oscillator{
		source: source{node: node{o: o}},
		freq:   param{o.Get("frequency")},
		detune: param{o.Get("detune")},
	}
}

func (s *Session) CreateBufferSource(buf audio.Buffer, loop bool) audio.BufferSourceNode {
	o := s.ctx.Call("createBufferSource")
	if b, ok := buf.(*Buffer); ok {
		o.Set("buffer", b.o)
	}
	o.Set("loop", loop)
	return &source{node: node{o: o}}
}

func (s *Session) CreateConvolver(ir audio.Buffer) audio.ConvolverNode {
	o := s.ctx.Call("createConvolver")
	if b, ok := ir.(*Buffer); ok {
		o.Set("buffer", b.o)
	}
	return &node{o: o}
}

func (s *Session) CreateCompressor(c audio.CompressorSettings) audio.CompressorNode {
	o := s.ctx.Call("createDynamicsCompressor")
	o.Get("threshold").Set("value", c.Threshold)
	o.Get("knee").Set("value", c.Knee)
	o.Get("ratio").Set("value", c.Ratio)
	o.Get("attack").Set("value", c.Attack)
	o.Get("release").Set("value", c.Release)
	return &node{o: o}
}

// CreateBuffer copies channels into an AudioBuffer. Browsers without
// copyToChannel are filled sample by sample.
func (s *Session) CreateBuffer(channels [][]float32, sampleRate float64) (audio.Buffer, error) {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, fmt.Errorf("webaudio: empty buffer")
	}
	n := len(channels[0])
	var o *js.Object
	err := try(func() {
		o = s.ctx.Call("createBuffer", len(channels), n, sampleRate)
		bulk := o.Get("copyToChannel") != js.Undefined
		for ch, data := range channels {
			if bulk {
				o.Call("copyToChannel", data, ch)
				continue
			}
			dst := o.Call("getChannelData", ch)
			for i, v := range data {
				dst.SetIndex(i, v)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("webaudio: create buffer: %w", err)
	}
	return &Buffer{o: o}, nil
}

// Buffer wraps an AudioBuffer.
type Buffer struct {
	o *js.Object
}

func (b *Buffer) Channels() int {
	return b.o.Get("numberOfChannels").Int()
}

func (b *Buffer) Len() int {
	return b.o.Get("length").Int()
}

// try runs fn and returns a thrown JS exception as an error.
func try(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(*js.Error); ok {
				err = errors.New(jsErr.Error())
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

func describe(reason *js.Object) string {
	if reason == nil || reason == js.Undefined {
		return "webaudio: resume rejected"
	}
	if msg := reason.Get("message"); msg != js.Undefined {
		return "webaudio: resume rejected: " + msg.String()
	}
	return "webaudio: resume rejected: " + reason.String()
}
