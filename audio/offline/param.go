package offline

import (
	"math"
	"sort"
)

// EventKind identifies a scheduled parameter change.
type EventKind int

const (
	SetValue EventKind = iota
	LinearRamp
	ExponentialRamp
	SetTarget
)

// Event is one entry of a parameter's automation timeline. For ramps Time
// is when the ramp arrives at Value.
type Event struct {
	Kind         EventKind
	Value        float64
	Time         float64
	TimeConstant float64
}

// Param is an automatable value. Its per-frame value is the automation
// curve plus the summed output of any nodes connected to it.
type Param struct {
	s     *Session
	name  string
	value float64

	events []Event
	inputs []*base

	pass int64
	vals [Quantum]float64
}

func newParam(s *Session, name string, value float64) *Param {
	return &Param{s: s, name: name, value: value}
}

// Events returns the pending automation, oldest first.
func (p *Param) Events() []Event {
	return append([]Event(nil), p.events...)
}

// Value returns the automation value at t, ignoring connected inputs.
func (p *Param) Value(t float64) float64 {
	return p.valueAt(t)
}

func (p *Param) SetValue(v float64) {
	p.value = v
}

func (p *Param) SetValueAtTime(v, t float64) {
	p.insert(Event{Kind: SetValue, Value: v, Time: t})
}

func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.insert(Event{Kind: LinearRamp, Value: v, Time: t})
}

func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	if v == 0 {
		p.s.fault("%s: exponential ramp to zero at %.4f", p.name, t)
		return
	}
	p.insert(Event{Kind: ExponentialRamp, Value: v, Time: t})
}

func (p *Param) SetTargetAtTime(v, t, timeConstant float64) {
	if timeConstant <= 0 {
		p.SetValueAtTime(v, t)
		return
	}
	p.insert(Event{Kind: SetTarget, Value: v, Time: t, TimeConstant: timeConstant})
}

// CancelScheduledValues drops every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time >= t })
	p.events = p.events[:i]
}

// insert keeps events ordered by time; equal times keep insertion order.
func (p *Param) insert(e Event) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > e.Time })
	p.events = append(p.events, Event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

// valueAt evaluates the automation timeline at t.
func (p *Param) valueAt(t float64) float64 {
	v, t0 := p.value, 0.0
	for i, e := range p.events {
		switch e.Kind {
		case SetValue:
			if t < e.Time {
				return v
			}
			v, t0 = e.Value, e.Time

		case LinearRamp:
			if t < e.Time {
				if e.Time <= t0 {
					return v
				}
				return v + (e.Value-v)*(t-t0)/(e.Time-t0)
			}
			v, t0 = e.Value, e.Time

		case ExponentialRamp:
			if t < e.Time {
				if e.Time <= t0 || v == 0 || v*e.Value < 0 {
					return v
				}
				return v * math.Pow(e.Value/v, (t-t0)/(e.Time-t0))
			}
			v, t0 = e.Value, e.Time

		case SetTarget:
			if t < e.Time {
				return v
			}
			end := math.Inf(1)
			if i+1 < len(p.events) {
				end = p.events[i+1].Time
			}
			if t < end {
				return e.Value + (v-e.Value)*math.Exp(-(t-e.Time)/e.TimeConstant)
			}
			v = e.Value + (v-e.Value)*math.Exp(-(end-e.Time)/e.TimeConstant)
			t0 = end
		}
	}
	return v
}

// compact drops events that can no longer influence values at or after t.
func (p *Param) compact(t float64) {
	n := 0
	for n+1 < len(p.events) {
		next := p.events[n+1]
		if next.Time > t || next.Kind == SetTarget || p.events[n].Kind == SetTarget {
			break
		}
		n++
	}
	if n > 0 {
		p.value = p.events[n-1].Value
		p.events = append(p.events[:0], p.events[n:]...)
	}
}

// values returns the per-frame values for the quantum starting at frame.
func (p *Param) values(frame int64) *[Quantum]float64 {
	if p.pass == p.s.pass {
		return &p.vals
	}
	p.pass = p.s.pass
	p.compact(p.s.timeOf(frame))

	if p.steady(frame) {
		v := p.valueAt(p.s.timeOf(frame))
		for i := range p.vals {
			p.vals[i] = v
		}
	} else {
		for i := range p.vals {
			p.vals[i] = p.valueAt(p.s.timeOf(frame + int64(i)))
		}
	}

	for _, in := range p.inputs {
		out := in.pull(frame)
		for i := range p.vals {
			p.vals[i] += float64(out[0][i]+out[1][i]) / 2
		}
	}
	return &p.vals
}

// steady reports whether the automation is flat across the quantum.
func (p *Param) steady(frame int64) bool {
	if len(p.events) == 0 {
		return true
	}
	first, last := p.events[0], p.events[len(p.events)-1]
	if first.Time >= p.s.timeOf(frame+Quantum) && (first.Kind == SetValue || first.Kind == SetTarget) {
		return true
	}
	return last.Time <= p.s.timeOf(frame) && last.Kind != SetTarget
}

// constant reports whether the quantum's values are all equal.
func constant(v *[Quantum]float64) bool {
	for i := 1; i < Quantum; i++ {
		if v[i] != v[0] {
			return false
		}
	}
	return true
}
