package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Action is a control applied to the session during playback.
type Action string

const (
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionToggle   Action = "toggle"
	ActionReset    Action = "reset"
	ActionSoundOn  Action = "sound_on"
	ActionSoundOff Action = "sound_off"
)

func (a Action) valid() bool {
	switch a {
	case ActionPause, ActionResume, ActionToggle, ActionReset, ActionSoundOn, ActionSoundOff:
		return true
	}
	return false
}

// Command applies an action at a point of the stream, in seconds.
type Command struct {
	At     float64 `yaml:"at"`
	Action Action  `yaml:"action"`
}

// Plan describes a rendered or played session.
type Plan struct {
	Seed       uint32    `yaml:"seed"`
	SampleRate int       `yaml:"sample_rate"`
	Seconds    float64   `yaml:"seconds"`
	Sound      *bool     `yaml:"sound"`
	Commands   []Command `yaml:"commands"`
}

// SoundOn reports whether the session starts with sound. It defaults to on.
func (p *Plan) SoundOn() bool {
	return p.Sound == nil || *p.Sound
}

// parsePlan decodes a YAML plan and orders its commands by time. Commands
// at the same time keep their file order.
func parsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if plan.SampleRate < 0 || plan.Seconds < 0 {
		return nil, fmt.Errorf("parse plan: sample_rate and seconds must not be negative")
	}
	for i, c := range plan.Commands {
		if !c.Action.valid() {
			return nil, fmt.Errorf("parse plan: command %d: unknown action %q", i, c.Action)
		}
		if c.At < 0 {
			return nil, fmt.Errorf("parse plan: command %d: negative time %v", i, c.At)
		}
	}
	sort.SliceStable(plan.Commands, func(i, j int) bool {
		return plan.Commands[i].At < plan.Commands[j].At
	})
	return &plan, nil
}

// loadPlan reads a plan file.
func loadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePlan(data)
}
