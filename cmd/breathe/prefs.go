package main

import (
	"fmt"

	"github.com/simukka/breath/settings"
)

// savedSound returns the persisted sound preference and whether one was
// saved at all.
func savedSound(store settings.Store) (on, ok bool) {
	if store == nil {
		return false, false
	}
	if _, found, err := store.Get(settings.Key); err != nil || !found {
		return false, false
	}
	return settings.Load(store).SoundEnabled, true
}

// applySoundFlag resolves the -sound flag against the plan and the saved
// preference. An explicit on or off is saved for the next run. A plan that
// sets sound wins over the saved preference; without either, sound is on.
func applySoundFlag(flagValue string, plan *Plan, store settings.Store) error {
	switch flagValue {
	case "on", "off":
		on := flagValue == "on"
		plan.Sound = &on
		s := settings.Load(store)
		s.SoundEnabled = on
		settings.Save(store, s)
	case "":
		if plan.Sound != nil {
			return nil
		}
		if on, ok := savedSound(store); ok {
			plan.Sound = &on
		}
	default:
		return fmt.Errorf("invalid -sound value %q, want on or off", flagValue)
	}
	return nil
}
