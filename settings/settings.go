// Package settings persists the user's preferences as a single JSON blob.
package settings

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/simukka/breath/common"
)

// Key is the store key the blob lives under.
const Key = "breath.settings.v1"

const (
	MinSizePercent     = 55
	MaxSizePercent     = 130
	DefaultSizePercent = 100
)

// Settings are the persisted preferences.
type Settings struct {
	SizePercent      int  `json:"sizePercent"`
	SoundEnabled     bool `json:"soundEnabled"`
	ShowInstruction  bool `json:"showInstruction"`
	ShowCountdown    bool `json:"showCountdown"`
	ShowElapsed      bool `json:"showElapsed"`
	ShowQuotes       bool `json:"showQuotes"`
	QuoteAutoShuffle bool `json:"quoteAutoShuffle"`
}

// Defaults returns the preferences of a first visit.
func Defaults() Settings {
	return Settings{
		SizePercent:      DefaultSizePercent,
		ShowInstruction:  true,
		ShowCountdown:    true,
		ShowElapsed:      true,
		ShowQuotes:       true,
		QuoteAutoShuffle: true,
	}
}

// NormalizeSize rounds a raw size and clamps it into the allowed range.
// Values that are not finite fall back to the default size.
func NormalizeSize(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultSizePercent
	}
	return int(common.Clamp(math.Round(v), MinSizePercent, MaxSizePercent))
}

// Normalize returns s with its size clamped.
func (s Settings) Normalize() Settings {
	s.SizePercent = NormalizeSize(float64(s.SizePercent))
	return s
}

// Scale is the size as a scale factor, 1 at 100%.
func (s Settings) Scale() float64 {
	return float64(s.Normalize().SizePercent) / 100
}

// Store reads and writes string values by key. Get reports false when the
// key is absent.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Decode applies every recognised field of raw on top of base. Fields that
// are missing or have the wrong type keep the value from base. It returns
// base unchanged if raw is not a JSON object.
func Decode(raw []byte, base Settings) Settings {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return base
	}

	s := base
	if size, ok := number(fields["sizePercent"]); ok {
		s.SizePercent = NormalizeSize(size)
	}
	boolean(fields, "soundEnabled", &s.SoundEnabled)
	boolean(fields, "showInstruction", &s.ShowInstruction)
	boolean(fields, "showCountdown", &s.ShowCountdown)
	boolean(fields, "showElapsed", &s.ShowElapsed)
	boolean(fields, "showQuotes", &s.ShowQuotes)
	boolean(fields, "quoteAutoShuffle", &s.QuoteAutoShuffle)
	return s.Normalize()
}

// number accepts JSON numbers and numeric strings.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func boolean(fields map[string]any, key string, dst *bool) {
	if b, ok := fields[key].(bool); ok {
		*dst = b
	}
}

// Load reads the settings from store. Absent, unreadable or malformed data
// yields the defaults.
func Load(store Store) Settings {
	if store == nil {
		return Defaults()
	}
	raw, ok, err := store.Get(Key)
	if err != nil {
		common.DebugWarn("settings unavailable", "err", err)
		return Defaults()
	}
	if !ok || raw == "" {
		return Defaults()
	}
	return Decode([]byte(raw), Defaults())
}

// Save writes s to store. Failures are logged and otherwise ignored.
func Save(store Store, s Settings) {
	if store == nil {
		return
	}
	raw, err := json.Marshal(s.Normalize())
	if err != nil {
		common.DebugError("settings encode failed", "err", err)
		return
	}
	if err := store.Set(Key, string(raw)); err != nil {
		common.DebugWarn("settings not saved", "err", err)
	}
}

// MemoryStore keeps values in a map.
type MemoryStore map[string]string

func (m MemoryStore) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m MemoryStore) Set(key, value string) error {
	m[key] = value
	return nil
}
