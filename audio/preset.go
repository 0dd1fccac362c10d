package audio

import "github.com/simukka/breath/breath"

// PhaseProfile holds the voicing of one phase cue: two noise pads (wind and
// shimmer), a tonal pair (tone and harmony) and a bowl strike.
type PhaseProfile struct {
	Phase breath.Phase
	Key   string // Chord the tonal layers outline, for display

	// Wind pad
	WindCenter   float64
	WindEnd      float64
	WindPeak     float64
	WindHighpass float64

	// Shimmer pad
	ShimmerCenter   float64
	ShimmerEnd      float64
	ShimmerPeak     float64
	ShimmerHighpass float64

	// Tonal layers
	ToneFreq    float64
	HarmonyFreq float64
	TonePeak    float64
	HarmonyPeak float64
	ToneCutoff  float64

	// Bowl strike
	BowlFreq   float64
	BowlPeak   float64
	BowlOffset float64 // seconds after the cue
}

// ProfileFor returns the voicing for p. Unknown phases fall back to the
// inhale voicing.
func ProfileFor(p breath.Phase) PhaseProfile {
	switch p {
	case breath.Inhale:
		return PhaseProfile{
			Phase: breath.Inhale, Key: "D major",
			WindCenter: 790, WindEnd: 860, WindPeak: 0.0085, WindHighpass: 120,
			ShimmerCenter: 1000, ShimmerEnd: 1080, ShimmerPeak: 0.0031, ShimmerHighpass: 170,
			ToneFreq: 293.66, HarmonyFreq: 369.99, TonePeak: 0.0024, HarmonyPeak: 0.0018, ToneCutoff: 980,
			BowlFreq: 293.66, BowlPeak: 0.0042, BowlOffset: 0.16,
		}
	case breath.HoldHigh:
		return PhaseProfile{
			Phase: breath.HoldHigh, Key: "F# minor",
			WindCenter: 680, WindEnd: 650, WindPeak: 0.0079, WindHighpass: 110,
			ShimmerCenter: 930, ShimmerEnd: 880, ShimmerPeak: 0.0028, ShimmerHighpass: 145,
			ToneFreq: 369.99, HarmonyFreq: 440, TonePeak: 0.0024, HarmonyPeak: 0.0017, ToneCutoff: 900,
			BowlFreq: 369.99, BowlPeak: 0.0047, BowlOffset: 0.14,
		}
	case breath.Exhale:
		return PhaseProfile{
			Phase: breath.Exhale, Key: "D major",
			WindCenter: 560, WindEnd: 500, WindPeak: 0.0088, WindHighpass: 80,
			ShimmerCenter: 760, ShimmerEnd: 690, ShimmerPeak: 0.0028, ShimmerHighpass: 125,
			ToneFreq: 220, HarmonyFreq: 293.66, TonePeak: 0.0025, HarmonyPeak: 0.0019, ToneCutoff: 760,
			BowlFreq: 220, BowlPeak: 0.0043, BowlOffset: 0.16,
		}
	case breath.HoldLow:
		return PhaseProfile{
			Phase: breath.HoldLow, Key: "G major",
			WindCenter: 620, WindEnd: 580, WindPeak: 0.0079, WindHighpass: 100,
			ShimmerCenter: 840, ShimmerEnd: 790, ShimmerPeak: 0.0027, ShimmerHighpass: 140,
			ToneFreq: 196, HarmonyFreq: 246.94, TonePeak: 0.0022, HarmonyPeak: 0.0016, ToneCutoff: 820,
			BowlFreq: 196, BowlPeak: 0.0046, BowlOffset: 0.14,
		}
	default:
		return ProfileFor(breath.Inhale)
	}
}

// AllProfiles returns the voicing of every phase in cycle order.
func AllProfiles() []PhaseProfile {
	profiles := make([]PhaseProfile, 0, breath.PhaseCount)
	for _, spec := range breath.Phases {
		profiles = append(profiles, ProfileFor(spec.Phase))
	}
	return profiles
}
