package audio

// Silence is the smallest level an exponential ramp ever targets.
const Silence = 0.0001

// DefaultConfig returns the stock engine tuning.
func DefaultConfig() Config {
	return Config{
		// Master chain
		MasterGain:     2.8,
		ToneCutoff:     1800,
		ToneQ:          0.2,
		DryLevel:       0.95,
		WetLevel:       0.95,
		ReverbSeconds:  4.8,
		ReverbDecay:    3.4,
		ReverbPreDelay: 0.024,

		Limiter: CompressorSettings{
			Threshold: -14,
			Knee:      28,
			Ratio:     3,
			Attack:    0.02,
			Release:   0.3,
		},

		NoiseSeconds:   2,
		NoiseSmoothing: 0.985,

		// Ambient bed
		AmbientHighpass:   95,
		AmbientHighpassQ:  0.6,
		AmbientLowpass:    720,
		AmbientLowpassQ:   0.4,
		AmbientBand:       330,
		AmbientBandQ:      0.42,
		AmbientDriftRate:  0.04,
		AmbientDriftDepth: 18,
		AmbientLevel:      0.095,
		AmbientFadeIn:     1.3,
		AmbientFadeOut:    0.14,
		AmbientStopDelay:  0.5,

		PadGainBoost: 11,

		// Voice lifecycle
		MaxVoices:     12,
		VoiceGrace:    0.1,
		StopFade:      0.03,
		StopLead:      0.02,
		SourceOverrun: 0.04,
	}
}
