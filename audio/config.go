package audio

// Config holds every tunable of the engine. DefaultConfig returns the
// values the breathing cues were voiced with.
type Config struct {
	// Master chain
	MasterGain     float64 // Gain applied to every voice before the tone filter
	ToneCutoff     float64 // Master lowpass cutoff (Hz)
	ToneQ          float64 // Master lowpass resonance
	DryLevel       float64 // Dry path into the limiter
	WetLevel       float64 // Reverb return into the limiter
	ReverbSeconds  float64 // Impulse response length
	ReverbDecay    float64 // Envelope exponent of the impulse response
	ReverbPreDelay float64 // Silent lead-in of the impulse response (seconds)

	// Limiter
	Limiter CompressorSettings

	// Noise buffer shared by pads and the ambient bed
	NoiseSeconds   float64 // Length of the looping noise buffer
	NoiseSmoothing float64 // One-pole coefficient, closer to 1 is darker

	// Ambient bed
	AmbientHighpass   float64 // Highpass cutoff (Hz)
	AmbientHighpassQ  float64
	AmbientLowpass    float64 // Lowpass cutoff (Hz)
	AmbientLowpassQ   float64
	AmbientBand       float64 // Bandpass center (Hz)
	AmbientBandQ      float64
	AmbientDriftRate  float64 // Drift LFO rate (Hz)
	AmbientDriftDepth float64 // Drift LFO depth (Hz)
	AmbientLevel      float64 // Target gain after fade-in
	AmbientFadeIn     float64 // Fade-in time (seconds)
	AmbientFadeOut    float64 // Fade-out time constant (seconds)
	AmbientStopDelay  float64 // Delay before its sources stop (seconds)

	// PadGainBoost multiplies every noise pad's peak level.
	PadGainBoost float64

	// Voice lifecycle
	MaxVoices     int     // A cue finding more voices than this flushes them first
	VoiceGrace    float64 // Lifetime past a voice's end (seconds)
	StopFade      float64 // Fade time constant of a forced stop (seconds)
	StopLead      float64 // Delay before sources of a forced stop end (seconds)
	SourceOverrun float64 // Sources stop this long after the envelope ends
}
