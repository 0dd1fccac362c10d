package breath

// Phase identifies one of the four box-breathing phases.
type Phase int

const (
	Inhale Phase = iota
	HoldHigh
	Exhale
	HoldLow

	// PhaseCount is the number of phases in one cycle.
	PhaseCount = 4
)

// HoldReleaseMs is how long the hold indicator lingers after a hold ends.
const HoldReleaseMs = 240.0

// PhaseSpec describes one phase of the cycle. Durations are milliseconds.
type PhaseSpec struct {
	Phase       Phase
	ID          string
	Instruction string
	Duration    float64
	From        float64
	To          float64
}

// Phases is the fixed cycle, in order.
var Phases = [PhaseCount]PhaseSpec{
	{Phase: Inhale, ID: "inhale", Instruction: "Inhale", Duration: 4000, From: 0.78, To: 1.06},
	{Phase: HoldHigh, ID: "hold-high", Instruction: "Hold", Duration: 4000, From: 1.06, To: 1.06},
	{Phase: Exhale, ID: "exhale", Instruction: "Exhale", Duration: 4000, From: 1.06, To: 0.78},
	{Phase: HoldLow, ID: "hold-low", Instruction: "Hold", Duration: 4000, From: 0.78, To: 0.78},
}

// Spec returns the table entry for p.
func (p Phase) Spec() PhaseSpec {
	return Phases[p.index()]
}

func (p Phase) String() string {
	return p.Spec().ID
}

// Next returns the phase that follows p, wrapping after HoldLow.
func (p Phase) Next() Phase {
	return Phase((p.index() + 1) % PhaseCount)
}

// IsHold reports whether p is one of the two hold phases.
func (p Phase) IsHold() bool {
	switch p {
	case HoldHigh, HoldLow:
		return true
	default:
		return false
	}
}

func (p Phase) index() int {
	i := int(p) % PhaseCount
	if i < 0 {
		i += PhaseCount
	}
	return i
}

// CycleMs is the total length of one cycle.
func CycleMs() float64 {
	total := 0.0
	for _, spec := range Phases {
		total += spec.Duration
	}
	return total
}
