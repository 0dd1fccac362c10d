package breath

import "math"

// EaseInOutSine maps linear progress onto a sine S-curve.
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}
