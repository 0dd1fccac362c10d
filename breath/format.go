package breath

import (
	"fmt"
	"math"
)

// FormatElapsed renders a session length as "Elapsed mm:ss". Minutes grow
// past two digits instead of rolling over into hours.
func FormatElapsed(ms float64) string {
	total := int(math.Floor(math.Max(0, ms) / 1000))
	return fmt.Sprintf("Elapsed %02d:%02d", total/60, total%60)
}
