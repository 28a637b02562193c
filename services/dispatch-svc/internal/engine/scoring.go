package engine

import "math"

// scoreScale is the fixed-point factor applied to the weighted raw score
// before it is handed to the integer-programming solver.
const scoreScale = 100.0

// priorityFactor preserves the source system's scoring formula verbatim:
// (11-priority)/10, so priority=1 yields 1.0 and priority=10 yields 0.1.
// This makes lower-numbered priorities the expensive-to-drop ones even
// though priority is documented as higher-is-more-urgent; see DESIGN.md.
func priorityFactor(priority int) float64 {
	return (11.0 - float64(priority)) / 10.0
}

// rawScore is the weighted composite cost of assigning order i to channel j
// before the priority factor and integer scaling are applied.
func rawScore(w Weights, etaMin, costPerOrder float64, qualityScore int) float64 {
	qualityPenalty := math.Max(0, 100-float64(qualityScore))
	return w.DeliveryTime*etaMin + w.Cost*costPerOrder + w.Quality*qualityPenalty
}

// scaledScore returns the integer-scaled score the solver minimizes.
func scaledScore(w Weights, etaMin, costPerOrder float64, qualityScore, priority int) int64 {
	raw := rawScore(w, etaMin, costPerOrder, qualityScore)
	return int64(math.Round(raw * priorityFactor(priority) * scoreScale))
}
