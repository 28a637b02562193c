package engine

// extractSolution reads the assignment matrix back from a solved outcome
// and shapes it into a Response: the assignment map keyed by order ID, the
// recovered total score (the integer-scaled objective divided back down to
// the raw scale), and solver metadata.
func extractSolution(am *assignmentModel, outcome *solveOutcome, elapsedMs int64) *Response {
	n := am.n
	assignments := make(map[string]string, len(n.orders))

	var scoreSum int64
	for i, o := range n.orders {
		for j, c := range n.channels {
			v := am.x[i][j]
			if v == nil {
				continue
			}
			if outcome.solution.Value(v) > 0.5 {
				assignments[o.ID] = c.ID
				scoreSum += n.matrices.score[i][j]
				break
			}
		}
	}

	return &Response{
		Assignments: assignments,
		TotalScore:  float64(scoreSum) / scoreScale,
		SolveTimeMs: elapsedMs,
		Status:      outcome.status,
		Metadata: map[string]any{
			"solver":            "highs",
			"solver_status":     string(outcome.status),
			"order_count":       len(n.orders),
			"channel_count":     len(n.channels),
			"solver_runtime_ms": outcome.runtime.Milliseconds(),
		},
	}
}

// extractFallback shapes a fallback assignment into a Response. Per the
// fallback contract, total_score is always 0 since the greedy pass never
// evaluates the weighted cost function.
func extractFallback(n *normalized, assignments map[string]string, elapsedMs int64, reason string) *Response {
	return &Response{
		Assignments: assignments,
		TotalScore:  0,
		SolveTimeMs: elapsedMs,
		Status:      StatusFallback,
		Metadata: map[string]any{
			"solver":          "greedy-fallback",
			"solver_status":   string(StatusFallback),
			"order_count":     len(n.orders),
			"channel_count":   len(n.channels),
			"fallback_reason": reason,
		},
	}
}
