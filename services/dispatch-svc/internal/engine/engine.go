package engine

import "time"

// Solve maps orders to fulfillment channels minimizing the weighted
// composite cost, subject to capacity and reachability. It never returns
// an error: any input accepted by validation produces a Response, falling
// back to a deterministic greedy assignment when the bounded-time solver
// finds nothing.
func Solve(req *Request) *Response {
	start := time.Now()
	n := normalize(req)

	if len(n.orders) == 0 || len(n.channels) == 0 {
		return &Response{
			Assignments: map[string]string{},
			TotalScore:  0,
			SolveTimeMs: time.Since(start).Milliseconds(),
			Status:      StatusOptimal,
			Metadata: map[string]any{
				"solver_status": string(StatusOptimal),
				"order_count":   len(n.orders),
				"channel_count": len(n.channels),
			},
		}
	}

	am := buildModel(n)

	outcome, err := runSolver(am, n.timeout)
	if err != nil {
		assignments := fallbackAssign(n)
		return extractFallback(n, assignments, time.Since(start).Milliseconds(), err.Error())
	}

	if !outcome.hasValues {
		assignments := fallbackAssign(n)
		return extractFallback(n, assignments, time.Since(start).Milliseconds(), "solver returned no feasible solution")
	}

	return extractSolution(am, outcome, time.Since(start).Milliseconds())
}
