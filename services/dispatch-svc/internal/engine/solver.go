package engine

import (
	"time"

	"github.com/nextmv-io/sdk/mip"
)

// solveOutcome is the bounded-time solver's verdict before result
// extraction: which terminal status it reached and, when a solution was
// found at all, the variable assignment to read back.
type solveOutcome struct {
	status    Status
	hasValues bool
	solution  mip.Solution
	runtime   time.Duration
}

// runSolver submits the model to the HiGHS MIP solver under the request's
// wall-clock budget and classifies the outcome per the OPTIMAL/FEASIBLE/
// no-solution contract: OPTIMAL means the solver proved optimality before
// the deadline, FEASIBLE means it returned a solution without proving
// optimality (budget exhausted), and no solution at all means the caller
// must fall back.
func runSolver(am *assignmentModel, timeoutSeconds float64) (*solveOutcome, error) {
	solver, err := mip.NewSolver("highs", am.m)
	if err != nil {
		return nil, err
	}

	options := mip.NewSolveOptions()
	if err := options.SetMaximumDuration(time.Duration(timeoutSeconds * float64(time.Second))); err != nil {
		return nil, err
	}
	if err := options.SetMIPGapRelative(0); err != nil {
		return nil, err
	}
	options.SetVerbosity(mip.Off)

	solution, err := solver.Solve(options)
	if err != nil {
		return nil, err
	}

	if !solution.HasValues() {
		return &solveOutcome{status: StatusFallback, hasValues: false, runtime: solution.RunTime()}, nil
	}

	status := StatusFeasible
	if solution.IsOptimal() {
		status = StatusOptimal
	}

	return &solveOutcome{
		status:    status,
		hasValues: true,
		solution:  solution,
		runtime:   solution.RunTime(),
	}, nil
}
