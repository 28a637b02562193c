package engine

import "github.com/nextmv-io/sdk/mip"

// assignmentModel wraps the nextmv-io/sdk MIP model together with the
// decision variable matrix, so the solver driver and result extractor can
// read variables back by (order, channel) index.
type assignmentModel struct {
	m mip.Model
	x [][]mip.Bool
	n *normalized
}

// buildModel emits the 0/1 integer program described in the scoring
// function and constraint set: one assignment variable per feasible
// (order, channel) pair, an equality constraint per order, a capacity
// constraint per channel, and a minimize objective over the integer-scaled
// scores. Infeasible pairs are omitted from the model entirely rather than
// forced to zero, which keeps the variable count proportional to the
// feasible graph.
func buildModel(n *normalized) *assignmentModel {
	m := mip.NewModel()
	m.Objective().SetMinimize()

	numOrders := len(n.orders)
	numChannels := len(n.channels)

	x := make([][]mip.Bool, numOrders)
	for i := range x {
		x[i] = make([]mip.Bool, numChannels)
	}

	for i := range n.orders {
		assign := m.NewConstraint(mip.Equal, 1.0)
		for j := range n.channels {
			if !n.matrices.feasible[i][j] {
				continue
			}
			x[i][j] = m.NewBool()
			assign.NewTerm(1.0, x[i][j])
			m.Objective().NewTerm(float64(n.matrices.score[i][j]), x[i][j])
		}
	}

	for j, c := range n.channels {
		available := float64(c.Capacity - c.CurrentLoad)
		if available < 0 {
			available = 0
		}
		capacity := m.NewConstraint(mip.LessThanOrEqual, available)
		for i := range n.orders {
			if x[i][j] == nil {
				continue
			}
			capacity.NewTerm(1.0, x[i][j])
		}
	}

	return &assignmentModel{m: m, x: x, n: n}
}
