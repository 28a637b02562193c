package engine

// fallbackAssign runs the deterministic greedy heuristic used whenever the
// solver produces no solution at all. It ignores reachability and delivery
// deadlines entirely: orders are walked in input order, and each is
// assigned to the first channel (in input order) whose running load is
// still below capacity. If every channel is already full, the order is
// assigned to the first channel anyway, violating capacity, rather than
// left unassigned. This is a documented contract, not an oversight: the
// fallback exists to guarantee a response under any input, not to honor
// the same constraints as the optimizer.
func fallbackAssign(n *normalized) map[string]string {
	load := make([]int, len(n.channels))
	for j, c := range n.channels {
		load[j] = c.CurrentLoad
	}

	assignments := make(map[string]string, len(n.orders))

	for _, o := range n.orders {
		chosen := -1
		for j, c := range n.channels {
			if load[j] < c.Capacity {
				chosen = j
				break
			}
		}
		if chosen == -1 && len(n.channels) > 0 {
			chosen = 0
		}
		if chosen == -1 {
			continue
		}
		load[chosen]++
		assignments[o.ID] = n.channels[chosen].ID
	}

	return assignments
}
