package engine

import (
	"math"
	"strconv"
	"testing"
)

func equalWeights() Weights {
	return Weights{DeliveryTime: 0.5, Cost: 0.3, Quality: 0.2}
}

// TestSolve_SinglePair covers S1: one order, one channel, trivially
// feasible. Expect an optimal assignment whose score matches the direct
// recomputation.
func TestSolve_SinglePair(t *testing.T) {
	req := &Request{
		Orders: []Order{
			{ID: "order_1", Pickup: GeoPoint{40.71, -74.01}, Delivery: GeoPoint{40.76, -73.99}, Priority: 5, MaxDeliveryTime: 60},
		},
		Channels: []Channel{
			{ID: "channel_1", Capacity: 1, CurrentLoad: 0, CostPerOrder: 0, QualityScore: 100, PrepTimeMinutes: 10, Location: GeoPoint{40.71, -74.01}, MaxDistanceKM: 50},
		},
		Weights:        equalWeights(),
		TimeoutSeconds: 5,
	}

	resp := Solve(req)

	if resp.Status != StatusOptimal {
		t.Fatalf("status = %s, want OPTIMAL", resp.Status)
	}
	if got := resp.Assignments["order_1"]; got != "channel_1" {
		t.Fatalf("assignments[order_1] = %s, want channel_1", got)
	}

	n := normalize(req)
	wantScore := float64(n.matrices.score[0][0]) / scoreScale
	if math.Abs(resp.TotalScore-wantScore) > 1e-9 {
		t.Fatalf("total_score = %v, want %v", resp.TotalScore, wantScore)
	}
}

// TestSolve_CapacityForcing covers S2: two identical orders contend for
// one-slot channels; with two such channels, exactly one order lands in each.
func TestSolve_CapacityForcing(t *testing.T) {
	order := Order{Pickup: GeoPoint{40.71, -74.01}, Delivery: GeoPoint{40.76, -73.99}, Priority: 5, MaxDeliveryTime: 60}
	o1, o2 := order, order
	o1.ID, o2.ID = "order_1", "order_2"

	req := &Request{
		Orders: []Order{o1, o2},
		Channels: []Channel{
			{ID: "channel_1", Capacity: 1, CurrentLoad: 0, CostPerOrder: 0, QualityScore: 100, PrepTimeMinutes: 10, Location: GeoPoint{40.71, -74.01}, MaxDistanceKM: 50},
			{ID: "channel_2", Capacity: 1, CurrentLoad: 0, CostPerOrder: 0, QualityScore: 100, PrepTimeMinutes: 10, Location: GeoPoint{40.71, -74.01}, MaxDistanceKM: 50},
		},
		Weights:        equalWeights(),
		TimeoutSeconds: 5,
	}

	resp := Solve(req)

	if resp.Status != StatusOptimal {
		t.Fatalf("status = %s, want OPTIMAL", resp.Status)
	}
	if len(resp.Assignments) != 2 {
		t.Fatalf("len(assignments) = %d, want 2", len(resp.Assignments))
	}
	if resp.Assignments["order_1"] == resp.Assignments["order_2"] {
		t.Fatalf("both orders assigned to the same channel: %v", resp.Assignments)
	}
}

// TestSolve_UnreachableOrder covers S3: the only channel cannot reach the
// order, so the solver has no feasible solution and the fallback is used.
func TestSolve_UnreachableOrder(t *testing.T) {
	req := &Request{
		Orders: []Order{
			{ID: "order_1", Pickup: GeoPoint{0, 0}, Delivery: GeoPoint{0.9, 0}, Priority: 5, MaxDeliveryTime: 1000},
		},
		Channels: []Channel{
			{ID: "channel_1", Capacity: 1, CurrentLoad: 0, CostPerOrder: 1, QualityScore: 90, PrepTimeMinutes: 5, Location: GeoPoint{0, 0}, MaxDistanceKM: 50},
		},
		Weights:        equalWeights(),
		TimeoutSeconds: 5,
	}

	resp := Solve(req)

	if resp.Status != StatusFallback {
		t.Fatalf("status = %s, want FALLBACK", resp.Status)
	}
	if resp.Assignments["order_1"] != "channel_1" {
		t.Fatalf("assignments[order_1] = %s, want channel_1", resp.Assignments["order_1"])
	}
	if resp.Metadata["fallback_reason"] == nil {
		t.Fatalf("metadata.fallback_reason missing")
	}
}

// TestSolve_PriorityBias covers S4: with identical channels, the scaled
// score the engine uses must match the formula's direct recomputation.
func TestSolve_PriorityBias(t *testing.T) {
	req := &Request{
		Orders: []Order{
			{ID: "order_1", Pickup: GeoPoint{40.71, -74.01}, Delivery: GeoPoint{40.76, -73.99}, Priority: 1, MaxDeliveryTime: 120},
			{ID: "order_2", Pickup: GeoPoint{40.71, -74.01}, Delivery: GeoPoint{40.76, -73.99}, Priority: 10, MaxDeliveryTime: 120},
		},
		Channels: []Channel{
			{ID: "channel_1", Capacity: 2, CurrentLoad: 0, CostPerOrder: 2, QualityScore: 80, PrepTimeMinutes: 5, Location: GeoPoint{40.71, -74.01}, MaxDistanceKM: 50},
			{ID: "channel_2", Capacity: 2, CurrentLoad: 0, CostPerOrder: 2, QualityScore: 80, PrepTimeMinutes: 5, Location: GeoPoint{40.71, -74.01}, MaxDistanceKM: 50},
		},
		Weights:        equalWeights(),
		TimeoutSeconds: 5,
	}

	n := normalize(req)
	for i := range req.Orders {
		for j := range req.Channels {
			if !n.matrices.feasible[i][j] {
				t.Fatalf("pair (%d,%d) unexpectedly infeasible", i, j)
			}
		}
	}

	w := equalWeights()
	for i, o := range req.Orders {
		for j, c := range req.Channels {
			eta := float64(c.PrepTimeMinutes) + routeDistanceKM(c.Location, o.Pickup, o.Delivery)/30*60
			raw := w.DeliveryTime*eta + w.Cost*c.CostPerOrder + w.Quality*math.Max(0, 100-float64(c.QualityScore))
			want := int64(math.Round(raw * ((11 - float64(o.Priority)) / 10) * 100))
			if got := n.matrices.score[i][j]; got != want {
				t.Fatalf("score[%d][%d] = %d, want %d", i, j, got, want)
			}
		}
	}

	resp := Solve(req)
	if resp.Status != StatusOptimal {
		t.Fatalf("status = %s, want OPTIMAL", resp.Status)
	}
	if len(resp.Assignments) != 2 {
		t.Fatalf("len(assignments) = %d, want 2", len(resp.Assignments))
	}
}

// TestSolve_TimeoutTruncation covers S5: a large instance under a tiny
// time budget must still return promptly with a valid status.
func TestSolve_TimeoutTruncation(t *testing.T) {
	orders := make([]Order, 0, 100)
	for i := 0; i < 100; i++ {
		orders = append(orders, Order{
			ID:              idFor("order", i),
			Pickup:          GeoPoint{40.0 + float64(i)*0.001, -74.0},
			Delivery:        GeoPoint{40.1 + float64(i)*0.001, -74.1},
			Priority:        (i % 10) + 1,
			MaxDeliveryTime: 180,
		})
	}
	channels := make([]Channel, 0, 10)
	for j := 0; j < 10; j++ {
		channels = append(channels, Channel{
			ID:              idFor("channel", j),
			Capacity:        20,
			CurrentLoad:     0,
			CostPerOrder:    float64(j) + 1,
			QualityScore:    70 + j,
			PrepTimeMinutes: 5,
			Location:        GeoPoint{40.0, -74.0},
			MaxDistanceKM:   100,
		})
	}

	req := &Request{Orders: orders, Channels: channels, Weights: equalWeights(), TimeoutSeconds: 0.01}

	resp := Solve(req)

	switch resp.Status {
	case StatusOptimal, StatusFeasible, StatusFallback:
	default:
		t.Fatalf("status = %s, want one of OPTIMAL/FEASIBLE/FALLBACK", resp.Status)
	}
	for _, o := range orders {
		if _, ok := resp.Assignments[o.ID]; !ok {
			t.Fatalf("order %s missing from assignments", o.ID)
		}
	}
}

func idFor(prefix string, i int) string {
	return prefix + "_" + strconv.Itoa(i)
}

// TestSolve_AssignmentKeysExactlyMatchOrders covers invariant 1.
func TestSolve_AssignmentKeysExactlyMatchOrders(t *testing.T) {
	req := &Request{
		Orders: []Order{
			{ID: "a", Pickup: GeoPoint{0, 0}, Delivery: GeoPoint{0, 0}, Priority: 5, MaxDeliveryTime: 60},
			{ID: "b", Pickup: GeoPoint{0, 0}, Delivery: GeoPoint{0, 0}, Priority: 5, MaxDeliveryTime: 60},
		},
		Channels: []Channel{
			{ID: "c", Capacity: 5, CurrentLoad: 0, CostPerOrder: 1, QualityScore: 90, PrepTimeMinutes: 1, Location: GeoPoint{0, 0}, MaxDistanceKM: 10},
		},
		Weights:        equalWeights(),
		TimeoutSeconds: 5,
	}

	resp := Solve(req)

	if len(resp.Assignments) != len(req.Orders) {
		t.Fatalf("len(assignments) = %d, want %d", len(resp.Assignments), len(req.Orders))
	}
	for _, o := range req.Orders {
		if _, ok := resp.Assignments[o.ID]; !ok {
			t.Fatalf("missing order %s in assignments", o.ID)
		}
	}
}

// TestSolve_EmptyInputsAreOptimalNoop exercises the zero-orders/zero-channels
// edge case the engine handles before ever invoking the solver.
func TestSolve_EmptyInputsAreOptimalNoop(t *testing.T) {
	resp := Solve(&Request{Weights: equalWeights(), TimeoutSeconds: 1})
	if resp.Status != StatusOptimal {
		t.Fatalf("status = %s, want OPTIMAL", resp.Status)
	}
	if len(resp.Assignments) != 0 {
		t.Fatalf("assignments should be empty, got %v", resp.Assignments)
	}
}

func TestHaversine_SymmetricAndZeroAtSamePoint(t *testing.T) {
	a := GeoPoint{40.71, -74.01}
	b := GeoPoint{40.76, -73.99}

	if math.Abs(haversineKM(a, b)-haversineKM(b, a)) > 1e-9 {
		t.Fatalf("haversine not symmetric: %v vs %v", haversineKM(a, b), haversineKM(b, a))
	}
	if haversineKM(a, a) != 0 {
		t.Fatalf("haversine(a,a) = %v, want 0", haversineKM(a, a))
	}
}

func TestPriorityFactor(t *testing.T) {
	cases := map[int]float64{1: 1.0, 10: 0.1, 5: 0.6}
	for priority, want := range cases {
		if got := priorityFactor(priority); math.Abs(got-want) > 1e-9 {
			t.Errorf("priorityFactor(%d) = %v, want %v", priority, got, want)
		}
	}
}

func TestFallbackAssign_IgnoresReachabilityAndDeadline(t *testing.T) {
	req := &Request{
		Orders: []Order{
			{ID: "order_1", Pickup: GeoPoint{0, 0}, Delivery: GeoPoint{5, 5}, Priority: 1, MaxDeliveryTime: 1},
		},
		Channels: []Channel{
			{ID: "channel_1", Capacity: 0, CurrentLoad: 0, CostPerOrder: 1, QualityScore: 50, PrepTimeMinutes: 1, Location: GeoPoint{0, 0}, MaxDistanceKM: 1},
		},
	}
	n := normalize(req)
	assignments := fallbackAssign(n)

	if assignments["order_1"] != "channel_1" {
		t.Fatalf("fallback should still assign order_1 to channel_1 despite zero capacity, got %v", assignments)
	}
}

func TestFallbackAssign_DeterministicFirstFit(t *testing.T) {
	req := &Request{
		Orders: []Order{
			{ID: "order_1"}, {ID: "order_2"}, {ID: "order_3"},
		},
		Channels: []Channel{
			{ID: "channel_1", Capacity: 1},
			{ID: "channel_2", Capacity: 2},
		},
	}
	n := normalize(req)
	assignments := fallbackAssign(n)

	want := map[string]string{"order_1": "channel_1", "order_2": "channel_2", "order_3": "channel_2"}
	for id, ch := range want {
		if assignments[id] != ch {
			t.Errorf("assignments[%s] = %s, want %s", id, assignments[id], ch)
		}
	}
}
