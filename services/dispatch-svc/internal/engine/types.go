// Package engine implements the order-to-channel assignment core: a pure
// Solve(Request) Response function built from a request normalizer, a 0/1
// integer program, a bounded-time solver, and a deterministic fallback.
package engine

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Order is a single pickup-to-delivery task.
type Order struct {
	ID                  string   `json:"id"`
	Pickup              GeoPoint `json:"pickup_location"`
	Delivery            GeoPoint `json:"delivery_location"`
	Priority            int      `json:"priority"`
	MaxDeliveryTime     int      `json:"max_delivery_time"`
	WeightKG            float64  `json:"weight"`
	SpecialRequirements []string `json:"special_requirements,omitempty"`
}

// Channel is a fulfillment resource with finite capacity.
type Channel struct {
	ID              string   `json:"id"`
	Capacity        int      `json:"capacity"`
	CurrentLoad     int      `json:"current_load"`
	CostPerOrder    float64  `json:"cost_per_order"`
	QualityScore    int      `json:"quality_score"`
	PrepTimeMinutes int      `json:"prep_time_minutes"`
	Location        GeoPoint `json:"location"`
	VehicleType     string   `json:"vehicle_type"`
	MaxDistanceKM   float64  `json:"max_distance"`
}

// Weights is the scoring weight triple; DeliveryTime+Cost+Quality must sum
// to 1.0 within ±0.01.
type Weights struct {
	DeliveryTime float64 `json:"delivery_time"`
	Cost         float64 `json:"cost"`
	Quality      float64 `json:"quality"`
}

// Request is the input to Solve.
type Request struct {
	Orders         []Order        `json:"orders"`
	Channels       []Channel      `json:"channels"`
	Weights        Weights        `json:"weights"`
	TimeoutSeconds float64        `json:"timeout_seconds"`
	Constraints    map[string]any `json:"constraints,omitempty"`
}

// Status is the terminal classification of a solve.
type Status string

const (
	StatusOptimal  Status = "OPTIMAL"
	StatusFeasible Status = "FEASIBLE"
	StatusFallback Status = "FALLBACK"
)

// Response is the output of Solve.
type Response struct {
	Assignments map[string]string `json:"assignments"`
	TotalScore  float64           `json:"total_score"`
	SolveTimeMs int64             `json:"solve_time_ms"`
	Status      Status            `json:"status"`
	Metadata    map[string]any    `json:"metadata"`
}

// pairMatrices holds the |orders|x|channels| derived quantities computed by
// the normalizer.
type pairMatrices struct {
	distKM    [][]float64
	etaMin    [][]float64
	score     [][]int64
	feasible  [][]bool
}

// normalized is the canonical in-memory view the rest of the engine works
// against: orders/channels with stable integer indices plus the derived
// matrices keyed by those indices.
type normalized struct {
	orders   []Order
	channels []Channel
	weights  Weights
	timeout  float64
	matrices pairMatrices
}
