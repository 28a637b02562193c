package engine

// normalize builds the canonical in-memory view of a Request: stable
// integer indices for orders and channels, and the four |orders|x|channels|
// derived matrices (distance, eta, score, feasibility).
func normalize(req *Request) *normalized {
	orders := req.Orders
	channels := req.Channels
	weights := req.Weights
	timeout := req.TimeoutSeconds

	n := &normalized{
		orders:   orders,
		channels: channels,
		weights:  weights,
		timeout:  timeout,
	}

	numOrders := len(orders)
	numChannels := len(channels)

	dist := make([][]float64, numOrders)
	eta := make([][]float64, numOrders)
	score := make([][]int64, numOrders)
	feasible := make([][]bool, numOrders)

	for i, o := range orders {
		dist[i] = make([]float64, numChannels)
		eta[i] = make([]float64, numChannels)
		score[i] = make([]int64, numChannels)
		feasible[i] = make([]bool, numChannels)

		for j, c := range channels {
			d := routeDistanceKM(c.Location, o.Pickup, o.Delivery)
			e := etaMinutes(c.PrepTimeMinutes, d)
			s := scaledScore(weights, e, c.CostPerOrder, c.QualityScore, o.Priority)

			dist[i][j] = d
			eta[i][j] = e
			score[i][j] = s
			feasible[i][j] = d <= c.MaxDistanceKM && e <= float64(o.MaxDeliveryTime)
		}
	}

	n.matrices = pairMatrices{
		distKM:   dist,
		etaMin:   eta,
		score:    score,
		feasible: feasible,
	}

	return n
}
