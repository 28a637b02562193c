package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"dispatch-svc/services/dispatch-svc/internal/engine"
)

// RequestHash computes a deterministic hash of a Request, used as a
// memoization key for the response cache. Two requests with identical
// orders, channels, weights, and timeout hash to the same value regardless
// of list ordering in the source JSON, since the underlying canonicalizer
// sorts by ID.
func RequestHash(req *engine.Request) string {
	if req == nil {
		return ""
	}

	data := requestToCanonical(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// requestToCanonical builds a deterministic byte representation of a
// Request: orders and channels sorted by ID so that presentation order
// in the JSON payload never changes the hash.
func requestToCanonical(req *engine.Request) []byte {
	orders := make([]engine.Order, len(req.Orders))
	copy(orders, req.Orders)
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID < orders[j].ID
	})

	channels := make([]engine.Channel, len(req.Channels))
	copy(channels, req.Channels)
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].ID < channels[j].ID
	})

	var result []byte

	result = append(result, []byte(fmt.Sprintf("w:%.6f:%.6f:%.6f;t:%.6f;",
		req.Weights.DeliveryTime, req.Weights.Cost, req.Weights.Quality, req.TimeoutSeconds))...)

	for _, o := range orders {
		result = append(result, []byte(fmt.Sprintf(
			"o:%s:%.6f,%.6f:%.6f,%.6f:%d:%d:%.6f;",
			o.ID, o.Pickup.Lat, o.Pickup.Lng, o.Delivery.Lat, o.Delivery.Lng,
			o.Priority, o.MaxDeliveryTime, o.WeightKG))...)
	}

	for _, c := range channels {
		result = append(result, []byte(fmt.Sprintf(
			"c:%s:%d:%d:%.6f:%d:%d:%.6f,%.6f:%.6f;",
			c.ID, c.Capacity, c.CurrentLoad, c.CostPerOrder, c.QualityScore,
			c.PrepTimeMinutes, c.Location.Lat, c.Location.Lng, c.MaxDistanceKM))...)
	}

	return result
}

// BuildResponseKey builds a cache key for a solve result keyed by request hash.
func BuildResponseKey(requestHash string) string {
	return fmt.Sprintf("dispatch:solve:%s", requestHash)
}

// QuickHash is a full-length SHA-256 hash of arbitrary data.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash is a truncated (16 hex character) SHA-256 hash of arbitrary data.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
