package cache

import (
	"testing"

	"dispatch-svc/services/dispatch-svc/internal/engine"
)

func sampleRequest() *engine.Request {
	return &engine.Request{
		Orders: []engine.Order{
			{ID: "order_1", Pickup: engine.GeoPoint{Lat: 40.71, Lng: -74.01}, Delivery: engine.GeoPoint{Lat: 40.76, Lng: -73.99}, Priority: 5, MaxDeliveryTime: 60, WeightKG: 2.5},
			{ID: "order_2", Pickup: engine.GeoPoint{Lat: 40.72, Lng: -74.02}, Delivery: engine.GeoPoint{Lat: 40.77, Lng: -73.98}, Priority: 3, MaxDeliveryTime: 90, WeightKG: 1.0},
		},
		Channels: []engine.Channel{
			{ID: "channel_1", Capacity: 5, CurrentLoad: 1, CostPerOrder: 2, QualityScore: 90, PrepTimeMinutes: 10, Location: engine.GeoPoint{Lat: 40.71, Lng: -74.01}, MaxDistanceKM: 50},
			{ID: "channel_2", Capacity: 3, CurrentLoad: 0, CostPerOrder: 3, QualityScore: 80, PrepTimeMinutes: 15, Location: engine.GeoPoint{Lat: 40.70, Lng: -74.00}, MaxDistanceKM: 40},
		},
		Weights:        engine.Weights{DeliveryTime: 0.5, Cost: 0.3, Quality: 0.2},
		TimeoutSeconds: 5,
	}
}

func TestRequestHash(t *testing.T) {
	t.Run("nil request", func(t *testing.T) {
		if got := RequestHash(nil); got != "" {
			t.Errorf("RequestHash(nil) = %v, want empty string", got)
		}
	})

	t.Run("same request produces same hash", func(t *testing.T) {
		req := sampleRequest()
		hash1 := RequestHash(req)
		hash2 := RequestHash(req)

		if hash1 != hash2 {
			t.Errorf("same request should produce same hash: %v != %v", hash1, hash2)
		}
	})

	t.Run("different requests produce different hashes", func(t *testing.T) {
		req1 := sampleRequest()
		req2 := sampleRequest()
		req2.Channels[0].CostPerOrder = 99

		hash1 := RequestHash(req1)
		hash2 := RequestHash(req2)

		if hash1 == hash2 {
			t.Error("different requests should produce different hashes")
		}
	})

	t.Run("order list order does not affect hash", func(t *testing.T) {
		req1 := sampleRequest()
		req2 := sampleRequest()
		req2.Orders[0], req2.Orders[1] = req2.Orders[1], req2.Orders[0]

		hash1 := RequestHash(req1)
		hash2 := RequestHash(req2)

		if hash1 != hash2 {
			t.Error("order list order should not affect hash")
		}
	})

	t.Run("channel list order does not affect hash", func(t *testing.T) {
		req1 := sampleRequest()
		req2 := sampleRequest()
		req2.Channels[0], req2.Channels[1] = req2.Channels[1], req2.Channels[0]

		hash1 := RequestHash(req1)
		hash2 := RequestHash(req2)

		if hash1 != hash2 {
			t.Error("channel list order should not affect hash")
		}
	})

	t.Run("hash length is 32 hex chars", func(t *testing.T) {
		hash := RequestHash(sampleRequest())
		if len(hash) != 32 {
			t.Errorf("RequestHash length = %d, want 32", len(hash))
		}
	})
}

func TestBuildResponseKey(t *testing.T) {
	key := BuildResponseKey("abc123")
	expected := "dispatch:solve:abc123"
	if key != expected {
		t.Errorf("BuildResponseKey() = %v, want %v", key, expected)
	}
}

func TestQuickHash(t *testing.T) {
	data := []byte("test data")
	hash := QuickHash(data)

	if len(hash) != 64 { // SHA256 hex = 64 chars
		t.Errorf("QuickHash length = %d, want 64", len(hash))
	}

	hash2 := QuickHash(data)
	if hash != hash2 {
		t.Error("same data should produce same hash")
	}
}

func TestShortHash(t *testing.T) {
	data := []byte("test data")
	hash := ShortHash(data)

	if len(hash) != 16 {
		t.Errorf("ShortHash length = %d, want 16", len(hash))
	}
}
