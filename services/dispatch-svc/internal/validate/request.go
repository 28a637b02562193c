// Package validate checks an incoming dispatch request's structure before
// it reaches the solver: the core never sees a request that violates one
// of these invariants.
package validate

import (
	"fmt"

	"dispatch-svc/pkg/apperror"
	"dispatch-svc/services/dispatch-svc/internal/engine"
)

const (
	maxOrders   = 5000
	maxChannels = 1000

	weightSumMin = 0.99
	weightSumMax = 1.01

	minTimeoutSeconds = 0.01
	maxTimeoutSeconds = 10.0
)

// Request checks orders, channels, weights, and timeout_seconds, returning
// every violation found rather than stopping at the first one.
func Request(req *engine.Request) *apperror.ValidationErrors {
	v := apperror.NewValidationErrors()

	if req == nil {
		v.AddError(apperror.CodeNilInput, "request is nil")
		return v
	}

	validateOrders(req.Orders, v)
	validateChannels(req.Channels, v)
	validateWeights(req.Weights, v)
	validateTimeout(req.TimeoutSeconds, v)

	return v
}

func validateOrders(orders []engine.Order, v *apperror.ValidationErrors) {
	if len(orders) == 0 {
		v.AddErrorWithField(apperror.CodeEmptyOrders, "orders list is empty", "orders")
		return
	}
	if len(orders) > maxOrders {
		v.AddErrorWithField(apperror.CodeTooManyOrders,
			fmt.Sprintf("orders list exceeds the maximum of %d", maxOrders), "orders")
	}

	seen := make(map[string]struct{}, len(orders))
	for i, o := range orders {
		field := fmt.Sprintf("orders[%d]", i)

		if o.ID == "" {
			v.AddErrorWithField(apperror.CodeMissingField, "order id is required", field+".id")
		} else if _, dup := seen[o.ID]; dup {
			v.AddErrorWithField(apperror.CodeDuplicateOrderID,
				fmt.Sprintf("duplicate order id: %s", o.ID), field+".id")
		} else {
			seen[o.ID] = struct{}{}
		}

		validateCoordinate(o.Pickup, field+".pickup_location", v)
		validateCoordinate(o.Delivery, field+".delivery_location", v)

		if o.Priority < 1 || o.Priority > 10 {
			v.AddErrorWithField(apperror.CodeOutOfRange,
				"priority must be between 1 and 10", field+".priority")
		}
		if o.MaxDeliveryTime <= 0 {
			v.AddErrorWithField(apperror.CodeOutOfRange,
				"max_delivery_time must be positive", field+".max_delivery_time")
		}
		if o.WeightKG < 0 {
			v.AddErrorWithField(apperror.CodeOutOfRange,
				"weight must not be negative", field+".weight")
		}
	}
}

func validateChannels(channels []engine.Channel, v *apperror.ValidationErrors) {
	if len(channels) == 0 {
		v.AddErrorWithField(apperror.CodeEmptyChannels, "channels list is empty", "channels")
		return
	}
	if len(channels) > maxChannels {
		v.AddErrorWithField(apperror.CodeTooManyChannels,
			fmt.Sprintf("channels list exceeds the maximum of %d", maxChannels), "channels")
	}

	seen := make(map[string]struct{}, len(channels))
	for i, c := range channels {
		field := fmt.Sprintf("channels[%d]", i)

		if c.ID == "" {
			v.AddErrorWithField(apperror.CodeMissingField, "channel id is required", field+".id")
		} else if _, dup := seen[c.ID]; dup {
			v.AddErrorWithField(apperror.CodeDuplicateChannelID,
				fmt.Sprintf("duplicate channel id: %s", c.ID), field+".id")
		} else {
			seen[c.ID] = struct{}{}
		}

		validateCoordinate(c.Location, field+".location", v)

		if c.Capacity < 0 {
			v.AddErrorWithField(apperror.CodeOutOfRange, "capacity must not be negative", field+".capacity")
		}
		if c.CurrentLoad < 0 {
			v.AddErrorWithField(apperror.CodeOutOfRange, "current_load must not be negative", field+".current_load")
		}
		if c.CostPerOrder < 0 {
			v.AddErrorWithField(apperror.CodeOutOfRange, "cost_per_order must not be negative", field+".cost_per_order")
		}
		if c.QualityScore < 0 || c.QualityScore > 100 {
			v.AddErrorWithField(apperror.CodeOutOfRange, "quality_score must be between 0 and 100", field+".quality_score")
		}
		if c.PrepTimeMinutes < 0 {
			v.AddErrorWithField(apperror.CodeOutOfRange, "prep_time_minutes must not be negative", field+".prep_time_minutes")
		}
		if c.MaxDistanceKM <= 0 {
			v.AddErrorWithField(apperror.CodeOutOfRange, "max_distance must be positive", field+".max_distance")
		}
	}
}

func validateCoordinate(p engine.GeoPoint, field string, v *apperror.ValidationErrors) {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		v.AddErrorWithField(apperror.CodeInvalidCoordinate,
			fmt.Sprintf("coordinate (%v, %v) is out of range", p.Lat, p.Lng), field)
	}
}

func validateWeights(w engine.Weights, v *apperror.ValidationErrors) {
	if w.DeliveryTime < 0 || w.Cost < 0 || w.Quality < 0 {
		v.AddErrorWithField(apperror.CodeInvalidWeights, "weights must not be negative", "weights")
		return
	}

	sum := w.DeliveryTime + w.Cost + w.Quality
	if sum < weightSumMin || sum > weightSumMax {
		v.AddErrorWithField(apperror.CodeInvalidWeights,
			fmt.Sprintf("weights must sum to 1.0 within +/-0.01, got %.4f", sum), "weights")
	}
}

func validateTimeout(timeoutSeconds float64, v *apperror.ValidationErrors) {
	if timeoutSeconds < minTimeoutSeconds {
		v.AddErrorWithField(apperror.CodeInvalidTimeout,
			fmt.Sprintf("timeout_seconds must be at least %v", minTimeoutSeconds), "timeout_seconds")
		return
	}
	if timeoutSeconds > maxTimeoutSeconds {
		v.AddErrorWithField(apperror.CodeInvalidTimeout,
			fmt.Sprintf("timeout_seconds must not exceed %v", maxTimeoutSeconds), "timeout_seconds")
	}
}
