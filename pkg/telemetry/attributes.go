package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys attached to dispatch spans.
const (
	AttrOrderCount   = "dispatch.order_count"
	AttrChannelCount = "dispatch.channel_count"

	AttrSolveStatus   = "dispatch.solve_status"
	AttrSolveTimeMs   = "dispatch.solve_time_ms"
	AttrTotalScore    = "dispatch.total_score"
	AttrTimeoutSecond = "dispatch.timeout_seconds"

	AttrValidationLevel  = "validation.level"
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"
)

// RequestAttributes returns span attributes describing the shape of a
// dispatch request.
func RequestAttributes(orderCount, channelCount int, timeoutSeconds float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrOrderCount, orderCount),
		attribute.Int(AttrChannelCount, channelCount),
		attribute.Float64(AttrTimeoutSecond, timeoutSeconds),
	}
}

// SolveAttributes returns span attributes describing a completed solve.
func SolveAttributes(status string, solveTimeMs int64, totalScore float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSolveStatus, status),
		attribute.Int64(AttrSolveTimeMs, solveTimeMs),
		attribute.Float64(AttrTotalScore, totalScore),
	}
}

// ValidationAttributes returns span attributes describing a validation pass.
func ValidationAttributes(level string, errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrValidationLevel, level),
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
