package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"dispatch-svc/pkg/apperror"
	"dispatch-svc/pkg/logger"
)

// errorBody is the JSON envelope returned for every non-2xx response.
type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response body", "error", err)
	}
}

// WriteJSONError projects err onto its HTTP status and a {code, message, ...}
// body. Non-*apperror.Error values are reported as opaque internal errors
// so unexpected failures never leak implementation details to a caller.
func WriteJSONError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Wrap(err, apperror.CodeInternal, "internal error")
	}

	WriteJSON(w, appErr.HTTPStatus(), errorBody{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Field:   appErr.Field,
		Details: appErr.Details,
	})
}

// WriteValidationErrors projects a ValidationErrors collection onto a 422
// response listing every accumulated error, matching the teacher's
// accumulate-all-errors validation contract instead of reporting only the
// first failure.
func WriteValidationErrors(w http.ResponseWriter, ve *apperror.ValidationErrors) {
	body := struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}{
		Code:    "VALIDATION_FAILED",
		Message: "request failed validation",
		Errors:  ve.ErrorMessages(),
	}
	WriteJSON(w, http.StatusUnprocessableEntity, body)
}
