package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "signup/pkg/domain-errors"
)

// ToHTTPStatus maps a domain error code to its HTTP status.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as a JSON error envelope.
//
// Validation errors with field details render as {"field": ["message", ...]}.
// Everything else renders as {"error": code, "error_description": message};
// the description is omitted for internal errors.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		de = dErrors.New(dErrors.CodeInternal, "internal error")
	}
	status := ToHTTPStatus(de.Code)

	if de.Code == dErrors.CodeValidation && !de.Fields.Empty() {
		WriteJSON(w, status, de.Fields)
		return
	}

	body := map[string]string{"error": string(de.Code)}
	if status != http.StatusInternalServerError && de.Message != "" {
		body["error_description"] = de.Message
	}
	WriteJSON(w, status, body)
}
