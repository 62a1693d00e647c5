package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error half of the response envelope. Successful responses
// wrap their payload in {"data": ...}; failures in {"error": ErrorBody}.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes the canonical error envelope.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{Code: code, Message: message, Details: details},
	})
}

// WriteError renders err through the envelope. AppErrors keep their code,
// status and details; anything else becomes a 500 INTERNAL.
func WriteError(w http.ResponseWriter, err error) {
	if err == nil {
		JSONError(w, http.StatusInternalServerError, CodeInternal, "unknown error", nil)
		return
	}
	appErr, ok := IsAppError(err)
	if !ok {
		JSONError(w, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusBadRequest
	}
	code := appErr.Code
	if code == "" {
		code = CodeInvalidInput
	}
	JSONError(w, status, code, appErr.Message, appErr.Details)
}
