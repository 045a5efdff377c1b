// Package response renders the JSON envelope shared by handlers and
// middleware. Success bodies are {"status":"success","data":...}; failures
// are {"status":"fail"|"error","message":...} with "fail" for 4xx and
// "error" for 5xx.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/logger"
)

type successBody struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type failureBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success writes a success envelope with the given payload.
func Success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successBody{Status: "success", Data: data})
}

// SuccessList writes a success envelope with a result count, used by
// collection endpoints.
func SuccessList(w http.ResponseWriter, status int, results int, data any) {
	writeJSON(w, status, successBody{Status: "success", Results: &results, Data: data})
}

// Error maps err through apierr.From and writes a failure envelope.
// Operational errors surface their message verbatim; anything else is
// masked and logged with full detail.
func Error(w http.ResponseWriter, l *logger.Logger, err error) {
	apiErr := apierr.From(err)

	if !apiErr.Operational() {
		l.Error("request failed with unexpected error",
			"error", err.Error())
	}

	status := "fail"
	if apiErr.Status >= http.StatusInternalServerError {
		status = "error"
	}

	writeJSON(w, apiErr.Status, failureBody{Status: status, Message: apiErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
