// Package handlers provides shared HTTP response helpers for domain handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// TotalCountHeader carries the unpaginated result count for list endpoints.
const TotalCountHeader = "x-total-count"

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the JSON body written for commands that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondMessage writes a MessageResponse with the given status code.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, MessageResponse{Message: message})
}

// RespondList writes items as a JSON array and exposes total through the
// x-total-count header.
func RespondList[T any](w http.ResponseWriter, items []T, total int) {
	if items == nil {
		items = []T{}
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	RespondJSON(w, http.StatusOK, items)
}

// RespondError logs err and writes it as an ErrorResponse.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, ErrorResponse{Error: err.Error()})
}
