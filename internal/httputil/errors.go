package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIError matches the OpenAI error response format.
type APIError struct {
	Error APIErrorBody `json:"error"`
}

type APIErrorBody struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, requestID string, statusCode int, errType, code, message string) {
	writeError(w, requestID, statusCode, APIErrorBody{Message: message, Type: errType, Code: code})
}

func writeError(w http.ResponseWriter, requestID string, statusCode int, body APIErrorBody) {
	body.RequestID = requestID
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIError{Error: body})
}

// WriteJSON writes v as a JSON response body.
func WriteJSON(w http.ResponseWriter, requestID string, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "request_id", requestID, "error", err)
	}
}

func WriteAuthError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusUnauthorized, "authentication_error", "invalid_token", message)
}

func WriteRateLimitError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusTooManyRequests, "rate_limit_error", "rate_limit_exceeded", message)
}

func WriteBadRequestError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadRequest, "invalid_request_error", "invalid_request", message)
}

// WriteBadRequestDetails is WriteBadRequestError with the underlying error text.
func WriteBadRequestDetails(w http.ResponseWriter, requestID, message, details string) {
	writeError(w, requestID, http.StatusBadRequest, APIErrorBody{
		Message: message,
		Type:    "invalid_request_error",
		Code:    "invalid_request",
		Details: details,
	})
}

func WriteInternalError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusInternalServerError, "server_error", "internal_error", message)
}

// WriteServiceUnavailableError reports a failed dependency; details carries
// the underlying error text.
func WriteServiceUnavailableError(w http.ResponseWriter, requestID, message, details string) {
	writeError(w, requestID, http.StatusServiceUnavailable, APIErrorBody{
		Message: message,
		Type:    "server_error",
		Code:    "service_unavailable",
		Details: details,
	})
}

func WriteContentBlockedError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusUnavailableForLegalReasons, "content_filter_error", "content_blocked", message)
}
