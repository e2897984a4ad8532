package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteRateLimited answers 429 and mirrors the wait in a Retry-After header.
func WriteRateLimited(w http.ResponseWriter, payload RateLimitError) {
	if payload.RetryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(payload.RetryAfterSec, 10))
	}
	Write(w, http.StatusTooManyRequests, payload)
}

func WritePayloadTooLarge(w http.ResponseWriter) {
	Write(w, http.StatusRequestEntityTooLarge, APIError{
		Code:    "PAYLOAD_TOO_LARGE",
		Message: "request body is too large",
	})
}
