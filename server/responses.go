package server

import (
	"encoding/json"
	"net/http"
)

// ErrorType categorises API failures for the UI collaborator.
type ErrorType string

const (
	ErrorTypeImageGeneration ErrorType = "image_generation"
	ErrorTypeMediaUpload     ErrorType = "media_upload"
	ErrorTypeTweetPost       ErrorType = "tweet_post"
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeAuth            ErrorType = "auth"
	ErrorTypeValidation      ErrorType = "validation"
)

type errorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	ErrorType ErrorType `json:"errorType"`
	Status    int       `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, errorType ErrorType, message string) {
	writeJSON(w, status, errorResponse{
		Success:   false,
		Error:     message,
		ErrorType: errorType,
		Status:    status,
	})
}
