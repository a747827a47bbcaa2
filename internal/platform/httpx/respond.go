// Package httpx provides JSON response utilities shared by all HTTP handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response wrapper used by every API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a 200 response with the payload wrapped in the success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a 201 response with the payload wrapped in the success envelope.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Fail sends an error envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
