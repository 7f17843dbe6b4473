package main

import (
	"encoding/json"
	"net/http"

	"github.com/farxc/dados-abertos/internal/response"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &response.ErrorResponse{Error: message})
}

func writeData[T any](w http.ResponseWriter, message string, data T) {
	resp := &response.APIResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
