// Package httpx holds the small response-writing helpers shared by the
// upload and query handlers. Everything the API returns, including errors,
// is JSON.
package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON body for every non-2xx response. Handlers keep the
// message generic; authorization detail stays in the logs.
type APIError struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, APIError{Error: msg})
}
