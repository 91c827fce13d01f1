// Package render writes JSON API responses.
package render

import (
	"encoding/json"
	"net/http"

	"github.com/orgball2608/contentflow/pkg/errors"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorMessage writes {"error": msg} with status.
func ErrorMessage(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// Error maps err to a status through its sentinel and writes its message.
func Error(w http.ResponseWriter, err error) {
	ErrorMessage(w, errors.HTTPStatus(err), errors.GetMessage(err))
}
