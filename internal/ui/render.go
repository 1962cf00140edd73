package ui

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Result is the envelope every action responds with.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Render(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, Result{Success: true, Data: data})
}

// RenderError writes a failed envelope. message is shown to the user as is.
func RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, status, Result{Success: false, Error: message})
}

func write(w http.ResponseWriter, r *http.Request, status int, result Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(result)
	if err != nil {
		slog.Error("render failed", "error", err, "path", r.URL.Path)
	}
}
