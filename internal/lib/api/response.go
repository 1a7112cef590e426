// Package api содержит общие для middleware и обработчиков JSON-ответы
package api

import (
	"encoding/json"
	"net/http"
)

const (
	MsgUnauthorized = "Can't Authorize the Access"
	MsgForbidden    = "Forbidden Access"
	MsgInternal     = "internal server error"
)

// ErrorResponse - тело любого ответа с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
}

// JSON пишет v как JSON с указанным статусом
func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// Error пишет {"message": msg} с указанным статусом
func Error(w http.ResponseWriter, status int, msg string) {
	_ = JSON(w, status, ErrorResponse{Message: msg})
}
