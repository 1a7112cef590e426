package handlers

import (
	"net/http"
)

const homeMessage = "Running Tool Shop Server"

// HomeHandler - проверка живости сервиса
func HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(homeMessage))
	}
}
