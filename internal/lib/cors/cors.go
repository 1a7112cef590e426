package cors

import (
	"net/http"

	chicors "github.com/go-chi/cors"
)

// Options настройки CORS, заполняются из конфига
type Options struct {
	AllowedOrigins []string
	MaxAge         int
}

// New возвращает middleware, разрешающий кросс-доменные запросы клиенту магазина
func New(opts Options) func(http.Handler) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 300
	}

	return chicors.Handler(chicors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         maxAge,
	})
}
