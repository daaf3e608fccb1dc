package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser clients on origins to call the API.
// A single "*" allows any origin; credentials are never allowed with it.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !allowAll,
		MaxAge:           300,
	})
	return c.Handler
}
