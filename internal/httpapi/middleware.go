package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// corsHandler admits browser clients from the comma separated origins.
// Credentials are only allowed when the origins are named explicitly.
func corsHandler(origins string) func(http.Handler) http.Handler {
	allowed := strings.Split(origins, ",")
	for i := range allowed {
		allowed[i] = strings.TrimSpace(allowed[i])
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: origins != "*",
		MaxAge:           12 * 60 * 60,
	})
}
