package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns a middleware that accepts cross-origin requests from any origin with
// credentials. Because browsers reject a literal "*" origin on credentialed requests,
// the requesting origin is echoed back instead. Intended for the dashboard during
// development, not for production deployments.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, _ string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
