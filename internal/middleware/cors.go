package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSMiddleware returns the CORS configuration for the event app clients
func CORSMiddleware() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		// Mobile clients; tighten for browser deployments.
		AllowedOrigins: []string{"*"},

		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},

		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
		},

		ExposedHeaders: []string{
			"X-Request-Id",
		},

		AllowCredentials: true,

		// Cache preflight requests for 5 minutes
		MaxAge: 300,
	})
}
