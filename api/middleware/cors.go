package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/workshop-backend/pkg/config"
)

const corsMaxAgeSeconds = 300

// CORS lets browser clients from the configured origins call the API. A
// wildcard origin turns credentials off, browsers reject the combination.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(corsOptions(cfg)).Handler
}

func corsOptions(cfg config.CORSConfig) cors.Options {
	wildcard := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
		}
	}
	return cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, idempotentReplayedHeader},
		AllowCredentials: !wildcard,
		MaxAge:           corsMaxAgeSeconds,
	}
}
