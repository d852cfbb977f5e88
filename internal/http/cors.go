package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Request headers a browser FHIR client sends through /v1/vau.
var corsAllowHeaders = []string{
	"Authorization",
	"Accept",
	"Content-Type",
	"Prefer",
	"If-Match",
	"If-None-Match",
	"X-Request-Id",
}

// Response headers of the decrypted inner response a browser may read.
var corsExposeHeaders = []string{
	"Location",
	"Content-Location",
	"ETag",
	"Last-Modified",
	"X-Request-Id",
}

// newCORSMiddleware returns nil unless CORS is enabled with at least one origin.
// The proxy is meant for loopback clients, so CORS stays off by default.
func newCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := splitOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("cors enabled without allowed origins, skipping cors middleware")
		return nil
	}

	logger.Info("cors enabled for vau proxy", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowHeaders:     corsAllowHeaders,
		ExposeHeaders:    corsExposeHeaders,
		AllowCredentials: true,
		MaxAge:           time.Hour,
	})
}

func splitOrigins(value string) []string {
	origins := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(origins) == 0 {
		return nil
	}
	return origins
}
