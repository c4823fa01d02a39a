package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/induskill/marketplace-api/internal/config"
	"go.uber.org/zap"
)

// headers the API always accepts or exposes regardless of configuration
var (
	requiredAllowedHeaders = []string{"Authorization", "Content-Type", "X-API-Key", RequestIDHeader}
	requiredExposedHeaders = []string{RequestIDHeader, CacheHeader}
)

// CORS returns a CORS middleware configured from the application config.
// With no configured origins, local environments accept any origin and
// everything else rejects cross-origin requests.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   mergeHeaders(cfg.AllowedHeaders, requiredAllowedHeaders),
		ExposedHeaders:   mergeHeaders(cfg.ExposedHeaders, requiredExposedHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	anyOrigin := func(r *http.Request, origin string) bool { return origin != "" }

	switch {
	case containsWildcard(cfg.AllowedOrigins):
		if !isLocalEnvironment(environment) {
			logger.Warn("CORS configured with wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", cfg.AllowedOrigins))
	case isLocalEnvironment(environment):
		options.AllowOriginFunc = anyOrigin
		logger.Info("CORS allowing all origins in development mode")
	default:
		// empty AllowedOrigins means "*" to go-chi/cors, so deny explicitly
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS configured with no allowed origins; cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func isLocalEnvironment(environment string) bool {
	switch strings.ToLower(environment) {
	case "", "development", "local", "test":
		return true
	}
	return false
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func mergeHeaders(configured, required []string) []string {
	seen := make(map[string]bool, len(configured)+len(required))
	merged := make([]string, 0, len(configured)+len(required))
	for _, h := range append(append([]string{}, configured...), required...) {
		key := http.CanonicalHeaderKey(h)
		if h == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, h)
	}
	return merged
}
