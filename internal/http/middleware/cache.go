package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/cache"
	"go.uber.org/zap"
)

// CacheHeader reports HIT, MISS or BYPASS for cacheable routes
const CacheHeader = "X-Cache"

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// CatalogCacheKey is the cache key for a catalog request URI
func CatalogCacheKey(requestURI string) string {
	sum := sha256.Sum256([]byte(requestURI))
	return cache.CatalogPrefix + hex.EncodeToString(sum[:])
}

// ResponseCache serves anonymous GET requests from the catalog cache.
// Authenticated requests bypass it since admins and trainers see unpublished courses.
func ResponseCache(provider cache.Provider, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if provider == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := auth.FromContext(r.Context()); ok {
				w.Header().Set(CacheHeader, "BYPASS")
				next.ServeHTTP(w, r)
				return
			}

			key := CatalogCacheKey(r.URL.RequestURI())

			raw, err := provider.Get(r.Context(), key)
			if err == nil {
				var entry cachedResponse
				if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
					w.Header().Set(CacheHeader, "HIT")
					if entry.ContentType != "" {
						w.Header().Set("Content-Type", entry.ContentType)
					}
					w.WriteHeader(entry.Status)
					_, _ = w.Write(entry.Body)
					return
				}
				logger.Warn("discarding unreadable cache entry", zap.String("key", key))
			} else if !errors.Is(err, cache.ErrMiss) {
				logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
			}

			w.Header().Set(CacheHeader, "MISS")
			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			if cw.status != http.StatusOK {
				return
			}
			entry, err := json.Marshal(cachedResponse{
				Status:      cw.status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        cw.buf.Bytes(),
			})
			if err != nil {
				return
			}
			if err := provider.Set(r.Context(), key, entry, ttl); err != nil {
				logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		})
	}
}
