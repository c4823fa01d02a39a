package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 5}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(countingHandler(&calls))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 50, calls)
}

func TestRateLimiter_Whitelists(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistIPs:      []string{"10.0.0.1", "10.0.0.2"},
		WhitelistPaths:    []string{"/health", "/media/*"},
	}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(countingHandler(&calls))

	requests := []func() *http.Request{
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			return req
		},
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/media/courses/a.png", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			return req
		},
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
			return req
		},
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			req.Header.Set("X-Real-IP", "10.0.0.2")
			return req
		},
	}

	for _, build := range requests {
		for i := 0; i < 10; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, build())
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
	assert.Equal(t, 40, calls)
}

func TestRateLimiter_LimitExceeded(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(countingHandler(&calls))

	var limited *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = w
		}
	}

	assert.Equal(t, 3, calls)
	require.NotNil(t, limited)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", limited.Header().Get("Content-Type"))

	var body domain.APIError
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&body))
	assert.Equal(t, domain.ErrorTypeRateLimited, body.Type)
	assert.Equal(t, http.StatusTooManyRequests, body.Status)
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(countingHandler(&calls))

	for _, ip := range []string{"192.168.1.1:1", "192.168.1.2:1", "192.168.1.3:1"} {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
			req.RemoteAddr = ip
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, "ip %s", ip)
		}
	}
	assert.Equal(t, 6, calls)
}

func TestRateLimiter_AuthenticatedUsersGetOwnBudget(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     1,
		RequestsPerMinuteAuth: 5,
	}, zap.NewNop())
	calls := 0
	handler := rl.Limit(countingHandler(&calls))

	user := &auth.UserContext{UserID: "user_2abc", Role: domain.RoleStudent, RoleSource: auth.RoleSourceToken}
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/enroll", nil)
		req.RemoteAddr = "192.168.1.50:12345"
		req = req.WithContext(auth.WithUserContext(req.Context(), user))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/enroll", nil)
	req.RemoteAddr = "192.168.1.50:12345"
	req = req.WithContext(auth.WithUserContext(req.Context(), user))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 5, calls)
}

func TestRateLimiter_AnonymousFormPostsHaveSmallerBudget(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     20,
		FormRequestsPerMinute: 2,
	}, zap.NewNop())
	calls := 0
	handler := rl.Limit(countingHandler(&calls))

	send := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/contact").Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/contact").Code)

	limited := send(http.MethodPost, "/contact")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	var body domain.APIError
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&body))
	assert.Contains(t, body.Detail, "submissions")

	// other forms and browsing keep their own budgets
	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/api/contact").Code)
	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/courses").Code)
	assert.Equal(t, 4, calls)
}

func TestRateLimiter_SystemUserIsNotLimited(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     1,
		RequestsPerMinuteAuth: 1,
	}, zap.NewNop())
	calls := 0
	handler := rl.Limit(countingHandler(&calls))

	system := &auth.UserContext{UserID: auth.SystemUserID, Role: domain.RoleAdmin, IsSystem: true}
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/partners", nil)
		req.RemoteAddr = "198.51.100.1:1"
		req = req.WithContext(auth.WithUserContext(req.Context(), system))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 5, calls)
}

func TestRateLimiter_PrefixWhitelistNeedsSlash(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistPaths:    []string{"/static/*"},
	}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(countingHandler(&calls))

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "198.51.100.2:1"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send("/static/site.css"))
	}
	assert.Equal(t, http.StatusOK, send("/staticky"))
	assert.Equal(t, http.StatusTooManyRequests, send("/staticky"))
}
