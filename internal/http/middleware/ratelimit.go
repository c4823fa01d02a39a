package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/domain"
	"go.uber.org/zap"
)

// RateLimiter gives every client a per-minute request budget.
// Visitors are keyed by client IP and signed-in users by user id. Anonymous
// form posts also draw from a smaller per-IP budget for that form, so a
// contact-form flood cannot eat the browsing budget of a shared office IP.
// The API-key system user is never limited.
type RateLimiter struct {
	enabled bool
	logger  *zap.Logger

	visitors *httprate.RateLimiter
	members  *httprate.RateLimiter
	forms    *httprate.RateLimiter

	exemptIPs      map[string]struct{}
	exemptPaths    map[string]struct{}
	exemptPrefixes []string
}

// NewRateLimiter builds the limiter from cfg. Zero budgets fall back to the visitor budget.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	visitorBudget := cfg.RequestsPerMinute
	memberBudget := orDefault(cfg.RequestsPerMinuteAuth, visitorBudget)
	formBudget := orDefault(cfg.FormRequestsPerMinute, visitorBudget)

	rl := &RateLimiter{
		enabled:     cfg.Enabled,
		logger:      logger,
		exemptIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		exemptPaths: make(map[string]struct{}, len(cfg.WhitelistPaths)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.exemptIPs[strings.TrimSpace(ip)] = struct{}{}
	}
	for _, path := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(path, "/*"); ok {
			rl.exemptPrefixes = append(rl.exemptPrefixes, prefix+"/")
			continue
		}
		rl.exemptPaths[path] = struct{}{}
	}

	rl.visitors = httprate.NewRateLimiter(visitorBudget, time.Minute, httprate.WithLimitHandler(rl.limitExceeded("visitor")))
	rl.members = httprate.NewRateLimiter(memberBudget, time.Minute, httprate.WithLimitHandler(rl.limitExceeded("member")))
	rl.forms = httprate.NewRateLimiter(formBudget, time.Minute, httprate.WithLimitHandler(rl.limitExceeded("form")))

	if cfg.Enabled {
		logger.Info("Rate limiter initialized",
			zap.Int("visitor_per_minute", visitorBudget),
			zap.Int("member_per_minute", memberBudget),
			zap.Int("form_posts_per_minute", formBudget),
			zap.Strings("whitelist_ips", cfg.WhitelistIPs),
			zap.Strings("whitelist_paths", cfg.WhitelistPaths),
		)
	}
	return rl
}

// Limit applies the member budget to signed-in users and the visitor budget
// (plus the form budget for posts) to everyone else. It must run after the
// auth middleware so the user is known.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if rl.exempt(r.URL.Path, ip) {
			next.ServeHTTP(w, r)
			return
		}

		if user, ok := auth.FromContext(r.Context()); ok {
			if !user.IsSystem && rl.members.RespondOnLimit(w, r, "user:"+user.UserID) {
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodPost && rl.forms.RespondOnLimit(w, r, "form:"+ip+":"+r.URL.Path) {
			return
		}
		if rl.visitors.RespondOnLimit(w, r, "ip:"+ip) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LimitByIP applies the visitor budget without looking at the session, for
// routes served before authentication such as uploaded media
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if rl.exempt(r.URL.Path, ip) {
			next.ServeHTTP(w, r)
			return
		}
		if rl.visitors.RespondOnLimit(w, r, "ip:"+ip) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(path, ip string) bool {
	if _, ok := rl.exemptIPs[ip]; ok {
		return true
	}
	if _, ok := rl.exemptPaths[path]; ok {
		return true
	}
	for _, prefix := range rl.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) limitExceeded(budget string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields := []zap.Field{
			zap.String("budget", budget),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("client_ip", clientIP(r)),
		}
		if user, ok := auth.FromContext(r.Context()); ok {
			fields = append(fields, zap.String("user_id", user.UserID))
		}
		rl.logger.Warn("rate limit exceeded", fields...)

		detail := "Too many requests. Please try again in a minute."
		if budget == "form" {
			detail = "Too many submissions from your network. Please wait a minute before sending again."
		}

		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(domain.APIError{
			Type:   domain.ErrorTypeRateLimited,
			Title:  http.StatusText(http.StatusTooManyRequests),
			Status: http.StatusTooManyRequests,
			Detail: detail,
		})
	}
}

// clientIP is the first proxy-reported address, falling back to the peer address
func clientIP(r *http.Request) string {
	ip, _ := httprate.KeyByRealIP(r)
	return ip
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
