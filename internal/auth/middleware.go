package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/domain"
	"go.uber.org/zap"
)

// SystemUserID identifies requests authenticated with the admin API key
const SystemUserID = "system"

// ProfileLookup reads the role mirrored into the database
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
}

// TokenValidator turns a raw session token into a user
type TokenValidator interface {
	ValidateToken(tokenString string) (*UserContext, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	validator     TokenValidator
	profiles      ProfileLookup
	apiKey        string
	sessionCookie string
	logger        *zap.Logger
}

// NewMiddleware creates a new authentication middleware. profiles may be nil.
func NewMiddleware(cfg *config.Config, profiles ProfileLookup, logger *zap.Logger) *Middleware {
	return NewMiddlewareWithValidator(NewJWTValidator(&cfg.Identity), cfg, profiles, logger)
}

// NewMiddlewareWithValidator creates the middleware around a custom token validator
func NewMiddlewareWithValidator(validator TokenValidator, cfg *config.Config, profiles ProfileLookup, logger *zap.Logger) *Middleware {
	cookie := cfg.Identity.SessionCookie
	if cookie == "" {
		cookie = "__session"
	}
	return &Middleware{
		validator:     validator,
		profiles:      profiles,
		apiKey:        cfg.ApiKey.Value,
		sessionCookie: cookie,
		logger:        logger,
	}
}

// Authenticate rejects requests without a valid API key or session token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if m.validateAPIKey(apiKey) {
				userCtx := systemUser()
				m.logger.Info("request authenticated",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("auth_type", "api_key"),
					zap.Duration("auth_duration", time.Since(start)),
				)
				next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
				return
			}
			m.logger.Warn("invalid API key attempt",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			writeProblem(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		token, err := m.extractToken(r)
		if err != "" {
			writeProblem(w, http.StatusUnauthorized, err)
			return
		}

		userCtx, vErr := m.validator.ValidateToken(token)
		if vErr != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(vErr),
			)
			writeProblem(w, http.StatusUnauthorized, vErr.Error())
			return
		}

		m.resolveRole(r.Context(), userCtx)

		m.logger.Info("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", "jwt"),
			zap.String("user_id", userCtx.UserID),
			zap.String("role", string(userCtx.Role)),
			zap.String("role_source", userCtx.RoleSource),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// OptionalAuthenticate attaches a user when credentials are valid and otherwise lets the request through
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if m.validateAPIKey(apiKey) {
				next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), systemUser())))
				return
			}
			m.logger.Debug("optional auth: invalid API key, continuing unauthenticated",
				zap.String("path", r.URL.Path),
			)
		}

		if token, errMsg := m.extractToken(r); errMsg == "" {
			userCtx, err := m.validator.ValidateToken(token)
			if err == nil {
				m.resolveRole(r.Context(), userCtx)
				next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
				return
			}
			m.logger.Debug("optional auth: token validation failed, continuing unauthenticated",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole middleware ensures user has one of the roles
func (m *Middleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !userCtx.HasAnyRole(roles...) {
				writeProblem(w, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware ensures user has the admin role or used the API key
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(domain.RoleAdmin)(next)
}

// extractToken reads the Bearer header, falling back to the session cookie.
// The second value is a problem detail when no usable token was sent.
func (m *Middleware) extractToken(r *http.Request) (string, string) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", "invalid authorization header format"
		}
		return strings.TrimSpace(parts[1]), ""
	}
	if cookie, err := r.Cookie(m.sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, ""
	}
	return "", "missing session token"
}

// resolveRole fills the role from the database mirror when the token has none
func (m *Middleware) resolveRole(ctx context.Context, userCtx *UserContext) {
	if userCtx.Role.IsValid() {
		return
	}
	if m.profiles != nil {
		profile, err := m.profiles.GetByID(ctx, userCtx.UserID)
		if err == nil && profile.Role.IsValid() {
			userCtx.Role = profile.Role
			userCtx.RoleSource = RoleSourceDatabase
			return
		}
		if err != nil {
			m.logger.Debug("no mirrored profile for user", zap.String("user_id", userCtx.UserID), zap.Error(err))
		}
	}
	userCtx.Role = domain.DefaultRole
	userCtx.RoleSource = RoleSourceDefault
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func systemUser() *UserContext {
	return &UserContext{
		UserID:      SystemUserID,
		DisplayName: "System",
		Email:       "system@induskill.io",
		Role:        domain.RoleAdmin,
		RoleSource:  RoleSourceAPIKey,
		IsSystem:    true,
	}
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.NewAPIError(status, detail))
}
