package auth

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/induskill/marketplace-api/internal/domain"
)

// Where the user's role was resolved from
const (
	RoleSourceToken    = "token"
	RoleSourceDatabase = "database"
	RoleSourceDefault  = "default"
	RoleSourceAPIKey   = "api_key"
)

// UserContext holds authenticated user information
type UserContext struct {
	// UserID is the identity provider's user id (the token subject)
	UserID      string
	Email       string
	FirstName   string
	LastName    string
	DisplayName string
	AvatarURL   string
	Role        domain.Role
	RoleSource  string
	SessionID   string
	IsSystem    bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.Role) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// EffectiveRole returns the user's role, or the default role when none is set
func (u *UserContext) EffectiveRole() domain.Role {
	if u.Role.IsValid() {
		return u.Role
	}
	return domain.DefaultRole
}

// Name returns the best available human-readable name
func (u *UserContext) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Email
}

// Initials returns up to two initials for the nav badge (e.g., "Asha Rao" -> "AR")
func (u *UserContext) Initials() string {
	var initials []rune
	for _, part := range strings.Fields(u.Name()) {
		r, _ := utf8.DecodeRuneInString(part)
		if r != utf8.RuneError {
			initials = append(initials, unicode.ToUpper(r))
		}
	}
	if len(initials) > 2 {
		initials = []rune{initials[0], initials[len(initials)-1]}
	}
	return string(initials)
}
