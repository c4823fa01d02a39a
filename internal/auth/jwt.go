package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/domain"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrUnauthorizedParty = errors.New("token issued for an unauthorized party")
)

const (
	jwksCacheTTL = 24 * time.Hour
	// jwksMinRefreshInterval bounds how often an unknown kid can trigger a fetch
	jwksMinRefreshInterval = 30 * time.Second
)

// JWTValidator validates session tokens issued by the identity provider
type JWTValidator struct {
	config     *config.IdentityConfig
	httpClient *http.Client

	mu         sync.RWMutex
	publicKeys map[string]*rsa.PublicKey
	lastUpdate time.Time

	refreshMu   sync.Mutex
	lastAttempt time.Time
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.IdentityConfig) *JWTValidator {
	return &JWTValidator{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		publicKeys: make(map[string]*rsa.PublicKey),
	}
}

// ValidateToken validates a session token and returns the user it describes.
// The role is whatever the token claims; callers fill in fallbacks.
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing kid in header", ErrInvalidToken)
	}

	publicKey, err := v.getPublicKey(kid)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return publicKey, nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	if v.config.Issuer != "" {
		iss, _ := claims.GetIssuer()
		if strings.TrimSuffix(iss, "/") != strings.TrimSuffix(v.config.Issuer, "/") {
			return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
		}
	}

	if parties := v.config.AuthorizedPartyList(); len(parties) > 0 {
		if azp := extractString(claims, "azp"); azp != "" && !containsString(parties, azp) {
			return nil, ErrUnauthorizedParty
		}
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	userCtx := &UserContext{
		UserID:      sub,
		Email:       extractString(claims, "email", "primary_email", "email_address"),
		FirstName:   extractString(claims, "first_name", "given_name"),
		LastName:    extractString(claims, "last_name", "family_name"),
		DisplayName: extractString(claims, "name", "full_name", "username"),
		AvatarURL:   extractString(claims, "image_url", "picture", "avatar_url"),
		SessionID:   extractString(claims, "sid"),
	}
	if userCtx.DisplayName == "" {
		userCtx.DisplayName = strings.TrimSpace(userCtx.FirstName + " " + userCtx.LastName)
	}
	if role, ok := ExtractRole(claims); ok {
		userCtx.Role = role
		userCtx.RoleSource = RoleSourceToken
	}

	return userCtx, nil
}

func (v *JWTValidator) getPublicKey(kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, exists := v.publicKeys[kid]
	fresh := time.Since(v.lastUpdate) < jwksCacheTTL
	v.mu.RUnlock()
	if exists && fresh {
		return key, nil
	}

	// Unknown kid or stale cache: the provider may have rotated keys
	if err := v.maybeRefreshPublicKeys(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	key, exists = v.publicKeys[kid]
	v.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("public key not found for kid: %s", kid)
	}

	return key, nil
}

// maybeRefreshPublicKeys refetches the key set unless a fresh set was fetched
// less than jwksMinRefreshInterval ago. Concurrent callers share one fetch.
func (v *JWTValidator) maybeRefreshPublicKeys() error {
	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()

	v.mu.RLock()
	fresh := !v.lastUpdate.IsZero() && time.Since(v.lastUpdate) < jwksCacheTTL
	v.mu.RUnlock()
	if fresh && time.Since(v.lastAttempt) < jwksMinRefreshInterval {
		return nil
	}

	v.lastAttempt = time.Now()
	return v.refreshPublicKeys()
}

func (v *JWTValidator) refreshPublicKeys() error {
	resp, err := v.httpClient.Get(v.config.JWKSEndpoint())
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
			Kty string `json:"kty"`
			Use string `json:"use"`
			Alg string `json:"alg"`
		} `json:"keys"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	newKeys := make(map[string]*rsa.PublicKey)
	for _, key := range jwks.Keys {
		if key.Kty != "RSA" || (key.Use != "" && key.Use != "sig") {
			continue
		}

		nBytes, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			continue
		}

		eBytes, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			continue
		}

		e := 0
		for _, b := range eBytes {
			e = e<<8 + int(b)
		}

		newKeys[key.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: e,
		}
	}

	v.mu.Lock()
	v.publicKeys = newKeys
	v.lastUpdate = time.Now()
	v.mu.Unlock()

	return nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

// ExtractRole reads the role from "role", "metadata.role" or "public_metadata.role"
func ExtractRole(claims jwt.MapClaims) (domain.Role, bool) {
	if raw := extractString(claims, "role"); raw != "" {
		if role, ok := domain.ParseRole(raw); ok {
			return role, true
		}
	}
	for _, key := range []string{"metadata", "public_metadata"} {
		nested, ok := claims[key].(map[string]interface{})
		if !ok {
			continue
		}
		if raw, ok := nested["role"].(string); ok {
			if role, ok := domain.ParseRole(raw); ok {
				return role, true
			}
		}
	}
	return "", false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
