package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/domain"
)

// ErrIdentityNotConfigured is returned when no backend secret key is set
var ErrIdentityNotConfigured = errors.New("identity provider secret key not configured")

// IdentityClient talks to the identity provider's backend API
type IdentityClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// IdentityUser is the subset of the provider's user object we read
type IdentityUser struct {
	ID             string                 `json:"id"`
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	ImageURL       string                 `json:"image_url"`
	PublicMetadata map[string]interface{} `json:"public_metadata"`
	EmailAddresses        []IdentityEmail `json:"email_addresses"`
	PrimaryEmailAddressID string          `json:"primary_email_address_id"`
}

// IdentityEmail is one address on a provider user
type IdentityEmail struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail returns the primary email address, or the first one listed
func (u *IdentityUser) PrimaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Role returns the role stored in public metadata
func (u *IdentityUser) Role() (domain.Role, bool) {
	raw, _ := u.PublicMetadata["role"].(string)
	return domain.ParseRole(raw)
}

// NewIdentityClient creates a provider backend client
func NewIdentityClient(cfg *config.IdentityConfig) *IdentityClient {
	return &IdentityClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   strings.TrimSuffix(cfg.APIURL, "/"),
		secretKey: cfg.SecretKey,
	}
}

// Enabled reports whether backend calls can be made
func (c *IdentityClient) Enabled() bool {
	return c != nil && c.secretKey != "" && c.baseURL != ""
}

// GetUser fetches a user from the provider
func (c *IdentityClient) GetUser(ctx context.Context, userID string) (*IdentityUser, error) {
	var user IdentityUser
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetRole writes role into the user's public metadata so future session tokens carry it
func (c *IdentityClient) SetRole(ctx context.Context, userID string, role domain.Role) error {
	body := map[string]interface{}{
		"public_metadata": map[string]interface{}{"role": string(role)},
	}
	return c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/metadata", body, nil)
}

func (c *IdentityClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	if !c.Enabled() {
		return ErrIdentityNotConfigured
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call identity API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp struct {
			Errors []struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err == nil && len(errorResp.Errors) > 0 {
			return fmt.Errorf("identity API error (%d): %s - %s", resp.StatusCode, errorResp.Errors[0].Code, errorResp.Errors[0].Message)
		}
		return fmt.Errorf("identity API returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode identity API response: %w", err)
		}
	}
	return nil
}
