package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityClient_SetRole(t *testing.T) {
	var gotPath, gotMethod, gotAuth string
	var gotBody map[string]map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"user_2abc"}`))
	}))
	defer server.Close()

	client := auth.NewIdentityClient(&config.IdentityConfig{APIURL: server.URL + "/v1", SecretKey: "sk_test_123"})
	require.True(t, client.Enabled())

	err := client.SetRole(context.Background(), "user_2abc", domain.RoleTrainer)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/v1/users/user_2abc/metadata", gotPath)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "trainer", gotBody["public_metadata"]["role"])
}

func TestIdentityClient_GetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "user_2abc",
			"first_name": "Asha",
			"primary_email_address_id": "idn_2",
			"email_addresses": [
				{"id": "idn_1", "email_address": "old@example.com"},
				{"id": "idn_2", "email_address": "asha@example.com"}
			],
			"public_metadata": {"role": "corporate"}
		}`))
	}))
	defer server.Close()

	client := auth.NewIdentityClient(&config.IdentityConfig{APIURL: server.URL, SecretKey: "sk"})
	user, err := client.GetUser(context.Background(), "user_2abc")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.PrimaryEmail())
	role, ok := user.Role()
	assert.True(t, ok)
	assert.Equal(t, domain.RoleCorporate, role)
}

func TestIdentityClient_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"code":"resource_not_found","message":"not found"}]}`))
	}))
	defer server.Close()

	client := auth.NewIdentityClient(&config.IdentityConfig{APIURL: server.URL, SecretKey: "sk"})
	err := client.SetRole(context.Background(), "user_missing", domain.RoleStudent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource_not_found")
}

func TestIdentityClient_NotConfigured(t *testing.T) {
	client := auth.NewIdentityClient(&config.IdentityConfig{APIURL: "https://api.example.com"})
	assert.False(t, client.Enabled())
	assert.ErrorIs(t, client.SetRole(context.Background(), "u", domain.RoleStudent), auth.ErrIdentityNotConfigured)
}
