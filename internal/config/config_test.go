package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// inDir runs the test from dir so Load does not pick up a developer's config.json or .env
func inDir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	inDir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "InduSkill Marketplace", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, int64(5), cfg.Storage.MaxUploadSizeMB)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTLDuration())
	assert.Equal(t, "theme", cfg.Web.ThemeCookie)
	assert.Equal(t, "light", cfg.Web.DefaultTheme)
	assert.Equal(t, "__session", cfg.Identity.SessionCookie)
	assert.Contains(t, cfg.CORS.ExposedHeaders, "X-Cache")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENVIRONMENT", "staging")
	t.Setenv("DATABASE_URL", "postgres://u:p@db.example.com:5432/market")
	t.Setenv("ADMIN_API_KEY", "s3cret")
	t.Setenv("IDENTITY_ISSUER", "https://clerk.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "postgres://u:p@db.example.com:5432/market", cfg.Database.ConnectionString())
	assert.Equal(t, "s3cret", cfg.ApiKey.Value)
	assert.Equal(t, "https://clerk.example.com/.well-known/jwks.json", cfg.Identity.JWKSEndpoint())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	inDir(t, dir)
	content := `{"app": {"name": "Plant Academy"}, "web": {"defaultTheme": "dark"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Plant Academy", cfg.App.Name)
	assert.Equal(t, "dark", cfg.Web.DefaultTheme)
	assert.Equal(t, 8080, cfg.App.Port)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	inDir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadWithSecrets_VaultDisabled(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("USE_AZURE_KEY_VAULT", "false")
	t.Setenv("ADMIN_API_KEY", "from-env")

	cfg, err := LoadWithSecrets(context.Background(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ApiKey.Value)
}

func TestLoadWithSecrets_VaultRequiresName(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("USE_AZURE_KEY_VAULT", "true")
	t.Setenv("APP_ENVIRONMENT", "production")
	t.Setenv("AZURE_KEY_VAULT_NAME", "")

	_, err := LoadWithSecrets(context.Background(), zap.NewNop())
	assert.Error(t, err)
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := f[secretName]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://local"},
		ApiKey:   ApiKeyConfig{Value: "env-key"},
		Mail:     MailConfig{Password: "env-smtp"},
	}

	applySecrets(context.Background(), cfg, fakeSecrets{
		"database-url":        "postgres://vault",
		"identity-secret-key": "sk_live",
		"smtp-password":       "",
	})

	assert.Equal(t, "postgres://vault", cfg.Database.URL)
	assert.Equal(t, "sk_live", cfg.Identity.SecretKey)
	assert.Equal(t, "env-key", cfg.ApiKey.Value)
	assert.Equal(t, "env-smtp", cfg.Mail.Password)
}

func TestIdentityConfig_AuthorizedPartyList(t *testing.T) {
	cfg := IdentityConfig{AuthorizedParties: " https://induskill.io, ,http://localhost:3000 "}
	assert.Equal(t, []string{"https://induskill.io", "http://localhost:3000"}, cfg.AuthorizedPartyList())

	assert.Empty(t, (&IdentityConfig{}).AuthorizedPartyList())
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "market", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=market sslmode=require", cfg.ConnectionString())
}

func TestMailConfig_Enabled(t *testing.T) {
	assert.False(t, (&MailConfig{Host: "  "}).Enabled())
	assert.True(t, (&MailConfig{Host: "smtp.example.com", Port: 587}).Enabled())
	assert.Equal(t, "smtp.example.com:587", (&MailConfig{Host: "smtp.example.com", Port: 587}).Addr())
}
