package secrets_test

import (
	"context"
	"errors"
	"testing"

	"github.com/induskill/marketplace-api/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVault struct {
	values map[string]string
	reads  []string
}

func (f *fakeVault) GetSecret(_ context.Context, name string) (string, error) {
	f.reads = append(f.reads, name)
	value, ok := f.values[name]
	if !ok {
		return "", errors.New("secret not found")
	}
	return value, nil
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      secrets.SecretSource
		environment string
		want        secrets.SecretSource
	}{
		{secrets.SourceAuto, "development", secrets.SourceEnvironment},
		{secrets.SourceAuto, "local", secrets.SourceEnvironment},
		{secrets.SourceAuto, "", secrets.SourceEnvironment},
		{secrets.SourceAuto, "staging", secrets.SourceVault},
		{secrets.SourceAuto, "production", secrets.SourceVault},
		{secrets.SourceEnvironment, "production", secrets.SourceEnvironment},
		{secrets.SourceVault, "development", secrets.SourceVault},
	}

	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.environment, func(t *testing.T) {
			assert.Equal(t, tt.want, secrets.ResolveSource(tt.source, tt.environment))
		})
	}
}

func TestProvider_EnvironmentSource(t *testing.T) {
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:      secrets.SourceAuto,
		Environment: "development",
	}, zap.NewNop())
	require.NoError(t, err)

	t.Setenv("SMTP_PASSWORD", "hunter2")
	value, err := provider.GetSecret(context.Background(), "SMTP_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)

	_, err = provider.GetSecret(context.Background(), "INDUSKILL_UNSET_SECRET")
	assert.ErrorContains(t, err, "not set")
}

func TestProvider_VaultSource(t *testing.T) {
	vault := &fakeVault{values: map[string]string{"identity-secret-key": "sk_live_vault"}}
	provider := secrets.NewProviderWithVault(vault, zap.NewNop())

	value, err := provider.GetSecret(context.Background(), "identity-secret-key")
	require.NoError(t, err)
	assert.Equal(t, "sk_live_vault", value)

	_, err = provider.GetSecret(context.Background(), "missing")
	assert.Error(t, err)
	assert.Equal(t, []string{"identity-secret-key", "missing"}, vault.reads)
}

func TestProvider_GetSecretOrEnvPrefersEnvironment(t *testing.T) {
	vault := &fakeVault{values: map[string]string{"smtp-password": "from-vault"}}
	provider := secrets.NewProviderWithVault(vault, zap.NewNop())

	t.Setenv("MAIL_PASSWORD", "")
	value, err := provider.GetSecretOrEnv(context.Background(), "smtp-password", "MAIL_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", value)

	t.Setenv("MAIL_PASSWORD", "from-env")
	value, err = provider.GetSecretOrEnv(context.Background(), "smtp-password", "MAIL_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
	assert.Len(t, vault.reads, 1)
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:      secrets.SourceAuto,
		Environment: "production",
	}, zap.NewNop())
	assert.ErrorContains(t, err, "vault name required")

	_, err = secrets.NewProvider(&secrets.ProviderConfig{Source: "s3"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown secret source")

	_, err = secrets.NewVaultClient(&secrets.VaultConfig{}, zap.NewNop())
	assert.ErrorContains(t, err, "vault name is required")
}
