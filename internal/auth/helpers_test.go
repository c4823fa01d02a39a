package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://clerk.induskill.test"

type testKeyPair struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	kid        string
}

func generateTestKeyPair(t *testing.T) *testKeyPair {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &testKeyPair{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		kid:        "ins_test_key",
	}
}

// createMockJWKSServer serves keyPair as a JWKS document and counts fetches
func createMockJWKSServer(t *testing.T, keyPair *testKeyPair, fetches *int) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			*fetches++
		}
		n := base64.RawURLEncoding.EncodeToString(keyPair.publicKey.N.Bytes())
		e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(keyPair.publicKey.E)).Bytes())

		jwks := map[string]interface{}{
			"keys": []map[string]interface{}{
				{"kty": "RSA", "use": "sig", "kid": keyPair.kid, "n": n, "e": e, "alg": "RS256"},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)
	return server
}

func createTestToken(t *testing.T, keyPair *testKeyPair, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyPair.kid

	tokenString, err := token.SignedString(keyPair.privateKey)
	require.NoError(t, err)
	return tokenString
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":        testIssuer,
		"sub":        "user_2abc",
		"azp":        "https://induskill.test",
		"sid":        "sess_123",
		"exp":        time.Now().Add(time.Hour).Unix(),
		"nbf":        time.Now().Add(-time.Minute).Unix(),
		"iat":        time.Now().Unix(),
		"email":      "asha@example.com",
		"first_name": "Asha",
		"last_name":  "Rao",
		"image_url":  "https://img.example.com/asha.png",
	}
}

func identityConfig(jwksURL string) *config.IdentityConfig {
	return &config.IdentityConfig{
		Issuer:            testIssuer,
		JWKSURL:           jwksURL,
		AuthorizedParties: "https://induskill.test, http://localhost:3000",
		SessionCookie:     "__session",
	}
}
