package auth_test

import (
	"context"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/auth"
)

const testClientID = "flowrk-test.apps.googleusercontent.com"

func jwksServer(t *testing.T, kid string, key *rsa.PublicKey) *httptest.Server {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kid": kid,
			"kty": "RSA",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func idToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func googleClaims(overrides map[string]any) jwt.MapClaims {
	claims := jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "google-uid-1",
		"email":          "Asha@Example.com",
		"email_verified": true,
		"name":           "Asha Patil",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func TestGoogleProviderIDToken(t *testing.T) {
	ctx := context.Background()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := jwksServer(t, "k1", &key.PublicKey)

	newProvider := func() *auth.GoogleProvider {
		return auth.NewGoogleProvider(auth.GoogleConfig{ClientID: testClientID, JWKSURL: srv.URL},
			auth.NewSessions("secret", time.Hour), auth.NewRevocations(nil))
	}

	t.Run("Should sign in with a valid ID token and announce the session", func(t *testing.T) {
		provider := newProvider()
		var events []domain.SessionEvent
		provider.Subscribe(func(event domain.SessionEvent) { events = append(events, event) })

		identity, token, err := provider.SignIn(ctx, domain.Credential{IDToken: idToken(t, key, "k1", googleClaims(nil))})
		require.NoError(t, err)
		assert.Equal(t, "google-uid-1", identity.UID)
		assert.Equal(t, "asha@example.com", identity.Email)
		assert.Equal(t, "Asha Patil", identity.DisplayName)
		assert.NotEmpty(t, token)

		require.Len(t, events, 1)
		assert.Equal(t, domain.SessionSignedIn, events[0].Kind)
		assert.Equal(t, token, events[0].Token)

		current, err := provider.CurrentSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "google-uid-1", current.UID)
	})

	t.Run("Should reject a token for another audience", func(t *testing.T) {
		_, _, err := newProvider().SignIn(ctx, domain.Credential{IDToken: idToken(t, key, "k1", googleClaims(map[string]any{"aud": "someone-else"}))})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("Should reject a foreign issuer", func(t *testing.T) {
		_, _, err := newProvider().SignIn(ctx, domain.Credential{IDToken: idToken(t, key, "k1", googleClaims(map[string]any{"iss": "https://evil.example.com"}))})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("Should reject an unverified email", func(t *testing.T) {
		_, _, err := newProvider().SignIn(ctx, domain.Credential{IDToken: idToken(t, key, "k1", googleClaims(map[string]any{"email_verified": false}))})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("Should reject a token signed by an unknown key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		_, _, err = newProvider().SignIn(ctx, domain.Credential{IDToken: idToken(t, other, "k1", googleClaims(nil))})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})
}
