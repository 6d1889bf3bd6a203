package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer(testPrivateKey(t), nil, 24*time.Hour)
	before := time.Now()
	token, err := issuer.Issue("user-1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token.Value, BearerPrefix))
	assert.WithinDuration(t, before.Add(24*time.Hour), token.ExpiresAt, 2*time.Second)

	raw := strings.TrimPrefix(token.Value, BearerPrefix)
	subject, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "RS256", parsed.Method.Alg())
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer(testPrivateKey(t), nil, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(strings.TrimPrefix(token.Value, BearerPrefix))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyForeignSignature(t *testing.T) {
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forger := NewTokenIssuer(otherKey, nil, time.Hour)
	token, err := forger.Issue("user-1")
	require.NoError(t, err)

	issuer := NewTokenIssuer(testPrivateKey(t), nil, time.Hour)
	_, err = issuer.Verify(strings.TrimPrefix(token.Value, BearerPrefix))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsHMAC(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	issuer := NewTokenIssuer(testPrivateKey(t), nil, time.Hour)
	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer(testPrivateKey(t), nil, time.Hour)
	_, err := issuer.Verify("invalidToken")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoadTokenIssuer(t *testing.T) {
	key := testPrivateKey(t)
	dir := t.TempDir()
	privPath := filepath.Join(dir, "id_rsa_priv.pem")
	pubPath := filepath.Join(dir, "id_rsa_pub.pem")
	privDER := x509.MarshalPKCS1PrivateKey(key)
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: privDER}), 0o600))
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o600))

	issuer, err := LoadTokenIssuer(privPath, pubPath, time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue("user-2")
	require.NoError(t, err)
	subject, err := issuer.Verify(strings.TrimPrefix(token.Value, BearerPrefix))
	require.NoError(t, err)
	assert.Equal(t, "user-2", subject)

	_, err = LoadTokenIssuer(filepath.Join(dir, "missing.pem"), "", time.Hour)
	assert.Error(t, err)
	assert.Panics(t, func() { MustLoadTokenIssuer(filepath.Join(dir, "missing.pem"), "", time.Hour) })
}
