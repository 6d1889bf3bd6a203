package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const BearerPrefix = "Bearer "

type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies RS256 bearer tokens. Only the server holds the private key.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenIssuer(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, ttl time.Duration) *TokenIssuer {
	if publicKey == nil {
		publicKey = &privateKey.PublicKey
	}
	return &TokenIssuer{
		privateKey: privateKey,
		publicKey:  publicKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

// LoadTokenIssuer reads PEM encoded keys. An empty publicKeyPath derives the
// public key from the private one.
func LoadTokenIssuer(privateKeyPath, publicKeyPath string, ttl time.Duration) (*TokenIssuer, error) {
	privPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	var publicKey *rsa.PublicKey
	if publicKeyPath != "" {
		pubPEM, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		publicKey, err = jwt.ParseRSAPublicKeyFromPEM(pubPEM)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
	}
	return NewTokenIssuer(privateKey, publicKey, ttl), nil
}

func MustLoadTokenIssuer(privateKeyPath, publicKeyPath string, ttl time.Duration) *TokenIssuer {
	issuer, err := LoadTokenIssuer(privateKeyPath, publicKeyPath, ttl)
	if err != nil {
		panic(err)
	}
	return issuer
}

func (t *TokenIssuer) Issue(userID string) (*Token, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.privateKey)
	if err != nil {
		return nil, err
	}
	return &Token{Value: BearerPrefix + signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature and expiry of a raw (prefix-less) token and returns its subject.
func (t *TokenIssuer) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(
		raw,
		&claims,
		func(*jwt.Token) (any, error) { return t.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, errors.New("missing subject"))
	}
	return claims.Subject, nil
}
