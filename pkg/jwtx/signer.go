package jwtx

import (
	"crypto/ed25519"
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mints signed access tokens. Production tokens come from the
// identity provider; these implementations back local development issuers
// and the fake providers in tests.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
}

// RS256Signer signs tokens with an RSA private key.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
}

// NewRS256Signer wraps an RSA private key as a Signer.
func NewRS256Signer(kid string, key *rsa.PrivateKey) *RS256Signer {
	return &RS256Signer{kid: kid, key: key}
}

func (s *RS256Signer) Alg() string { return jwt.SigningMethodRS256.Alg() }
func (s *RS256Signer) KID() string { return s.kid }

func (s *RS256Signer) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, &claims)
	token.Header["kid"] = s.kid
	return token.SignedString(s.key)
}

func (s *RS256Signer) PublicJWK() JWK {
	return NewRSAJWK(s.kid, &s.key.PublicKey)
}

// EdDSASigner signs tokens with an Ed25519 private key.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
}

// NewEdDSASigner wraps an Ed25519 private key as a Signer.
func NewEdDSASigner(kid string, key ed25519.PrivateKey) *EdDSASigner {
	return &EdDSASigner{kid: kid, key: key}
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, &claims)
	token.Header["kid"] = s.kid
	return token.SignedString(s.key)
}

func (s *EdDSASigner) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, s.key.Public().(ed25519.PublicKey))
}
