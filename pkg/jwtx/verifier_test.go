package jwtx

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://auth.movevote.test"
	testAudience = "movevote-api"
)

func newTestRS256Signer(t *testing.T, kid string) *RS256Signer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewRS256Signer(kid, key)
}

func newTestEdDSASigner(t *testing.T, kid string) *EdDSASigner {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return NewEdDSASigner(kid, key)
}

func newTestVerifier(t *testing.T, signers ...Signer) *TokenVerifier {
	t.Helper()

	keys := NewKeySet()
	for _, s := range signers {
		require.NoError(t, keys.AddSigner(s))
	}
	return NewTokenVerifier(keys, testIssuer, []string{testAudience})
}

func signedToken(t *testing.T, s Signer, mutate func(*Claims)) string {
	t.Helper()

	claims := NewAccessClaims(
		"u1", "a@example.com", "a",
		testIssuer, []string{testAudience},
		15*time.Minute, time.Now().UTC(),
	)
	if mutate != nil {
		mutate(&claims)
	}

	token, err := s.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestVerify_RS256(t *testing.T) {
	t.Parallel()

	signer := newTestRS256Signer(t, "kid-rsa")
	v := newTestVerifier(t, signer)

	claims, err := v.Verify(context.Background(), signedToken(t, signer, nil))
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "a", claims.Username)
}

func TestVerify_EdDSA(t *testing.T) {
	t.Parallel()

	signer := newTestEdDSASigner(t, "kid-ed")
	v := newTestVerifier(t, signer)

	claims, err := v.Verify(context.Background(), signedToken(t, signer, nil))
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	signer := newTestRS256Signer(t, "kid-rsa")
	v := newTestVerifier(t, signer)

	token := signedToken(t, signer, func(c *Claims) {
		// Past the verifier's 30s leeway.
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Minute))
	})

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_NotYetValid(t *testing.T) {
	t.Parallel()

	signer := newTestRS256Signer(t, "kid-rsa")
	v := newTestVerifier(t, signer)

	token := signedToken(t, signer, func(c *Claims) {
		c.NotBefore = jwt.NewNumericDate(time.Now().Add(2 * time.Minute))
	})

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrNotYetValid)
}

func TestVerify_IssuerMismatch(t *testing.T) {
	t.Parallel()

	signer := newTestRS256Signer(t, "kid-rsa")
	v := newTestVerifier(t, signer)

	token := signedToken(t, signer, func(c *Claims) {
		c.Issuer = "https://rogue.example.com"
	})

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerify_AudienceMismatch(t *testing.T) {
	t.Parallel()

	signer := newTestRS256Signer(t, "kid-rsa")
	v := newTestVerifier(t, signer)

	token := signedToken(t, signer, func(c *Claims) {
		c.Audience = jwt.ClaimStrings{"other-api"}
	})

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrAudience)
}

func TestVerify_UnknownKID(t *testing.T) {
	t.Parallel()

	known := newTestRS256Signer(t, "kid-known")
	rogue := newTestRS256Signer(t, "kid-rogue")
	v := newTestVerifier(t, known)

	_, err := v.Verify(context.Background(), signedToken(t, rogue, nil))
	require.ErrorIs(t, err, ErrUnknownKID)
}

func TestVerify_InvalidSignature(t *testing.T) {
	t.Parallel()

	// Two different keys published under the same kid: the signature can
	// never check out against the stored one.
	signerA := newTestRS256Signer(t, "kid-shared")
	signerB := newTestRS256Signer(t, "kid-shared")
	v := newTestVerifier(t, signerB)

	_, err := v.Verify(context.Background(), signedToken(t, signerA, nil))
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	signer := newTestRS256Signer(t, "kid-rsa")
	v := newTestVerifier(t, signer)

	_, err := v.Verify(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_MissingKID(t *testing.T) {
	t.Parallel()

	signer := newTestRS256Signer(t, "kid-rsa")
	v := newTestVerifier(t, signer)

	// Sign without a kid header.
	claims := NewAccessClaims(
		"u1", "a@example.com", "a",
		testIssuer, []string{testAudience},
		15*time.Minute, time.Now().UTC(),
	)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, &claims)
	raw, err := token.SignedString(signer.key)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), raw)
	require.ErrorIs(t, err, ErrMalformed)
}
