package jwtx

import (
	"context"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// KeyResolver resolves a verification key by kid. KeySet satisfies it for
// static key material, RemoteKeySet for provider-published keys.
type KeyResolver interface {
	ResolveKey(ctx context.Context, kid string) (any, error)
}

// TokenVerifier validates bearer tokens against a KeyResolver and the
// configured issuer/audience. It never retries: a token that fails to
// verify is rejected once, with a specific error.
type TokenVerifier struct {
	resolver KeyResolver
	issuer   string
	audience []string
	leeway   time.Duration
}

// NewTokenVerifier creates a verifier. Empty issuer or audience disables
// the respective claim check.
func NewTokenVerifier(resolver KeyResolver, issuer string, audience []string) *TokenVerifier {
	return &TokenVerifier{
		resolver: resolver,
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
	}
}

// Verify validates the token string and returns its claims, or one of the
// package sentinel errors.
func (v *TokenVerifier) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{
			jwt.SigningMethodRS256.Alg(),
			jwt.SigningMethodEdDSA.Alg(),
		}),
		jwt.WithLeeway(v.leeway),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid", ErrMalformed)
		}

		pub, err := v.resolver.ResolveKey(ctx, kid)
		if err != nil {
			return nil, err
		}

		// The key type must match the algorithm the token declares, a
		// mismatch means key confusion rather than an unknown key.
		switch t.Method.Alg() {
		case jwt.SigningMethodRS256.Alg():
			if _, ok := pub.(*rsa.PublicKey); !ok {
				return nil, ErrAlgMismatch
			}
		case jwt.SigningMethodEdDSA.Alg():
			if _, ok := pub.(ed25519.PublicKey); !ok {
				return nil, ErrAlgMismatch
			}
		}

		return pub, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateAudience(v.audience); err != nil {
		return nil, err
	}

	return claims, nil
}

// classifyParseError maps golang-jwt's wrapped errors onto the package
// sentinels so callers can switch on rejection kind.
func classifyParseError(err error) error {
	switch {
	// Keyfunc errors carry our own sentinels through the wrap chain.
	case errors.Is(err, ErrUnknownKID),
		errors.Is(err, ErrMalformed),
		errors.Is(err, ErrAlgMismatch):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	}
}
