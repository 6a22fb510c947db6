package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/movevote/movevote/pkg/jwtx"
	"github.com/movevote/movevote/pkg/slogx"
)

// Rejection kinds surfaced in the WWW-Authenticate error description.
// Every verification failure maps to exactly one of these; the boundary
// never retries, the generic 401 is the client's signal to refresh.
const (
	rejectMissingToken      = "missing_token"
	rejectMalformedToken    = "malformed_token"
	rejectUnknownSigningKey = "unknown_signing_key"
	rejectInvalidToken      = "invalid_token"
	rejectTokenExpired      = "token_expired"
	rejectIssuerMismatch    = "issuer_mismatch"
)

// AuthnMiddleware verifies the bearer token on each request and attaches
// the resulting Principal to the request context. Requests without a valid
// token are rejected with a single 401.
func AuthnMiddleware(v *jwtx.TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, rejectMissingToken)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
			if raw == "" {
				writeBearerError(w, rejectMissingToken)
				return
			}

			claims, err := v.Verify(ctx, raw)
			if err != nil {
				writeBearerError(w, rejectionKind(err))
				log.Warn("token verification failed", "err", err)
				return
			}

			principal := Principal{
				Subject:  claims.Subject,
				Email:    claims.Email,
				Username: claims.Username,
				Claims:   *claims,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

// rejectionKind maps verifier sentinels onto the boundary's rejection
// vocabulary.
func rejectionKind(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrMalformed):
		return rejectMalformedToken
	case errors.Is(err, jwtx.ErrUnknownKID):
		return rejectUnknownSigningKey
	case errors.Is(err, jwtx.ErrExpired), errors.Is(err, jwtx.ErrNotYetValid):
		return rejectTokenExpired
	case errors.Is(err, jwtx.ErrIssuer), errors.Is(err, jwtx.ErrAudience):
		return rejectIssuerMismatch
	default:
		return rejectInvalidToken
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
