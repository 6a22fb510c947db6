package httpx

import (
	"context"

	"github.com/movevote/movevote/pkg/jwtx"
)

// Principal is the verified identity attached to a request after the authn
// boundary. It lives in the request context only and is discarded when
// request processing ends.
type Principal struct {
	Subject  string
	Email    string
	Username string
	Claims   jwtx.Claims
}

type principalKey struct{}

// WithPrincipal attaches a principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the request principal, if the request
// passed the authn boundary.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
