package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// DefaultRefreshCooldown is the minimum interval between miss-triggered
// JWKS fetches. It bounds how often an attacker probing with fabricated
// kids (or a burst of requests racing a key rotation) can make us hit the
// provider.
const DefaultRefreshCooldown = 30 * time.Second

// RemoteKeySet caches the identity provider's published key set and
// resolves verification keys by kid. A lookup that misses the cache
// triggers at most one synchronous re-fetch before reporting the key as
// unknown, so unknown kids can never degenerate into a fetch storm.
type RemoteKeySet struct {
	url        string
	httpClient *http.Client
	cooldown   time.Duration

	keys *KeySet

	mu        sync.Mutex // serializes fetches; keys has its own lock
	lastFetch time.Time
}

// RemoteKeySetOption customizes a RemoteKeySet.
type RemoteKeySetOption func(*RemoteKeySet)

// WithHTTPClient replaces the transport used for JWKS fetches.
func WithHTTPClient(c *http.Client) RemoteKeySetOption {
	return func(r *RemoteKeySet) { r.httpClient = c }
}

// WithRefreshCooldown overrides the minimum interval between
// miss-triggered fetches.
func WithRefreshCooldown(d time.Duration) RemoteKeySetOption {
	return func(r *RemoteKeySet) { r.cooldown = d }
}

// NewRemoteKeySet returns a key set backed by the JWKS document at url.
// The cache starts empty, the first resolution fetches.
func NewRemoteKeySet(url string, opts ...RemoteKeySetOption) *RemoteKeySet {
	r := &RemoteKeySet{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cooldown: DefaultRefreshCooldown,
		keys:     NewKeySet(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveKey returns the public key for kid. On a cache miss it performs
// one re-fetch of the provider's key set and re-checks; a kid still absent
// after that is reported as ErrUnknownKID. Fetch failures (including
// timeouts) also resolve to ErrUnknownKID, callers must not loop.
func (r *RemoteKeySet) ResolveKey(ctx context.Context, kid string) (any, error) {
	if key, err := r.keys.Get(kid); err == nil {
		return key, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A concurrent caller may have refreshed while we waited on the lock.
	if key, err := r.keys.Get(kid); err == nil {
		return key, nil
	}

	if time.Since(r.lastFetch) < r.cooldown {
		return nil, fmt.Errorf("%w: %q (refresh on cooldown)", ErrUnknownKID, kid)
	}

	if err := r.fetchLocked(ctx); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownKID, kid, err)
	}

	if key, err := r.keys.Get(kid); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
}

// Refresh fetches the provider's key set unconditionally. Intended for
// startup warming and background rotation timers; miss-triggered refresh
// happens on its own inside ResolveKey.
func (r *RemoteKeySet) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetchLocked(ctx)
}

// IsReady reports whether the cache holds at least one key.
func (r *RemoteKeySet) IsReady() bool {
	return r.keys.IsReady()
}

// fetchLocked fetches and replaces the cached key set. Caller holds r.mu.
// lastFetch advances even on failure so a broken provider is not hammered.
func (r *RemoteKeySet) fetchLocked(ctx context.Context) error {
	r.lastFetch = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("jwtx: build jwks request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwtx: fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwtx: fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("jwtx: decode jwks: %w", err)
	}

	return r.keys.ResetFromJWKS(jwks)
}
