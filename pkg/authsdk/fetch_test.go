package authsdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movevote/movevote/pkg/credstore"
)

// fakeAPI scripts the provider: /auth/refresh answers per refreshStatus,
// /v1/games answers from the apiStatus sequence (last entry repeats).
type fakeAPI struct {
	t *testing.T

	apiStatus     []int
	refreshStatus int

	apiCalls     atomic.Int64
	refreshCalls atomic.Int64
	totalCalls   atomic.Int64

	lastAuthz atomic.Value // Authorization header of the latest /v1/games call
	lastBody  atomic.Value // body of the latest /v1/games call
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.totalCalls.Add(1)

	switch r.URL.Path {
	case "/auth/refresh":
		f.refreshCalls.Add(1)
		if f.refreshStatus != http.StatusOK {
			w.WriteHeader(f.refreshStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(RefreshResult{AccessToken: "A2", ExpiresIn: 900})

	case "/v1/games":
		n := f.apiCalls.Add(1)
		f.lastAuthz.Store(r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(body))

		idx := min(int(n)-1, len(f.apiStatus)-1)
		status := f.apiStatus[idx]
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"games":[]}`))
		}

	default:
		f.t.Fatalf("unexpected request to %s", r.URL.Path)
	}
}

func newFetchFixture(t *testing.T, api *fakeAPI) (*Client, *credstore.Store) {
	t.Helper()

	api.t = t
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	creds := credstore.New(credstore.NewMemoryBackend())
	return NewClient(server.URL, creds), creds
}

func seedTokens(t *testing.T, creds *credstore.Store, access, refresh string) {
	t.Helper()

	ctx := context.Background()
	if access != "" {
		require.NoError(t, creds.SetAccessToken(ctx, access))
	}
	if refresh != "" {
		require.NoError(t, creds.SetRefreshToken(ctx, refresh))
	}
}

func TestAuthenticatedDo_NoAccessToken(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{apiStatus: []int{http.StatusOK}}
	client, _ := newFetchFixture(t, api)

	_, err := client.AuthenticatedDo(context.Background(), http.MethodGet, "/v1/games", nil, nil)
	require.Equal(t, KindNoAccessToken, KindOf(err))

	// No network call may be made without a token.
	require.EqualValues(t, 0, api.totalCalls.Load())
}

func TestAuthenticatedDo_AttachesBearerAndMergesHeaders(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{apiStatus: []int{http.StatusOK}}
	client, creds := newFetchFixture(t, api)
	seedTokens(t, creds, "A1", "R")

	header := http.Header{}
	header.Set("X-Trace", "trace-1")
	header.Set("Accept", "application/json")

	resp, err := client.AuthenticatedDo(context.Background(), http.MethodGet, "/v1/games", nil, header)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, api.totalCalls.Load())
	require.Equal(t, "Bearer A1", api.lastAuthz.Load())

	// Caller headers must survive the merge untouched.
	require.Equal(t, "trace-1", header.Get("X-Trace"))
}

func TestAuthenticatedDo_NonAuthErrorPassesThrough(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{apiStatus: []int{http.StatusForbidden}}
	client, creds := newFetchFixture(t, api)
	seedTokens(t, creds, "A1", "R")

	ctx := context.Background()
	resp, err := client.AuthenticatedDo(ctx, http.MethodGet, "/v1/games", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// 403 is a business-level answer, not an auth expiry: no refresh, no
	// logout, the response reaches the caller unchanged.
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.EqualValues(t, 1, api.totalCalls.Load())

	access, err := creds.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "A1", access)
}

func TestAuthenticatedDo_RefreshAndRetrySucceeds(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		apiStatus:     []int{http.StatusUnauthorized, http.StatusOK},
		refreshStatus: http.StatusOK,
	}
	client, creds := newFetchFixture(t, api)
	seedTokens(t, creds, "A1", "R")

	ctx := context.Background()
	resp, err := client.AuthenticatedDo(ctx, http.MethodGet, "/v1/games", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Exactly three network calls: original, refresh, retry.
	require.EqualValues(t, 3, api.totalCalls.Load())
	require.EqualValues(t, 2, api.apiCalls.Load())
	require.EqualValues(t, 1, api.refreshCalls.Load())

	// The retry carried the refreshed token, which was persisted before
	// the retry was sent.
	require.Equal(t, "Bearer A2", api.lastAuthz.Load())
	access, err := creds.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "A2", access)
}

func TestAuthenticatedDo_SingleRetryThenTerminal(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		apiStatus:     []int{http.StatusUnauthorized, http.StatusUnauthorized},
		refreshStatus: http.StatusOK,
	}
	client, creds := newFetchFixture(t, api)
	seedTokens(t, creds, "A1", "R")

	_, err := client.AuthenticatedDo(context.Background(), http.MethodGet, "/v1/games", nil, nil)
	require.Equal(t, KindAuthFailedAfterRefresh, KindOf(err))

	// Exactly three calls, never a second refresh.
	require.EqualValues(t, 3, api.totalCalls.Load())
	require.EqualValues(t, 1, api.refreshCalls.Load())

	requireNothingStored(t, creds)
}

func TestAuthenticatedDo_NoRefreshToken(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{apiStatus: []int{http.StatusUnauthorized}}
	client, creds := newFetchFixture(t, api)
	seedTokens(t, creds, "A1", "") // access only

	_, err := client.AuthenticatedDo(context.Background(), http.MethodGet, "/v1/games", nil, nil)
	require.Equal(t, KindNoRefreshToken, KindOf(err))
	require.EqualValues(t, 1, api.totalCalls.Load())

	requireNothingStored(t, creds)
}

func TestAuthenticatedDo_RefreshFailureIsTerminal(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		apiStatus:     []int{http.StatusUnauthorized},
		refreshStatus: http.StatusUnauthorized,
	}
	client, creds := newFetchFixture(t, api)
	seedTokens(t, creds, "A1", "R-dead")

	_, err := client.AuthenticatedDo(context.Background(), http.MethodGet, "/v1/games", nil, nil)
	require.Equal(t, KindTokenRefreshFailed, KindOf(err))

	// Original plus the one failed refresh, no retry.
	require.EqualValues(t, 2, api.totalCalls.Load())
	require.EqualValues(t, 1, api.apiCalls.Load())

	requireNothingStored(t, creds)
}

func TestAuthenticatedDo_RetryResendsBody(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		apiStatus:     []int{http.StatusUnauthorized, http.StatusOK},
		refreshStatus: http.StatusOK,
	}
	client, creds := newFetchFixture(t, api)
	seedTokens(t, creds, "A1", "R")

	body := []byte(`{"move":"e2e4"}`)
	resp, err := client.AuthenticatedDo(context.Background(), http.MethodPost, "/v1/games", body, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// The retried request must carry the original body again.
	require.Equal(t, `{"move":"e2e4"}`, api.lastBody.Load())
}
