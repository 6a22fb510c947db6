package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/movevote/movevote/pkg/credstore"
)

// Client talks to the movevote identity API and persists the credentials
// it obtains through a credstore.Store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *credstore.Store
}

// NewClient creates a session client for the API at baseURL. A nil creds
// store runs the client detached (nothing persists between calls).
func NewClient(baseURL string, creds *credstore.Store) *Client {
	if creds == nil {
		creds = credstore.Detached()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		creds: creds,
	}
}

// Credentials exposes the underlying store, mainly for callers that show
// the stored user record without a network round trip.
func (c *Client) Credentials() *credstore.Store { return c.creds }

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// postJSON sends a JSON body and returns the raw response. A transport
// failure (no HTTP response at all) is re-expressed as NetworkUnreachable,
// callers never see the raw transport error.
func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("authsdk: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("authsdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetworkUnreachable, 0, "", err)
	}

	return resp, nil
}

// readBody drains and closes the response body.
func readBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return body
}

// classifyAuthFailure maps a non-success provider response onto the
// shared error taxonomy. Operation-specific statuses (409 on register,
// 400/410 on reset confirmation) are handled by the callers before this
// fallback runs.
func classifyAuthFailure(resp *http.Response, body []byte) *Error {
	var provider providerError
	_ = json.Unmarshal(body, &provider)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return newError(KindInvalidCredentials, resp.StatusCode, provider.text(), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return newError(KindRateLimited, resp.StatusCode, provider.text(), nil)
	case resp.StatusCode >= 500:
		return newError(KindServerUnavailable, resp.StatusCode, provider.text(), nil)
	default:
		return newError(KindUnknown, resp.StatusCode, provider.text(), nil)
	}
}

// decodeSuccess unmarshals a success body into target.
func decodeSuccess(body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return newError(KindUnknown, 0, "malformed provider response", err)
	}
	return nil
}
