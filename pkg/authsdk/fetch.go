package authsdk

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// AuthenticatedDo issues an API request with the stored access token as a
// bearer header. On a 401 it refreshes the token and retries the request
// exactly once; any other response, success or not, passes through
// untouched. Business-level error bodies are never interpreted here.
//
// The terminal failure kinds (NoRefreshToken, TokenRefreshFailed,
// AuthenticationFailedAfterRefresh) all clear the credential store before
// returning: stale credentials never survive an unrecoverable
// authentication failure.
func (c *Client) AuthenticatedDo(
	ctx context.Context,
	method, path string,
	body []byte,
	header http.Header,
) (*http.Response, error) {
	access, err := c.creds.AccessToken(ctx)
	if err != nil {
		return nil, newError(KindNoAccessToken, 0, "read access token", err)
	}
	if access == "" {
		// Fail before any network call is made.
		return nil, newError(KindNoAccessToken, 0, "", nil)
	}

	resp, err := c.send(ctx, method, path, body, header, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	refresh, err := c.creds.RefreshToken(ctx)
	if err != nil || refresh == "" {
		c.Logout(ctx)
		return nil, newError(KindNoRefreshToken, 0, "", err)
	}

	if _, err := c.Refresh(ctx, refresh); err != nil {
		// One refresh attempt only, never recurse.
		c.Logout(ctx)
		return nil, newError(KindTokenRefreshFailed, 0, "", err)
	}

	// Refresh persisted the new token; re-read it so the retry and any
	// concurrent caller agree on what is stored.
	access, err = c.creds.AccessToken(ctx)
	if err != nil || access == "" {
		c.Logout(ctx)
		return nil, newError(KindTokenRefreshFailed, 0, "read refreshed access token", err)
	}

	retry, err := c.send(ctx, method, path, body, header, access)
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		drain(retry)
		c.Logout(ctx)
		return nil, newError(KindAuthFailedAfterRefresh, http.StatusUnauthorized, "", nil)
	}

	return retry, nil
}

// send builds and issues one attempt. Caller headers are merged first so
// the bearer header wins on Authorization but clobbers nothing else.
func (c *Client) send(
	ctx context.Context,
	method, path string,
	body []byte,
	header http.Header,
	accessToken string,
) (*http.Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, newError(KindUnknown, 0, "build request", err)
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetworkUnreachable, 0, "", err)
	}

	return resp, nil
}

// drain discards a response we will not return to the caller.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
