package authsdk

import (
	"context"
	"net/http"
	"strings"
)

// Login authenticates with email and password. On success the access
// token, refresh token and user record are persisted, in that order,
// before the call returns. No failure path writes anything.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	resp, err := c.postJSON(ctx, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	body := readBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, classifyAuthFailure(resp, body)
	}

	var payload AuthPayload
	if err := decodeSuccess(body, &payload); err != nil {
		return nil, err
	}

	if err := c.persistPayload(ctx, payload); err != nil {
		return nil, err
	}

	return &payload, nil
}

// Register creates an account and signs it in. The display username is
// derived from the email's local part when the caller supplies none. A
// 409 from the provider means the email is already registered.
func (c *Client) Register(ctx context.Context, email, password, username string) (*AuthPayload, error) {
	if username == "" {
		username = usernameFromEmail(email)
	}

	resp, err := c.postJSON(ctx, "/auth/register", registerRequest{
		Email:    email,
		Password: password,
		Username: username,
	})
	if err != nil {
		return nil, err
	}
	body := readBody(resp)

	if resp.StatusCode == http.StatusConflict {
		return nil, newError(KindEmailAlreadyRegistered, resp.StatusCode, "", nil)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, classifyAuthFailure(resp, body)
	}

	var payload AuthPayload
	if err := decodeSuccess(body, &payload); err != nil {
		return nil, err
	}

	if err := c.persistPayload(ctx, payload); err != nil {
		return nil, err
	}

	return &payload, nil
}

// Logout purges all stored credentials. Idempotent, performs no network
// I/O: server-side revocation is the identity provider's concern.
func (c *Client) Logout(ctx context.Context) {
	_ = c.creds.ClearAll(ctx)
}

// Refresh exchanges the refresh token for a new access token and persists
// it before returning. The refresh token itself is not rotated. A 401
// means the refresh token is dead and the caller must re-authenticate.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	resp, err := c.postJSON(ctx, "/auth/refresh", refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, newError(KindRefreshFailed, 0, "", err)
	}
	body := readBody(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, newError(KindRefreshTokenInvalid, resp.StatusCode, "", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(KindRefreshFailed, resp.StatusCode, "", nil)
	}

	var result RefreshResult
	if err := decodeSuccess(body, &result); err != nil {
		return nil, newError(KindRefreshFailed, resp.StatusCode, "", err)
	}

	if err := c.creds.SetAccessToken(ctx, result.AccessToken); err != nil {
		return nil, newError(KindRefreshFailed, 0, "persist access token", err)
	}

	return &result, nil
}

// RequestPasswordReset asks the provider to send a confirmation code.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, "/auth/password-reset", passwordResetRequest{Email: email})
	if err != nil {
		return err
	}
	body := readBody(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return classifyAuthFailure(resp, body)
	}
	return nil
}

// ConfirmPasswordReset completes a reset with the emailed code. A rejected
// or expired code maps to its own kind so the UI can prompt for re-entry.
func (c *Client) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	resp, err := c.postJSON(ctx, "/auth/password-reset/confirm", passwordResetConfirmRequest{
		Email:            email,
		ConfirmationCode: code,
		NewPassword:      newPassword,
	})
	if err != nil {
		return err
	}
	body := readBody(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusBadRequest, http.StatusGone:
		return newError(KindInvalidOrExpiredCode, resp.StatusCode, "", nil)
	default:
		return classifyAuthFailure(resp, body)
	}
}

// persistPayload writes the credential record in the order callers may
// observe it: access token first, then refresh token, then the user
// snapshot. All three are durable before the login/register call returns.
func (c *Client) persistPayload(ctx context.Context, payload AuthPayload) error {
	if err := c.creds.SetAccessToken(ctx, payload.AccessToken); err != nil {
		return newError(KindUnknown, 0, "persist access token", err)
	}
	if err := c.creds.SetRefreshToken(ctx, payload.RefreshToken); err != nil {
		return newError(KindUnknown, 0, "persist refresh token", err)
	}
	if err := c.creds.SetUser(ctx, payload.userRecord()); err != nil {
		return newError(KindUnknown, 0, "persist user record", err)
	}
	return nil
}

// usernameFromEmail derives a display username from the local part of an
// email address.
func usernameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}
