package authsdk

import "github.com/movevote/movevote/pkg/credstore"

// AuthPayload is the success response for login and registration.
type AuthPayload struct {
	// AccessToken is the short-lived JWT presented on API calls. Opaque
	// to the client, never parsed here.
	AccessToken string `json:"accessToken"`

	// RefreshToken is the long-lived credential used only to mint new
	// access tokens.
	RefreshToken string `json:"refreshToken"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn"`

	// UserID, Email and Username form the identity snapshot kept for
	// display.
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// userRecord extracts the storable identity snapshot.
func (p AuthPayload) userRecord() credstore.UserRecord {
	return credstore.UserRecord{
		UserID:   p.UserID,
		Email:    p.Email,
		Username: p.Username,
	}
}

// RefreshResult is the success response for a token refresh. The refresh
// token itself is not rotated in this flow.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmationCode"`
	NewPassword      string `json:"newPassword"`
}

// providerError is the error body shape the identity API uses. Both field
// names are seen in the wild, message wins when present.
type providerError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e providerError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
