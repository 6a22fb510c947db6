/*
Package authsdk is the client side of the movevote session lifecycle. It
talks to the identity API for login, registration, token refresh and
password reset, persists the resulting credentials through a
credstore.Store, and exposes AuthenticatedDo for making API calls that
transparently recover from an expired access token.

# Client

Construct a Client with the API base URL and a credential store:

	creds := credstore.New(backend)
	client := authsdk.NewClient("https://api.movevote.example", creds)

	payload, err := client.Login(ctx, "a@example.com", "Password1")

A successful login persists the access token, refresh token and user
record before it returns; a failed login persists nothing.

# Authenticated requests

AuthenticatedDo attaches the stored access token as a bearer header and,
on a 401, refreshes the token and retries the request exactly once:

	resp, err := client.AuthenticatedDo(ctx, http.MethodGet, "/v1/games", nil, nil)

The single-retry bound is deliberate. If the retry is still unauthorized,
or the refresh itself fails, the stored credentials are cleared and the
caller gets a terminal error kind telling it to re-authenticate. There is
never a second refresh attempt, so a misbehaving provider cannot trap the
client in a refresh loop.

# Errors

Every failure surfaces as an *Error with a machine-readable Kind. Callers
never see raw transport errors:

	if authsdk.KindOf(err) == authsdk.KindInvalidCredentials {
		// show the login form again
	}
*/
package authsdk
