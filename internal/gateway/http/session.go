package http

import (
	"net/http"

	"github.com/movevote/movevote/pkg/httpx"
)

// SessionResponse describes the verified caller.
type SessionResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// handleSession returns the principal the authn boundary attached. It is
// the whoami endpoint clients use to validate a stored session.
func (r *Router) handleSession(w http.ResponseWriter, req *http.Request) {
	principal, ok := httpx.PrincipalFromContext(req.Context())
	if !ok {
		// Route misconfiguration: the authn middleware did not run.
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SessionResponse{
		UserID:   principal.Subject,
		Email:    principal.Email,
		Username: principal.Username,
	})
}
