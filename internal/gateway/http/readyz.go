package http

import (
	"net/http"
	"time"

	"github.com/movevote/movevote/pkg/httpx"
)

// handleReadyz reports readiness. The gateway cannot verify tokens until
// the JWKS cache holds at least one key.
func (r *Router) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]string{"jwks": "ok"}
	status := http.StatusOK
	overall := "ok"

	if !r.keys.IsReady() {
		checks["jwks"] = "empty"
		status = http.StatusServiceUnavailable
		overall = "unavailable"
	}

	httpx.WriteJSON(w, status, HealthResponse{
		Status:  overall,
		Uptime:  time.Since(r.startTime).Round(time.Second).String(),
		Version: r.buildVersion,
		Checks:  checks,
	})
}
