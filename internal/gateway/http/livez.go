package http

import (
	"net/http"
	"time"

	"github.com/movevote/movevote/pkg/httpx"
)

// HealthResponse is shared by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// handleLivez reports process liveness.
func (r *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(r.startTime).Round(time.Second).String(),
		Version: r.buildVersion,
	})
}
