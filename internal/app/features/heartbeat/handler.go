// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/classhub/internal/app/notifyflow"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler answers the periodic poll student pages send while open.
type Handler struct {
	Notify *notifyflow.Flow
	Log    *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(gw notifyflow.Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Notify: notifyflow.New(gw, logger),
		Log:    logger,
	}
}

// heartbeatResponse is the JSON body of the poll reply.
type heartbeatResponse struct {
	Unread int      `json:"unread"`
	Alerts []string `json:"alerts"`
}

// ServeHeartbeat handles GET /api/heartbeat.
// Students get their unread notification count and alert lines. Anyone
// else, and any backend failure, gets an empty reply so the page script
// never shows an error.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	resp := heartbeatResponse{Alerts: []string{}}

	if mssv, ok := authz.StudentMSSV(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		view, err := h.Notify.Load(ctx, mssv)
		if err != nil {
			h.Log.Debug("heartbeat notification load failed", zap.String("mssv", mssv), zap.Error(err))
		} else if view.UnreadCount() > 0 {
			resp.Unread = view.UnreadCount()
			resp.Alerts = view.Alerts
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Log.Warn("heartbeat encode failed", zap.Error(err))
	}
}
