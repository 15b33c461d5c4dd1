package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/irrigation-server/pkg/utils"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func NewHandler(controller Controller, originPatterns []string) *Handler {
	return &Handler{
		controller,
		originPatterns,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/status", h.handlerStatusGet)
	mux.HandleFunc("GET /v1/status/reset", h.handlerResetGet)
	mux.HandleFunc("/v1/status/ws", h.handleStatusWS)
}

func (h *Handler) handlerStatusGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerStatusGet")

	utils.RespondWithJSON(w, http.StatusOK, h.controller.Status())
}

// handlerResetGet reports how long until the tick counters are next zeroed.
func (h *Handler) handlerResetGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerResetGet")

	utils.RespondWithJSON(w, http.StatusOK, ResetResponse{DaysBeforeReset: h.controller.Status().DaysBeforeReset})
}

func (h *Handler) handleStatusWS(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleWS: new incoming connection")
	defer slog.Debug("<<handleWS")

	opts := &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("websocket accept error:", "error", err)
		return
	}

	defer c.Close(websocket.StatusInternalError, "Unexpected connection close")

	ctx := c.CloseRead(r.Context())

	h.monitorStatus(ctx, c)
}

func (h *Handler) monitorStatus(ctx context.Context, c *websocket.Conn) {
	slog.Debug(">>monitorStatus")
	defer slog.Debug("<<monitorStatus")

	ticker := time.NewTicker(STATUS_INTERVAL_SECONDS * time.Second)
	heartbeatTicker := time.NewTicker(HEARTBEAT_INTERVAL_SECONDS * time.Second)
	defer ticker.Stop()
	defer heartbeatTicker.Stop()

	// send the current state right away instead of waiting a full tick
	if err := wsjson.Write(ctx, c, h.controller.Status()); err != nil {
		slog.Error("monitorStatus: error writing to client", "error", err)
		c.Close(websocket.StatusInternalError, "error writing status")
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitorStatus: client disconnected")
			c.Close(websocket.StatusNormalClosure, "Connection closed")
			return

		case <-ticker.C:
			err := wsjson.Write(ctx, c, h.controller.Status())
			if err != nil {
				slog.Error("monitorStatus: error writing to client", "error", err)
				c.Close(websocket.StatusInternalError, "error writing status")
				return
			}

		case <-heartbeatTicker.C:
			err := c.Ping(ctx)
			if err != nil {
				slog.Error("monitorStatus: error sending ping", "error", err)
				c.Close(websocket.StatusInternalError, "error sending ping")
				return
			}
		}
	}
}
