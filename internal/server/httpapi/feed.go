package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleFeed streams vehicle changes as server-sent events. Each change is
// one "data:" frame; comment frames go out every FeedKeepalive to hold
// idle connections open through proxies.
func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse("streaming unsupported"))
		return
	}

	events, cancel := h.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := h.config.FeedKeepalive
	if keepalive <= 0 {
		keepalive = 25 * time.Second
	}
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	ctx := r.Context()
	h.logger.Debug(ctx, "feed subscriber connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug(ctx, "feed subscriber disconnected", "remote", r.RemoteAddr)
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				// The hub dropped us for falling behind; the client
				// reconnects and re-syncs.
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error(ctx, "encoding change event", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
