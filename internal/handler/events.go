package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mkowalczyk/triplog/internal/middleware"
	"github.com/mkowalczyk/triplog/internal/service"
)

// heartbeatInterval keeps idle SSE connections from being reaped by proxies.
const heartbeatInterval = 25 * time.Second

// StreamEvents handles GET /events as a Server-Sent Events stream. A client
// holding the stream open gets a "change" event whenever its trip set is
// modified, and re-queries the list endpoints in response. Bursts of writes
// are coalesced upstream, so one edit session produces one event.
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	email := middleware.UserEmail(r.Context())
	events, cancel := s.events.Subscribe(service.TripsTopic(email))
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: {\"at\":%q}\n\n", ev.At.UTC().Format(time.RFC3339))
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
