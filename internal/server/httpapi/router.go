// Package httpapi exposes the server's JSON API and the SSE change feed
// over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gateflow/gateflow/internal/logging"
	sc "github.com/gateflow/gateflow/internal/server/config"
	"github.com/gateflow/gateflow/internal/server/feed"
	"github.com/gateflow/gateflow/internal/server/services"
)

type Handler struct {
	config      *sc.Config
	vehicles    *services.VehicleService
	attachments *services.AttachmentService
	hub         *feed.Hub
	logger      logging.Logger
}

func NewHandler(config *sc.Config, vehicles *services.VehicleService, attachments *services.AttachmentService, hub *feed.Hub, logger logging.Logger) *Handler {
	return &Handler{
		config:      config,
		vehicles:    vehicles,
		attachments: attachments,
		hub:         hub,
		logger:      logger,
	}
}

// Router assembles the route tree. All /api/v1 routes sit behind the API
// key check and the per-client rate limiter; /healthz stays open so load
// balancers and the stations' connectivity probes can reach it.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(h.config.APIKey))
		r.Use(RateLimit(h.config.RateLimitRPS, h.config.RateLimitBurst))

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleInsert)
			r.Get("/feed", h.handleFeed)
			r.Get("/{id}", h.handleGet)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)

			r.Post("/{id}/attachments", h.handleAttachmentUpload)
			r.Get("/{id}/attachments/url", h.handleAttachmentDownload)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
