package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type downloadResponse struct {
	URL string `json:"url"`
}

// handleAttachmentUpload issues a presigned PUT URL for a new document
// tied to a vehicle record. The station uploads directly to object
// storage and then records the returned key on the vehicle.
func (h *Handler) handleAttachmentUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.vehicles.GetByID(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	key, url, err := h.attachments.GetPresignedPutUrl(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Key: key, URL: url})
}

// handleAttachmentDownload issues a presigned GET URL for a previously
// uploaded document key.
func (h *Handler) handleAttachmentDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("key query parameter is required"))
		return
	}

	url, err := h.attachments.GetPresignedGetUrl(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{URL: url})
}
