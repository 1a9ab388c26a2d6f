package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

const maxBodyBytes = 1 << 20

func (h *Handler) handleInsert(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	if err := h.vehicles.Insert(r.Context(), rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if rec.ID != id {
		writeJSON(w, http.StatusBadRequest, errorResponse("record id does not match url"))
		return
	}

	var err error
	if r.URL.Query().Get("upsert") == "true" {
		err = h.vehicles.Upsert(r.Context(), rec)
	} else {
		err = h.vehicles.Update(r.Context(), rec)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.vehicles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.vehicles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.vehicles.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []model.VehicleRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (model.VehicleRecord, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var rec model.VehicleRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return model.VehicleRecord{}, false
	}
	return rec, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, common.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, common.ErrValidationRejected):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse(err.Error()))
	default:
		h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
