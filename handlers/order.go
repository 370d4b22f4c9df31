package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/caferp/models"
	"github.com/ray-remotestate/caferp/service/order"
)

type OrderHandler struct {
	svc order.IService
}

func NewOrderHandler(svc order.IService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	read, err := h.svc.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, read)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	read, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, read)
}

// Update applies a sparse patch. The decoder rejects unknown fields so
// anything outside the five patchable ones is a hard validation failure.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var patch models.OrderPatch
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&patch); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid patch: " + err.Error()})
		return
	}

	read, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, read)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !deleted {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}

	reads, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reads)
}

func parseOrderFilter(r *http.Request) (models.OrderFilter, error) {
	var filter models.OrderFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := models.OrderStatus(v)
		if !status.Valid() {
			return filter, models.ValidationError{Field: "status", Reason: "unknown status " + strconv.Quote(v)}
		}
		filter.Status = &status
	}
	var err error
	if filter.DateFrom, err = parseTimeParam(q.Get("date_from"), "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseTimeParam(q.Get("date_to"), "date_to"); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseIntParam(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = parseIntParam(q.Get("offset"), "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseTimeParam(v, field string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, models.ValidationError{Field: field, Reason: "must be an RFC3339 timestamp"}
	}
	return &t, nil
}

func parseIntParam(v, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, models.ValidationError{Field: field, Reason: "must be a non-negative integer"}
	}
	return n, nil
}
