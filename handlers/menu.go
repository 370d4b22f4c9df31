package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/caferp/models"
	"github.com/ray-remotestate/caferp/service/menu"
)

type MenuHandler struct {
	svc menu.IService
}

func NewMenuHandler(svc menu.IService) *MenuHandler {
	return &MenuHandler{svc: svc}
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input menu.CreateMenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.svc.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyAvailable := r.URL.Query().Get("available") == "true"

	items, err := h.svc.List(r.Context(), onlyAvailable)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item id"})
		return
	}

	var patch models.MenuItemPatch
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&patch); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid patch: " + err.Error()})
		return
	}

	item, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}
