package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/caferp/models"
	"github.com/ray-remotestate/caferp/service/user"
)

type UserHandler struct {
	svc user.IService
}

func NewUserHandler(svc user.IService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string      `json:"name"`
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.svc.Create(r.Context(), input.Name, input.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	var input struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.svc.ChangeRole(r.Context(), id, input.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
