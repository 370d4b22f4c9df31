package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/caferp/models"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logrus.WithError(err).Error("failed to encode response")
		}
	}
}

// respondError maps the service error taxonomy onto HTTP statuses:
// validation failures are the caller's fault, missing ids are 404 and
// everything else is a server error.
func respondError(w http.ResponseWriter, err error) {
	var vErr models.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
		return
	}

	var nfErr models.NotFoundError
	if errors.As(err, &nfErr) {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": nfErr.Error()})
		return
	}

	logrus.WithError(err).Error("request failed")
	respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
