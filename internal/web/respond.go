package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/prudhvinik1/statusboard/internal/services"
	"github.com/prudhvinik1/statusboard/internal/utils"
	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service sentinels to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var storeErr *services.StoreError
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrInvalidStatus), errors.Is(err, utils.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, services.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &storeErr):
		logrus.WithError(err).Warn("status store unavailable")
		writeError(w, http.StatusServiceUnavailable, "status store unavailable")
	default:
		logrus.WithError(err).Error("unhandled internal server error")
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}
