package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/statusboard/internal/models"
)

type statusRequest struct {
	Status  string `json:"status"`
	Message string `json:"custom_message"`
}

func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	records, err := s.statuses.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	record, err := s.statuses.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handlePutMyStatus replaces the caller's status and message. Omitting
// custom_message clears it.
func (s *Server) handlePutMyStatus(w http.ResponseWriter, r *http.Request) {
	info := authFrom(r.Context())

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	record, err := s.statuses.Upsert(r.Context(), info.claims.AccountID.String(), models.StatusUpdate{
		Status:  status,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
