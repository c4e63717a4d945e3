package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

type TablesResponse struct {
	CountTables int `json:"countTables"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handlers) TablesHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.TablesService.GetCountTablesDB(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, TablesResponse{count}, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.TablesService.Health(r.Context()); err != nil {
		log.Warnf("[health] database unavailable: %v", err)
		WriteSuccess(w, HealthResponse{Status: "unavailable"}, http.StatusServiceUnavailable)
		return
	}

	WriteSuccess(w, HealthResponse{Status: "ok"}, http.StatusOK)
}
