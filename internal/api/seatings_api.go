package api

import (
	"net/http"

	"turnboard/internal/metrics"
	"turnboard/internal/service"
)

// CreateSeatingRequest is the request body for POST .../seatings.
type CreateSeatingRequest struct {
	TechAlias   string `json:"tech_alias"`
	Service     string `json:"service"`
	IsRequested bool   `json:"is_requested"`
}

// UpdateSeatingRequest is the partial patch accepted by PUT .../seatings/{id}.
// Omitted fields are left unchanged.
type UpdateSeatingRequest struct {
	Value           *int    `json:"value,omitempty"`
	HasValuePenalty *bool   `json:"has_value_penalty,omitempty"`
	IsRequested     *bool   `json:"is_requested,omitempty"`
	Service         *string `json:"service,omitempty"`
	ShortName       *string `json:"short_name,omitempty"`
	TimeNeeded      *int    `json:"time_needed,omitempty"`
}

// handleCreateSeating appends an open seating to the technician's row.
// POST /api/days/{date}/seatings
func (s *HTTPServer) handleCreateSeating(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_seating")

	var req CreateSeatingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TechAlias == "" || req.Service == "" {
		writeError(w, http.StatusBadRequest, "tech_alias and service are required")
		return
	}

	day, err := s.svc.CreateSeating(r.Context(), r.PathValue("date"), req.TechAlias, req.Service, req.IsRequested)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

// handleUpdateSeating patches a seating (close it, flag a penalty, change
// service or timing).
// PUT /api/days/{date}/seatings/{seatingID}
func (s *HTTPServer) handleUpdateSeating(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("update_seating")

	var req UpdateSeatingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	day, err := s.svc.UpdateSeating(r.Context(), r.PathValue("date"), r.PathValue("seatingID"), service.UpdateSeatingInput{
		Value:           req.Value,
		HasValuePenalty: req.HasValuePenalty,
		IsRequested:     req.IsRequested,
		Service:         req.Service,
		ShortName:       req.ShortName,
		TimeNeeded:      req.TimeNeeded,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleDeleteSeating removes a seating from its row.
// DELETE /api/days/{date}/seatings/{seatingID}
func (s *HTTPServer) handleDeleteSeating(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_seating")

	day, err := s.svc.DeleteSeating(r.Context(), r.PathValue("date"), r.PathValue("seatingID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}
