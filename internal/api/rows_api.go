package api

import (
	"net/http"
	"strconv"

	"turnboard/internal/metrics"
)

// ClockInRequest is the request body for POST .../rows/clock-in.
type ClockInRequest struct {
	TechAlias string `json:"tech_alias"`
	TechName  string `json:"tech_name,omitempty"`
}

// ClockOutRequest is the request body for POST .../rows/clock-out.
type ClockOutRequest struct {
	TechAlias string `json:"tech_alias"`
}

// ReorderRowsRequest is the request body for PUT .../rows/reorder.
type ReorderRowsRequest struct {
	TechAlias    string `json:"tech_alias"`
	NewRowNumber *int   `json:"new_row_number"`
}

// handleClockIn adds the technician to the queue or reactivates their row.
// POST /api/days/{date}/rows/clock-in
func (s *HTTPServer) handleClockIn(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("clock_in")

	var req ClockInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TechAlias == "" {
		writeError(w, http.StatusBadRequest, "tech_alias is required")
		return
	}

	day, err := s.svc.ClockIn(r.Context(), r.PathValue("date"), req.TechAlias, req.TechName)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleClockOut deactivates the technician's row.
// POST /api/days/{date}/rows/clock-out
func (s *HTTPServer) handleClockOut(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("clock_out")

	var req ClockOutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TechAlias == "" {
		writeError(w, http.StatusBadRequest, "tech_alias is required")
		return
	}

	day, err := s.svc.ClockOut(r.Context(), r.PathValue("date"), req.TechAlias)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleToggleBreak flips the break flag on a row.
// POST /api/days/{date}/rows/{rowNumber}/toggle-break
func (s *HTTPServer) handleToggleBreak(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("toggle_break")

	rowNumber, err := strconv.Atoi(r.PathValue("rowNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "row number must be an integer")
		return
	}

	day, err := s.svc.ToggleBreak(r.Context(), r.PathValue("date"), rowNumber)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleDeleteRow removes a row that has no open seatings.
// DELETE /api/days/{date}/rows/{rowNumber}
func (s *HTTPServer) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_row")

	rowNumber, err := strconv.Atoi(r.PathValue("rowNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "row number must be an integer")
		return
	}

	day, err := s.svc.DeleteRow(r.Context(), r.PathValue("date"), rowNumber)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleReorderRows moves a technician's row to a new position.
// PUT /api/days/{date}/rows/reorder
func (s *HTTPServer) handleReorderRows(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reorder_rows")

	var req ReorderRowsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TechAlias == "" || req.NewRowNumber == nil {
		writeError(w, http.StatusBadRequest, "tech_alias and new_row_number are required")
		return
	}

	day, err := s.svc.ReorderRows(r.Context(), r.PathValue("date"), req.TechAlias, *req.NewRowNumber)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}
