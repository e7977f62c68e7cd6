package api

import (
	"fmt"
	"net/http"

	"turnboard/internal/metrics"
	"turnboard/internal/models"
	"turnboard/internal/recommend"
)

// CreateDayRequest is the request body for POST /api/days.
type CreateDayRequest struct {
	Date string `json:"date"` // Format: YYYY-MM-DD
}

// SecureDeleteRequest guards the irreversible delete endpoint.
type SecureDeleteRequest struct {
	Confirmation string `json:"confirmation"`
}

// ToggleChecklistRequest is the request body for POST .../checklist.
type ToggleChecklistRequest struct {
	ChecklistType string `json:"checklist_type"` // "new_day" or "end_day"
	Index         *int   `json:"index"`
}

// ChecklistsResponse carries both checklists of a day.
type ChecklistsResponse struct {
	NewDayChecklist []models.ChecklistItem `json:"new_day_checklist"`
	EndDayChecklist []models.ChecklistItem `json:"end_day_checklist"`
}

// RecommendResponse echoes the query alongside the ranked technicians.
type RecommendResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Service         string                     `json:"service"`
	TurnType        string                     `json:"turn_type"`
	SkipSkillCheck  bool                       `json:"skip_skill_check"`
}

// handleCreateDay creates a new empty day.
// POST /api/days
func (s *HTTPServer) handleCreateDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_day")

	var req CreateDayRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	day, err := s.svc.CreateDay(r.Context(), req.Date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

// handleListDays returns index metadata for all days.
// GET /api/days
func (s *HTTPServer) handleListDays(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_days")

	days, err := s.svc.ListDays(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// handleAvailableDates lists the dates that have a day file.
// GET /api/days/available-dates
func (s *HTTPServer) handleAvailableDates(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("available_dates")

	dates, err := s.svc.AvailableDates()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

// handleGetDay returns the full day aggregate.
// GET /api/days/{date}
func (s *HTTPServer) handleGetDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_day")

	day, err := s.svc.GetDay(r.Context(), r.PathValue("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleSecureDelete irreversibly erases a closed day.
// POST /api/days/{date}/secure-delete
func (s *HTTPServer) handleSecureDelete(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("secure_delete")

	var req SecureDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Confirmation != "DELETE" {
		writeError(w, http.StatusBadRequest, `confirmation required; send {"confirmation": "DELETE"}`)
		return
	}

	date := r.PathValue("date")
	if err := s.svc.SecureDelete(r.Context(), date); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("day %s has been securely deleted", date),
		"date":    date,
	})
}

// handleEndDay marks an open day as ended.
// POST /api/days/{date}/end-day
func (s *HTTPServer) handleEndDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("end_day")

	day, err := s.svc.EndDay(r.Context(), r.PathValue("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleCloseDay moves the day to its terminal status.
// POST /api/days/{date}/close-day
func (s *HTTPServer) handleCloseDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("close_day")

	day, err := s.svc.CloseDay(r.Context(), r.PathValue("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleUnfreeze reopens an ended day.
// POST /api/days/{date}/unfreeze
func (s *HTTPServer) handleUnfreeze(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("unfreeze")

	day, err := s.svc.Unfreeze(r.Context(), r.PathValue("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleSummary returns the end-of-day report.
// GET /api/days/{date}/summary
func (s *HTTPServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("summary")

	summary, err := s.svc.Summary(r.Context(), r.PathValue("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleSummaryExport downloads the end-of-day report as an xlsx workbook.
// GET /api/days/{date}/summary/export
func (s *HTTPServer) handleSummaryExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("summary_export")

	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	date := r.PathValue("date")
	summary, err := s.svc.Summary(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	data, err := s.exporter.WriteSummary(summary)
	if err != nil {
		s.log.Error().Err(err).Str("date", date).Msg("summary export failed")
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="summary_%s.xlsx"`, date))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleRecommend ranks technicians for the next assignment.
// GET /api/days/{date}/recommend?service=&turn_type=&skip_skill_check=
func (s *HTTPServer) handleRecommend(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("recommend")

	q := r.URL.Query()
	opts := recommend.Options{
		Service:        q.Get("service"),
		SkipSkillCheck: q.Get("skip_skill_check") == "true",
	}
	turnType := q.Get("turn_type")
	if turnType == "" {
		turnType = string(recommend.TurnRegular)
	}
	opts.TurnType = recommend.TurnType(turnType)

	recs, err := s.svc.Recommend(r.Context(), r.PathValue("date"), opts)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendResponse{
		Recommendations: recs,
		Service:         opts.Service,
		TurnType:        turnType,
		SkipSkillCheck:  opts.SkipSkillCheck,
	})
}

// handleGetChecklists returns both checklists of a day.
// GET /api/days/{date}/checklist
func (s *HTTPServer) handleGetChecklists(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_checklists")

	day, err := s.svc.GetDay(r.Context(), r.PathValue("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChecklistsResponse{
		NewDayChecklist: day.NewDayChecklist,
		EndDayChecklist: day.EndDayChecklist,
	})
}

// handleToggleChecklist flips one checklist item's completion.
// POST /api/days/{date}/checklist
func (s *HTTPServer) handleToggleChecklist(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("toggle_checklist")

	var req ToggleChecklistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ChecklistType == "" || req.Index == nil {
		writeError(w, http.StatusBadRequest, "checklist_type and index are required")
		return
	}

	day, err := s.svc.ToggleChecklistItem(r.Context(), r.PathValue("date"), req.ChecklistType, *req.Index)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChecklistsResponse{
		NewDayChecklist: day.NewDayChecklist,
		EndDayChecklist: day.EndDayChecklist,
	})
}
