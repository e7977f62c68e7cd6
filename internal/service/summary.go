package service

import (
	"context"

	"turnboard/internal/models"
)

// TechStats is one technician's line in the end-of-day report. Catalog
// technicians who never clocked in appear with zeroes and a nil row number.
type TechStats struct {
	TechAlias                string `json:"tech_alias"`
	TechName                 string `json:"tech_name"`
	RowNumber                *int   `json:"row_number"`
	TotalValueWithoutPenalty int    `json:"total_value_without_penalty"`
	TotalValueWithPenalty    int    `json:"total_value_with_penalty"`
	PenaltyCount             int    `json:"penalty_count"`
	RegularTurns             int    `json:"regular_turns"`
	BonusTurns               int    `json:"bonus_turns"`
	IsAbsent                 bool   `json:"is_absent"`
}

// Summary is the aggregate end-of-day report for a date. A flagged seating
// contributes max(0, value-3) to the penalty-adjusted total.
type Summary struct {
	Date                    string        `json:"date"`
	Status                  models.Status `json:"status"`
	TechStats               []TechStats   `json:"tech_stats"`
	AllSeatingsClosed       bool          `json:"all_seatings_closed"`
	NewDayChecklistComplete bool          `json:"new_day_checklist_complete"`
	EndDayChecklistComplete bool          `json:"end_day_checklist_complete"`
}

// Summary builds the end-of-day report for a date.
func (s *Service) Summary(ctx context.Context, date string) (*Summary, error) {
	day, err := s.store.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.buildSummary(day), nil
}

func (s *Service) buildSummary(day *models.Day) *Summary {
	sum := &Summary{
		Date:                    day.Date,
		Status:                  day.Status,
		AllSeatingsClosed:       true,
		NewDayChecklistComplete: models.ChecklistComplete(day.NewDayChecklist),
		EndDayChecklistComplete: models.ChecklistComplete(day.EndDayChecklist),
	}

	// Clocked-out rows are left out of the report entirely.
	byAlias := make(map[string]*models.Row, len(day.Rows))
	for _, row := range day.Rows {
		if row.IsActive {
			byAlias[row.TechAlias] = row
		}
	}

	techs, err := s.catalog.ListTechnicians()
	if err != nil {
		s.log.Warn().Err(err).Msg("summary: listing technicians failed")
	}

	seen := make(map[string]bool, len(techs))
	for _, tech := range techs {
		seen[tech.Alias] = true
		sum.TechStats = append(sum.TechStats, buildTechStats(tech.Alias, tech.Name, byAlias[tech.Alias], &sum.AllSeatingsClosed))
	}
	// Rows whose technician has since left the catalog still count.
	for _, row := range day.Rows {
		if row.IsActive && !seen[row.TechAlias] {
			sum.TechStats = append(sum.TechStats, buildTechStats(row.TechAlias, row.TechName, row, &sum.AllSeatingsClosed))
		}
	}
	return sum
}

func buildTechStats(alias, name string, row *models.Row, allClosed *bool) TechStats {
	if row == nil {
		return TechStats{TechAlias: alias, TechName: name, IsAbsent: true}
	}
	n := row.RowNumber
	ts := TechStats{
		TechAlias:    alias,
		TechName:     row.TechName,
		RowNumber:    &n,
		RegularTurns: row.RegularTurns,
		BonusTurns:   row.BonusTurns,
	}
	for _, seating := range row.Seatings {
		if seating.Value == 0 {
			*allClosed = false
		}
		ts.TotalValueWithoutPenalty += seating.Value
		if seating.HasValuePenalty {
			ts.PenaltyCount++
			adjusted := seating.Value - 3
			if adjusted < 0 {
				adjusted = 0
			}
			ts.TotalValueWithPenalty += adjusted
		} else {
			ts.TotalValueWithPenalty += seating.Value
		}
	}
	return ts
}
