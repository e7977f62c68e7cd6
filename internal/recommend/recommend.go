// Package recommend ranks technicians for the next assignment using the
// 4-priority algorithm: availability and skill act as filters, then surviving
// rows sort by turn balance with row number as the tie breaker.
package recommend

import (
	"math"
	"sort"
	"time"

	"turnboard/internal/models"
)

// AvailabilityThreshold is the minimum elapsed-time ratio an open seating
// must reach before its technician counts as available again. Inclusive.
const AvailabilityThreshold = 0.70

// TurnType selects which turn count drives the ranking.
type TurnType string

const (
	TurnRegular TurnType = "regular"
	TurnBonus   TurnType = "bonus"
)

// Options are the caller's knobs for one recommendation query.
type Options struct {
	// Service optionally filters by required skill and supplies a fallback
	// duration for open seatings whose own service is unknown.
	Service string
	// TurnType picks the turn count used for ranking; regular by default.
	TurnType TurnType
	// SkipSkillCheck disables the skill filter entirely.
	SkipSkillCheck bool
}

// Catalog is the read-only port the engine needs.
type Catalog interface {
	models.ServiceLookup
	models.SkillLookup
}

// SeatingProgress reports how far along one open seating is, as a percentage
// rounded to one decimal.
type SeatingProgress struct {
	SeatingID  string  `json:"seating_id"`
	Percentage float64 `json:"percentage"`
}

// AvailabilityCheck is the priority-1 diagnostic.
type AvailabilityCheck struct {
	Passed                bool              `json:"passed"`
	Reason                string            `json:"reason"`
	OpenSeatings          int               `json:"open_seatings"`
	TimePassedPercentages []SeatingProgress `json:"time_passed_percentages"`
}

// SkillCheck is the priority-2 diagnostic. HasSkill is nil when the check
// was skipped.
type SkillCheck struct {
	Passed   bool   `json:"passed"`
	Reason   string `json:"reason"`
	HasSkill *bool  `json:"has_skill"`
}

// TurnBalanceCheck is the priority-3 diagnostic.
type TurnBalanceCheck struct {
	RequestedTurnType TurnType `json:"requested_turn_type"`
	RegularTurns      int      `json:"regular_turns"`
	BonusTurns        int      `json:"bonus_turns"`
	TurnCountUsed     int      `json:"turn_count_used"`
}

// RowPriorityCheck is the priority-4 diagnostic.
type RowPriorityCheck struct {
	RowNumber int `json:"row_number"`
}

// PriorityChecks bundles the full reasoning behind one recommendation.
type PriorityChecks struct {
	Availability AvailabilityCheck `json:"availability"`
	Skill        SkillCheck        `json:"skill"`
	TurnBalance  TurnBalanceCheck  `json:"turn_balance"`
	RowPriority  RowPriorityCheck  `json:"row_priority"`
}

// Recommendation is one ranked technician with its diagnostic breakdown.
type Recommendation struct {
	TechAlias      string         `json:"tech_alias"`
	TechName       string         `json:"tech_name"`
	RowNumber      int            `json:"row_number"`
	RegularTurns   int            `json:"regular_turns"`
	BonusTurns     int            `json:"bonus_turns"`
	PriorityChecks PriorityChecks `json:"priority_checks"`
}

// Recommend ranks the eligible rows of a day. Read-only and deterministic
// for a fixed now.
func Recommend(day *models.Day, opts Options, catalog Catalog, now time.Time) []Recommendation {
	if opts.TurnType == "" {
		opts.TurnType = TurnRegular
	}

	filterDuration := 0
	if opts.Service != "" {
		if svc, ok := catalog.Service(opts.Service); ok {
			filterDuration = svc.TimeNeeded
		}
	}

	recommendations := make([]Recommendation, 0, len(day.Rows))
	for _, row := range day.Rows {
		if !row.IsActive || row.IsOnBreak {
			continue
		}

		availability := checkAvailability(row, filterDuration, catalog, now)
		if !availability.Passed {
			continue
		}

		skill := SkillCheck{Passed: true, Reason: "Skill check skipped"}
		if !opts.SkipSkillCheck && opts.Service != "" {
			has := catalog.HasSkill(row.TechAlias, opts.Service)
			skill.Passed = has
			skill.HasSkill = &has
			if has {
				skill.Reason = "Has required skill"
			} else {
				skill.Reason = "Missing required skill"
			}
			if !has {
				continue
			}
		}

		turnCount := row.RegularTurns
		if opts.TurnType == TurnBonus {
			turnCount = row.BonusTurns
		}

		recommendations = append(recommendations, Recommendation{
			TechAlias:    row.TechAlias,
			TechName:     row.TechName,
			RowNumber:    row.RowNumber,
			RegularTurns: row.RegularTurns,
			BonusTurns:   row.BonusTurns,
			PriorityChecks: PriorityChecks{
				Availability: availability,
				Skill:        skill,
				TurnBalance: TurnBalanceCheck{
					RequestedTurnType: opts.TurnType,
					RegularTurns:      row.RegularTurns,
					BonusTurns:        row.BonusTurns,
					TurnCountUsed:     turnCount,
				},
				RowPriority: RowPriorityCheck{RowNumber: row.RowNumber},
			},
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		a, b := recommendations[i], recommendations[j]
		if a.PriorityChecks.TurnBalance.TurnCountUsed != b.PriorityChecks.TurnBalance.TurnCountUsed {
			return a.PriorityChecks.TurnBalance.TurnCountUsed < b.PriorityChecks.TurnBalance.TurnCountUsed
		}
		return a.RowNumber < b.RowNumber
	})

	return recommendations
}

// checkAvailability passes when the row has no open seating, or when every
// open seating has reached the elapsed-time threshold.
func checkAvailability(row *models.Row, filterDuration int, services models.ServiceLookup, now time.Time) AvailabilityCheck {
	check := AvailabilityCheck{TimePassedPercentages: []SeatingProgress{}}

	for i := range row.Seatings {
		s := &row.Seatings[i]
		if !s.IsOpen() {
			continue
		}
		check.OpenSeatings++

		ratio := elapsedRatio(s, filterDuration, services, now)
		check.TimePassedPercentages = append(check.TimePassedPercentages, SeatingProgress{
			SeatingID:  s.ID,
			Percentage: math.Round(ratio*1000) / 10,
		})
		if ratio < AvailabilityThreshold {
			check.Reason = "Has open seatings with <70% time passed"
		}
	}

	if check.OpenSeatings == 0 {
		check.Passed = true
		check.Reason = "No open seatings"
	} else if check.Reason == "" {
		check.Passed = true
		check.Reason = "All open seatings >70% time passed"
	}
	return check
}

// elapsedRatio resolves the seating's effective duration (per-seating
// override, else its own service's default, else the filter service's
// default) and returns elapsed/duration. Unknown durations or unparsable
// timestamps yield 0.0.
func elapsedRatio(s *models.Seating, filterDuration int, services models.ServiceLookup, now time.Time) float64 {
	duration := filterDuration
	if s.TimeNeeded != nil {
		duration = *s.TimeNeeded
	} else if s.Service != "" {
		if svc, ok := services.Service(s.Service); ok {
			duration = svc.TimeNeeded
		}
	}
	if duration <= 0 {
		return 0.0
	}
	started, ok := s.StartedAt()
	if !ok {
		return 0.0
	}
	return now.Sub(started).Minutes() / float64(duration)
}
