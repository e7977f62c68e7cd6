package models

import (
	"time"

	"github.com/google/uuid"
)

// Seating is one unit of assigned work within a technician's row.
// Value 0 means the seating is still open (not yet priced).
type Seating struct {
	ID              string `json:"id"`
	IsRequested     bool   `json:"is_requested"`
	IsBonus         bool   `json:"is_bonus"`
	Service         string `json:"service"`
	ShortName       string `json:"short_name"`
	TimeNeeded      *int   `json:"time_needed"`
	Time            string `json:"time"`
	Value           int    `json:"value"`
	HasValuePenalty bool   `json:"has_value_penalty"`
}

// NewSeating creates an open seating for a service. The timestamp is stored
// as timezone-aware RFC 3339 so clients parse it correctly across zones.
func NewSeating(service, shortName string, isRequested bool) Seating {
	return Seating{
		ID:          uuid.NewString(),
		IsRequested: isRequested,
		Service:     service,
		ShortName:   shortName,
		Time:        time.Now().Format(time.RFC3339),
	}
}

// IsOpen reports whether the seating is still unpriced.
func (s *Seating) IsOpen() bool { return s.Value == 0 }

// StartedAt parses the seating's creation timestamp. The boolean is false
// when the stored value cannot be parsed.
func (s *Seating) StartedAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
