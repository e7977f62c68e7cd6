package models

// ServiceInfo is the catalog snapshot the day core needs for a service.
type ServiceInfo struct {
	Name       string `json:"name"`
	TimeNeeded int    `json:"time_needed"`
	ShortName  string `json:"short_name"`
	IsBonus    bool   `json:"is_bonus"`
	IsDefault  bool   `json:"is_default"`
}

// Technician is a catalog entry referenced from rows by alias.
type Technician struct {
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// ServiceLookup resolves a service by name. The boolean is false when the
// service is unknown (deleted from the catalog or never existed).
type ServiceLookup interface {
	Service(name string) (ServiceInfo, bool)
}

// SkillLookup answers whether a technician can perform a service.
type SkillLookup interface {
	HasSkill(techAlias, serviceName string) bool
}

// RecomputeTurns reclassifies every seating of a row and refreshes the
// derived turn counts. It is a full pass, not an incremental update, so the
// counts stay consistent after edits that change is_requested or service.
//
// Requested seatings alternate by order: 1st requested = regular,
// 2nd = bonus, 3rd = regular, and so on. Walk-ins follow the service's
// is_bonus flag resolved live from the catalog; a vanished service counts
// as regular.
func RecomputeTurns(row *Row, services ServiceLookup) {
	requestedSeen := 0
	regular, bonus := 0, 0
	for i := range row.Seatings {
		s := &row.Seatings[i]
		if s.IsRequested {
			s.IsBonus = requestedSeen%2 == 1
			requestedSeen++
		} else if svc, ok := services.Service(s.Service); ok {
			s.IsBonus = svc.IsBonus
		} else {
			s.IsBonus = false
		}
		if s.IsBonus {
			bonus++
		} else {
			regular++
		}
	}
	row.RegularTurns = regular
	row.BonusTurns = bonus
}
