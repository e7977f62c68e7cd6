package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeTurns_RequestedAlternate(t *testing.T) {
	services := fakeServices{}
	row := &Row{
		Seatings: []Seating{
			NewSeating("Haircut", "HC", true),
			NewSeating("Haircut", "HC", true),
			NewSeating("Haircut", "HC", true),
			NewSeating("Haircut", "HC", true),
		},
	}

	RecomputeTurns(row, services)

	assert.False(t, row.Seatings[0].IsBonus)
	assert.True(t, row.Seatings[1].IsBonus)
	assert.False(t, row.Seatings[2].IsBonus)
	assert.True(t, row.Seatings[3].IsBonus)
	assert.Equal(t, 2, row.RegularTurns)
	assert.Equal(t, 2, row.BonusTurns)
}

func TestRecomputeTurns_WalkInsFollowCatalog(t *testing.T) {
	services := fakeServices{
		"Haircut": {Name: "Haircut", IsBonus: false},
		"Fringe":  {Name: "Fringe", IsBonus: true},
	}
	row := &Row{
		Seatings: []Seating{
			NewSeating("Haircut", "HC", false),
			NewSeating("Fringe", "FR", false),
			NewSeating("Vanished", "", false),
		},
	}

	RecomputeTurns(row, services)

	assert.False(t, row.Seatings[0].IsBonus)
	assert.True(t, row.Seatings[1].IsBonus)
	// unknown service counts as regular
	assert.False(t, row.Seatings[2].IsBonus)
	assert.Equal(t, 2, row.RegularTurns)
	assert.Equal(t, 1, row.BonusTurns)
}

func TestRecomputeTurns_WalkInsDoNotAdvanceAlternation(t *testing.T) {
	services := fakeServices{"Haircut": {Name: "Haircut", IsBonus: false}}
	row := &Row{
		Seatings: []Seating{
			NewSeating("Haircut", "HC", true),
			NewSeating("Haircut", "HC", false),
			NewSeating("Haircut", "HC", false),
			NewSeating("Haircut", "HC", true),
		},
	}

	RecomputeTurns(row, services)

	// the 2nd requested seating is bonus regardless of walk-ins in between
	assert.False(t, row.Seatings[0].IsBonus)
	assert.True(t, row.Seatings[3].IsBonus)
}

func TestRecomputeTurns_FullPassAfterEdit(t *testing.T) {
	services := fakeServices{"Haircut": {Name: "Haircut", IsBonus: false}}
	row := &Row{
		Seatings: []Seating{
			NewSeating("Haircut", "HC", true),
			NewSeating("Haircut", "HC", true),
		},
	}
	RecomputeTurns(row, services)
	assert.True(t, row.Seatings[1].IsBonus)

	// flipping the first seating to walk-in promotes the second to 1st requested
	row.Seatings[0].IsRequested = false
	RecomputeTurns(row, services)

	assert.False(t, row.Seatings[0].IsBonus)
	assert.False(t, row.Seatings[1].IsBonus)
	assert.Equal(t, 2, row.RegularTurns)
	assert.Equal(t, 0, row.BonusTurns)
}

func TestRecomputeTurns_CountsSumToSeatings(t *testing.T) {
	services := fakeServices{"Fringe": {Name: "Fringe", IsBonus: true}}
	row := &Row{
		Seatings: []Seating{
			NewSeating("Fringe", "FR", false),
			NewSeating("Fringe", "FR", true),
			NewSeating("Fringe", "FR", true),
			NewSeating("Unknown", "", false),
		},
	}

	RecomputeTurns(row, services)

	assert.Equal(t, len(row.Seatings), row.RegularTurns+row.BonusTurns)
}
