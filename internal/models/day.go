// Package models holds the day aggregate: technician rows, their seatings,
// turn counts and the day status machine. All mutations validate their guards
// before touching state so a failed call never leaves a partial change.
package models

import (
	"time"

	"turnboard/internal/dayerr"
)

// Status is the lifecycle state of a day.
type Status string

const (
	StatusOpen   Status = "open"
	StatusEnded  Status = "ended"
	StatusClosed Status = "closed"

	// StatusDeleted only ever appears in the metadata index, never in a
	// day file.
	StatusDeleted Status = "deleted"
)

// ChecklistItem is one entry of the new-day or end-day checklist.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Checklist types accepted by ToggleChecklistItem.
const (
	ChecklistNewDay = "new_day"
	ChecklistEndDay = "end_day"
)

// Row is a technician's queue slot for the day. RegularTurns and BonusTurns
// are derived by RecomputeTurns and never set directly.
type Row struct {
	RowNumber    int       `json:"row_number"`
	TechAlias    string    `json:"tech_alias"`
	TechName     string    `json:"tech_name"`
	Seatings     []Seating `json:"seatings"`
	RegularTurns int       `json:"regular_turns"`
	BonusTurns   int       `json:"bonus_turns"`
	IsOnBreak    bool      `json:"is_on_break"`
	IsActive     bool      `json:"is_active"`
}

// OpenSeatings counts seatings with value 0.
func (r *Row) OpenSeatings() int {
	n := 0
	for i := range r.Seatings {
		if r.Seatings[i].IsOpen() {
			n++
		}
	}
	return n
}

// Day is the aggregate persisted as one JSON file per calendar date.
// The order of Rows is the authoritative display/priority order.
type Day struct {
	Date            string          `json:"date"`
	Status          Status          `json:"status"`
	Rows            []*Row          `json:"day_rows"`
	NewDayChecklist []ChecklistItem `json:"new_day_checklist"`
	EndDayChecklist []ChecklistItem `json:"end_day_checklist"`
	CreatedAt       string          `json:"created_at"`
	ClosedAt        *string         `json:"closed_at"`
}

// NewDay creates an open day with checklists built from template item texts.
func NewDay(date string, newDayItems, endDayItems []string) *Day {
	d := &Day{
		Date:            date,
		Status:          StatusOpen,
		Rows:            []*Row{},
		NewDayChecklist: make([]ChecklistItem, 0, len(newDayItems)),
		EndDayChecklist: make([]ChecklistItem, 0, len(endDayItems)),
		CreatedAt:       time.Now().Format(time.RFC3339),
	}
	for _, text := range newDayItems {
		d.NewDayChecklist = append(d.NewDayChecklist, ChecklistItem{Text: text})
	}
	for _, text := range endDayItems {
		d.EndDayChecklist = append(d.EndDayChecklist, ChecklistItem{Text: text})
	}
	return d
}

// RowByAlias returns the row for a technician alias, active or not.
func (d *Day) RowByAlias(alias string) *Row {
	for _, r := range d.Rows {
		if r.TechAlias == alias {
			return r
		}
	}
	return nil
}

// RowByNumber returns the row with the given row number.
func (d *Day) RowByNumber(n int) *Row {
	for _, r := range d.Rows {
		if r.RowNumber == n {
			return r
		}
	}
	return nil
}

// FindSeating locates a seating by ID and returns its owning row.
func (d *Day) FindSeating(id string) (*Row, *Seating) {
	for _, r := range d.Rows {
		for i := range r.Seatings {
			if r.Seatings[i].ID == id {
				return r, &r.Seatings[i]
			}
		}
	}
	return nil, nil
}

// ensureMutable rejects mutations once a day is closed. The reference
// behavior allowed edits after close; the guard is a deliberate hardening.
func (d *Day) ensureMutable() error {
	if d.Status == StatusClosed {
		return dayerr.Preconditionf("day %s is closed and cannot be modified", d.Date)
	}
	return nil
}

// ClockIn activates a row for the technician. An inactive row is reactivated
// in place keeping its row number; a brand new row is appended with number
// totalRowCount+1. An already active row is a conflict.
func (d *Day) ClockIn(alias, name string) (*Row, error) {
	if err := d.ensureMutable(); err != nil {
		return nil, err
	}
	if existing := d.RowByAlias(alias); existing != nil {
		if existing.IsActive {
			return nil, dayerr.Conflictf("tech %s is already clocked in", alias)
		}
		existing.IsActive = true
		if name != "" {
			existing.TechName = name
		}
		return existing, nil
	}
	row := &Row{
		RowNumber: len(d.Rows) + 1,
		TechAlias: alias,
		TechName:  name,
		Seatings:  []Seating{},
		IsActive:  true,
	}
	d.Rows = append(d.Rows, row)
	return row, nil
}

// ClockOut soft-disables the technician's row. The row keeps its number so
// the position is reinstated on the next clock-in.
func (d *Day) ClockOut(alias string) (*Row, error) {
	if err := d.ensureMutable(); err != nil {
		return nil, err
	}
	row := d.RowByAlias(alias)
	if row == nil || !row.IsActive {
		return nil, dayerr.NotFoundf("tech %s is not clocked in", alias)
	}
	if open := row.OpenSeatings(); open > 0 {
		return nil, dayerr.Preconditionf("cannot clock out: tech %s has %d open seating(s)", alias, open)
	}
	row.IsActive = false
	return row, nil
}

// ToggleBreak flips the break flag on the row with the given number.
func (d *Day) ToggleBreak(rowNumber int) (*Row, error) {
	if err := d.ensureMutable(); err != nil {
		return nil, err
	}
	row := d.RowByNumber(rowNumber)
	if row == nil {
		return nil, dayerr.NotFoundf("row %d not found", rowNumber)
	}
	row.IsOnBreak = !row.IsOnBreak
	return row, nil
}

// DeleteRow hard-removes a row and resequences the remaining rows to 1..N.
// Resequencing runs over the full list, inactive rows included.
func (d *Day) DeleteRow(rowNumber int) error {
	if err := d.ensureMutable(); err != nil {
		return err
	}
	idx := -1
	for i, r := range d.Rows {
		if r.RowNumber == rowNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return dayerr.NotFoundf("row %d not found", rowNumber)
	}
	if open := d.Rows[idx].OpenSeatings(); open > 0 {
		return dayerr.Preconditionf("cannot delete row: tech has %d open seating(s)", open)
	}
	d.Rows = append(d.Rows[:idx], d.Rows[idx+1:]...)
	d.resequence()
	return nil
}

// ReorderRows moves the technician's row to newPosition (1-based) and
// resequences all rows. Moving a row to its current position is a no-op.
func (d *Day) ReorderRows(alias string, newPosition int) error {
	if err := d.ensureMutable(); err != nil {
		return err
	}
	row := d.RowByAlias(alias)
	if row == nil {
		return dayerr.NotFoundf("tech %s not found", alias)
	}
	if newPosition < 1 || newPosition > len(d.Rows) {
		return dayerr.Invalidf("invalid new_row_number: must be between 1 and %d", len(d.Rows))
	}
	if row.RowNumber == newPosition {
		return nil
	}
	idx := -1
	for i, r := range d.Rows {
		if r == row {
			idx = i
			break
		}
	}
	d.Rows = append(d.Rows[:idx], d.Rows[idx+1:]...)
	d.Rows = append(d.Rows[:newPosition-1], append([]*Row{row}, d.Rows[newPosition-1:]...)...)
	d.resequence()
	return nil
}

// AddSeating appends a seating to the technician's active row and recomputes
// the row's turn classification. Service existence and skill checks happen
// upstream where the catalogs live.
func (d *Day) AddSeating(alias string, seating Seating, services ServiceLookup) (*Row, error) {
	if err := d.ensureMutable(); err != nil {
		return nil, err
	}
	row := d.RowByAlias(alias)
	if row == nil || !row.IsActive {
		return nil, dayerr.NotFoundf("tech %s is not clocked in", alias)
	}
	if row.IsOnBreak {
		return nil, dayerr.Preconditionf("tech %s is currently on break", alias)
	}
	row.Seatings = append(row.Seatings, seating)
	RecomputeTurns(row, services)
	return row, nil
}

// SeatingUpdate is a partial patch for a seating. Nil fields stay untouched.
// Service changes arrive pre-validated together with the new short-name
// snapshot. ClearTimeNeeded drops the per-seating duration override.
type SeatingUpdate struct {
	Value            *int
	HasValuePenalty  *bool
	IsRequested      *bool
	Service          *string
	ServiceShortName *string
	ShortName        *string
	TimeNeeded       *int
	ClearTimeNeeded  bool
}

// UpdateSeating applies a patch and recomputes the owning row's turns.
func (d *Day) UpdateSeating(id string, upd SeatingUpdate, services ServiceLookup) (*Row, *Seating, error) {
	if err := d.ensureMutable(); err != nil {
		return nil, nil, err
	}
	row, seating := d.FindSeating(id)
	if seating == nil {
		return nil, nil, dayerr.NotFoundf("seating %s not found", id)
	}
	if upd.Value != nil {
		if *upd.Value < 0 {
			return nil, nil, dayerr.Invalidf("value must not be negative")
		}
		seating.Value = *upd.Value
	}
	if upd.HasValuePenalty != nil {
		seating.HasValuePenalty = *upd.HasValuePenalty
	}
	if upd.IsRequested != nil {
		seating.IsRequested = *upd.IsRequested
	}
	if upd.Service != nil {
		seating.Service = *upd.Service
		if upd.ServiceShortName != nil {
			seating.ShortName = *upd.ServiceShortName
		}
	}
	if upd.ShortName != nil {
		seating.ShortName = *upd.ShortName
	}
	if upd.ClearTimeNeeded {
		seating.TimeNeeded = nil
	} else if upd.TimeNeeded != nil {
		seating.TimeNeeded = upd.TimeNeeded
	}
	RecomputeTurns(row, services)
	return row, seating, nil
}

// DeleteSeating removes a seating and recomputes the owning row's turns.
func (d *Day) DeleteSeating(id string, services ServiceLookup) (*Row, error) {
	if err := d.ensureMutable(); err != nil {
		return nil, err
	}
	for _, r := range d.Rows {
		for i := range r.Seatings {
			if r.Seatings[i].ID == id {
				r.Seatings = append(r.Seatings[:i], r.Seatings[i+1:]...)
				RecomputeTurns(r, services)
				return r, nil
			}
		}
	}
	return nil, dayerr.NotFoundf("seating %s not found", id)
}

// ToggleChecklistItem flips completion of one checklist entry.
func (d *Day) ToggleChecklistItem(checklistType string, index int) error {
	if err := d.ensureMutable(); err != nil {
		return err
	}
	var list []ChecklistItem
	switch checklistType {
	case ChecklistNewDay:
		list = d.NewDayChecklist
	case ChecklistEndDay:
		list = d.EndDayChecklist
	default:
		return dayerr.Invalidf("checklist_type must be %q or %q", ChecklistNewDay, ChecklistEndDay)
	}
	if index < 0 || index >= len(list) {
		return dayerr.Invalidf("invalid index: %d", index)
	}
	list[index].Completed = !list[index].Completed
	return nil
}

// End transitions Open -> Ended.
func (d *Day) End() error {
	if d.Status != StatusOpen {
		return dayerr.Preconditionf("day is already %s", d.Status)
	}
	d.Status = StatusEnded
	return nil
}

// Close transitions the day to its terminal state. Every seating across
// every row (inactive included) must be priced and the end-day checklist
// complete.
func (d *Day) Close(now time.Time) error {
	if d.Status == StatusClosed {
		return dayerr.Preconditionf("day is already closed")
	}
	for _, r := range d.Rows {
		for i := range r.Seatings {
			if r.Seatings[i].IsOpen() {
				return dayerr.Preconditionf("cannot close day: some seatings are still open")
			}
		}
	}
	if !ChecklistComplete(d.EndDayChecklist) {
		return dayerr.Preconditionf("cannot close day: end day checklist is not complete")
	}
	d.Status = StatusClosed
	closedAt := now.Format(time.RFC3339)
	d.ClosedAt = &closedAt
	return nil
}

// Unfreeze reopens an ended day for further edits.
func (d *Day) Unfreeze() error {
	if d.Status != StatusEnded {
		return dayerr.Preconditionf("day must be in ended state to unfreeze (current: %s)", d.Status)
	}
	d.Status = StatusOpen
	d.ClosedAt = nil
	return nil
}

// AllActiveSeatingsClosed reports whether no active row has an open seating.
func (d *Day) AllActiveSeatingsClosed() bool {
	for _, r := range d.Rows {
		if !r.IsActive {
			continue
		}
		if r.OpenSeatings() > 0 {
			return false
		}
	}
	return true
}

// ChecklistComplete reports whether every item is completed.
func ChecklistComplete(items []ChecklistItem) bool {
	for _, item := range items {
		if !item.Completed {
			return false
		}
	}
	return true
}

func (d *Day) resequence() {
	for i, r := range d.Rows {
		r.RowNumber = i + 1
	}
}
