package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnboard/internal/catalog"
	"turnboard/internal/config"
	"turnboard/internal/database"
	"turnboard/internal/dayerr"
	"turnboard/internal/models"
	"turnboard/internal/recommend"
	"turnboard/internal/store"
)

type recordingNotifier struct {
	dates     []string
	summaries []*Summary
	err       error
}

func (n *recordingNotifier) DayClosed(_ context.Context, date string, summary *Summary) error {
	n.dates = append(n.dates, date)
	n.summaries = append(n.summaries, summary)
	return n.err
}

func newTestService(t *testing.T) (*Service, *catalog.Catalog) {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDB(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := store.New(filepath.Join(dir, "days"), db, zerolog.New(io.Discard))
	require.NoError(t, err)

	cat := catalog.New(db)
	require.NoError(t, cat.UpsertTechnician(models.Technician{Alias: "alice", Name: "Alice"}))
	require.NoError(t, cat.UpsertTechnician(models.Technician{Alias: "bob", Name: "Bob"}))
	require.NoError(t, cat.UpsertService(models.ServiceInfo{Name: "Haircut", TimeNeeded: 30, ShortName: "HC"}))
	require.NoError(t, cat.UpsertService(models.ServiceInfo{Name: "Color", TimeNeeded: 90, ShortName: "CL", IsBonus: true}))
	require.NoError(t, cat.GrantSkill("alice", "Haircut"))
	require.NoError(t, cat.GrantSkill("alice", "Color"))
	require.NoError(t, cat.GrantSkill("bob", "Haircut"))

	templates := config.NewTemplateSource(config.Templates{
		NewDay: []string{"open register"},
		EndDay: []string{"count register"},
	})
	return New(st, cat, templates, zerolog.New(io.Discard)), cat
}

func TestService_CreateDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("InvalidDate", func(t *testing.T) {
		_, err := svc.CreateDay(ctx, "30-08-2026")
		assert.ErrorIs(t, err, dayerr.ErrInvalidInput)

		_, err = svc.CreateDay(ctx, "")
		assert.ErrorIs(t, err, dayerr.ErrInvalidInput)
	})

	t.Run("UsesChecklistTemplates", func(t *testing.T) {
		day, err := svc.CreateDay(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, models.StatusOpen, day.Status)
		require.Len(t, day.NewDayChecklist, 1)
		assert.Equal(t, "open register", day.NewDayChecklist[0].Text)
		require.Len(t, day.EndDayChecklist, 1)
	})

	t.Run("DuplicateIsConflict", func(t *testing.T) {
		_, err := svc.CreateDay(ctx, "2026-08-30")
		assert.ErrorIs(t, err, dayerr.ErrConflict)
	})
}

func TestService_SeatingLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDay(ctx, "2026-08-30")
	require.NoError(t, err)

	// catalog name fills in when the request omits it
	day, err := svc.ClockIn(ctx, "2026-08-30", "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice", day.Rows[0].TechName)

	t.Run("UnknownService", func(t *testing.T) {
		_, err := svc.CreateSeating(ctx, "2026-08-30", "alice", "Massage", false)
		assert.ErrorIs(t, err, dayerr.ErrNotFound)
	})

	t.Run("MissingSkill", func(t *testing.T) {
		_, err := svc.ClockIn(ctx, "2026-08-30", "bob", "")
		require.NoError(t, err)
		_, err = svc.CreateSeating(ctx, "2026-08-30", "bob", "Color", false)
		assert.ErrorIs(t, err, dayerr.ErrPreconditionFailed)
	})

	t.Run("CreateSnapshotsShortName", func(t *testing.T) {
		day, err := svc.CreateSeating(ctx, "2026-08-30", "alice", "Haircut", true)
		require.NoError(t, err)
		seating := day.Rows[0].Seatings[0]
		assert.Equal(t, "HC", seating.ShortName)
		assert.True(t, seating.IsRequested)
		assert.True(t, seating.IsOpen())
		assert.Equal(t, 1, day.Rows[0].RegularTurns)
	})

	t.Run("UpdateValidatesServiceChange", func(t *testing.T) {
		day, err := svc.GetDay(ctx, "2026-08-30")
		require.NoError(t, err)
		id := day.Rows[0].Seatings[0].ID

		color := "Color"
		day, err = svc.UpdateSeating(ctx, "2026-08-30", id, UpdateSeatingInput{Service: &color})
		require.NoError(t, err)
		assert.Equal(t, "Color", day.Rows[0].Seatings[0].Service)
		assert.Equal(t, "CL", day.Rows[0].Seatings[0].ShortName)

		// bob lacks the Color skill, so moving his seating there fails
		day, err = svc.CreateSeating(ctx, "2026-08-30", "bob", "Haircut", false)
		require.NoError(t, err)
		bobSeating := day.RowByAlias("bob").Seatings[0].ID
		_, err = svc.UpdateSeating(ctx, "2026-08-30", bobSeating, UpdateSeatingInput{Service: &color})
		assert.ErrorIs(t, err, dayerr.ErrPreconditionFailed)
	})

	t.Run("ClearTimeNeededWithZero", func(t *testing.T) {
		day, err := svc.GetDay(ctx, "2026-08-30")
		require.NoError(t, err)
		id := day.Rows[0].Seatings[0].ID

		override := 40
		day, err = svc.UpdateSeating(ctx, "2026-08-30", id, UpdateSeatingInput{TimeNeeded: &override})
		require.NoError(t, err)
		require.NotNil(t, day.Rows[0].Seatings[0].TimeNeeded)

		zero := 0
		day, err = svc.UpdateSeating(ctx, "2026-08-30", id, UpdateSeatingInput{TimeNeeded: &zero})
		require.NoError(t, err)
		assert.Nil(t, day.Rows[0].Seatings[0].TimeNeeded)
	})

	t.Run("DeleteSeating", func(t *testing.T) {
		day, err := svc.GetDay(ctx, "2026-08-30")
		require.NoError(t, err)
		id := day.RowByAlias("bob").Seatings[0].ID

		day, err = svc.DeleteSeating(ctx, "2026-08-30", id)
		require.NoError(t, err)
		assert.Empty(t, day.RowByAlias("bob").Seatings)
	})
}

func TestService_CloseDayFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc.AddNotifier(notifier)

	_, err := svc.CreateDay(ctx, "2026-08-30")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "2026-08-30", "alice", "")
	require.NoError(t, err)
	day, err := svc.CreateSeating(ctx, "2026-08-30", "alice", "Haircut", false)
	require.NoError(t, err)
	seatingID := day.Rows[0].Seatings[0].ID

	t.Run("BlockedByOpenSeating", func(t *testing.T) {
		_, err := svc.CloseDay(ctx, "2026-08-30")
		assert.ErrorIs(t, err, dayerr.ErrPreconditionFailed)
		assert.Empty(t, notifier.dates)
	})

	value := 45
	penalty := true
	_, err = svc.UpdateSeating(ctx, "2026-08-30", seatingID, UpdateSeatingInput{Value: &value, HasValuePenalty: &penalty})
	require.NoError(t, err)

	t.Run("BlockedByChecklist", func(t *testing.T) {
		_, err := svc.CloseDay(ctx, "2026-08-30")
		assert.ErrorIs(t, err, dayerr.ErrPreconditionFailed)
	})

	_, err = svc.ToggleChecklistItem(ctx, "2026-08-30", models.ChecklistEndDay, 0)
	require.NoError(t, err)

	t.Run("ClosesAndNotifies", func(t *testing.T) {
		day, err := svc.CloseDay(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, models.StatusClosed, day.Status)
		require.NotNil(t, day.ClosedAt)

		require.Equal(t, []string{"2026-08-30"}, notifier.dates)
		summary := notifier.summaries[0]
		require.NotNil(t, summary)
		assert.True(t, summary.AllSeatingsClosed)
		assert.True(t, summary.EndDayChecklistComplete)
	})

	t.Run("ClosedDayRejectsMutations", func(t *testing.T) {
		_, err := svc.ClockIn(ctx, "2026-08-30", "bob", "")
		assert.ErrorIs(t, err, dayerr.ErrPreconditionFailed)
	})

	t.Run("SecureDeleteAllowedWhenClosed", func(t *testing.T) {
		require.NoError(t, svc.SecureDelete(ctx, "2026-08-30"))
		_, err := svc.GetDay(ctx, "2026-08-30")
		assert.ErrorIs(t, err, dayerr.ErrNotFound)
	})
}

func TestService_SecureDeleteRequiresClosed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDay(ctx, "2026-08-30")
	require.NoError(t, err)

	err = svc.SecureDelete(ctx, "2026-08-30")
	assert.ErrorIs(t, err, dayerr.ErrPreconditionFailed)
}

func TestService_EndAndUnfreeze(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDay(ctx, "2026-08-30")
	require.NoError(t, err)

	day, err := svc.EndDay(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnded, day.Status)

	_, err = svc.EndDay(ctx, "2026-08-30")
	assert.ErrorIs(t, err, dayerr.ErrPreconditionFailed)

	day, err = svc.Unfreeze(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, day.Status)
}

func TestService_Summary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDay(ctx, "2026-08-30")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "2026-08-30", "alice", "")
	require.NoError(t, err)

	day, err := svc.CreateSeating(ctx, "2026-08-30", "alice", "Haircut", false)
	require.NoError(t, err)
	first := day.Rows[0].Seatings[0].ID
	day, err = svc.CreateSeating(ctx, "2026-08-30", "alice", "Haircut", false)
	require.NoError(t, err)
	second := day.Rows[0].Seatings[1].ID

	v1, flag := 45, true
	_, err = svc.UpdateSeating(ctx, "2026-08-30", first, UpdateSeatingInput{Value: &v1, HasValuePenalty: &flag})
	require.NoError(t, err)
	v2 := 2
	_, err = svc.UpdateSeating(ctx, "2026-08-30", second, UpdateSeatingInput{Value: &v2, HasValuePenalty: &flag})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, summary.TechStats, 2)

	var alice, bob *TechStats
	for i := range summary.TechStats {
		switch summary.TechStats[i].TechAlias {
		case "alice":
			alice = &summary.TechStats[i]
		case "bob":
			bob = &summary.TechStats[i]
		}
	}
	require.NotNil(t, alice)
	require.NotNil(t, bob)

	assert.False(t, alice.IsAbsent)
	assert.Equal(t, 47, alice.TotalValueWithoutPenalty)
	// 45-3 plus max(0, 2-3)
	assert.Equal(t, 42, alice.TotalValueWithPenalty)
	assert.Equal(t, 2, alice.PenaltyCount)
	require.NotNil(t, alice.RowNumber)
	assert.Equal(t, 1, *alice.RowNumber)

	assert.True(t, bob.IsAbsent)
	assert.Nil(t, bob.RowNumber)
	assert.Zero(t, bob.TotalValueWithPenalty)

	assert.True(t, summary.AllSeatingsClosed)
	assert.False(t, summary.NewDayChecklistComplete)
}

func TestService_Recommend(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDay(ctx, "2026-08-30")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "2026-08-30", "alice", "")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "2026-08-30", "bob", "")
	require.NoError(t, err)

	t.Run("InvalidTurnType", func(t *testing.T) {
		_, err := svc.Recommend(ctx, "2026-08-30", recommend.Options{TurnType: "double"})
		assert.ErrorIs(t, err, dayerr.ErrInvalidInput)
	})

	t.Run("SkillFilterAppliesToService", func(t *testing.T) {
		recs, err := svc.Recommend(ctx, "2026-08-30", recommend.Options{Service: "Color"})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "alice", recs[0].TechAlias)
	})

	t.Run("DefaultsToRegular", func(t *testing.T) {
		recs, err := svc.Recommend(ctx, "2026-08-30", recommend.Options{})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, recommend.TurnRegular, recs[0].PriorityChecks.TurnBalance.RequestedTurnType)
	})
}
