package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/travel_app/internal/events"
	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
)

type fakeIndex struct {
	indexed []uint
	deleted []uint
	hits    []uint
	err     error
}

func (f *fakeIndex) IndexTrip(_ context.Context, trip *models.Trip) error {
	f.indexed = append(f.indexed, trip.ID)
	return nil
}

func (f *fakeIndex) DeleteTrip(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchTrips(context.Context, string) ([]uint, error) {
	return f.hits, f.err
}

func TestTrips_CreateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")

	start := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	negative := -5.0

	tests := []struct {
		name string
		in   TripInput
	}{
		{name: "no title", in: TripInput{Destination: "Rome"}},
		{name: "no destination", in: TripInput{Title: "Rome"}},
		{name: "end before start", in: TripInput{Title: "Rome", Destination: "Rome", StartDate: &start, EndDate: &end}},
		{name: "negative budget", in: TripInput{Title: "Rome", Destination: "Rome", BudgetTotal: &negative}},
	}
	for _, tt := range tests {
		_, err := env.Trips.Create(ctx, a.User.ID, tt.in)
		assert.ErrorIs(t, err, ErrValidation, tt.name)
	}
}

func TestTrips_UpdateAndDeleteRequireOrganizer(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	idx := &fakeIndex{}
	env.Trips.Index = idx
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	trip := env.trip(t, a.User.ID, "Old title")
	env.join(t, trip.ID, b.User.ID)

	title := "New title"
	_, err := env.Trips.Update(ctx, trip.ID, b.User.ID, repo.TripUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := env.Trips.Update(ctx, trip.ID, a.User.ID, repo.TripUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "Porto", updated.Destination)

	empty := " "
	_, err = env.Trips.Update(ctx, trip.ID, a.User.ID, repo.TripUpdate{Destination: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, env.Trips.Delete(ctx, trip.ID, b.User.ID), ErrPermissionDenied)
	require.NoError(t, env.Trips.Delete(ctx, trip.ID, a.User.ID))

	_, err = env.Trips.Get(ctx, trip.ID, a.User.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Equal(t, []uint{trip.ID, trip.ID}, idx.indexed)
	assert.Equal(t, []uint{trip.ID}, idx.deleted)
	assert.Contains(t, env.Events.Types(), events.TripDeleted)
}

func TestTrips_UpdateChecksDatesAgainstStoredValues(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")

	start := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	trip, err := env.Trips.Create(ctx, a.User.ID, TripInput{Title: "T", Destination: "D", StartDate: &start, EndDate: &end})
	require.NoError(t, err)

	tooLate := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err = env.Trips.Update(ctx, trip.ID, a.User.ID, repo.TripUpdate{StartDate: &tooLate})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTrips_ListMineAndStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	t1 := env.trip(t, a.User.ID, "One")
	env.trip(t, a.User.ID, "Two")
	env.trip(t, b.User.ID, "Three")
	env.join(t, t1.ID, b.User.ID)

	page, err := env.Trips.ListMine(ctx, a.User.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Size)

	page, err = env.Trips.ListMine(ctx, b.User.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	stats, err := env.Trips.Stats(ctx, t1.ID, b.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.MembersCount)
	assert.Equal(t, models.RoleMember, stats.Role)
}

func TestTrips_SearchOnlyReturnsOwnTrips(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	mine := env.trip(t, a.User.ID, "Surf camp")
	theirs := env.trip(t, b.User.ID, "Surf school")

	page, err := env.Trips.Search(ctx, a.User.ID, "surf", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)

	env.Trips.Index = &fakeIndex{hits: []uint{theirs.ID, mine.ID}}
	page, err = env.Trips.Search(ctx, a.User.ID, "surf", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)
	assert.Equal(t, int64(1), page.Total)

	env.Trips.Index = &fakeIndex{err: errors.New("cluster down")}
	page, err = env.Trips.Search(ctx, a.User.ID, "camp", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = env.Trips.Search(ctx, a.User.ID, "  ", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
