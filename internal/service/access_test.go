package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/travel_app/internal/models"
)

func TestCreateTrip_MakesCreatorSoleOrganizer(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	trip := env.trip(t, a.User.ID, "Lisbon")

	members, err := env.Members.List(ctx, trip.ID, a.User.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, a.User.ID, members[0].UserID)
	assert.Equal(t, models.RoleOrganizer, members[0].Role)

	ok, err := env.Access.IsOrganizer(ctx, trip.ID, a.User.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, role := range []models.Role{models.RoleMember, models.RoleViewer, models.RoleOrganizer, "admin"} {
		_, err := env.Access.SetRole(ctx, trip.ID, a.User.ID, role, a.User.ID)
		assert.ErrorIs(t, err, ErrOrganizerRoleImmutable, string(role))
	}
}

func TestScenario_JoinAndRoleChange(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.Auth.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	trip := env.trip(t, a.User.ID, "T")

	ok, err := env.Access.IsOrganizer(ctx, trip.ID, a.User.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	b, err := env.Auth.Register(ctx, "b@x.com", "pw2")
	require.NoError(t, err)
	m, err := env.Members.Join(ctx, trip.ID, b.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)

	m, err = env.Members.SetRole(ctx, trip.ID, b.User.ID, models.RoleViewer, a.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, m.Role)

	got, err := env.Store.Members().Get(ctx, trip.ID, b.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, got.Role)

	_, err = env.Members.SetRole(ctx, trip.ID, a.User.ID, models.RoleMember, b.User.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSetRole_Policy(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	c := env.register(t, "c@x.com")
	trip := env.trip(t, a.User.ID, "T")
	env.join(t, trip.ID, b.User.ID)

	_, err := env.Access.SetRole(ctx, trip.ID, b.User.ID, "captain", a.User.ID)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = env.Access.SetRole(ctx, trip.ID, b.User.ID, models.RoleOrganizer, a.User.ID)
	assert.ErrorIs(t, err, ErrOrganizerRoleImmutable)

	_, err = env.Access.SetRole(ctx, trip.ID, c.User.ID, models.RoleViewer, a.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.Access.SetRole(ctx, trip.ID, b.User.ID, models.RoleViewer, c.User.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	ok, err := env.Access.IsOrganizer(ctx, trip.ID, b.User.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrganizerMembershipCannotBeRemoved(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	c := env.register(t, "c@x.com")
	trip := env.trip(t, a.User.ID, "T")
	env.join(t, trip.ID, b.User.ID)

	assert.ErrorIs(t, env.Access.Leave(ctx, trip.ID, a.User.ID), ErrOrganizerCannotLeave)
	assert.ErrorIs(t, env.Access.RemoveMember(ctx, trip.ID, a.User.ID, a.User.ID), ErrCannotRemoveOrganizer)
	assert.ErrorIs(t, env.Access.RemoveMember(ctx, trip.ID, a.User.ID, b.User.ID), ErrPermissionDenied)
	assert.ErrorIs(t, env.Access.RemoveMember(ctx, trip.ID, a.User.ID, c.User.ID), ErrPermissionDenied)
	assert.ErrorIs(t, env.Members.Remove(ctx, trip.ID, a.User.ID, a.User.ID), ErrOrganizerCannotLeave)

	ok, err := env.Access.IsOrganizer(ctx, trip.ID, a.User.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMembers_RemoveAndLeave(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	c := env.register(t, "c@x.com")
	trip := env.trip(t, a.User.ID, "T")
	env.join(t, trip.ID, b.User.ID)
	env.join(t, trip.ID, c.User.ID)

	// members cannot remove each other
	assert.ErrorIs(t, env.Members.Remove(ctx, trip.ID, c.User.ID, b.User.ID), ErrPermissionDenied)

	require.NoError(t, env.Members.Remove(ctx, trip.ID, b.User.ID, b.User.ID))
	require.NoError(t, env.Members.Remove(ctx, trip.ID, c.User.ID, a.User.ID))

	ok, err := env.Access.IsMember(ctx, trip.ID, b.User.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = env.Access.IsMember(ctx, trip.ID, c.User.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, env.Access.Leave(ctx, trip.ID, b.User.ID), ErrAccessDenied)
	assert.ErrorIs(t, env.Access.RemoveMember(ctx, trip.ID, b.User.ID, a.User.ID), ErrNotFound)
}

func TestMembers_JoinAndInvite(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	c := env.register(t, "c@x.com")
	trip := env.trip(t, a.User.ID, "T")

	_, err := env.Members.Join(ctx, 9999, b.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	env.join(t, trip.ID, b.User.ID)
	_, err = env.Members.Join(ctx, trip.ID, b.User.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	_, err = env.Members.Join(ctx, trip.ID, a.User.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = env.Members.Invite(ctx, trip.ID, c.User.ID, b.User.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = env.Members.Invite(ctx, trip.ID, 9999, a.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	m, err := env.Members.Invite(ctx, trip.ID, c.User.ID, a.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)

	_, err = env.Members.List(ctx, trip.ID, 9999)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAccessDenied_SameForAbsentAndForeignTrips(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	trip := env.trip(t, a.User.ID, "Private")

	_, foreign := env.Trips.Get(ctx, trip.ID, b.User.ID)
	_, absent := env.Trips.Get(ctx, 424242, b.User.ID)

	assert.ErrorIs(t, foreign, ErrAccessDenied)
	assert.ErrorIs(t, absent, ErrAccessDenied)
	assert.Equal(t, foreign.Error(), absent.Error())
}
