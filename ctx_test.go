package session_test

import (
	"context"
	"testing"

	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityContextRoundtrip(t *testing.T) {
	ctx := context.Background()

	_, ok := session.IdentityFromContext(ctx)
	assert.False(t, ok)

	identity := &session.Identity{ID: "usr-1"}
	ctx = session.WithIdentityContext(ctx, identity)

	got, ok := session.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "usr-1", got.ID)
}

func TestStaffContextRoundtrip(t *testing.T) {
	ctx := context.Background()

	_, ok := session.StaffFromContext(ctx)
	assert.False(t, ok)

	ctx = session.WithStaffContext(ctx, &session.StaffProfile{UserID: "usr-1"})

	got, ok := session.StaffFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "usr-1", got.UserID)
}

func TestClaimsContextRoundtrip(t *testing.T) {
	ctx := context.Background()

	_, ok := session.GetClaims(ctx)
	assert.False(t, ok)

	claims := session.StaffClaims(&session.Identity{ID: "usr-1"}, &session.StaffProfile{
		Roles: []string{session.RoleStoreKeeper},
	})
	ctx = session.WithClaimsContext(ctx, claims)

	got, ok := session.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "usr-1", got.UserID())
}

func TestHasRoleFromContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, session.HasRoleFromContext(ctx, session.RoleStaff))

	// claims win when present
	claims := session.StaffClaims(&session.Identity{ID: "usr-1"}, &session.StaffProfile{
		Roles: []string{session.RoleStoreKeeper},
	})
	ctx = session.WithClaimsContext(ctx, claims)
	assert.True(t, session.HasRoleFromContext(ctx, session.RoleStoreKeeper))
	assert.False(t, session.HasRoleFromContext(ctx, session.RoleSystemAdmin))

	// profile answers when the claims do not carry the role
	ctx = session.WithStaffContext(ctx, &session.StaffProfile{
		Roles: []string{session.RoleSystemAdmin},
	})
	assert.True(t, session.HasRoleFromContext(ctx, session.RoleSystemAdmin))
}
