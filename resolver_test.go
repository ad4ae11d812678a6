package session_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveStaffFetchesAndCaches(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	provider.On("StaffByIdentityID", mock.Anything, "usr-1").
		Return(&session.StaffProfile{
			Name:          "Ada",
			Email:         "ada@example.com",
			Roles:         []string{session.RoleAssetAdmin},
			Organizations: []string{" hq "},
			Phones:        []string{"(212) 555-0175"},
		}, nil)

	resolver := session.NewResolver(provider, store, session.DefaultConfig())
	identity := &session.Identity{ID: "usr-1"}

	profile := resolver.ResolveStaff(context.Background(), identity)
	require.NotNil(t, profile)

	// normalization and defaulting applied before caching
	assert.Equal(t, "usr-1", profile.UserID)
	assert.Equal(t, []string{"HQ"}, profile.OrgCodes)
	assert.Equal(t, []string{"+12125550175"}, profile.Phones)

	cached, ok := store.CachedStaff()
	require.True(t, ok)
	assert.Equal(t, "usr-1", cached.UserID)
}

func TestResolveStaffFreshCacheSkipsRemote(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	require.NoError(t, store.CacheStaff(&session.StaffProfile{
		UserID:   "usr-1",
		Roles:    []string{session.RoleStaff},
		OrgCodes: []string{"HQ"},
	}))
	require.NoError(t, store.UpdateLastActivity())

	resolver := session.NewResolver(provider, store, session.DefaultConfig())

	profile := resolver.ResolveStaff(context.Background(), &session.Identity{ID: "usr-1"})
	require.NotNil(t, profile)
	assert.Equal(t, "usr-1", profile.UserID)

	provider.AssertNotCalled(t, "StaffByIdentityID", mock.Anything, mock.Anything)
}

func TestResolveStaffCachedProfileForOtherUser(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	require.NoError(t, store.CacheStaff(&session.StaffProfile{UserID: "usr-other"}))
	require.NoError(t, store.UpdateLastActivity())

	provider.On("StaffByIdentityID", mock.Anything, "usr-1").
		Return(&session.StaffProfile{UserID: "usr-1", Roles: []string{session.RoleStaff}}, nil)

	resolver := session.NewResolver(provider, store, session.DefaultConfig())

	profile := resolver.ResolveStaff(context.Background(), &session.Identity{ID: "usr-1"})
	require.NotNil(t, profile)
	assert.Equal(t, "usr-1", profile.UserID)

	provider.AssertNumberOfCalls(t, "StaffByIdentityID", 1)
}

func TestResolveStaffOrgScopeMismatchForcesRefetch(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	require.NoError(t, store.CacheStaff(&session.StaffProfile{
		UserID:   "usr-1",
		OrgCodes: []string{"HQ"},
	}))
	require.NoError(t, store.UpdateLastActivity())

	provider.On("StaffByIdentityID", mock.Anything, "usr-1").
		Return(&session.StaffProfile{
			UserID:        "usr-1",
			Organizations: []string{"branch-2"},
			Roles:         []string{session.RoleStaff},
		}, nil)

	resolver := session.NewResolver(provider, store, session.DefaultConfig())
	resolver.SetActiveOrg("BRANCH-2")

	profile := resolver.ResolveStaff(context.Background(), &session.Identity{ID: "usr-1"})
	require.NotNil(t, profile)
	assert.Equal(t, "BRANCH-2", profile.PrimaryOrgCode())

	provider.AssertNumberOfCalls(t, "StaffByIdentityID", 1)
}

func TestResolveStaffTransientFailureKeepsCache(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	require.NoError(t, store.CacheIdentity(&session.Identity{ID: "usr-1"}))

	provider.On("StaffByIdentityID", mock.Anything, "usr-1").
		Return(nil, context.DeadlineExceeded)

	resolver := session.NewResolver(provider, store, session.DefaultConfig())

	profile := resolver.ResolveStaff(context.Background(), &session.Identity{ID: "usr-1"})
	assert.Nil(t, profile)

	// a blip must not log the user out
	_, ok := store.CachedIdentity()
	assert.True(t, ok)
}

func TestResolveStaffTerminalFailurePurgesCache(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	require.NoError(t, store.CacheIdentity(&session.Identity{ID: "usr-1"}))
	require.NoError(t, store.UpdateLastActivity())

	provider.On("StaffByIdentityID", mock.Anything, "usr-1").
		Return(nil, goerrors.New("staff record revoked", goerrors.CategoryAuthz))

	resolver := session.NewResolver(provider, store, session.DefaultConfig())

	profile := resolver.ResolveStaff(context.Background(), &session.Identity{ID: "usr-1"})
	assert.Nil(t, profile)

	_, ok := store.CachedIdentity()
	assert.False(t, ok)
	_, ok = store.CachedStaff()
	assert.False(t, ok)
}

func TestResolveStaffNoRecord(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	require.NoError(t, store.CacheIdentity(&session.Identity{ID: "usr-1"}))

	provider.On("StaffByIdentityID", mock.Anything, "usr-1").Return(nil, nil)

	resolver := session.NewResolver(provider, store, session.DefaultConfig())

	profile := resolver.ResolveStaff(context.Background(), &session.Identity{ID: "usr-1"})
	assert.Nil(t, profile)

	// missing record is not a failure, the cache survives
	_, ok := store.CachedIdentity()
	assert.True(t, ok)
}

func TestResolveStaffNilIdentity(t *testing.T) {
	provider := &MockProvider{}
	store := session.NewMemoryStore()

	resolver := session.NewResolver(provider, store, session.DefaultConfig())

	assert.Nil(t, resolver.ResolveStaff(context.Background(), nil))
	assert.Nil(t, resolver.ResolveStaff(context.Background(), &session.Identity{}))

	provider.AssertNotCalled(t, "StaffByIdentityID", mock.Anything, mock.Anything)
}
