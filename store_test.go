package session_test

import (
	"testing"
	"time"

	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreIdentityRoundtrip(t *testing.T) {
	store := session.NewMemoryStore()

	_, ok := store.CachedIdentity()
	assert.False(t, ok)

	identity := &session.Identity{ID: "usr-1", Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, store.CacheIdentity(identity))

	cached, ok := store.CachedIdentity()
	require.True(t, ok)
	assert.Equal(t, "usr-1", cached.ID)

	// reads are copies, mutating the result must not leak into the cache
	cached.Email = "mallory@example.com"
	cached2, _ := store.CachedIdentity()
	assert.Equal(t, "ada@example.com", cached2.Email)

	require.NoError(t, store.CacheIdentity(nil))
	_, ok = store.CachedIdentity()
	assert.False(t, ok)
}

func TestMemoryStoreStaffRoundtrip(t *testing.T) {
	store := session.NewMemoryStore()

	profile := &session.StaffProfile{UserID: "usr-1", Roles: []string{session.RoleStaff}}
	require.NoError(t, store.CacheStaff(profile))

	cached, ok := store.CachedStaff()
	require.True(t, ok)
	assert.Equal(t, "usr-1", cached.UserID)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	current := now
	store := session.NewMemoryStore(
		session.WithStoreClock(func() time.Time { return current }),
		session.WithStoreSessionTimeout(30*time.Minute),
	)

	// nothing stamped: stale data is treated as absent
	assert.True(t, store.IsSessionExpired())

	require.NoError(t, store.UpdateLastActivity())
	assert.False(t, store.IsSessionExpired())

	current = now.Add(31 * time.Minute)
	assert.True(t, store.IsSessionExpired())

	// an explicit expiry wins over the activity fallback
	current = now
	require.NoError(t, store.SetSessionExpiry(now.Add(5*time.Minute)))
	assert.False(t, store.IsSessionExpired())

	current = now.Add(5 * time.Minute)
	assert.True(t, store.IsSessionExpired())
}

func TestMemoryStoreClearAll(t *testing.T) {
	store := session.NewMemoryStore()

	require.NoError(t, store.CacheIdentity(&session.Identity{ID: "usr-1"}))
	require.NoError(t, store.CacheStaff(&session.StaffProfile{UserID: "usr-1"}))
	require.NoError(t, store.UpdateLastActivity())
	require.NoError(t, store.SetSessionExpiry(time.Now().Add(time.Hour)))

	require.NoError(t, store.ClearAll())

	_, ok := store.CachedIdentity()
	assert.False(t, ok)
	_, ok = store.CachedStaff()
	assert.False(t, ok)
	_, ok = store.LastActivity()
	assert.False(t, ok)
	_, ok = store.SessionExpiry()
	assert.False(t, ok)
	assert.True(t, store.IsSessionExpired())
}
