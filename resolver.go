package session

import (
	"context"
	"sync"
	"time"
)

// Resolver maps an authenticated identity to its staff profile, with
// organization scoping and caching through the credential store.
type Resolver struct {
	provider    Provider
	store       CredentialStore
	logger      Logger
	staffFetch  time.Duration
	phoneRegion string

	mu        sync.RWMutex
	activeOrg string
}

// NewResolver returns a staff resolver backed by the provider and store.
func NewResolver(provider Provider, store CredentialStore, cfg Config) *Resolver {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Resolver{
		provider:    provider,
		store:       store,
		logger:      defLogger{},
		staffFetch:  cfg.GetStaffFetchTimeout(),
		phoneRegion: cfg.GetDefaultPhoneRegion(),
	}
}

func (r *Resolver) WithLogger(logger Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// SetActiveOrg changes the organization context. A cached profile whose
// resolved org code disagrees with the active code is treated as invalid and
// re-fetched; the cached identity is deliberately left alone (identity is
// tenant-agnostic, the staff profile is tenant-scoped).
func (r *Resolver) SetActiveOrg(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeOrg = code
}

// ActiveOrg returns the current organization context.
func (r *Resolver) ActiveOrg() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeOrg
}

// ResolveStaff returns the staff profile for identity, or nil when the
// identity has no staff record (callers redirect to an unauthorized view,
// they do not retry indefinitely).
//
// Failure policy: a timeout or network failure returns nil without touching
// the cache (transient, do not punish the user for a blip); any other remote
// failure purges the entire credential cache (a genuine authorization state
// change, e.g. the staff record was deleted).
func (r *Resolver) ResolveStaff(ctx context.Context, identity *Identity) *StaffProfile {
	if identity == nil || identity.ID == "" {
		return nil
	}

	if cached := r.cachedProfile(identity); cached != nil {
		return cached
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.staffFetch)
	defer cancel()

	profile, err := r.provider.StaffByIdentityID(fetchCtx, identity.ID)
	if err != nil {
		if IsTransientError(err) {
			r.logger.Warn("staff lookup failed transiently, keeping cache", "user_id", identity.ID, "error", err)
			return nil
		}

		r.logger.Error("staff lookup failed, purging credential cache", "user_id", identity.ID, "error", err)
		if clearErr := r.store.ClearAll(); clearErr != nil {
			r.logger.Warn("failed to purge credential cache", "error", clearErr)
		}
		return nil
	}

	if profile == nil {
		r.logger.Info("no staff record for identity", "user_id", identity.ID)
		return nil
	}

	profile.Normalize(r.phoneRegion)
	if profile.UserID == "" {
		profile.UserID = identity.ID
	}

	if err := r.store.CacheStaff(profile); err != nil {
		r.logger.Warn("failed to cache staff profile", "error", err)
	}

	return profile
}

var _ StaffResolver = (*Resolver)(nil)

// cachedProfile returns the cached staff profile when it is fresh, belongs to
// the given identity, and its org scope does not disagree with the active
// organization code.
func (r *Resolver) cachedProfile(identity *Identity) *StaffProfile {
	profile, ok := r.store.CachedStaff()
	if !ok {
		return nil
	}

	if r.store.IsSessionExpired() {
		return nil
	}

	if profile.UserID != identity.ID {
		return nil
	}

	if org := profile.PrimaryOrgCode(); org != "" {
		if active := r.ActiveOrg(); active != "" && org != active {
			return nil
		}
	}

	return profile
}
