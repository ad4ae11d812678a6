package session

import (
	"sync"
	"time"
)

// MemoryStore is the in-process CredentialStore: a mutex-guarded copy of the
// cached session tuple. Reads return copies so callers cannot mutate the
// cache behind the lock.
type MemoryStore struct {
	mu             sync.RWMutex
	identity       *Identity
	staff          *StaffProfile
	lastActivity   time.Time
	hasActivity    bool
	sessionExpiry  time.Time
	hasExpiry      bool
	sessionTimeout time.Duration
	now            func() time.Time
}

// StoreOption customizes store construction.
type StoreOption func(*MemoryStore)

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithStoreSessionTimeout overrides the idle timeout used when no explicit
// expiry has been stamped.
func WithStoreSessionTimeout(timeout time.Duration) StoreOption {
	return func(s *MemoryStore) {
		if timeout > 0 {
			s.sessionTimeout = timeout
		}
	}
}

// NewMemoryStore returns an in-process credential store with a 30 minute
// session timeout.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		sessionTimeout: 30 * time.Minute,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var _ CredentialStore = (*MemoryStore)(nil)

func (s *MemoryStore) CacheIdentity(identity *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if identity == nil {
		s.identity = nil
		return nil
	}
	cp := *identity
	s.identity = &cp
	return nil
}

func (s *MemoryStore) CachedIdentity() (*Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return nil, false
	}
	cp := *s.identity
	return &cp, true
}

func (s *MemoryStore) CacheStaff(profile *StaffProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile == nil {
		s.staff = nil
		return nil
	}
	cp := *profile
	s.staff = &cp
	return nil
}

func (s *MemoryStore) CachedStaff() (*StaffProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.staff == nil {
		return nil, false
	}
	cp := *s.staff
	return &cp, true
}

func (s *MemoryStore) UpdateLastActivity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = s.now()
	s.hasActivity = true
	return nil
}

func (s *MemoryStore) LastActivity() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastActivity, s.hasActivity
}

func (s *MemoryStore) SetSessionExpiry(expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionExpiry = expiry
	s.hasExpiry = true
	return nil
}

func (s *MemoryStore) SessionExpiry() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessionExpiry, s.hasExpiry
}

// IsSessionExpired reports whether the cached session can still be trusted.
// An explicit expiry wins; otherwise expiry is lastActivity + sessionTimeout.
// A store with neither stamp is expired: stale data is treated as absent.
func (s *MemoryStore) IsSessionExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	if s.hasExpiry {
		return !now.Before(s.sessionExpiry)
	}
	if s.hasActivity {
		return !now.Before(s.lastActivity.Add(s.sessionTimeout))
	}
	return true
}

// ClearAll removes every key. Cannot partially fail.
func (s *MemoryStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.staff = nil
	s.lastActivity = time.Time{}
	s.hasActivity = false
	s.sessionExpiry = time.Time{}
	s.hasExpiry = false
	return nil
}
