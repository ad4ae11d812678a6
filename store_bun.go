package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

const (
	storeKeyIdentity     = "identity"
	storeKeyStaff        = "staff"
	storeKeyLastActivity = "last_activity"
	storeKeyExpiry       = "session_expiry"
)

type credentialRecord struct {
	bun.BaseModel `bun:"table:credential_cache,alias:cc"`
	Key           string    `bun:"key,pk"`
	Value         []byte    `bun:"value"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// BunStore is the durable CredentialStore: the session tuple persisted as
// key/value rows so it survives process restarts, the way the console's
// browser cache survives page reloads. Writes are last-write-wins across
// processes; no locking discipline is applied.
type BunStore struct {
	db             *bun.DB
	sessionTimeout time.Duration
	opTimeout      time.Duration
	now            func() time.Time
	logger         Logger
}

// BunStoreOption customizes the durable store.
type BunStoreOption func(*BunStore)

// WithBunStoreClock injects a custom clock (useful for tests).
func WithBunStoreClock(clock func() time.Time) BunStoreOption {
	return func(s *BunStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithBunStoreSessionTimeout overrides the idle timeout used when no explicit
// expiry has been stamped.
func WithBunStoreSessionTimeout(timeout time.Duration) BunStoreOption {
	return func(s *BunStore) {
		if timeout > 0 {
			s.sessionTimeout = timeout
		}
	}
}

// WithBunStoreLogger overrides the logger used for read failures.
func WithBunStoreLogger(logger Logger) BunStoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBunStore returns a durable credential store backed by db. Call Init to
// create the backing table.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{
		db:             db,
		sessionTimeout: 30 * time.Minute,
		opTimeout:      5 * time.Second,
		now:            time.Now,
		logger:         defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var _ CredentialStore = (*BunStore)(nil)

// Init creates the credential_cache table if needed.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*credentialRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create credential cache table")
	}
	return nil
}

func (s *BunStore) CacheIdentity(identity *Identity) error {
	if identity == nil {
		return s.delete(storeKeyIdentity)
	}
	return s.putJSON(storeKeyIdentity, identity)
}

func (s *BunStore) CachedIdentity() (*Identity, bool) {
	identity := &Identity{}
	if !s.getJSON(storeKeyIdentity, identity) {
		return nil, false
	}
	return identity, true
}

func (s *BunStore) CacheStaff(profile *StaffProfile) error {
	if profile == nil {
		return s.delete(storeKeyStaff)
	}
	return s.putJSON(storeKeyStaff, profile)
}

func (s *BunStore) CachedStaff() (*StaffProfile, bool) {
	profile := &StaffProfile{}
	if !s.getJSON(storeKeyStaff, profile) {
		return nil, false
	}
	return profile, true
}

func (s *BunStore) UpdateLastActivity() error {
	return s.put(storeKeyLastActivity, []byte(s.now().Format(time.RFC3339Nano)))
}

func (s *BunStore) LastActivity() (time.Time, bool) {
	return s.getTime(storeKeyLastActivity)
}

func (s *BunStore) SetSessionExpiry(expiry time.Time) error {
	return s.put(storeKeyExpiry, []byte(expiry.Format(time.RFC3339Nano)))
}

func (s *BunStore) SessionExpiry() (time.Time, bool) {
	return s.getTime(storeKeyExpiry)
}

func (s *BunStore) IsSessionExpired() bool {
	now := s.now()
	if expiry, ok := s.getTime(storeKeyExpiry); ok {
		return !now.Before(expiry)
	}
	if last, ok := s.getTime(storeKeyLastActivity); ok {
		return !now.Before(last.Add(s.sessionTimeout))
	}
	return true
}

// ClearAll removes every key in a single statement.
func (s *BunStore) ClearAll() error {
	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("cc.key IN (?)", bun.In([]string{
			storeKeyIdentity,
			storeKeyStaff,
			storeKeyLastActivity,
			storeKeyExpiry,
		})).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear credential cache")
	}
	return nil
}

func (s *BunStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}

func (s *BunStore) putJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode credential cache value")
	}
	return s.put(key, raw)
}

func (s *BunStore) put(key string, value []byte) error {
	ctx, cancel := s.opContext()
	defer cancel()

	rec := &credentialRecord{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now(),
	}

	if _, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write credential cache value").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}

func (s *BunStore) get(key string) ([]byte, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	rec := &credentialRecord{}
	err := s.db.NewSelect().
		Model(rec).
		Where("cc.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Warn("credential cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return rec.Value, true
}

func (s *BunStore) getJSON(key string, target any) bool {
	raw, ok := s.get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.Warn("credential cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *BunStore) getTime(key string) (time.Time, bool) {
	raw, ok := s.get(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		s.logger.Warn("credential cache timestamp parse failed", "key", key, "error", err)
		return time.Time{}, false
	}
	return t, true
}

func (s *BunStore) delete(key string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("cc.key = ?", key).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete credential cache value").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}
