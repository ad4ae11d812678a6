package session

import (
	"context"
	"time"
)

// Authenticator owns the session lifecycle against the remote provider:
// login, best-effort logout, and identity bootstrap on page load.
type Authenticator struct {
	provider      Provider
	store         CredentialStore
	resolver      StaffResolver
	logger        Logger
	activitySink  ActivitySink
	sleep         Sleeper
	now           func() time.Time
	sessionTTL    time.Duration
	loginSettle   time.Duration
	settle        time.Duration
	identityFetch time.Duration
	bootstrapTTL  time.Duration
	retryDelay    time.Duration
}

// LoginResult is the successful outcome of a credential exchange. The
// CallbackTarget is handed back untouched so the UI layer can decide the
// post-login redirect.
type LoginResult struct {
	Session        *RemoteSession
	Identity       *Identity
	CallbackTarget string
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider Provider, store CredentialStore, cfg Config) *Authenticator {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Authenticator{
		provider:      provider,
		store:         store,
		logger:        defLogger{},
		activitySink:  noopActivitySink{},
		sleep:         defaultSleeper,
		now:           time.Now,
		sessionTTL:    cfg.GetSessionTimeout(),
		loginSettle:   cfg.GetLoginSettleDelay(),
		settle:        cfg.GetLogoutSettleDelay(),
		identityFetch: cfg.GetIdentityFetchTimeout(),
		bootstrapTTL:  cfg.GetBootstrapFetchTimeout(),
		retryDelay:    cfg.GetRetryDelay(),
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithActivitySink configures an ActivitySink for emitting lifecycle events.
func (a *Authenticator) WithActivitySink(sink ActivitySink) *Authenticator {
	a.activitySink = normalizeActivitySink(sink)
	return a
}

// WithResolver wires a staff resolver so CurrentStaff can be served from the
// authenticator boundary.
func (a *Authenticator) WithResolver(resolver StaffResolver) *Authenticator {
	a.resolver = resolver
	return a
}

// WithClock injects a custom clock (useful for tests).
func (a *Authenticator) WithClock(clock func() time.Time) *Authenticator {
	if clock != nil {
		a.now = clock
	}
	return a
}

// WithSleeper overrides the settle-delay sleeper (tests inject a no-op).
func (a *Authenticator) WithSleeper(sleep Sleeper) *Authenticator {
	if sleep != nil {
		a.sleep = sleep
	}
	return a
}

// Login exchanges credentials for a fresh provider session.
//
// Stale local session artifacts can make the provider reject a new login, so
// the exchange is preceded by a best-effort cleanup pass and a short settle
// delay for the provider's eventual consistency. If session creation succeeds
// but the identity-enrichment fetch is slow or failing, the login still
// succeeds with an identity synthesized from the email.
func (a *Authenticator) Login(ctx context.Context, email, password, callbackTarget string) (*LoginResult, error) {
	a.runCleanup(ctx, a.preLoginCleanup())
	a.sleep(ctx, a.loginSettle)

	remote, err := a.provider.CreateSession(ctx, email, password)
	if err != nil {
		err = classifyLoginError(err)
		a.logger.Error("Login create session error", "error", err)
		a.emitEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	if remote == nil || remote.ID == "" {
		a.logger.Error("Login provider returned no usable session id")
		a.emitEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": email,
			"error": ErrSessionNotCreated.Error(),
		})
		return nil, ErrSessionNotCreated
	}

	a.sleep(ctx, a.loginSettle)
	identity := a.fetchLoginIdentity(ctx, email, remote)

	if err := a.store.CacheIdentity(identity); err != nil {
		a.logger.Warn("Login failed to cache identity", "error", err)
	}
	a.stampSession()

	a.emitEvent(ctx, ActivityEventLoginSuccess, identity.ID, map[string]any{
		"email":       email,
		"synthesized": identity.Synthesized,
	})

	return &LoginResult{
		Session:        remote,
		Identity:       identity,
		CallbackTarget: callbackTarget,
	}, nil
}

// Logout tears the session down. Every step is independently best-effort: an
// unreachable provider must not trap the user in a logged-in UI state, so
// Logout reports nothing to the caller.
func (a *Authenticator) Logout(ctx context.Context) {
	var userID string
	if identity, ok := a.store.CachedIdentity(); ok {
		userID = identity.ID
	}

	a.runCleanup(ctx, a.logoutCleanup())
	a.sleep(ctx, a.settle)

	a.emitEvent(ctx, ActivityEventLogout, userID, nil)
}

// CurrentIdentity resolves "who is logged in" for page load and navigation.
// Fresh cache is the fast path and restamps activity without a remote call.
// Otherwise the provider is consulted with a bounded retry; on exhaustion an
// expired cached identity is still trusted over forcing a spurious logout.
// Returns nil when unauthenticated.
func (a *Authenticator) CurrentIdentity(ctx context.Context) *Identity {
	if identity, ok := a.store.CachedIdentity(); ok && !a.store.IsSessionExpired() {
		if err := a.store.UpdateLastActivity(); err != nil {
			a.logger.Warn("bootstrap failed to restamp activity", "error", err)
		}
		return identity
	}

	a.sleep(ctx, a.settle)

	for attempt := 1; attempt <= 2; attempt++ {
		if attempt > 1 {
			a.sleep(ctx, a.retryDelay)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, a.bootstrapTTL)
		identity, err := a.provider.CurrentIdentity(fetchCtx)
		cancel()

		if err == nil && identity != nil && identity.ID != "" {
			if err := a.store.CacheIdentity(identity); err != nil {
				a.logger.Warn("bootstrap failed to cache identity", "error", err)
			}
			a.stampSession()
			a.emitEvent(ctx, ActivityEventBootstrapRefresh, identity.ID, nil)
			return identity
		}

		a.logger.Debug("bootstrap identity fetch failed", "attempt", attempt, "error", err)
	}

	if identity, ok := a.store.CachedIdentity(); ok {
		a.logger.Warn("bootstrap retries exhausted, trusting cached identity", "user_id", identity.ID)
		return identity
	}

	return nil
}

// CurrentStaff resolves the staff profile for the current identity. Returns
// nil when unauthenticated or when no resolver is wired.
func (a *Authenticator) CurrentStaff(ctx context.Context) *StaffProfile {
	if a.resolver == nil {
		return nil
	}

	identity := a.CurrentIdentity(ctx)
	if identity == nil {
		return nil
	}

	return a.resolver.ResolveStaff(ctx, identity)
}

var _ SessionAuthenticator = (*Authenticator)(nil)

// cleanupStep is one fallible step in a best-effort teardown sequence. Each
// step runs in its own error boundary; the aggregated outcome is always
// "proceed".
type cleanupStep struct {
	name string
	run  func(ctx context.Context) error
}

func (a *Authenticator) preLoginCleanup() []cleanupStep {
	return []cleanupStep{
		{name: "clear local cache", run: func(context.Context) error {
			return a.store.ClearAll()
		}},
		{name: "purge provider artifacts", run: a.purgeArtifacts},
		{name: "invalidate current session", run: func(ctx context.Context) error {
			return a.provider.DeleteSession(ctx, SessionCurrent)
		}},
		{name: "invalidate listed sessions", run: a.deleteAllSessions},
	}
}

func (a *Authenticator) logoutCleanup() []cleanupStep {
	return []cleanupStep{
		{name: "invalidate current session", run: func(ctx context.Context) error {
			return a.provider.DeleteSession(ctx, SessionCurrent)
		}},
		{name: "invalidate listed sessions", run: a.deleteAllSessions},
		{name: "clear local cache", run: func(context.Context) error {
			return a.store.ClearAll()
		}},
		{name: "purge provider artifacts", run: a.purgeArtifacts},
	}
}

func (a *Authenticator) runCleanup(ctx context.Context, steps []cleanupStep) {
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			a.logger.Debug("cleanup step failed", "step", step.name, "error", err)
		}
	}
}

func (a *Authenticator) deleteAllSessions(ctx context.Context) error {
	sessions, err := a.provider.ListSessions(ctx)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		if err := a.provider.DeleteSession(ctx, s.ID); err != nil {
			a.logger.Debug("failed to invalidate session", "session_id", s.ID, "error", err)
		}
	}

	return nil
}

func (a *Authenticator) purgeArtifacts(ctx context.Context) error {
	purger, ok := a.provider.(ArtifactPurger)
	if !ok {
		return nil
	}
	return purger.PurgeLocalArtifacts(ctx)
}

func (a *Authenticator) fetchLoginIdentity(ctx context.Context, email string, remote *RemoteSession) *Identity {
	fetchCtx, cancel := context.WithTimeout(ctx, a.identityFetch)
	defer cancel()

	identity, err := a.provider.CurrentIdentity(fetchCtx)
	if err != nil || identity == nil || identity.ID == "" {
		a.logger.Warn("Login identity fetch degraded, synthesizing from email", "error", err)
		return SynthesizeIdentity(email, remote.UserID)
	}

	return identity
}

func (a *Authenticator) stampSession() {
	if err := a.store.UpdateLastActivity(); err != nil {
		a.logger.Warn("failed to stamp last activity", "error", err)
	}
	if err := a.store.SetSessionExpiry(a.now().Add(a.sessionTTL)); err != nil {
		a.logger.Warn("failed to stamp session expiry", "error", err)
	}
}

func (a *Authenticator) emitEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(a.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: a.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		a.logger.Warn("activity sink record error: %v", err)
	}
}
