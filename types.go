package session

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore is the persisted cache of the current session tuple:
// identity, staff profile, last-activity timestamp, and session expiry.
// It is a best-effort accelerator, never the source of truth; writes are
// last-write-wins across concurrent consumers.
type CredentialStore interface {
	CacheIdentity(identity *Identity) error
	CachedIdentity() (*Identity, bool)
	CacheStaff(profile *StaffProfile) error
	CachedStaff() (*StaffProfile, bool)
	UpdateLastActivity() error
	LastActivity() (time.Time, bool)
	SetSessionExpiry(expiry time.Time) error
	SessionExpiry() (time.Time, bool)
	IsSessionExpired() bool
	ClearAll() error
}

// SessionAuthenticator holds methods to deal with the session lifecycle
type SessionAuthenticator interface {
	Login(ctx context.Context, email, password, callbackTarget string) (*LoginResult, error)
	Logout(ctx context.Context)
	CurrentIdentity(ctx context.Context) *Identity
	CurrentStaff(ctx context.Context) *StaffProfile
}

// StaffResolver maps an authenticated identity to its staff profile
type StaffResolver interface {
	ResolveStaff(ctx context.Context, identity *Identity) *StaffProfile
	SetActiveOrg(code string)
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
	GetCallbackTarget() string
}

// Sleeper pauses between remote calls. The authenticator uses it for the
// settle delays that paper over the provider's eventual consistency; tests
// inject a no-op.
type Sleeper func(ctx context.Context, d time.Duration)

func defaultSleeper(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
