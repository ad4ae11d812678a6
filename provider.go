package session

import "context"

// SessionCurrent addresses the provider session attached to this client
// without knowing its id.
const SessionCurrent = "current"

// RemoteSession is the provider-issued handle proving an identity is
// authenticated.
type RemoteSession struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// Provider is the remote backend-as-a-service: auth plus document store,
// specified at call-contract level only.
//
// DeleteSession and ListSessions are idempotent; the absence of a session is
// not an error. StaffByIdentityID returns (nil, nil) when no staff record
// exists for a valid identity.
type Provider interface {
	CreateSession(ctx context.Context, email, password string) (*RemoteSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]RemoteSession, error)
	CurrentIdentity(ctx context.Context) (*Identity, error)
	StaffByIdentityID(ctx context.Context, identityID string) (*StaffProfile, error)
	// CreateIdentity registers a new principal. Used by the admin
	// user-creation flow, never by self-service.
	CreateIdentity(ctx context.Context, email, password, name string) (*Identity, error)
}

// ArtifactPurger is implemented by providers whose client library leaves
// namespaced local state behind (storage keys, session cookies). The
// authenticator purges it best-effort during login cleanup and logout,
// because stale artifacts can make the provider reject a fresh login.
type ArtifactPurger interface {
	PurgeLocalArtifacts(ctx context.Context) error
}
