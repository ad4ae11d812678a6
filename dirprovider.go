package session

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DirectoryProvider is the reference Provider implementation: the staff
// directory doubles as the credential backend, with session handles tracked
// in memory per client. Useful for local development and as the executable
// contract the remote provider is expected to honor.
//
// Session semantics follow the remote provider: at most one current session
// per client, and a second CreateSession while one is active is refused with
// a conflict.
type DirectoryProvider struct {
	directory StaffDirectory
	logger    Logger

	mu        sync.Mutex
	sessions  map[string]RemoteSession
	current   string
	artifacts map[string]string
}

// DirectoryProviderOption customizes provider construction.
type DirectoryProviderOption func(*DirectoryProvider)

// WithDirectoryLogger overrides the provider logger.
func WithDirectoryLogger(logger Logger) DirectoryProviderOption {
	return func(p *DirectoryProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDirectory overrides the staff directory, useful when the caller already
// owns a configured repository.
func WithDirectory(directory StaffDirectory) DirectoryProviderOption {
	return func(p *DirectoryProvider) {
		if directory != nil {
			p.directory = directory
		}
	}
}

// NewDirectoryProvider returns a provider backed by the staff directory in db.
func NewDirectoryProvider(db *bun.DB, opts ...DirectoryProviderOption) *DirectoryProvider {
	p := &DirectoryProvider{
		directory: NewStaffDirectory(db),
		logger:    defLogger{},
		sessions:  map[string]RemoteSession{},
		artifacts: map[string]string{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

var (
	_ Provider       = (*DirectoryProvider)(nil)
	_ ArtifactPurger = (*DirectoryProvider)(nil)
)

// Directory exposes the underlying staff directory for admin flows.
func (p *DirectoryProvider) Directory() StaffDirectory {
	return p.directory
}

func (p *DirectoryProvider) CreateSession(ctx context.Context, email, password string) (*RemoteSession, error) {
	p.mu.Lock()
	hasCurrent := p.current != ""
	p.mu.Unlock()

	if hasCurrent {
		return nil, goerrors.New("an active session already exists for this client", goerrors.CategoryConflict).
			WithTextCode(textCodeSessionConflict)
	}

	staff, err := p.directory.GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up staff record")
	}

	if !staff.Active || staff.DeletedAt != nil {
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, staff.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	remote := RemoteSession{
		ID:     uuid.New().String(),
		UserID: staff.UserID,
	}

	p.mu.Lock()
	p.sessions[remote.ID] = remote
	p.current = remote.ID
	// the client library the console embeds persists a namespaced session
	// marker; the purge path has to be able to clear it
	p.artifacts["session_marker"] = remote.ID
	p.mu.Unlock()

	return &remote, nil
}

// DeleteSession removes a session by id; SessionCurrent addresses whichever
// session is attached to this client. Unknown ids are not an error.
func (p *DirectoryProvider) DeleteSession(ctx context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sessionID == SessionCurrent {
		sessionID = p.current
	}

	if sessionID == "" {
		return nil
	}

	delete(p.sessions, sessionID)
	if p.current == sessionID {
		p.current = ""
	}

	return nil
}

func (p *DirectoryProvider) ListSessions(ctx context.Context) ([]RemoteSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]RemoteSession, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s)
	}
	return out, nil
}

// CurrentIdentity resolves the principal behind the current session. The
// identity is served even when the staff record is missing; staff resolution
// is a separate concern.
func (p *DirectoryProvider) CurrentIdentity(ctx context.Context) (*Identity, error) {
	p.mu.Lock()
	remote, ok := p.sessions[p.current]
	p.mu.Unlock()

	if !ok {
		return nil, goerrors.New("no active session", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	staff, err := p.directory.GetByUserID(ctx, remote.UserID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return &Identity{ID: remote.UserID}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load staff record for session")
	}

	return &Identity{
		ID:            remote.UserID,
		Email:         staff.Email,
		Name:          staff.Name,
		EmailVerified: true,
	}, nil
}

func (p *DirectoryProvider) StaffByIdentityID(ctx context.Context, identityID string) (*StaffProfile, error) {
	staff, err := p.directory.GetByUserID(ctx, identityID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load staff record")
	}
	return staff, nil
}

func (p *DirectoryProvider) CreateIdentity(ctx context.Context, email, password, name string) (*Identity, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	staff, err := p.directory.Register(ctx, &StaffProfile{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Active:       true,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create staff record")
	}

	return &Identity{
		ID:    staff.UserID,
		Email: staff.Email,
		Name:  staff.Name,
	}, nil
}

// PurgeLocalArtifacts clears the namespaced client-side state the embedded
// library leaves behind.
func (p *DirectoryProvider) PurgeLocalArtifacts(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k := range p.artifacts {
		delete(p.artifacts, k)
	}
	return nil
}
