package session_test

import (
	"context"
	"sync"
	"time"

	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/mock"
)

// MockProvider implements session.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateSession(ctx context.Context, email, password string) (*session.RemoteSession, error) {
	args := m.Called(ctx, email, password)
	var remote *session.RemoteSession
	if v := args.Get(0); v != nil {
		remote = v.(*session.RemoteSession)
	}
	return remote, args.Error(1)
}

func (m *MockProvider) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockProvider) ListSessions(ctx context.Context) ([]session.RemoteSession, error) {
	args := m.Called(ctx)
	var sessions []session.RemoteSession
	if v := args.Get(0); v != nil {
		sessions = v.([]session.RemoteSession)
	}
	return sessions, args.Error(1)
}

func (m *MockProvider) CurrentIdentity(ctx context.Context) (*session.Identity, error) {
	args := m.Called(ctx)
	var identity *session.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*session.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockProvider) StaffByIdentityID(ctx context.Context, identityID string) (*session.StaffProfile, error) {
	args := m.Called(ctx, identityID)
	var profile *session.StaffProfile
	if v := args.Get(0); v != nil {
		profile = v.(*session.StaffProfile)
	}
	return profile, args.Error(1)
}

func (m *MockProvider) CreateIdentity(ctx context.Context, email, password, name string) (*session.Identity, error) {
	args := m.Called(ctx, email, password, name)
	var identity *session.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*session.Identity)
	}
	return identity, args.Error(1)
}

// MockPurgingProvider adds the ArtifactPurger surface.
type MockPurgingProvider struct {
	MockProvider
}

func (m *MockPurgingProvider) PurgeLocalArtifacts(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// recordingSink captures emitted activity events. Safe for use from timer
// goroutines.
type recordingSink struct {
	mu     sync.Mutex
	events []session.ActivityEvent
}

func (s *recordingSink) Record(ctx context.Context, event session.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) recorded() []session.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) eventTypes() []session.ActivityEventType {
	events := s.recorded()
	out := make([]session.ActivityEventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventType)
	}
	return out
}

// noSleep skips settle delays in tests.
func noSleep(ctx context.Context, d time.Duration) {}
