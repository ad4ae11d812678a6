package session

import (
	"strings"

	"github.com/google/uuid"
)

// Identity is the remote auth provider's representation of an authenticated
// principal. Ephemeral: created on login, destroyed on logout or cache
// invalidation.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	PhoneVerified bool   `json:"phone_verified,omitempty"`
	// Synthesized marks an identity degraded from the login email because the
	// post-login identity fetch failed. The session is still valid.
	Synthesized bool `json:"synthesized,omitempty"`
}

// HasUUID reports whether the identity id parses as a UUID.
func (i *Identity) HasUUID() bool {
	if i == nil {
		return false
	}
	_, err := uuid.Parse(i.ID)
	return err == nil
}

// SynthesizeIdentity builds a minimal identity from the login email when the
// provider's identity fetch is slow or failing. The id falls back to the
// session's user id, then to the email itself.
func SynthesizeIdentity(email, sessionUserID string) *Identity {
	id := sessionUserID
	if id == "" {
		id = email
	}

	return &Identity{
		ID:          id,
		Email:       email,
		Name:        emailLocalPart(email),
		Synthesized: true,
	}
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
