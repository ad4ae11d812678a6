package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ConsoleClaims represents structured claims for a console token: the JWT
// minted for the hosting UI once the remote session exists.
type ConsoleClaims interface {
	Subject() string
	UserID() string
	Roles() []string
	OrgCode() string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of ConsoleClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string         `json:"uid,omitempty"`
	RoleTags []string       `json:"roles,omitempty"`
	Org      string         `json:"org,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"` // extension payload
}

// Verify interface compliance
var _ ConsoleClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID, falling back to the subject claim
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Roles returns the role tags carried by the token
func (c *JWTClaims) Roles() []string {
	return c.RoleTags
}

// OrgCode returns the organization scope the token was minted under
func (c *JWTClaims) OrgCode() string {
	return c.Org
}

// HasRole checks for an exact role tag match
func (c *JWTClaims) HasRole(role string) bool {
	for _, tag := range c.RoleTags {
		if tag == role {
			return true
		}
	}
	return false
}

// ClaimsMetadata exposes metadata extensions for optional context enrichment.
func (c *JWTClaims) ClaimsMetadata() map[string]any {
	return c.Metadata
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// StaffClaims builds token claims from an identity and its resolved profile.
// The profile may be nil (degraded login), in which case only the identity
// fields are carried.
func StaffClaims(identity *Identity, profile *StaffProfile) *JWTClaims {
	claims := &JWTClaims{}
	if identity != nil {
		claims.RegisteredClaims.Subject = identity.ID
		claims.UID = identity.ID
	}
	if profile != nil {
		claims.RoleTags = append([]string(nil), profile.Roles...)
		claims.Org = profile.PrimaryOrgCode()
	}
	return claims
}
