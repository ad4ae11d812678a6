package session

import (
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// Role tags carried by a staff profile. The set is never empty for an active
// profile; an empty set evaluates to "no permissions".
const (
	RoleSystemAdmin    = "SYSTEM_ADMIN"
	RoleAssetAdmin     = "ASSET_ADMIN"
	RoleDepartmentHead = "DEPARTMENT_HEAD"
	RoleStoreKeeper    = "STORE_KEEPER"
	RoleStaff          = "STAFF"
)

// StaffProfile is the domain record for an identity: roles, department,
// contact details, and organization membership. Distinct from Identity, which
// is the provider's view of the principal.
type StaffProfile struct {
	bun.BaseModel  `bun:"table:staff,alias:stf" json:"-"`
	ID             string     `bun:"id,pk" json:"id"`
	UserID         string     `bun:"user_id,notnull" json:"user_id"`
	Name           string     `bun:"name,notnull" json:"name"`
	Email          string     `bun:"email,notnull,unique" json:"email"`
	SecondaryEmail string     `bun:"secondary_email" json:"secondary_email,omitempty"`
	Phones         []string   `bun:"phones,array" json:"phones,omitempty"`
	Department     string     `bun:"department" json:"department,omitempty"`
	Roles          []string   `bun:"roles,array" json:"roles"`
	Active         bool       `bun:"active,notnull" json:"active"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`

	// Membership identifiers as the record provides them: a list, a singular
	// field, or the legacy field, in whatever mix the store returns.
	Organizations []string `bun:"organizations,array" json:"organizations,omitempty"`
	Organization  string   `bun:"organization" json:"organization,omitempty"`
	OrgUnits      []string `bun:"org_units,array" json:"org_units,omitempty"`

	// OrgCodes is the canonical, normalized membership list. Populated by
	// Normalize; the resolver scopes cached profiles against it.
	OrgCodes []string `bun:"org_codes,array" json:"org_codes,omitempty"`
}

// HasRole reports whether the profile carries the given role tag.
func (p *StaffProfile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the profile carries at least one of the tags.
func (p *StaffProfile) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// PrimaryOrgCode returns the first normalized membership code, or "" when the
// profile is not organization scoped.
func (p *StaffProfile) PrimaryOrgCode() string {
	if p == nil || len(p.OrgCodes) == 0 {
		return ""
	}
	return p.OrgCodes[0]
}

// Normalize flattens the membership fields into OrgCodes and rewrites phone
// numbers to E.164 where they parse. Safe to call repeatedly.
func (p *StaffProfile) Normalize(defaultRegion string) *StaffProfile {
	if p == nil {
		return nil
	}

	p.OrgCodes = normalizeOrgCodes(p.Organizations, p.Organization, p.OrgUnits)
	p.Phones = normalizePhones(p.Phones, defaultRegion)

	return p
}

func normalizeOrgCodes(lists ...any) []string {
	seen := map[string]struct{}{}
	codes := []string{}

	add := func(raw string) {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	for _, entry := range lists {
		switch v := entry.(type) {
		case string:
			add(v)
		case []string:
			for _, raw := range v {
				add(raw)
			}
		}
	}

	return codes
}

func normalizePhones(phones []string, defaultRegion string) []string {
	if len(phones) == 0 {
		return phones
	}

	if defaultRegion == "" {
		defaultRegion = "US"
	}

	out := make([]string, 0, len(phones))
	for _, raw := range phones {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		num, err := phonenumbers.Parse(raw, defaultRegion)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			// keep the raw value, normalization is best-effort
			out = append(out, raw)
			continue
		}
		out = append(out, phonenumbers.Format(num, phonenumbers.E164))
	}

	return out
}
