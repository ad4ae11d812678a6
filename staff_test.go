package session_test

import (
	"testing"

	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
)

func TestStaffProfileNormalizeOrgCodes(t *testing.T) {
	profile := &session.StaffProfile{
		Organizations: []string{" hq ", "branch-2", "HQ"},
		Organization:  "branch-2",
		OrgUnits:      []string{"", "warehouse"},
	}

	profile.Normalize("US")

	assert.Equal(t, []string{"HQ", "BRANCH-2", "WAREHOUSE"}, profile.OrgCodes)
	assert.Equal(t, "HQ", profile.PrimaryOrgCode())
}

func TestStaffProfileNormalizePhones(t *testing.T) {
	profile := &session.StaffProfile{
		Phones: []string{"(212) 555-0175", "  ", "not-a-number", "+447911123456"},
	}

	profile.Normalize("US")

	// invalid entries are kept raw, blanks dropped
	assert.Equal(t, []string{"+12125550175", "not-a-number", "+447911123456"}, profile.Phones)
}

func TestStaffProfileNormalizeIsIdempotent(t *testing.T) {
	profile := &session.StaffProfile{
		Organizations: []string{"hq"},
		Phones:        []string{"+12125550175"},
	}

	profile.Normalize("US").Normalize("US")

	assert.Equal(t, []string{"HQ"}, profile.OrgCodes)
	assert.Equal(t, []string{"+12125550175"}, profile.Phones)
}

func TestStaffProfileRoles(t *testing.T) {
	var nilProfile *session.StaffProfile
	assert.False(t, nilProfile.HasRole(session.RoleStaff))
	assert.False(t, nilProfile.HasAnyRole(session.RoleStaff, session.RoleSystemAdmin))

	profile := &session.StaffProfile{Roles: []string{session.RoleStoreKeeper}}
	assert.True(t, profile.HasRole(session.RoleStoreKeeper))
	assert.False(t, profile.HasRole(session.RoleSystemAdmin))
	assert.True(t, profile.HasAnyRole(session.RoleSystemAdmin, session.RoleStoreKeeper))
}

func TestStaffProfilePrimaryOrgCodeEmpty(t *testing.T) {
	var nilProfile *session.StaffProfile
	assert.Equal(t, "", nilProfile.PrimaryOrgCode())
	assert.Equal(t, "", (&session.StaffProfile{}).PrimaryOrgCode())
}

func TestSynthesizeIdentity(t *testing.T) {
	identity := session.SynthesizeIdentity("ada@example.com", "uid-9")

	assert.True(t, identity.Synthesized)
	assert.Equal(t, "uid-9", identity.ID)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, "ada", identity.Name)

	// no session user id: fall back to the email itself
	fallback := session.SynthesizeIdentity("ada@example.com", "")
	assert.Equal(t, "ada@example.com", fallback.ID)
}
