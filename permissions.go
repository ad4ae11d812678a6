package session

// Permission predicates are pure, stateless functions over a profile's role
// tags. Every predicate returns false on a nil profile. A profile with an
// empty role set has no permissions beyond CanCreateRequests, which any
// authenticated staff holds.

// IsSystemAdmin requires exactly the system-admin role.
func IsSystemAdmin(p *StaffProfile) bool {
	return p.HasRole(RoleSystemAdmin)
}

// IsAdmin reports whether the profile holds any administrative role.
func IsAdmin(p *StaffProfile) bool {
	return p.HasAnyRole(RoleSystemAdmin, RoleAssetAdmin)
}

func CanManageAssets(p *StaffProfile) bool {
	return p.HasAnyRole(RoleSystemAdmin, RoleAssetAdmin)
}

func CanApproveRequests(p *StaffProfile) bool {
	return p.HasAnyRole(RoleSystemAdmin, RoleAssetAdmin, RoleDepartmentHead)
}

func CanIssueAssets(p *StaffProfile) bool {
	return p.HasAnyRole(RoleSystemAdmin, RoleAssetAdmin, RoleStoreKeeper)
}

// CanManageUsers requires exactly the system-admin role.
func CanManageUsers(p *StaffProfile) bool {
	return p.HasRole(RoleSystemAdmin)
}

func CanManageSettings(p *StaffProfile) bool {
	return p.HasRole(RoleSystemAdmin)
}

func CanViewReports(p *StaffProfile) bool {
	return p.HasAnyRole(RoleSystemAdmin, RoleAssetAdmin, RoleDepartmentHead)
}

// CanCreateRequests is true for any authenticated staff, regardless of role.
func CanCreateRequests(p *StaffProfile) bool {
	return p != nil
}

func CanManageRequests(p *StaffProfile) bool {
	return p.HasAnyRole(RoleSystemAdmin, RoleAssetAdmin, RoleDepartmentHead)
}
