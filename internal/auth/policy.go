package auth

// CanMutatePrivileged reports whether the principal may perform privileged
// mutations: category/supplier create-update-delete, product delete and CSV
// import. It is a pure predicate; denial never raises, callers report a
// permission error and leave state unchanged.
//
// Product create/update and stock-quantity updates are open to any
// authenticated principal and are not gated by this predicate.
func CanMutatePrivileged(p *Principal) bool {
	if p.Role() == RoleAnonymous {
		return false
	}
	return p.Role() == RoleAdmin || p.Staff || p.Superuser
}
