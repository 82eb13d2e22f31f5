package auth

import "inventory-service/internal/model"

// Role is the capability class of an acting principal, resolved once at the
// authentication boundary and passed explicitly into core calls.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployee  Role = "employee"
	RoleAnonymous Role = "anonymous"
)

// Principal identifies the authenticated actor of a request together with its
// role flags. A nil Principal means the request is unauthenticated.
type Principal struct {
	UserID    uint
	Username  string
	UserType  string
	Staff     bool
	Superuser bool
}

// Role returns the capability class of the principal.
func (p *Principal) Role() Role {
	if p == nil || p.UserID == 0 {
		return RoleAnonymous
	}
	if p.UserType == model.UserTypeAdmin {
		return RoleAdmin
	}
	return RoleEmployee
}

// FromUser builds the principal for a stored account.
func FromUser(u *model.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		UserID:    u.ID,
		Username:  u.Username,
		UserType:  u.UserType,
		Staff:     u.IsStaff,
		Superuser: u.IsSuperuser,
	}
}
