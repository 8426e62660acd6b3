package domain

import "time"

// Role is the stored account tier.
type Role string

const (
	// RoleUser may read the catalog and write their own reviews and comments.
	RoleUser Role = "user"
	// RoleModerator may additionally edit or delete anyone's reviews and comments.
	RoleModerator Role = "moderator"
	// RoleAdmin has full control over the catalog and accounts.
	RoleAdmin Role = "admin"
)

// RoleMaxLength is the width of the role column.
const RoleMaxLength = 16

// Field limits for user accounts.
const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	NameMaxLength     = 150
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Privilege is the effective authorization tier of a request.
// Tiers are totally ordered: each one includes everything below it.
type Privilege int

const (
	PrivilegeAnonymous Privilege = iota
	PrivilegeUser
	PrivilegeModerator
	PrivilegeAdmin
)

// String returns the policy subject name for p.
func (p Privilege) String() string {
	switch p {
	case PrivilegeUser:
		return string(RoleUser)
	case PrivilegeModerator:
		return string(RoleModerator)
	case PrivilegeAdmin:
		return string(RoleAdmin)
	default:
		return "anonymous"
	}
}

// User is an account.
type User struct {
	ID          int64     `json:"-"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Bio         string    `json:"bio"`
	Role        Role      `json:"role"`
	IsSuperuser bool      `json:"-"`
	IsStaff     bool      `json:"-"`
	DateJoined  time.Time `json:"-"`
}

// EffectivePrivilege joins the role with the superuser and staff flags.
// A nil user is anonymous.
func EffectivePrivilege(u *User) Privilege {
	if u == nil {
		return PrivilegeAnonymous
	}
	if u.IsSuperuser || u.IsStaff {
		return PrivilegeAdmin
	}
	switch u.Role {
	case RoleAdmin:
		return PrivilegeAdmin
	case RoleModerator:
		return PrivilegeModerator
	default:
		return PrivilegeUser
	}
}

// ConfirmationCode is the pending single-use code for a user.
// Only the hash is persisted.
type ConfirmationCode struct {
	UserID    int64
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (c *ConfirmationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
