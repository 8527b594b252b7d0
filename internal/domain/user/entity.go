package user

import "time"

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleMedical    Role = "medical"
	RoleWarehouse  Role = "warehouse"
	RoleViewer     Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleDispatcher, RoleMedical, RoleWarehouse, RoleViewer:
		return true
	}
	return false
}

// CanManage reports whether the role may create/update registry entries and
// users. Everything else is read-only access to journals and reports.
func (r Role) CanManage() bool {
	return r == RoleSuperadmin || r == RoleAdmin
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}
