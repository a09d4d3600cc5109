package model

// Role is the floor role of an authenticated actor.
type Role string

const (
	RoleServer  Role = "SERVER"
	RoleKitchen Role = "KITCHEN"
	RoleBar     Role = "BAR"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleServer, RoleKitchen, RoleBar, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Privileged reports whether the role may close days and read the audit trail.
func (r Role) Privileged() bool {
	return r == RoleManager || r == RoleAdmin
}
