package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

// UserContext is the authenticated caller attached to each request.
type UserContext struct {
	UserID     string
	EmployeeID string
	RoleName   string
}

func (u UserContext) IsApproverRole() bool {
	switch u.RoleName {
	case RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}
