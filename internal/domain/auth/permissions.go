package auth

import "context"

const (
	PermTimesheetsRead    = "timesheets.read"
	PermTimesheetsWrite   = "timesheets.write"
	PermTimesheetsApprove = "timesheets.approve"
	PermTimesheetsDelete  = "timesheets.delete"
	PermPayrollRead       = "payroll.read"
	PermPayrollWrite      = "payroll.write"
	PermPayrollRun        = "payroll.run"
	PermPayrollFinalize   = "payroll.finalize"
	PermNotificationsRead = "notifications.read"
	PermAuditRead         = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermPayrollRead,
		PermNotificationsRead,
	},
	RoleManager: {
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermTimesheetsApprove,
		PermPayrollRead,
		PermNotificationsRead,
	},
	RoleHR: {
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermTimesheetsApprove,
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollRun,
		PermPayrollFinalize,
		PermNotificationsRead,
		PermAuditRead,
	},
	RoleAdmin: {
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermTimesheetsApprove,
		PermTimesheetsDelete,
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollRun,
		PermPayrollFinalize,
		PermNotificationsRead,
		PermAuditRead,
	},
}

// Checker answers permission checks from the static role map. Roles are
// fixed in this system, so no database round trip is needed.
type Checker struct{}

func (Checker) HasPermission(_ context.Context, roleName, permission string) (bool, error) {
	for _, candidate := range RolePermissions[roleName] {
		if candidate == permission {
			return true, nil
		}
	}
	return false, nil
}
