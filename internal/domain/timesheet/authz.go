package timesheet

import "timecard/internal/domain/auth"

// CanEdit reports whether the caller may create or modify a draft row.
// Drafts belong to their owner; approver roles do not get to edit other
// people's drafts.
func CanEdit(caller auth.UserContext, employeeID string) bool {
	return caller.EmployeeID == employeeID
}

// CanSubmit mirrors CanEdit: only the owner submits their own week.
func CanSubmit(caller auth.UserContext, employeeID string) bool {
	return caller.EmployeeID == employeeID
}

// CanApprove requires an approver role and forbids self-approval even
// for admins.
func CanApprove(caller auth.UserContext, employeeID string) bool {
	return caller.IsApproverRole() && caller.EmployeeID != employeeID
}

// CanResubmit is owner-only regardless of role. A manager fixing a
// rejected sheet on someone's behalf would hide who actually entered
// the corrected hours.
func CanResubmit(caller auth.UserContext, employeeID string) bool {
	return caller.EmployeeID == employeeID
}

// CanDelete restricts hard removal of drafts to the owner and admins.
func CanDelete(caller auth.UserContext, employeeID string) bool {
	return caller.EmployeeID == employeeID || caller.RoleName == auth.RoleAdmin
}
