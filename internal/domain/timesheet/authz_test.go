package timesheet

import (
	"testing"

	"timecard/internal/domain/auth"
)

func TestCanApproveRequiresApproverRole(t *testing.T) {
	employee := auth.UserContext{EmployeeID: "e1", RoleName: auth.RoleEmployee}
	if CanApprove(employee, "e2") {
		t.Fatal("employee role must not approve")
	}
	manager := auth.UserContext{EmployeeID: "m1", RoleName: auth.RoleManager}
	if !CanApprove(manager, "e2") {
		t.Fatal("manager should approve another employee's sheet")
	}
}

func TestCanApproveForbidsSelfApproval(t *testing.T) {
	admin := auth.UserContext{EmployeeID: "a1", RoleName: auth.RoleAdmin}
	if CanApprove(admin, "a1") {
		t.Fatal("self-approval must be forbidden even for admins")
	}
}

func TestCanResubmitOwnerOnly(t *testing.T) {
	admin := auth.UserContext{EmployeeID: "a1", RoleName: auth.RoleAdmin}
	if CanResubmit(admin, "e1") {
		t.Fatal("resubmit must be owner-only")
	}
	owner := auth.UserContext{EmployeeID: "e1", RoleName: auth.RoleEmployee}
	if !CanResubmit(owner, "e1") {
		t.Fatal("owner should resubmit their own sheet")
	}
}

func TestCanDelete(t *testing.T) {
	owner := auth.UserContext{EmployeeID: "e1", RoleName: auth.RoleEmployee}
	if !CanDelete(owner, "e1") {
		t.Fatal("owner should delete their own draft")
	}
	manager := auth.UserContext{EmployeeID: "m1", RoleName: auth.RoleManager}
	if CanDelete(manager, "e1") {
		t.Fatal("manager must not delete another employee's draft")
	}
	admin := auth.UserContext{EmployeeID: "a1", RoleName: auth.RoleAdmin}
	if !CanDelete(admin, "e1") {
		t.Fatal("admin should delete any draft")
	}
}
