package auth

import (
	"context"
	"testing"
)

func TestEmployeeCannotApprove(t *testing.T) {
	checker := Checker{}
	allowed, err := checker.HasPermission(context.Background(), RoleEmployee, PermTimesheetsApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("expected employee to lack approve permission")
	}
}

func TestApproverRoles(t *testing.T) {
	checker := Checker{}
	for _, role := range []string{RoleManager, RoleHR, RoleAdmin} {
		allowed, err := checker.HasPermission(context.Background(), role, PermTimesheetsApprove)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("expected %s to approve timesheets", role)
		}
	}
}

func TestOnlyAdminDeletes(t *testing.T) {
	checker := Checker{}
	for _, role := range []string{RoleEmployee, RoleManager, RoleHR} {
		allowed, _ := checker.HasPermission(context.Background(), role, PermTimesheetsDelete)
		if allowed {
			t.Fatalf("expected %s to lack delete permission", role)
		}
	}
	allowed, _ := checker.HasPermission(context.Background(), RoleAdmin, PermTimesheetsDelete)
	if !allowed {
		t.Fatal("expected admin to delete timesheets")
	}
}
