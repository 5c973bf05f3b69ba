package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timecard/internal/domain/auth"
)

const testSecret = "test-secret"

func TestAuthAttachesUser(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:     "u1",
		EmployeeID: "e1",
		RoleName:   auth.RoleManager,
	}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got auth.UserContext
	var ok bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("expected user in context")
	}
	if got.UserID != "u1" || got.EmployeeID != "e1" || got.RoleName != auth.RoleManager {
		t.Fatalf("unexpected user context: %+v", got)
	}
}

func TestAuthIgnoresInvalidToken(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("expected no user for a bad token")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequirePermission(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:   "u1",
		RoleName: auth.RoleEmployee,
	}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	protected := Auth(testSecret)(RequirePermission(auth.PermTimesheetsApprove, auth.Checker{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/timesheets/t1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee role, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/timesheets/t1/approve", nil)
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}
