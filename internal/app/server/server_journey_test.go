package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"timecard/internal/platform/config"
)

// journey exercises the full stack against a real database: login with
// the seeded admin, record a draft week, submit it and read it back.
func TestTimesheetJourney(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Load()
	cfg.DatabaseURL = dsn
	cfg.JWTSecret = "journey-test-secret"
	cfg.RunMigrations = true
	cfg.RunSeed = true

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	defer app.DB.Close()

	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	token := login(t, srv.URL, "admin@timecard.local", "ChangeMe123!")

	projectID, taskID := demoProjectAndTask(t, app)
	weekStart := nextMonday()

	draft := map[string]any{
		"projectId":     projectID,
		"taskId":        taskID,
		"weekStartDate": weekStart.Format("2006-01-02"),
		"mondayHours":   8.0,
		"tuesdayHours":  8.0,
		"fridayHours":   4.0,
	}
	var created struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Total  float64 `json:"totalHoursWorked"`
		} `json:"data"`
	}
	doJSON(t, srv.URL+"/api/v1/timesheets", http.MethodPost, token, draft, http.StatusCreated, &created)
	if created.Data.Status != "Draft" {
		t.Fatalf("expected Draft, got %s", created.Data.Status)
	}
	if created.Data.Total != 20 {
		t.Fatalf("expected total 20, got %v", created.Data.Total)
	}

	var submitted struct {
		Data []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	doJSON(t, fmt.Sprintf("%s/api/v1/timesheets/%s/submit", srv.URL, created.Data.ID), http.MethodPut, token, nil, http.StatusOK, &submitted)
	if len(submitted.Data) != 1 || submitted.Data[0].Status != "Submitted" {
		t.Fatalf("expected one submitted row, got %+v", submitted.Data)
	}

	var listed struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	doJSON(t, srv.URL+"/api/v1/timesheets?status=Submitted", http.MethodGet, token, nil, http.StatusOK, &listed)
	if listed.Data.Total < 1 {
		t.Fatalf("expected at least one submitted timesheet, got %d", listed.Data.Total)
	}
}

func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()
	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	doJSON(t, baseURL+"/api/v1/auth/login", http.MethodPost, "", map[string]string{
		"email": email, "password": password,
	}, http.StatusOK, &out)
	if out.Data.Token == "" {
		t.Fatal("expected a token")
	}
	return out.Data.Token
}

func doJSON(t *testing.T, url, method, token string, payload any, wantStatus int, out any) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func demoProjectAndTask(t *testing.T, app *App) (string, string) {
	t.Helper()
	var projectID, taskID string
	err := app.DB.QueryRow(context.Background(),
		"SELECT id FROM projects WHERE name = 'Internal'").Scan(&projectID)
	if err != nil {
		t.Fatalf("seeded project missing: %v", err)
	}
	err = app.DB.QueryRow(context.Background(),
		"SELECT id FROM tasks WHERE project_id = $1 LIMIT 1", projectID).Scan(&taskID)
	if err != nil {
		t.Fatalf("seeded task missing: %v", err)
	}
	return projectID, taskID
}

func nextMonday() time.Time {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
