package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"timecard/internal/domain/auth"
	"timecard/internal/platform/config"
)

// Seed creates the admin login and a demo project/task pair so a fresh
// install can record timesheets immediately.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}
	return ensureDemoProject(ctx, pool)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		email = "admin@timecard.local"
	}
	if password == "" {
		password = "ChangeMe123!"
	}

	var existing string
	if err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var employeeID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO employees (first_name, last_name, email)
    VALUES ('System', 'Administrator', $1)
    RETURNING id
  `, email).Scan(&employeeID); err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role_name, employee_id, status)
    VALUES ($1, $2, $3, $4, 'active')
  `, email, string(hash), auth.RoleAdmin, employeeID)
	return err
}

func ensureDemoProject(ctx context.Context, pool *pgxpool.Pool) error {
	var projectID string
	err := pool.QueryRow(ctx, "SELECT id FROM projects WHERE name = $1", "Internal").Scan(&projectID)
	if err != nil {
		if err := pool.QueryRow(ctx, `
      INSERT INTO projects (name, is_active)
      VALUES ('Internal', true)
      RETURNING id
    `).Scan(&projectID); err != nil {
			return err
		}
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM tasks WHERE project_id = $1", projectID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO tasks (project_id, name, is_active, available_to_all)
    VALUES ($1, 'General', true, true)
  `, projectID)
	return err
}
