package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, email, COALESCE(manager_id::text, ''), created_at
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.ManagerID, &emp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, is_active
    FROM projects
    WHERE id = $1
  `, projectID).Scan(&project.ID, &project.Name, &project.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Store) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	err := s.DB.QueryRow(ctx, `
    SELECT id, project_id, name, is_active, available_to_all, COALESCE(assigned_to::text, '')
    FROM tasks
    WHERE id = $1
  `, taskID).Scan(&task.ID, &task.ProjectID, &task.Name, &task.IsActive, &task.AvailableToAll, &task.AssignedTo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Store) IsManagerOf(ctx context.Context, managerEmployeeID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE id = $1 AND manager_id = $2
  `, employeeID, managerEmployeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) SubordinateIDs(ctx context.Context, managerEmployeeID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM employees WHERE manager_id = $1", managerEmployeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) UserIDForEmployee(ctx context.Context, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM users WHERE employee_id = $1", employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
