package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) Get(ctx context.Context, id string) (*Timesheet, error) {
	ts, err := scanTimesheet(s.DB.QueryRow(ctx, `
    SELECT `+timesheetColumns+`
    FROM timesheets
    WHERE id = $1 AND deleted_at IS NULL
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ts, err
}

func (s *Store) FindByWeekTask(ctx context.Context, employeeID string, weekStart time.Time, projectID, taskID string) (*Timesheet, error) {
	ts, err := scanTimesheet(s.DB.QueryRow(ctx, `
    SELECT `+timesheetColumns+`
    FROM timesheets
    WHERE employee_id = $1 AND week_start_date = $2
      AND project_id = $3 AND COALESCE(task_id::text, '') = $4
      AND deleted_at IS NULL
  `, employeeID, weekStart, projectID, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ts, err
}

func (s *Store) ListWeek(ctx context.Context, employeeID string, weekStart time.Time) ([]Timesheet, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+timesheetColumns+`
    FROM timesheets
    WHERE employee_id = $1 AND week_start_date = $2 AND deleted_at IS NULL
    ORDER BY created_at
  `, employeeID, weekStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTimesheets(rows)
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Timesheet, int, error) {
	where, args := buildFilter(filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM timesheets"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
    SELECT %s
    FROM timesheets%s
    ORDER BY week_start_date DESC, created_at DESC
    LIMIT $%d OFFSET $%d
  `, timesheetColumns, where, len(args)+1, len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectTimesheets(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) PendingApprovals(ctx context.Context, employeeIDs []string, limit, offset int) ([]Timesheet, int, error) {
	filter := Filter{EmployeeIDs: employeeIDs, Status: StatusSubmitted}
	return s.List(ctx, filter, limit, offset)
}

func (s *Store) StatsSummary(ctx context.Context, employeeIDs []string, year int) (map[string]StatusStat, error) {
	where, args := buildFilter(Filter{EmployeeIDs: employeeIDs, Year: year})
	rows, err := s.DB.Query(ctx, `
    SELECT status, COUNT(1), COALESCE(SUM(total_hours_worked), 0)
    FROM timesheets`+where+`
    GROUP BY status
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]StatusStat)
	for rows.Next() {
		var status string
		var stat StatusStat
		if err := rows.Scan(&status, &stat.Count, &stat.TotalHours); err != nil {
			return nil, err
		}
		stats[status] = stat
	}
	return stats, rows.Err()
}

func buildFilter(filter Filter) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	var args []any
	add := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if len(filter.EmployeeIDs) > 0 {
		add("employee_id = ANY($%d)", filter.EmployeeIDs)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.ProjectID != "" {
		add("project_id = $%d", filter.ProjectID)
	}
	if filter.Year > 0 {
		add("year = $%d", filter.Year)
	}
	if filter.WeekNumber > 0 {
		add("week_number = $%d", filter.WeekNumber)
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func collectTimesheets(rows pgx.Rows) ([]Timesheet, error) {
	var items []Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ts)
	}
	return items, rows.Err()
}
