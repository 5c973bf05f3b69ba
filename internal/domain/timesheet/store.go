package timesheet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const timesheetColumns = `
    id, employee_id, project_id, COALESCE(task_id::text, ''),
    week_start_date, week_end_date, week_number, year,
    monday_hours, tuesday_hours, wednesday_hours, thursday_hours,
    friday_hours, saturday_hours, sunday_hours, total_hours_worked,
    COALESCE(description, ''), status,
    submitted_at, approved_at, rejected_at,
    COALESCE(approver_comments, ''), COALESCE(approved_by::text, ''),
    created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimesheet(row rowScanner) (*Timesheet, error) {
	var ts Timesheet
	err := row.Scan(
		&ts.ID, &ts.EmployeeID, &ts.ProjectID, &ts.TaskID,
		&ts.WeekStartDate, &ts.WeekEndDate, &ts.WeekNumber, &ts.Year,
		&ts.Monday, &ts.Tuesday, &ts.Wednesday, &ts.Thursday,
		&ts.Friday, &ts.Saturday, &ts.Sunday, &ts.TotalHoursWorked,
		&ts.Description, &ts.Status,
		&ts.SubmittedAt, &ts.ApprovedAt, &ts.RejectedAt,
		&ts.ApproverComments, &ts.ApprovedBy,
		&ts.CreatedAt, &ts.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) Create(ctx context.Context, ts *Timesheet) error {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO timesheets (
      id, employee_id, project_id, task_id,
      week_start_date, week_end_date, week_number, year,
      monday_hours, tuesday_hours, wednesday_hours, thursday_hours,
      friday_hours, saturday_hours, sunday_hours, total_hours_worked,
      description, status, created_at, updated_at
    ) VALUES (
      $1, $2, $3, NULLIF($4, '')::uuid,
      $5, $6, $7, $8,
      $9, $10, $11, $12,
      $13, $14, $15, $16,
      NULLIF($17, ''), $18, NOW(), NOW()
    )
    RETURNING created_at, updated_at
  `,
		ts.ID, ts.EmployeeID, ts.ProjectID, ts.TaskID,
		ts.WeekStartDate, ts.WeekEndDate, ts.WeekNumber, ts.Year,
		ts.Monday, ts.Tuesday, ts.Wednesday, ts.Thursday,
		ts.Friday, ts.Saturday, ts.Sunday, ts.TotalHoursWorked,
		ts.Description, ts.Status,
	).Scan(&ts.CreatedAt, &ts.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateWeekTask
	}
	return err
}

// UpdateHours rewrites the hour fields and description of an editable
// row. Only drafts and rejected sheets are editable; project, task and
// week are fixed once the row exists.
func (s *Store) UpdateHours(ctx context.Context, ts *Timesheet) error {
	row := s.DB.QueryRow(ctx, `
    UPDATE timesheets
    SET monday_hours = $2, tuesday_hours = $3, wednesday_hours = $4,
        thursday_hours = $5, friday_hours = $6, saturday_hours = $7,
        sunday_hours = $8, total_hours_worked = $9,
        description = NULLIF($10, ''), updated_at = NOW()
    WHERE id = $1 AND status IN ($11, $12) AND deleted_at IS NULL
    RETURNING updated_at
  `,
		ts.ID,
		ts.Monday, ts.Tuesday, ts.Wednesday, ts.Thursday,
		ts.Friday, ts.Saturday, ts.Sunday, ts.TotalHoursWorked,
		ts.Description, StatusDraft, StatusRejected,
	)
	err := row.Scan(&ts.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.transitionFailure(ctx, ts.ID)
	}
	return err
}

func (s *Store) MarkSubmitted(ctx context.Context, id string, at time.Time) (*Timesheet, error) {
	return s.transition(ctx, `
    UPDATE timesheets
    SET status = $2, submitted_at = $3, updated_at = NOW()
    WHERE id = $1 AND status = $4 AND deleted_at IS NULL
    RETURNING `+timesheetColumns,
		id, StatusSubmitted, at, StatusDraft)
}

func (s *Store) MarkApproved(ctx context.Context, id, approverID, comments string, at time.Time) (*Timesheet, error) {
	return s.transition(ctx, `
    UPDATE timesheets
    SET status = $2, approved_at = $3, approved_by = $4,
        approver_comments = NULLIF($5, ''), updated_at = NOW()
    WHERE id = $1 AND status = $6 AND deleted_at IS NULL
    RETURNING `+timesheetColumns,
		id, StatusApproved, at, approverID, comments, StatusSubmitted)
}

// MarkRejected records the rejection reason. approved_by stays NULL;
// it names the approving actor only.
func (s *Store) MarkRejected(ctx context.Context, id, comments string, at time.Time) (*Timesheet, error) {
	return s.transition(ctx, `
    UPDATE timesheets
    SET status = $2, rejected_at = $3,
        approver_comments = $4, updated_at = NOW()
    WHERE id = $1 AND status = $5 AND deleted_at IS NULL
    RETURNING `+timesheetColumns,
		id, StatusRejected, at, comments, StatusSubmitted)
}

// MarkResubmitted returns a rejected row to draft and clears the whole
// submission trail; the corrected week then goes through a normal
// submit. Draft is reachable from rejected only through here.
func (s *Store) MarkResubmitted(ctx context.Context, id string) (*Timesheet, error) {
	return s.transition(ctx, `
    UPDATE timesheets
    SET status = $2, submitted_at = NULL, rejected_at = NULL,
        approver_comments = NULL, approved_by = NULL, updated_at = NOW()
    WHERE id = $1 AND status = $3 AND deleted_at IS NULL
    RETURNING `+timesheetColumns,
		id, StatusDraft, StatusRejected)
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE timesheets
    SET deleted_at = NOW(), updated_at = NOW()
    WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) transition(ctx context.Context, query string, args ...any) (*Timesheet, error) {
	ts, err := scanTimesheet(s.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.transitionFailure(ctx, args[0].(string))
	}
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// transitionFailure distinguishes "row does not exist" from "row exists
// in the wrong status" after a guarded update matched nothing.
func (s *Store) transitionFailure(ctx context.Context, id string) error {
	_, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidState
}
