package timesheet

import (
	"context"
	"time"

	"timecard/internal/domain/directory"
)

// Directory is the slice of the employee/project/task catalogue this
// package needs. *directory.Store satisfies it.
type Directory interface {
	GetProject(ctx context.Context, projectID string) (*directory.Project, error)
	GetTask(ctx context.Context, taskID string) (*directory.Task, error)
	IsManagerOf(ctx context.Context, managerEmployeeID, employeeID string) (bool, error)
	SubordinateIDs(ctx context.Context, managerEmployeeID string) ([]string, error)
	UserIDForEmployee(ctx context.Context, employeeID string) (string, error)
}

// StoreAPI is the persistence contract for weekly timesheets. All reads
// exclude soft-deleted rows. The Mark* transitions are conditional on
// the current status so that two concurrent callers cannot both win;
// the loser gets ErrInvalidState (or ErrNotFound if the row is gone).
type StoreAPI interface {
	Get(ctx context.Context, id string) (*Timesheet, error)
	FindByWeekTask(ctx context.Context, employeeID string, weekStart time.Time, projectID, taskID string) (*Timesheet, error)
	ListWeek(ctx context.Context, employeeID string, weekStart time.Time) ([]Timesheet, error)
	Create(ctx context.Context, ts *Timesheet) error
	UpdateHours(ctx context.Context, ts *Timesheet) error
	MarkSubmitted(ctx context.Context, id string, at time.Time) (*Timesheet, error)
	MarkApproved(ctx context.Context, id, approverID, comments string, at time.Time) (*Timesheet, error)
	MarkRejected(ctx context.Context, id, comments string, at time.Time) (*Timesheet, error)
	MarkResubmitted(ctx context.Context, id string) (*Timesheet, error)
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Timesheet, int, error)
	PendingApprovals(ctx context.Context, employeeIDs []string, limit, offset int) ([]Timesheet, int, error)
	StatsSummary(ctx context.Context, employeeIDs []string, year int) (map[string]StatusStat, error)
}
