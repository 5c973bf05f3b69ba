package timesheet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"timecard/internal/domain/auth"
)

type Service struct {
	store     StoreAPI
	dir       Directory
	weeklyCap float64
	now       func() time.Time
}

func NewService(store StoreAPI, dir Directory, weeklyCap float64) *Service {
	return &Service{store: store, dir: dir, weeklyCap: weeklyCap, now: time.Now}
}

// CreateOrUpdateDraft upserts the row keyed by employee, week, project
// and task. A fresh combination creates a draft; an existing draft or
// rejected row gets its hours replaced; a submitted or approved row is
// a conflict.
func (s *Service) CreateOrUpdateDraft(ctx context.Context, caller auth.UserContext, employeeID string, in DraftInput) (*Timesheet, error) {
	if employeeID == "" {
		employeeID = caller.EmployeeID
	}
	if !CanEdit(caller, employeeID) {
		return nil, ErrForbidden
	}
	if in.ProjectID == "" {
		return nil, invalid("projectId", "is required")
	}
	weekStart := NormalizeWeekStart(in.WeekStartDate)
	if err := ValidateWeekStart(weekStart); err != nil {
		return nil, err
	}
	if err := ValidateHours(in.Hours, s.weeklyCap); err != nil {
		return nil, err
	}
	if err := s.validateTaskAccess(ctx, caller, employeeID, in.ProjectID, in.TaskID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByWeekTask(ctx, employeeID, weekStart, in.ProjectID, in.TaskID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status != StatusDraft && existing.Status != StatusRejected {
			return nil, ErrDuplicateWeekTask
		}
		existing.DayHours = in.Hours
		existing.TotalHoursWorked = in.Hours.Total()
		existing.Description = in.Description
		if err := s.store.UpdateHours(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	year, week := WeekNumber(weekStart)
	ts := &Timesheet{
		ID:               uuid.NewString(),
		EmployeeID:       employeeID,
		ProjectID:        in.ProjectID,
		TaskID:           in.TaskID,
		WeekStartDate:    weekStart,
		WeekEndDate:      WeekEnd(weekStart),
		WeekNumber:       week,
		Year:             year,
		DayHours:         in.Hours,
		TotalHoursWorked: in.Hours.Total(),
		Description:      in.Description,
		Status:           StatusDraft,
	}
	if err := s.store.Create(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// SubmitWeek moves every draft of the employee's week to submitted.
// Submission is all-or-nothing per week by design: a week with no
// drafts left to submit is an invalid-state error.
func (s *Service) SubmitWeek(ctx context.Context, caller auth.UserContext, employeeID string, weekStart time.Time) ([]Timesheet, error) {
	if employeeID == "" {
		employeeID = caller.EmployeeID
	}
	if !CanSubmit(caller, employeeID) {
		return nil, ErrForbidden
	}
	weekStart = NormalizeWeekStart(weekStart)
	if err := ValidateWeekStart(weekStart); err != nil {
		return nil, err
	}
	submitted, err := s.submitWeekDrafts(ctx, employeeID, weekStart, nil)
	if err != nil {
		return nil, err
	}
	if len(submitted) == 0 {
		return nil, ErrInvalidState
	}
	return submitted, nil
}

// submitWeekDrafts submits every remaining draft of one employee-week.
// done tracks ids already handled so bulk callers do not double-count.
func (s *Service) submitWeekDrafts(ctx context.Context, employeeID string, weekStart time.Time, done map[string]bool) ([]Timesheet, error) {
	week, err := s.store.ListWeek(ctx, employeeID, weekStart)
	if err != nil {
		return nil, err
	}
	if len(week) == 0 {
		return nil, ErrNotFound
	}
	var submitted []Timesheet
	for _, row := range week {
		if row.Status != StatusDraft || (done != nil && done[row.ID]) {
			continue
		}
		updated, err := s.store.MarkSubmitted(ctx, row.ID, s.now())
		if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrNotFound) {
			// Raced with another submit of the same week.
			continue
		}
		if err != nil {
			return nil, err
		}
		if done != nil {
			done[updated.ID] = true
		}
		submitted = append(submitted, *updated)
	}
	return submitted, nil
}

// Submit submits the week containing the named timesheet. The row must
// still be a draft; its sibling drafts go with it.
func (s *Service) Submit(ctx context.Context, caller auth.UserContext, id string) ([]Timesheet, error) {
	ts, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanSubmit(caller, ts.EmployeeID) {
		return nil, ErrForbidden
	}
	if ts.Status != StatusDraft {
		return nil, ErrInvalidState
	}
	return s.submitWeekDrafts(ctx, ts.EmployeeID, ts.WeekStartDate, nil)
}

// BulkSubmit submits the named timesheets with partial-success
// semantics. Submitting any row also submits its sibling drafts of the
// same week, so one employee-week never ends up half submitted.
func (s *Service) BulkSubmit(ctx context.Context, caller auth.UserContext, ids []string) (*BulkResult, error) {
	result := &BulkResult{}
	done := make(map[string]bool)
	for _, id := range ids {
		if done[id] {
			continue
		}
		ts, err := s.store.Get(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		if !CanSubmit(caller, ts.EmployeeID) {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: ErrForbidden.Error()})
			continue
		}
		if ts.Status != StatusDraft {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: ErrInvalidState.Error()})
			continue
		}
		submitted, err := s.submitWeekDrafts(ctx, ts.EmployeeID, ts.WeekStartDate, done)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, submitted...)
	}
	return result, nil
}

func (s *Service) Approve(ctx context.Context, caller auth.UserContext, id, comments string) (*Timesheet, error) {
	ts, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkApproverScope(ctx, caller, ts.EmployeeID); err != nil {
		return nil, err
	}
	return s.store.MarkApproved(ctx, id, caller.EmployeeID, comments, s.now())
}

// Reject requires comments so the employee knows what to fix before
// resubmitting.
func (s *Service) Reject(ctx context.Context, caller auth.UserContext, id, comments string) (*Timesheet, error) {
	if comments == "" {
		return nil, invalid("approverComments", "is required when rejecting")
	}
	ts, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkApproverScope(ctx, caller, ts.EmployeeID); err != nil {
		return nil, err
	}
	return s.store.MarkRejected(ctx, id, comments, s.now())
}

func (s *Service) BulkApprove(ctx context.Context, caller auth.UserContext, ids []string, comments string) (*BulkResult, error) {
	result := &BulkResult{}
	for _, id := range ids {
		ts, err := s.Approve(ctx, caller, id, comments)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, *ts)
	}
	return result, nil
}

func (s *Service) BulkReject(ctx context.Context, caller auth.UserContext, ids []string, comments string) (*BulkResult, error) {
	if comments == "" {
		return nil, invalid("approverComments", "is required when rejecting")
	}
	result := &BulkResult{}
	for _, id := range ids {
		ts, err := s.Reject(ctx, caller, id, comments)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, *ts)
	}
	return result, nil
}

// Resubmit returns a rejected sheet to draft so the employee can
// correct it and submit the week again.
func (s *Service) Resubmit(ctx context.Context, caller auth.UserContext, id string) (*Timesheet, error) {
	ts, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanResubmit(caller, ts.EmployeeID) {
		return nil, ErrForbidden
	}
	return s.store.MarkResubmitted(ctx, id)
}

func (s *Service) Get(ctx context.Context, caller auth.UserContext, id string) (*Timesheet, error) {
	ts, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	visible, err := s.canView(ctx, caller, ts.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrForbidden
	}
	return ts, nil
}

// List scopes the query to what the caller may see: employees their own
// rows, managers their reports plus themselves, hr and admin everything.
func (s *Service) List(ctx context.Context, caller auth.UserContext, filter Filter, limit, offset int) ([]Timesheet, int, error) {
	scoped, err := s.scopeFilter(ctx, caller, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.store.List(ctx, scoped, limit, offset)
}

func (s *Service) PendingApprovals(ctx context.Context, caller auth.UserContext, limit, offset int) ([]Timesheet, int, error) {
	ids, err := s.approvalScope(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	if caller.RoleName == auth.RoleManager && len(ids) == 0 {
		// A manager with no reports has an empty queue, not a global one.
		return nil, 0, nil
	}
	return s.store.PendingApprovals(ctx, ids, limit, offset)
}

func (s *Service) StatsSummary(ctx context.Context, caller auth.UserContext, year int) (map[string]StatusStat, error) {
	scoped, err := s.scopeFilter(ctx, caller, Filter{Year: year})
	if err != nil {
		return nil, err
	}
	return s.store.StatsSummary(ctx, scoped.EmployeeIDs, year)
}

// Delete soft-deletes a draft. Submitted and later states are part of
// the approval record and stay.
func (s *Service) Delete(ctx context.Context, caller auth.UserContext, id string) error {
	ts, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(caller, ts.EmployeeID) {
		return ErrForbidden
	}
	if ts.Status != StatusDraft {
		return ErrInvalidState
	}
	return s.store.SoftDelete(ctx, id)
}

// validateTaskAccess checks the project is active and, when a task is
// named, that it belongs to the project, is active, and is available to
// the employee. Approver roles bypass the assignment restriction.
func (s *Service) validateTaskAccess(ctx context.Context, caller auth.UserContext, employeeID, projectID, taskID string) error {
	project, err := s.dir.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil || !project.IsActive {
		return invalid("projectId", "project not found or inactive")
	}
	if taskID == "" {
		return nil
	}
	task, err := s.dir.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil || !task.IsActive {
		return invalid("taskId", "task not found or inactive")
	}
	if task.ProjectID != projectID {
		return invalid("taskId", "task does not belong to the project")
	}
	if caller.IsApproverRole() {
		return nil
	}
	if !task.AvailableToAll && task.AssignedTo != employeeID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) checkApproverScope(ctx context.Context, caller auth.UserContext, employeeID string) error {
	if !CanApprove(caller, employeeID) {
		return ErrForbidden
	}
	if caller.RoleName != auth.RoleManager {
		return nil
	}
	manages, err := s.dir.IsManagerOf(ctx, caller.EmployeeID, employeeID)
	if err != nil {
		return err
	}
	if !manages {
		return ErrForbidden
	}
	return nil
}

func (s *Service) canView(ctx context.Context, caller auth.UserContext, employeeID string) (bool, error) {
	if caller.EmployeeID == employeeID {
		return true, nil
	}
	switch caller.RoleName {
	case auth.RoleHR, auth.RoleAdmin:
		return true, nil
	case auth.RoleManager:
		return s.dir.IsManagerOf(ctx, caller.EmployeeID, employeeID)
	}
	return false, nil
}

func (s *Service) scopeFilter(ctx context.Context, caller auth.UserContext, filter Filter) (Filter, error) {
	switch caller.RoleName {
	case auth.RoleHR, auth.RoleAdmin:
		return filter, nil
	case auth.RoleManager:
		visible := map[string]bool{caller.EmployeeID: true}
		subs, err := s.dir.SubordinateIDs(ctx, caller.EmployeeID)
		if err != nil {
			return Filter{}, err
		}
		for _, id := range subs {
			visible[id] = true
		}
		if len(filter.EmployeeIDs) == 0 {
			filter.EmployeeIDs = make([]string, 0, len(visible))
			for id := range visible {
				filter.EmployeeIDs = append(filter.EmployeeIDs, id)
			}
			return filter, nil
		}
		for _, id := range filter.EmployeeIDs {
			if !visible[id] {
				return Filter{}, ErrForbidden
			}
		}
		return filter, nil
	default:
		for _, id := range filter.EmployeeIDs {
			if id != caller.EmployeeID {
				return Filter{}, ErrForbidden
			}
		}
		filter.EmployeeIDs = []string{caller.EmployeeID}
		return filter, nil
	}
}

func (s *Service) approvalScope(ctx context.Context, caller auth.UserContext) ([]string, error) {
	switch caller.RoleName {
	case auth.RoleHR, auth.RoleAdmin:
		return nil, nil
	case auth.RoleManager:
		return s.dir.SubordinateIDs(ctx, caller.EmployeeID)
	default:
		return nil, ErrForbidden
	}
}
