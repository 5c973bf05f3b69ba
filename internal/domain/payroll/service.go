package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timecard/internal/domain/auth"
	"timecard/internal/domain/directory"
)

// EmployeeLookup is the slice of the employee catalogue this package
// needs. *directory.Store satisfies it.
type EmployeeLookup interface {
	GetEmployee(ctx context.Context, employeeID string) (*directory.Employee, error)
}

// ValidationError reports malformed payroll input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type Service struct {
	store             StoreAPI
	employees         EmployeeLookup
	currency          string
	standardWeekHours float64
	payslipDir        string
	now               func() time.Time
}

func NewService(store StoreAPI, employees EmployeeLookup, currency string, standardWeekHours float64, payslipDir string) *Service {
	return &Service{
		store:             store,
		employees:         employees,
		currency:          currency,
		standardWeekHours: standardWeekHours,
		payslipDir:        payslipDir,
		now:               time.Now,
	}
}

// CreateStructure records a new active salary structure for the
// employee, deactivating the previous one.
func (s *Service) CreateStructure(ctx context.Context, in StructureInput) (*SalaryStructure, error) {
	if in.EmployeeID == "" {
		return nil, invalid("employeeId", "is required")
	}
	if !in.BasicSalary.IsPositive() {
		return nil, invalid("basicSalary", "must be greater than zero")
	}
	if in.HRA.IsNegative() {
		return nil, invalid("hra", "must not be negative")
	}
	for name, amount := range in.Allowances {
		if amount.IsNegative() {
			return nil, invalid("allowances", name+" must not be negative")
		}
	}
	for name, amount := range in.Deductions {
		if amount.IsNegative() {
			return nil, invalid("deductions", name+" must not be negative")
		}
	}
	if _, err := s.employees.GetEmployee(ctx, in.EmployeeID); err != nil {
		return nil, invalid("employeeId", "unknown employee")
	}

	effectiveFrom := in.EffectiveFrom
	if effectiveFrom.IsZero() {
		effectiveFrom = s.now()
	}
	structure := &SalaryStructure{
		ID:            uuid.NewString(),
		EmployeeID:    in.EmployeeID,
		BasicSalary:   in.BasicSalary,
		HRA:           in.HRA,
		Allowances:    in.Allowances,
		Deductions:    in.Deductions,
		EffectiveFrom: effectiveFrom,
	}
	if err := s.store.CreateStructure(ctx, structure); err != nil {
		return nil, err
	}
	return structure, nil
}

func (s *Service) ActiveStructure(ctx context.Context, employeeID string) (*SalaryStructure, error) {
	if employeeID == "" {
		return nil, invalid("employeeId", "is required")
	}
	return s.store.ActiveStructure(ctx, employeeID, s.now())
}

func (s *Service) ListStructures(ctx context.Context, employeeID string, limit, offset int) ([]SalaryStructure, int, error) {
	return s.store.ListStructures(ctx, employeeID, limit, offset)
}

// GeneratePayslip computes the payslip for one employee and calendar
// month. An existing draft for the period is recomputed in place; a
// finalized one is an invalid-state error and a paid one is locked.
func (s *Service) GeneratePayslip(ctx context.Context, employeeID string, year, month int) (*Payslip, error) {
	if employeeID == "" {
		return nil, invalid("employeeId", "is required")
	}
	if month < 1 || month > 12 {
		return nil, invalid("month", "must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, invalid("year", "is out of range")
	}

	structure, err := s.store.ActiveStructure(ctx, employeeID, s.now())
	if err != nil {
		return nil, err
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	attendance, err := s.store.AttendanceForPeriod(ctx, employeeID, from, from.AddDate(0, 1, 0), s.standardWeekHours)
	if err != nil {
		return nil, err
	}
	result := ComputePayslip(*structure, attendance)

	existing, err := s.store.FindPayslip(ctx, employeeID, year, month)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case StatusPaid:
			return nil, ErrLocked
		case StatusFinalized:
			return nil, ErrInvalidState
		}
		existing.StructureID = structure.ID
		existing.Result = result
		existing.Attendance = attendance
		if err := s.store.UpdateDraftPayslip(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	slip := &Payslip{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		StructureID: structure.ID,
		Year:        year,
		Month:       month,
		Result:      result,
		Attendance:  attendance,
		Currency:    s.currency,
		Status:      StatusDraft,
	}
	if err := s.store.CreatePayslip(ctx, slip); err != nil {
		return nil, err
	}
	return slip, nil
}

func (s *Service) GetPayslip(ctx context.Context, caller auth.UserContext, id string) (*Payslip, error) {
	slip, err := s.store.GetPayslip(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewPayslip(caller, slip.EmployeeID) {
		return nil, ErrForbidden
	}
	return slip, nil
}

// ListPayslips scopes to the caller's own slips unless the caller is
// hr or admin.
func (s *Service) ListPayslips(ctx context.Context, caller auth.UserContext, employeeID string, limit, offset int) ([]Payslip, int, error) {
	switch caller.RoleName {
	case auth.RoleHR, auth.RoleAdmin:
	default:
		if employeeID != "" && employeeID != caller.EmployeeID {
			return nil, 0, ErrForbidden
		}
		employeeID = caller.EmployeeID
	}
	return s.store.ListPayslips(ctx, employeeID, limit, offset)
}

// Finalize locks the computed figures. Only drafts can be finalized.
func (s *Service) Finalize(ctx context.Context, id string) (*Payslip, error) {
	return s.store.MarkFinalized(ctx, id, s.now())
}

// MarkPaid closes the payslip for good. Only finalized slips can be
// paid, and a paid slip never changes again.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Payslip, error) {
	return s.store.MarkPaid(ctx, id, s.now())
}

func canViewPayslip(caller auth.UserContext, employeeID string) bool {
	if caller.EmployeeID == employeeID {
		return true
	}
	return caller.RoleName == auth.RoleHR || caller.RoleName == auth.RoleAdmin
}
