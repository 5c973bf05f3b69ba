package payroll

import (
	"context"
	"time"
)

// StoreAPI is the persistence contract for salary structures and
// payslips. Payslip transitions are conditional on the current status;
// the loser of a race gets ErrInvalidState, and any write against a
// paid row is ErrLocked.
type StoreAPI interface {
	CreateStructure(ctx context.Context, structure *SalaryStructure) error
	ActiveStructure(ctx context.Context, employeeID string, at time.Time) (*SalaryStructure, error)
	ListStructures(ctx context.Context, employeeID string, limit, offset int) ([]SalaryStructure, int, error)

	AttendanceForPeriod(ctx context.Context, employeeID string, from, to time.Time, standardWeekHours float64) (AttendanceSummary, error)

	CreatePayslip(ctx context.Context, slip *Payslip) error
	UpdateDraftPayslip(ctx context.Context, slip *Payslip) error
	GetPayslip(ctx context.Context, id string) (*Payslip, error)
	FindPayslip(ctx context.Context, employeeID string, year, month int) (*Payslip, error)
	ListPayslips(ctx context.Context, employeeID string, limit, offset int) ([]Payslip, int, error)
	MarkFinalized(ctx context.Context, id string, at time.Time) (*Payslip, error)
	MarkPaid(ctx context.Context, id string, at time.Time) (*Payslip, error)
	UpdateFileURL(ctx context.Context, id, fileURL string) error
}
