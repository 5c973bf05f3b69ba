package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStructure is the component breakdown used to compute payslips.
// Exactly one structure per employee is active at a time; creating a
// new one deactivates the previous.
type SalaryStructure struct {
	ID            string                     `json:"id"`
	EmployeeID    string                     `json:"employeeId"`
	BasicSalary   decimal.Decimal            `json:"basicSalary"`
	HRA           decimal.Decimal            `json:"hra"`
	Allowances    map[string]decimal.Decimal `json:"allowances,omitempty"`
	Deductions    map[string]decimal.Decimal `json:"deductions,omitempty"`
	EffectiveFrom time.Time                  `json:"effectiveFrom"`
	IsActive      bool                       `json:"isActive"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

// AttendanceSummary aggregates the employee's approved timesheets for
// the payslip period.
type AttendanceSummary struct {
	TotalHours    float64 `json:"totalHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	WeeksReported int     `json:"weeksReported"`
}

// Result is the output of one payslip computation, before persistence.
type Result struct {
	Earnings        map[string]decimal.Decimal `json:"earnings"`
	Deductions      map[string]decimal.Decimal `json:"deductions"`
	GrossEarnings   decimal.Decimal            `json:"grossEarnings"`
	TotalDeductions decimal.Decimal            `json:"totalDeductions"`
	NetPay          decimal.Decimal            `json:"netPay"`
	NetPayWords     string                     `json:"netPayWords"`
	Warnings        []string                   `json:"warnings,omitempty"`
}

// Payslip is a persisted computation for one employee and month.
// Unique on (employee, year, month). Paid payslips are immutable.
type Payslip struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employeeId"`
	StructureID string `json:"structureId"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Result
	Attendance  AttendanceSummary `json:"attendance"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	FinalizedAt *time.Time        `json:"finalizedAt,omitempty"`
	PaidAt      *time.Time        `json:"paidAt,omitempty"`
	FileURL     string            `json:"fileUrl,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// StructureInput carries caller-supplied fields for a new structure.
type StructureInput struct {
	EmployeeID    string
	BasicSalary   decimal.Decimal
	HRA           decimal.Decimal
	Allowances    map[string]decimal.Decimal
	Deductions    map[string]decimal.Decimal
	EffectiveFrom time.Time
}
