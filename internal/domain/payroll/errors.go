package payroll

import "errors"

var (
	ErrNotFound          = errors.New("payslip not found")
	ErrForbidden         = errors.New("caller is not allowed to perform this action")
	ErrInvalidState      = errors.New("payslip status does not allow this transition")
	ErrLocked            = errors.New("payslip is paid and cannot be modified")
	ErrDuplicatePeriod   = errors.New("a payslip already exists for this employee and period")
	ErrNoActiveStructure = errors.New("no active salary structure for the employee")
)
