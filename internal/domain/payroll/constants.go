package payroll

const (
	StatusDraft     = "draft"
	StatusFinalized = "finalized"
	StatusPaid      = "paid"

	WarningNegativeNet  = "negative_net"
	WarningNoAttendance = "no_attendance"

	ComponentBasic = "Basic Salary"
	ComponentHRA   = "HRA"
)
