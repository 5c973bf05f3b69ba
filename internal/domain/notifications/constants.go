package notifications

const (
	TypeTimesheetSubmitted = "timesheet_submitted"
	TypeTimesheetApproved  = "timesheet_approved"
	TypeTimesheetRejected  = "timesheet_rejected"
	TypePayslipFinalized   = "payslip_finalized"
	TypePayslipPaid        = "payslip_paid"
)
