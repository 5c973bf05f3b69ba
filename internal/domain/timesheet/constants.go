package timesheet

const (
	StatusDraft     = "Draft"
	StatusSubmitted = "Submitted"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
)

const (
	// MaxDayHours caps a single day entry.
	MaxDayHours = 24.0
	// MaxWeekHours is the absolute ceiling for one week; deployments may
	// configure a lower cap.
	MaxWeekHours = 168.0
)
