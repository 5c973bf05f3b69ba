package timesheet

import "time"

// DayHours is the per-day breakdown of one weekly timesheet row.
type DayHours struct {
	Monday    float64 `json:"mondayHours"`
	Tuesday   float64 `json:"tuesdayHours"`
	Wednesday float64 `json:"wednesdayHours"`
	Thursday  float64 `json:"thursdayHours"`
	Friday    float64 `json:"fridayHours"`
	Saturday  float64 `json:"saturdayHours"`
	Sunday    float64 `json:"sundayHours"`
}

func (d DayHours) Total() float64 {
	return d.Monday + d.Tuesday + d.Wednesday + d.Thursday + d.Friday + d.Saturday + d.Sunday
}

func (d DayHours) days() []struct {
	Name  string
	Hours float64
} {
	return []struct {
		Name  string
		Hours float64
	}{
		{"mondayHours", d.Monday},
		{"tuesdayHours", d.Tuesday},
		{"wednesdayHours", d.Wednesday},
		{"thursdayHours", d.Thursday},
		{"fridayHours", d.Friday},
		{"saturdayHours", d.Saturday},
		{"sundayHours", d.Sunday},
	}
}

// Timesheet is one row per employee+week+project+task combination.
// TotalHoursWorked is always recomputed from the day fields server-side.
type Timesheet struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	ProjectID     string    `json:"projectId"`
	TaskID        string    `json:"taskId,omitempty"`
	WeekStartDate time.Time `json:"weekStartDate"`
	WeekEndDate   time.Time `json:"weekEndDate"`
	WeekNumber    int       `json:"weekNumber"`
	Year          int       `json:"year"`
	DayHours
	TotalHoursWorked float64    `json:"totalHoursWorked"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status"`
	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	RejectedAt       *time.Time `json:"rejectedAt,omitempty"`
	ApproverComments string     `json:"approverComments,omitempty"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// DraftInput carries caller-supplied fields for create/update. The caller
// never supplies the total; it is derived from Hours.
type DraftInput struct {
	ProjectID     string
	TaskID        string
	WeekStartDate time.Time
	Hours         DayHours
	Description   string
}

// BulkFailure reports one failed item of a bulk operation.
type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports partial-success semantics: items that failed do not
// roll back items that succeeded.
type BulkResult struct {
	Succeeded []Timesheet   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// StatusStat is one row of the per-status aggregate summary.
type StatusStat struct {
	Count      int     `json:"count"`
	TotalHours float64 `json:"totalHours"`
}

// Filter narrows List queries. An empty EmployeeIDs slice means no
// employee restriction.
type Filter struct {
	EmployeeIDs []string
	Status      string
	ProjectID   string
	Year        int
	WeekNumber  int
}
