package payroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"timecard/internal/domain/auth"
	"timecard/internal/domain/directory"
)

type fakeStore struct {
	structures []SalaryStructure
	payslips   map[string]*Payslip
	attendance map[string]AttendanceSummary
}

func newFakePayrollStore() *fakeStore {
	return &fakeStore{
		payslips:   make(map[string]*Payslip),
		attendance: make(map[string]AttendanceSummary),
	}
}

func (f *fakeStore) CreateStructure(_ context.Context, structure *SalaryStructure) error {
	for i := range f.structures {
		if f.structures[i].EmployeeID == structure.EmployeeID {
			f.structures[i].IsActive = false
		}
	}
	structure.IsActive = true
	structure.CreatedAt = time.Now()
	f.structures = append(f.structures, *structure)
	return nil
}

func (f *fakeStore) ActiveStructure(_ context.Context, employeeID string, _ time.Time) (*SalaryStructure, error) {
	for i := range f.structures {
		if f.structures[i].EmployeeID == employeeID && f.structures[i].IsActive {
			st := f.structures[i]
			return &st, nil
		}
	}
	return nil, ErrNoActiveStructure
}

func (f *fakeStore) ListStructures(_ context.Context, employeeID string, _, _ int) ([]SalaryStructure, int, error) {
	var out []SalaryStructure
	for _, st := range f.structures {
		if st.EmployeeID == employeeID {
			out = append(out, st)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) AttendanceForPeriod(_ context.Context, employeeID string, _, _ time.Time, _ float64) (AttendanceSummary, error) {
	return f.attendance[employeeID], nil
}

func (f *fakeStore) CreatePayslip(_ context.Context, slip *Payslip) error {
	for _, existing := range f.payslips {
		if existing.EmployeeID == slip.EmployeeID && existing.Year == slip.Year && existing.Month == slip.Month {
			return ErrDuplicatePeriod
		}
	}
	slip.CreatedAt = time.Now()
	slip.UpdatedAt = slip.CreatedAt
	cp := *slip
	f.payslips[slip.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateDraftPayslip(_ context.Context, slip *Payslip) error {
	current, ok := f.payslips[slip.ID]
	if !ok {
		return ErrNotFound
	}
	switch current.Status {
	case StatusPaid:
		return ErrLocked
	case StatusFinalized:
		return ErrInvalidState
	}
	cp := *slip
	f.payslips[slip.ID] = &cp
	return nil
}

func (f *fakeStore) GetPayslip(_ context.Context, id string) (*Payslip, error) {
	slip, ok := f.payslips[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *slip
	return &cp, nil
}

func (f *fakeStore) FindPayslip(_ context.Context, employeeID string, year, month int) (*Payslip, error) {
	for _, slip := range f.payslips {
		if slip.EmployeeID == employeeID && slip.Year == year && slip.Month == month {
			cp := *slip
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListPayslips(_ context.Context, employeeID string, _, _ int) ([]Payslip, int, error) {
	var out []Payslip
	for _, slip := range f.payslips {
		if employeeID == "" || slip.EmployeeID == employeeID {
			out = append(out, *slip)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) mark(id, from, to string, mutate func(*Payslip)) (*Payslip, error) {
	slip, ok := f.payslips[id]
	if !ok {
		return nil, ErrNotFound
	}
	if slip.Status != from {
		if slip.Status == StatusPaid {
			return nil, ErrLocked
		}
		return nil, ErrInvalidState
	}
	slip.Status = to
	mutate(slip)
	cp := *slip
	return &cp, nil
}

func (f *fakeStore) MarkFinalized(_ context.Context, id string, at time.Time) (*Payslip, error) {
	return f.mark(id, StatusDraft, StatusFinalized, func(p *Payslip) { p.FinalizedAt = &at })
}

func (f *fakeStore) MarkPaid(_ context.Context, id string, at time.Time) (*Payslip, error) {
	return f.mark(id, StatusFinalized, StatusPaid, func(p *Payslip) { p.PaidAt = &at })
}

func (f *fakeStore) UpdateFileURL(_ context.Context, id, fileURL string) error {
	slip, ok := f.payslips[id]
	if !ok {
		return ErrNotFound
	}
	slip.FileURL = fileURL
	return nil
}

type fakeEmployees struct{}

func (fakeEmployees) GetEmployee(_ context.Context, employeeID string) (*directory.Employee, error) {
	return &directory.Employee{ID: employeeID, FirstName: "Asha", LastName: "Verma", Email: "asha@example.com"}, nil
}

var (
	hrUser  = auth.UserContext{EmployeeID: "hr1", RoleName: auth.RoleHR}
	empUser = auth.UserContext{EmployeeID: "e1", RoleName: auth.RoleEmployee}
)

func newPayrollService() (*Service, *fakeStore) {
	store := newFakePayrollStore()
	svc := NewService(store, fakeEmployees{}, "INR", 40, "storage/payslips")
	return svc, store
}

func seedStructure(t *testing.T, svc *Service) {
	t.Helper()
	_, err := svc.CreateStructure(context.Background(), StructureInput{
		EmployeeID:  "e1",
		BasicSalary: decimal.NewFromInt(50000),
		HRA:         decimal.NewFromInt(20000),
		Allowances:  map[string]decimal.Decimal{"Special Allowance": decimal.NewFromInt(10000)},
		Deductions: map[string]decimal.Decimal{
			"Provident Fund":   decimal.NewFromInt(6000),
			"Professional Tax": decimal.NewFromInt(200),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateStructureDeactivatesPrevious(t *testing.T) {
	svc, store := newPayrollService()
	seedStructure(t, svc)
	seedStructure(t, svc)
	active := 0
	for _, st := range store.structures {
		if st.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active structure, got %d", active)
	}
}

func TestCreateStructureValidation(t *testing.T) {
	svc, _ := newPayrollService()
	_, err := svc.CreateStructure(context.Background(), StructureInput{EmployeeID: "e1"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "basicSalary" {
		t.Fatalf("expected basicSalary validation error, got %v", err)
	}
}

func TestGeneratePayslip(t *testing.T) {
	svc, store := newPayrollService()
	seedStructure(t, svc)
	store.attendance["e1"] = AttendanceSummary{TotalHours: 168, OvertimeHours: 8, WeeksReported: 4}

	slip, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slip.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", slip.Status)
	}
	if !slip.NetPay.Equal(decimal.NewFromInt(73800)) {
		t.Fatalf("expected net 73800, got %s", slip.NetPay)
	}
	if slip.Attendance.WeeksReported != 4 {
		t.Fatalf("expected attendance carried over, got %+v", slip.Attendance)
	}
}

func TestGeneratePayslipRequiresStructure(t *testing.T) {
	svc, _ := newPayrollService()
	_, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8)
	if !errors.Is(err, ErrNoActiveStructure) {
		t.Fatalf("expected ErrNoActiveStructure, got %v", err)
	}
}

func TestGeneratePayslipRecomputesDraft(t *testing.T) {
	svc, _ := newPayrollService()
	seedStructure(t, svc)
	first, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected draft recomputed in place, got new id %s", second.ID)
	}
}

func TestGeneratePayslipRespectsLifecycle(t *testing.T) {
	svc, _ := newPayrollService()
	seedStructure(t, svc)
	slip, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Finalize(context.Background(), slip.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for finalized slip, got %v", err)
	}
	if _, err := svc.MarkPaid(context.Background(), slip.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for paid slip, got %v", err)
	}
	if _, err := svc.Finalize(context.Background(), slip.ID); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked finalizing a paid slip, got %v", err)
	}
}

func TestMarkPaidRequiresFinalized(t *testing.T) {
	svc, _ := newPayrollService()
	seedStructure(t, svc)
	slip, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkPaid(context.Background(), slip.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for draft, got %v", err)
	}
}

func TestPayslipVisibility(t *testing.T) {
	svc, _ := newPayrollService()
	seedStructure(t, svc)
	slip, err := svc.GeneratePayslip(context.Background(), "e1", 2025, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetPayslip(context.Background(), empUser, slip.ID); err != nil {
		t.Fatalf("owner should see own payslip: %v", err)
	}
	stranger := auth.UserContext{EmployeeID: "e2", RoleName: auth.RoleEmployee}
	if _, err := svc.GetPayslip(context.Background(), stranger, slip.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetPayslip(context.Background(), hrUser, slip.ID); err != nil {
		t.Fatalf("hr should see any payslip: %v", err)
	}

	if _, _, err := svc.ListPayslips(context.Background(), stranger, "e1", 50, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden listing another employee, got %v", err)
	}
	items, _, err := svc.ListPayslips(context.Background(), empUser, "", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 payslip, got %d", len(items))
	}
}
