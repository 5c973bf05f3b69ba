package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testStructure() SalaryStructure {
	return SalaryStructure{
		EmployeeID:  "e1",
		BasicSalary: decimal.NewFromInt(50000),
		HRA:         decimal.NewFromInt(20000),
		Allowances: map[string]decimal.Decimal{
			"Special Allowance": decimal.NewFromInt(10000),
		},
		Deductions: map[string]decimal.Decimal{
			"Provident Fund":   decimal.NewFromInt(6000),
			"Professional Tax": decimal.NewFromInt(200),
		},
	}
}

func TestComputePayslip(t *testing.T) {
	result := ComputePayslip(testStructure(), AttendanceSummary{TotalHours: 160, WeeksReported: 4})
	if !result.GrossEarnings.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected gross 80000, got %s", result.GrossEarnings)
	}
	if !result.TotalDeductions.Equal(decimal.NewFromInt(6200)) {
		t.Fatalf("expected deductions 6200, got %s", result.TotalDeductions)
	}
	if !result.NetPay.Equal(decimal.NewFromInt(73800)) {
		t.Fatalf("expected net 73800, got %s", result.NetPay)
	}
	if result.NetPayWords != "Seventy Three Thousand Eight Hundred Rupees Only" {
		t.Fatalf("unexpected words: %q", result.NetPayWords)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}
}

func TestComputePayslipIsDeterministic(t *testing.T) {
	attendance := AttendanceSummary{TotalHours: 160, WeeksReported: 4}
	first := ComputePayslip(testStructure(), attendance)
	second := ComputePayslip(testStructure(), attendance)
	if !first.NetPay.Equal(second.NetPay) || first.NetPayWords != second.NetPayWords {
		t.Fatalf("expected identical results, got %s/%s", first.NetPay, second.NetPay)
	}
}

func TestComputePayslipClampsNegativeNet(t *testing.T) {
	structure := testStructure()
	structure.Deductions["Recovery"] = decimal.NewFromInt(100000)
	result := ComputePayslip(structure, AttendanceSummary{WeeksReported: 4})
	if !result.NetPay.Equal(decimal.Zero) {
		t.Fatalf("expected net clamped to 0, got %s", result.NetPay)
	}
	if !hasWarning(result.Warnings, WarningNegativeNet) {
		t.Fatalf("expected %s warning, got %v", WarningNegativeNet, result.Warnings)
	}
	if result.NetPayWords != "Zero Rupees Only" {
		t.Fatalf("unexpected words: %q", result.NetPayWords)
	}
}

func TestComputePayslipFlagsMissingAttendance(t *testing.T) {
	result := ComputePayslip(testStructure(), AttendanceSummary{})
	if !hasWarning(result.Warnings, WarningNoAttendance) {
		t.Fatalf("expected %s warning, got %v", WarningNoAttendance, result.Warnings)
	}
	if !result.NetPay.Equal(decimal.NewFromInt(73800)) {
		t.Fatalf("expected computation to proceed, got net %s", result.NetPay)
	}
}

func TestComputePayslipRoundsComponents(t *testing.T) {
	structure := testStructure()
	structure.Allowances["Fuel"] = decimal.NewFromFloat(1234.567)
	result := ComputePayslip(structure, AttendanceSummary{WeeksReported: 1})
	if !result.Earnings["Fuel"].Equal(decimal.NewFromFloat(1234.57)) {
		t.Fatalf("expected half-up rounding to 1234.57, got %s", result.Earnings["Fuel"])
	}
}

func hasWarning(warnings []string, want string) bool {
	for _, w := range warnings {
		if w == want {
			return true
		}
	}
	return false
}
