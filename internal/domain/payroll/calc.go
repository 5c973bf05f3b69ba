package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

var zero = decimal.Zero

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputePayslip derives one payslip from a salary structure and the
// attendance aggregate for the period. It is pure and deterministic:
// components are rounded to two decimals up front and summed in sorted
// order, so the same inputs always give byte-identical output.
//
// Net pay is clamped at zero; deductions exceeding gross flag the
// result instead of going negative. Missing attendance does not block
// the computation, it only flags the result.
func ComputePayslip(structure SalaryStructure, attendance AttendanceSummary) Result {
	earnings := map[string]decimal.Decimal{
		ComponentBasic: round2(structure.BasicSalary),
	}
	if structure.HRA.IsPositive() {
		earnings[ComponentHRA] = round2(structure.HRA)
	}
	for name, amount := range structure.Allowances {
		earnings[name] = round2(amount)
	}
	deductions := make(map[string]decimal.Decimal, len(structure.Deductions))
	for name, amount := range structure.Deductions {
		deductions[name] = round2(amount)
	}

	gross := sumComponents(earnings)
	totalDeductions := sumComponents(deductions)
	net := gross.Sub(totalDeductions)

	var warnings []string
	if net.IsNegative() {
		net = zero
		warnings = append(warnings, WarningNegativeNet)
	}
	if attendance.WeeksReported == 0 {
		warnings = append(warnings, WarningNoAttendance)
	}

	return Result{
		Earnings:        earnings,
		Deductions:      deductions,
		GrossEarnings:   gross,
		TotalDeductions: totalDeductions,
		NetPay:          net,
		NetPayWords:     AmountInWords(net),
		Warnings:        warnings,
	}
}

func sumComponents(components map[string]decimal.Decimal) decimal.Decimal {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	total := zero
	for _, name := range names {
		total = total.Add(components[name])
	}
	return total
}
