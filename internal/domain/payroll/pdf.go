package payroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"timecard/internal/domain/auth"
)

var enIN = message.NewPrinter(language.MustParse("en-IN"))

// formatAmount renders a money value with Indian digit grouping, e.g.
// 1234567.50 as 12,34,567.50.
func formatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return enIN.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// GeneratePayslipPDF renders the payslip to a file under the configured
// directory and records the path on the row. Any status may be printed;
// the sheet shows the status so a draft is recognizable on paper.
func (s *Service) GeneratePayslipPDF(ctx context.Context, caller auth.UserContext, id string) (string, error) {
	slip, err := s.GetPayslip(ctx, caller, id)
	if err != nil {
		return "", err
	}
	employee, err := s.employees.GetEmployee(ctx, slip.EmployeeID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.payslipDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.payslipDir, slip.ID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Payslip - %s %d", time.Month(slip.Month), slip.Year))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s %s", employee.FirstName, employee.LastName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Email: %s", employee.Email))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", slip.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Attendance")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Hours worked: %.2f (overtime %.2f, weeks %d)",
		slip.Attendance.TotalHours, slip.Attendance.OvertimeHours, slip.Attendance.WeeksReported))
	pdf.Ln(10)

	writeComponentTable(pdf, "Earnings", slip.Earnings)
	pdf.Ln(4)
	writeComponentTable(pdf, "Deductions", slip.Deductions)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(95, 8, fmt.Sprintf("Gross Earnings: %s %s", formatAmount(slip.GrossEarnings), slip.Currency))
	pdf.Ln(7)
	pdf.Cell(95, 8, fmt.Sprintf("Total Deductions: %s %s", formatAmount(slip.TotalDeductions), slip.Currency))
	pdf.Ln(7)
	pdf.Cell(95, 8, fmt.Sprintf("Net Pay: %s %s", formatAmount(slip.NetPay), slip.Currency))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 7, slip.NetPayWords)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	if err := s.store.UpdateFileURL(ctx, slip.ID, filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

func writeComponentTable(pdf *gofpdf.Fpdf, title string, components map[string]decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)

	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pdf.Cell(95, 6, name)
		pdf.CellFormat(60, 6, formatAmount(components[name]), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	if len(names) == 0 {
		pdf.Cell(95, 6, "None")
		pdf.Ln(6)
	}
}
