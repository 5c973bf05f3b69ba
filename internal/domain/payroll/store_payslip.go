package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const payslipColumns = `
    id, employee_id, structure_id, year, month,
    earnings, deductions, gross_earnings::text, total_deductions::text,
    net_pay::text, net_pay_words, total_hours, overtime_hours,
    weeks_reported, warnings, currency, status,
    finalized_at, paid_at, COALESCE(file_url, ''), created_at, updated_at`

// warningsArg keeps a nil slice out of the NOT NULL warnings column.
func warningsArg(warnings []string) []string {
	if warnings == nil {
		return []string{}
	}
	return warnings
}

func scanPayslip(row pgx.Row) (*Payslip, error) {
	var p Payslip
	var earnings, deductions []byte
	var gross, totalDeductions, net string
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.StructureID, &p.Year, &p.Month,
		&earnings, &deductions, &gross, &totalDeductions,
		&net, &p.NetPayWords, &p.Attendance.TotalHours, &p.Attendance.OvertimeHours,
		&p.Attendance.WeeksReported, &p.Warnings, &p.Currency, &p.Status,
		&p.FinalizedAt, &p.PaidAt, &p.FileURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(earnings, &p.Earnings); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(deductions, &p.Deductions); err != nil {
		return nil, err
	}
	if p.GrossEarnings, err = decimal.NewFromString(gross); err != nil {
		return nil, err
	}
	if p.TotalDeductions, err = decimal.NewFromString(totalDeductions); err != nil {
		return nil, err
	}
	if p.NetPay, err = decimal.NewFromString(net); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePayslip(ctx context.Context, slip *Payslip) error {
	earnings, err := json.Marshal(slip.Earnings)
	if err != nil {
		return err
	}
	deductions, err := json.Marshal(slip.Deductions)
	if err != nil {
		return err
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO payslips (
      id, employee_id, structure_id, year, month,
      earnings, deductions, gross_earnings, total_deductions,
      net_pay, net_pay_words, total_hours, overtime_hours,
      weeks_reported, warnings, currency, status, created_at, updated_at
    ) VALUES (
      $1, $2, $3, $4, $5,
      $6, $7, $8, $9,
      $10, $11, $12, $13,
      $14, $15, $16, $17, NOW(), NOW()
    )
    RETURNING created_at, updated_at
  `,
		slip.ID, slip.EmployeeID, slip.StructureID, slip.Year, slip.Month,
		earnings, deductions, slip.GrossEarnings.String(), slip.TotalDeductions.String(),
		slip.NetPay.String(), slip.NetPayWords, slip.Attendance.TotalHours,
		slip.Attendance.OvertimeHours, slip.Attendance.WeeksReported,
		warningsArg(slip.Warnings), slip.Currency, slip.Status,
	).Scan(&slip.CreatedAt, &slip.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicatePeriod
	}
	return err
}

// UpdateDraftPayslip replaces the computed figures of a draft row.
// Finalized and paid rows never change.
func (s *Store) UpdateDraftPayslip(ctx context.Context, slip *Payslip) error {
	earnings, err := json.Marshal(slip.Earnings)
	if err != nil {
		return err
	}
	deductions, err := json.Marshal(slip.Deductions)
	if err != nil {
		return err
	}
	row := s.DB.QueryRow(ctx, `
    UPDATE payslips
    SET structure_id = $2, earnings = $3, deductions = $4,
        gross_earnings = $5, total_deductions = $6, net_pay = $7,
        net_pay_words = $8, total_hours = $9, overtime_hours = $10,
        weeks_reported = $11, warnings = $12, updated_at = NOW()
    WHERE id = $1 AND status = $13
    RETURNING updated_at
  `,
		slip.ID, slip.StructureID, earnings, deductions,
		slip.GrossEarnings.String(), slip.TotalDeductions.String(), slip.NetPay.String(),
		slip.NetPayWords, slip.Attendance.TotalHours, slip.Attendance.OvertimeHours,
		slip.Attendance.WeeksReported, warningsArg(slip.Warnings), StatusDraft,
	)
	err = row.Scan(&slip.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.transitionFailure(ctx, slip.ID)
	}
	return err
}

func (s *Store) GetPayslip(ctx context.Context, id string) (*Payslip, error) {
	p, err := scanPayslip(s.DB.QueryRow(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Store) FindPayslip(ctx context.Context, employeeID string, year, month int) (*Payslip, error) {
	p, err := scanPayslip(s.DB.QueryRow(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips
    WHERE employee_id = $1 AND year = $2 AND month = $3
  `, employeeID, year, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Store) ListPayslips(ctx context.Context, employeeID string, limit, offset int) ([]Payslip, int, error) {
	where := ""
	args := []any{}
	if employeeID != "" {
		where = " WHERE employee_id = $1"
		args = append(args, employeeID)
	}
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payslips"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips`+where+`
    ORDER BY year DESC, month DESC
    LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

func (s *Store) MarkFinalized(ctx context.Context, id string, at time.Time) (*Payslip, error) {
	return s.transition(ctx, id, `
    UPDATE payslips
    SET status = $2, finalized_at = $3, updated_at = NOW()
    WHERE id = $1 AND status = $4
    RETURNING `+payslipColumns,
		id, StatusFinalized, at, StatusDraft)
}

func (s *Store) MarkPaid(ctx context.Context, id string, at time.Time) (*Payslip, error) {
	return s.transition(ctx, id, `
    UPDATE payslips
    SET status = $2, paid_at = $3, updated_at = NOW()
    WHERE id = $1 AND status = $4
    RETURNING `+payslipColumns,
		id, StatusPaid, at, StatusFinalized)
}

func (s *Store) UpdateFileURL(ctx context.Context, id, fileURL string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payslips SET file_url = $2, updated_at = NOW() WHERE id = $1
  `, id, fileURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) transition(ctx context.Context, id, query string, args ...any) (*Payslip, error) {
	p, err := scanPayslip(s.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.transitionFailure(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// transitionFailure distinguishes a missing row from one in the wrong
// status. A paid row surfaces as ErrLocked so callers can report the
// immutability explicitly.
func (s *Store) transitionFailure(ctx context.Context, id string) error {
	current, err := s.GetPayslip(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == StatusPaid {
		return ErrLocked
	}
	return ErrInvalidState
}
