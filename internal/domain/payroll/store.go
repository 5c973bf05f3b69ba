package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"timecard/internal/domain/timesheet"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateStructure inserts a new active structure and deactivates the
// employee's previous one in the same transaction.
func (s *Store) CreateStructure(ctx context.Context, structure *SalaryStructure) error {
	allowances, err := json.Marshal(structure.Allowances)
	if err != nil {
		return err
	}
	deductions, err := json.Marshal(structure.Deductions)
	if err != nil {
		return err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE salary_structures SET is_active = FALSE
    WHERE employee_id = $1 AND is_active
  `, structure.EmployeeID); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx, `
    INSERT INTO salary_structures (
      id, employee_id, basic_salary, hra, allowances, deductions,
      effective_from, is_active, created_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW())
    RETURNING created_at
  `,
		structure.ID, structure.EmployeeID,
		structure.BasicSalary.String(), structure.HRA.String(),
		allowances, deductions, structure.EffectiveFrom,
	).Scan(&structure.CreatedAt); err != nil {
		return err
	}
	structure.IsActive = true
	return tx.Commit(ctx)
}

const structureColumns = `
    id, employee_id, basic_salary::text, hra::text, allowances, deductions,
    effective_from, is_active, created_at`

func scanStructure(row pgx.Row) (*SalaryStructure, error) {
	var st SalaryStructure
	var basic, hra string
	var allowances, deductions []byte
	err := row.Scan(
		&st.ID, &st.EmployeeID, &basic, &hra, &allowances, &deductions,
		&st.EffectiveFrom, &st.IsActive, &st.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if st.BasicSalary, err = decimal.NewFromString(basic); err != nil {
		return nil, err
	}
	if st.HRA, err = decimal.NewFromString(hra); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(allowances, &st.Allowances); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(deductions, &st.Deductions); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) ActiveStructure(ctx context.Context, employeeID string, at time.Time) (*SalaryStructure, error) {
	st, err := scanStructure(s.DB.QueryRow(ctx, `
    SELECT `+structureColumns+`
    FROM salary_structures
    WHERE employee_id = $1 AND is_active AND effective_from <= $2
    ORDER BY effective_from DESC
    LIMIT 1
  `, employeeID, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveStructure
	}
	return st, err
}

func (s *Store) ListStructures(ctx context.Context, employeeID string, limit, offset int) ([]SalaryStructure, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM salary_structures WHERE employee_id = $1", employeeID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+structureColumns+`
    FROM salary_structures
    WHERE employee_id = $1
    ORDER BY effective_from DESC
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []SalaryStructure
	for rows.Next() {
		st, err := scanStructure(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *st)
	}
	return items, total, rows.Err()
}

// AttendanceForPeriod aggregates approved timesheet hours whose week
// starts inside [from, to). Overtime is whatever exceeds the standard
// hours for the number of weeks reported.
func (s *Store) AttendanceForPeriod(ctx context.Context, employeeID string, from, to time.Time, standardWeekHours float64) (AttendanceSummary, error) {
	var summary AttendanceSummary
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(total_hours_worked), 0),
           COUNT(DISTINCT week_start_date)
    FROM timesheets
    WHERE employee_id = $1 AND status = $2
      AND week_start_date >= $3 AND week_start_date < $4
      AND deleted_at IS NULL
  `, employeeID, timesheet.StatusApproved, from, to).Scan(&summary.TotalHours, &summary.WeeksReported)
	if err != nil {
		return AttendanceSummary{}, err
	}
	if overtime := summary.TotalHours - standardWeekHours*float64(summary.WeeksReported); overtime > 0 {
		summary.OvertimeHours = overtime
	}
	return summary, nil
}
