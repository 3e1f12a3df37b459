package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tovfikur/attsys-sub001/internal/domain/attendance"
	"github.com/tovfikur/attsys-sub001/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListEvents(ctx context.Context, companyID string, start, end time.Time) ([]attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, employee_id, punched_at, type, source, created_at
		FROM attendance_events
		WHERE company_id = $1 AND punched_at >= $2 AND punched_at < $3 + interval '1 day'
		ORDER BY punched_at
	`, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	var events []attendance.Event
	for rows.Next() {
		var e attendance.Event
		err := rows.Scan(&e.ID, &e.CompanyID, &e.EmployeeID, &e.PunchedAt, &e.Type, &e.Source, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *attendanceRepository) GetShiftForEmployee(ctx context.Context, employeeID, companyID string) (attendance.Shift, error) {
	q := GetQuerier(ctx, r.db)

	var s attendance.Shift
	var workingDays string
	err := q.QueryRow(ctx, `
		SELECT s.id, s.company_id, s.name, s.start_minutes, s.end_minutes, s.working_days
		FROM employees e
		JOIN shifts s ON s.id = e.shift_id
		WHERE e.id = $1 AND e.company_id = $2
	`, employeeID, companyID).Scan(&s.ID, &s.CompanyID, &s.Name, &s.StartMinutes, &s.EndMinutes, &workingDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Shift{}, attendance.ErrShiftNotFound
		}
		return attendance.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	for _, d := range strings.Split(workingDays, ",") {
		if d = strings.TrimSpace(d); d != "" {
			s.WorkingDays = append(s.WorkingDays, d)
		}
	}
	return s, nil
}

func (r *attendanceRepository) UpsertDay(ctx context.Context, day attendance.Day) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO attendance_days (
			id, company_id, employee_id, date, status, first_in, last_out,
			worked_minutes, late_minutes, early_leave_minutes, overtime_minutes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			first_in = EXCLUDED.first_in,
			last_out = EXCLUDED.last_out,
			worked_minutes = EXCLUDED.worked_minutes,
			late_minutes = EXCLUDED.late_minutes,
			early_leave_minutes = EXCLUDED.early_leave_minutes,
			overtime_minutes = EXCLUDED.overtime_minutes,
			updated_at = EXCLUDED.updated_at
	`, day.ID, day.CompanyID, day.EmployeeID, day.Date, day.Status, day.FirstIn, day.LastOut,
		day.WorkedMinutes, day.LateMinutes, day.EarlyLeaveMinutes, day.OvertimeMinutes, day.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance day: %w", err)
	}
	return nil
}
