package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tovfikur/attsys-sub001/internal/domain/attendance"
)

type Processor struct {
	repo attendance.Repository
}

func NewProcessor(repo attendance.Repository) *Processor {
	return &Processor{repo: repo}
}

// ProcessRange folds raw punch events into per-day attendance rows for
// every employee that punched in the range. Re-running is safe: rows are
// upserted keyed by employee and date.
func (p *Processor) ProcessRange(ctx context.Context, companyID string, start, end time.Time) error {
	events, err := p.repo.ListEvents(ctx, companyID, start, end)
	if err != nil {
		return fmt.Errorf("failed to list attendance events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	// Group punches by employee and calendar day.
	type dayKey struct {
		employeeID string
		date       string
	}
	grouped := make(map[dayKey][]attendance.Event)
	for _, ev := range events {
		key := dayKey{ev.EmployeeID, ev.PunchedAt.UTC().Format("2006-01-02")}
		grouped[key] = append(grouped[key], ev)
	}

	shifts := make(map[string]*attendance.Shift)
	for key, punches := range grouped {
		shift, ok := shifts[key.employeeID]
		if !ok {
			found, err := p.repo.GetShiftForEmployee(ctx, key.employeeID, companyID)
			switch {
			case err == nil:
				shift = &found
			case errors.Is(err, attendance.ErrShiftNotFound):
				shift = nil
			default:
				return fmt.Errorf("failed to load shift: %w", err)
			}
			shifts[key.employeeID] = shift
		}

		date, _ := time.Parse("2006-01-02", key.date)
		day := buildDay(companyID, key.employeeID, date, punches, shift)
		if err := p.repo.UpsertDay(ctx, day); err != nil {
			return fmt.Errorf("failed to save attendance day: %w", err)
		}
	}

	slog.Info("processed attendance range",
		"company_id", companyID,
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"days", len(grouped),
	)
	return nil
}

// buildDay derives one attendance row from the day's punches. The first
// in-punch and last out-punch bound the worked window; a day with no
// out-punch stays incomplete.
func buildDay(companyID, employeeID string, date time.Time, punches []attendance.Event, shift *attendance.Shift) attendance.Day {
	sort.Slice(punches, func(i, j int) bool {
		return punches[i].PunchedAt.Before(punches[j].PunchedAt)
	})

	var firstIn, lastOut *time.Time
	for i := range punches {
		ev := punches[i]
		switch ev.Type {
		case attendance.PunchIn:
			if firstIn == nil {
				t := ev.PunchedAt
				firstIn = &t
			}
		case attendance.PunchOut:
			t := ev.PunchedAt
			lastOut = &t
		}
	}

	day := attendance.Day{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Date:       date,
		FirstIn:    firstIn,
		LastOut:    lastOut,
		UpdatedAt:  time.Now().UTC(),
	}

	if firstIn == nil || lastOut == nil || !lastOut.After(*firstIn) {
		day.Status = attendance.DayStatusIncomplete
		return day
	}

	day.Status = attendance.DayStatusPresent
	day.WorkedMinutes = int(lastOut.Sub(*firstIn).Minutes())

	if shift != nil {
		inMinutes := firstIn.Hour()*60 + firstIn.Minute()
		outMinutes := lastOut.Hour()*60 + lastOut.Minute()

		if inMinutes > shift.StartMinutes {
			day.LateMinutes = inMinutes - shift.StartMinutes
		}
		if outMinutes < shift.EndMinutes {
			day.EarlyLeaveMinutes = shift.EndMinutes - outMinutes
		}
		if outMinutes > shift.EndMinutes {
			day.OvertimeMinutes = outMinutes - shift.EndMinutes
		}
	}
	return day
}
