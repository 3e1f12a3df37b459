package attendance

import (
	"context"
	"time"
)

type Repository interface {
	ListEvents(ctx context.Context, companyID string, start, end time.Time) ([]Event, error)
	GetShiftForEmployee(ctx context.Context, employeeID, companyID string) (Shift, error)
	UpsertDay(ctx context.Context, day Day) error
}
