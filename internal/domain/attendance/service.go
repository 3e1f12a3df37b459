package attendance

import (
	"context"
	"time"
)

// Processor derives attendance day rows from raw punch events.
// ProcessRange is idempotent: re-running a range upserts the same rows.
type Processor interface {
	ProcessRange(ctx context.Context, companyID string, start, end time.Time) error
}
