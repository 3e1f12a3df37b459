package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// User identifies who performed an action, taken from the request claims.
type User struct {
	ID   string
	Role string
	Name string
}

// Entry is one recorded action.
type Entry struct {
	ID        string
	UserID    string
	UserRole  string
	UserName  string
	Action    string
	Metadata  map[string]any
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, entry Entry) error
}

// Logger records who did what. Writes happen in the background so an
// audit failure never fails the business operation.
type Logger struct {
	repo Repository
}

func NewLogger(repo Repository) *Logger {
	return &Logger{repo: repo}
}

func (l *Logger) Log(ctx context.Context, action string, metadata map[string]any, user User) {
	if l == nil || l.repo == nil {
		return
	}

	entry := Entry{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserRole:  user.Role,
		UserName:  user.Name,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	// Detached from the request context so the write survives the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.repo.Insert(ctx, entry); err != nil {
			slog.Warn("failed to write audit entry", "action", action, "error", err)
		}
	}()
}
