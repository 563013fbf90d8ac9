package repository

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
)

// ActivityRepository is the append-only activity journal.
type ActivityRepository interface {
	Append(ctx context.Context, activity domain.Activity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

// LoginAttemptRepository counts failed logins inside a fixed window.
type LoginAttemptRepository interface {
	// Allowed reports whether key still has budget in the current window.
	Allowed(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt and returns the attempts in the window.
	Fail(ctx context.Context, key string) (int64, error)
	// Reset clears the window after a successful login.
	Reset(ctx context.Context, key string) error
}
