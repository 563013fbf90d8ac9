package repository

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
)

// TaskRepository persists tasks. UpdateOwned and DeleteOwned match on both id
// and owner in one statement and report domain.ErrTaskNotFound when nothing
// matched; callers classify the miss with GetByID.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateOwned(ctx context.Context, id, ownerID string, changes domain.TaskChanges) (*domain.Task, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClampLimit bounds page sizes for listings.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
