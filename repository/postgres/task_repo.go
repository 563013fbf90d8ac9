package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id::text, user_id::text, title, description, status, due_date, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1::uuid`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1::uuid
	  AND ($2::text = '' OR status = $2::text)
	  AND ($3::text = '' OR title ILIKE $3::text OR description ILIKE $3::text)
	ORDER BY created_at ASC, id ASC
	LIMIT $4 OFFSET $5
	`
	if _, err := uuid.Parse(filter.UserID); err != nil {
		return []domain.Task{}, nil
	}

	rows, err := r.pool.Query(ctx, query,
		filter.UserID,
		string(filter.Status),
		likePattern(filter.Query),
		repository.ClampLimit(filter.Limit),
		max(filter.Offset, 0),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, status, due_date)
	VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Status),
		nullTime(task.DueDate),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) UpdateOwned(ctx context.Context, id, ownerID string, changes domain.TaskChanges) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}

	query := `
	UPDATE tasks
	SET title = COALESCE($3, title),
		description = COALESCE($4, description),
		status = COALESCE($5, status),
		due_date = CASE WHEN $7::boolean THEN NULL ELSE COALESCE($6, due_date) END,
		updated_at = NOW()
	WHERE id = $1::uuid AND user_id = $2::uuid
	RETURNING ` + taskColumns

	var status *string
	if changes.Status != nil {
		s := string(*changes.Status)
		status = &s
	}

	task, err := scanTask(r.pool.QueryRow(ctx, query,
		id,
		ownerID,
		changes.Title,
		changes.Description,
		status,
		nullTime(changes.DueDate),
		changes.ClearDueDate,
	))
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	const query = `DELETE FROM tasks WHERE id = $1::uuid AND user_id = $2::uuid`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task   domain.Task
		status string
		due    *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&due,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.DueDate = due
	return &task, nil
}
