package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a gorm/SQLite TaskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var model taskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return model.toDomain(), nil
}

func (r *taskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Model(&taskModel{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if pattern := likePattern(filter.Query); pattern != "" {
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var models []taskModel
	if err := query.
		Order("created_at ASC").
		Order("rowid ASC").
		Limit(repository.ClampLimit(filter.Limit)).
		Offset(max(filter.Offset, 0)).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(models))
	for i := range models {
		tasks = append(tasks, *models[i].toDomain())
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	model := taskModel{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	task.CreatedAt = model.CreatedAt
	task.UpdatedAt = model.UpdatedAt
	return task, nil
}

func (r *taskRepository) UpdateOwned(ctx context.Context, id, ownerID string, changes domain.TaskChanges) (*domain.Task, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.Status != nil {
		updates["status"] = string(*changes.Status)
	}
	if changes.DueDate != nil {
		updates["due_date"] = *changes.DueDate
	}
	if changes.ClearDueDate {
		updates["due_date"] = nil
	}

	var model taskModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&taskModel{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}
		return tx.First(&model, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	result := r.db.WithContext(ctx).Delete(&taskModel{}, "id = ? AND user_id = ?", id, ownerID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (m *taskModel) toDomain() *domain.Task {
	task := &domain.Task{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.TaskStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		task.DueDate = &due
	}
	return task
}
