package task

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/usecase"
)

// ListFilter carries the optional list query parameters as received.
type ListFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}

type UseCase struct {
	tasks    repository.TaskRepository
	activity usecase.ActivityRecorder
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, activity usecase.ActivityRecorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if activity == nil {
		activity = usecase.NopRecorder{}
	}
	return &UseCase{
		tasks:    tasks,
		activity: activity,
		logger:   logger,
	}
}

// Create stores a new task owned by ownerID.
func (uc *UseCase) Create(ctx context.Context, ownerID string, in domain.TaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, in)
	if err != nil {
		return nil, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, domain.Activity{
		UserID:    ownerID,
		Name:      domain.ActivityTaskCreated,
		SubjectID: created.ID,
		Metadata:  map[string]string{"status": string(created.Status)},
	})
	return created, nil
}

// List returns the owner's tasks in creation order.
func (uc *UseCase) List(ctx context.Context, ownerID string, in ListFilter) ([]domain.Task, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	filter := domain.TaskFilter{
		UserID: ownerID,
		Query:  strings.TrimSpace(in.Query),
		Limit:  repository.ClampLimit(in.Limit),
		Offset: in.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if strings.TrimSpace(in.Status) != "" {
		status, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Get returns one task. Existence is checked before ownership.
func (uc *UseCase) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.owned(ctx, ownerID, id)
}

// Update applies the supplied fields and returns the stored result.
func (uc *UseCase) Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	changes, err := patch.Resolve()
	if err != nil {
		// A bad payload on a missing or foreign task still answers 404/401.
		if _, lookupErr := uc.owned(ctx, ownerID, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrTaskNotFound
	}

	if changes.Empty() {
		return uc.owned(ctx, ownerID, id)
	}

	updated, err := uc.tasks.UpdateOwned(ctx, id, ownerID, changes)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, uc.classifyMiss(ctx, ownerID, id)
		}
		return nil, err
	}
	uc.activity.Record(ctx, domain.Activity{
		UserID:    ownerID,
		Name:      domain.ActivityTaskUpdated,
		SubjectID: updated.ID,
		Metadata:  map[string]string{"status": string(updated.Status)},
	})
	return updated, nil
}

// Delete removes the task and returns its id.
func (uc *UseCase) Delete(ctx context.Context, ownerID, id string) (string, error) {
	if ownerID == "" {
		return "", domain.ErrUnauthorized
	}
	if !validID(id) {
		return "", domain.ErrTaskNotFound
	}
	if err := uc.tasks.DeleteOwned(ctx, id, ownerID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return "", uc.classifyMiss(ctx, ownerID, id)
		}
		return "", err
	}
	uc.activity.Record(ctx, domain.Activity{UserID: ownerID, Name: domain.ActivityTaskDeleted, SubjectID: id})
	return id, nil
}

func (uc *UseCase) owned(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrTaskNotFound
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.OwnedBy(ownerID) {
		return nil, domain.ErrTaskForbidden
	}
	return task, nil
}

// classifyMiss explains why a conditioned write matched no row.
func (uc *UseCase) classifyMiss(ctx context.Context, ownerID, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !task.OwnedBy(ownerID) {
		uc.logger.Warn("task access denied", zap.String("task_id", id), zap.String("user_id", ownerID))
		return domain.ErrTaskForbidden
	}
	// Owner matches but the write missed: the row changed hands or vanished in between.
	return domain.ErrTaskNotFound
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
