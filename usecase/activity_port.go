package usecase

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
)

// ActivityRecorder abstracts the activity journal so use cases stay storage-agnostic.
// Record never fails the caller; implementations log their own errors.
type ActivityRecorder interface {
	Record(ctx context.Context, activity domain.Activity)
}

// NopRecorder drops every activity.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, domain.Activity) {}
