package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/logger"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/usecase"
)

// JournalRecorder writes use case activity to the journal. Failures are
// logged and swallowed so business operations never depend on the journal.
type JournalRecorder struct {
	journal repository.ActivityRepository
	logger  *zap.Logger
	now     func() time.Time
}

var _ usecase.ActivityRecorder = (*JournalRecorder)(nil)

func NewJournalRecorder(journal repository.ActivityRepository, log *zap.Logger) *JournalRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &JournalRecorder{
		journal: journal,
		logger:  log,
		now:     time.Now,
	}
}

func (r *JournalRecorder) Record(ctx context.Context, activity domain.Activity) {
	if r == nil || r.journal == nil {
		return
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = r.now().UTC()
	}
	if err := r.journal.Append(ctx, activity); err != nil {
		logger.WithRequestID(ctx, r.logger).Warn("failed to record activity",
			zap.String("activity", activity.Name),
			zap.String("user_id", activity.UserID),
			zap.Error(err))
	}
}
