package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/infrastructure/journal"
)

func openJournal(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "activity.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type failingJournal struct{}

func (failingJournal) Append(context.Context, domain.Activity) error {
	return errors.New("disk full")
}

func (failingJournal) ListByUser(context.Context, string, int) ([]domain.Activity, error) {
	return nil, nil
}

func TestJournalRecorder(t *testing.T) {
	store := openJournal(t)
	recorder := NewJournalRecorder(store, nil)
	fixed := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time { return fixed }

	recorder.Record(context.Background(), domain.Activity{UserID: "u1", Name: domain.ActivityTaskCreated, SubjectID: "t1"})

	activities, err := store.ListByUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "t1", activities[0].SubjectID)
	assert.True(t, fixed.Equal(activities[0].CreatedAt))

	assert.NotPanics(t, func() {
		NewJournalRecorder(failingJournal{}, nil).Record(context.Background(), domain.Activity{Name: "x"})
		(*JournalRecorder)(nil).Record(context.Background(), domain.Activity{Name: "x"})
	})
}

func TestJournalSweeper_Sweep(t *testing.T) {
	store := openJournal(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, domain.Activity{UserID: "u1", Name: "old", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, store.Append(ctx, domain.Activity{UserID: "u1", Name: "fresh", CreatedAt: now.Add(-time.Hour)}))

	sweeper, err := NewJournalSweeper(store, nil, SweeperConfig{Interval: time.Hour, Retention: 24 * time.Hour})
	require.NoError(t, err)
	sweeper.now = func() time.Time { return now }

	removed, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	left, err := store.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "fresh", left[0].Name)
}

func TestJournalSweeper_StartStop(t *testing.T) {
	sweeper, err := NewJournalSweeper(openJournal(t), nil, SweeperConfig{})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, sweeper.cfg.Interval)
	assert.Equal(t, 720*time.Hour, sweeper.cfg.Retention)

	sweeper.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweeper.Stop(ctx)

	removed, err := (*JournalSweeper)(nil).Sweep()
	assert.NoError(t, err)
	assert.Zero(t, removed)
}

func TestJournalSweeper_Schedule(t *testing.T) {
	store := openJournal(t)

	sweeper, err := NewJournalSweeper(store, nil, SweeperConfig{Schedule: "0 */5 * * * *"})
	require.NoError(t, err)
	assert.Len(t, sweeper.cron.Entries(), 1)

	_, err = NewJournalSweeper(store, nil, SweeperConfig{Schedule: "every tuesday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every tuesday")
}
