package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TaskStatus
		err   error
	}{
		{name: "canonical to do", input: "to do", want: StatusToDo},
		{name: "ui label", input: "To do", want: StatusToDo},
		{name: "camel todo", input: "todo", want: StatusToDo},
		{name: "in progress ui", input: "In progress", want: StatusInProgress},
		{name: "snake case", input: "in_progress", want: StatusInProgress},
		{name: "kebab case", input: "in-progress", want: StatusInProgress},
		{name: "done upper", input: "DONE", want: StatusDone},
		{name: "padded", input: "  done ", want: StatusDone},
		{name: "unknown", input: "blocked", err: ErrInvalidStatus},
		{name: "empty", input: "", err: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTask(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		task, err := NewTask("owner-1", TaskInput{Title: " Buy milk ", Description: "2%"})
		require.NoError(t, err)
		assert.Equal(t, "owner-1", task.UserID)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, StatusToDo, task.Status)
		assert.Nil(t, task.DueDate)
	})

	t.Run("explicit status and due date", func(t *testing.T) {
		task, err := NewTask("owner-1", TaskInput{Title: "a", Description: "b", Status: "In progress", DueDate: "2026-11-02"})
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, task.Status)
		require.NotNil(t, task.DueDate)
		assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), *task.DueDate)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := NewTask("owner-1", TaskInput{Title: "a", Description: "   "})
		assert.ErrorIs(t, err, ErrTaskFieldsRequired)
		assert.True(t, IsDomainError(err, ErrCodeInvalid))
	})

	t.Run("no owner", func(t *testing.T) {
		_, err := NewTask("", TaskInput{Title: "a", Description: "b"})
		assert.True(t, IsDomainError(err, ErrCodeUnauthorized))
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := NewTask("owner-1", TaskInput{Title: "a", Description: "b", Status: "someday"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("bad due date", func(t *testing.T) {
		_, err := NewTask("owner-1", TaskInput{Title: "a", Description: "b", DueDate: "next week"})
		assert.ErrorIs(t, err, ErrInvalidDueDate)
	})
}

func TestTaskPatchResolve(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		changes, err := TaskPatch{Status: strPtr("done")}.Resolve()
		require.NoError(t, err)
		require.NotNil(t, changes.Status)
		assert.Equal(t, StatusDone, *changes.Status)
		assert.Nil(t, changes.Title)
		assert.False(t, changes.Empty())
	})

	t.Run("empty due date clears", func(t *testing.T) {
		changes, err := TaskPatch{DueDate: strPtr("")}.Resolve()
		require.NoError(t, err)
		assert.True(t, changes.ClearDueDate)
		assert.Nil(t, changes.DueDate)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		_, err := TaskPatch{Title: strPtr("  ")}.Resolve()
		assert.ErrorIs(t, err, ErrTaskFieldsRequired)
	})

	t.Run("nothing supplied", func(t *testing.T) {
		changes, err := TaskPatch{}.Resolve()
		require.NoError(t, err)
		assert.True(t, changes.Empty())
	})
}

func TestTaskChangesApply(t *testing.T) {
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{Title: "old", Description: "keep", Status: StatusToDo, DueDate: &due}

	changes, err := TaskPatch{Title: strPtr("new"), DueDate: strPtr("")}.Resolve()
	require.NoError(t, err)
	changes.Apply(task)

	assert.Equal(t, "new", task.Title)
	assert.Equal(t, "keep", task.Description)
	assert.Equal(t, StatusToDo, task.Status)
	assert.Nil(t, task.DueDate)
}

func TestOwnedBy(t *testing.T) {
	task := &Task{UserID: "u1"}
	assert.True(t, task.OwnedBy("u1"))
	assert.False(t, task.OwnedBy("u2"))
	assert.False(t, task.OwnedBy(""))
	assert.False(t, (*Task)(nil).OwnedBy("u1"))
}

func TestErrorIsSurvivesWrapping(t *testing.T) {
	wrapped := WrapError(ErrCodeNotFound, "task not found", errors.New("no rows"))
	assert.ErrorIs(t, wrapped, ErrTaskNotFound)
	assert.NotErrorIs(t, wrapped, ErrUserNotFound)
}
