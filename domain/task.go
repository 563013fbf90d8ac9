package domain

import (
	"strings"
	"time"
)

// TaskStatus is the closed, ordered set of task states.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "to do"
	StatusInProgress TaskStatus = "in progress"
	StatusDone       TaskStatus = "done"
)

// ParseStatus accepts canonical labels, the UI labels ("To do", "In progress",
// "Done") and snake/kebab spellings. An empty value is rejected; callers apply
// the default themselves.
func ParseStatus(value string) (TaskStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")

	switch normalized {
	case "to do", "todo":
		return StatusToDo, nil
	case "in progress", "inprogress":
		return StatusInProgress, nil
	case "done", "completed":
		return StatusDone, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Task represents a user-owned to-do item.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// OwnedBy reports whether the task belongs to userID. An empty id never owns anything.
func (t *Task) OwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}

// TaskInput carries the raw fields of a create request.
type TaskInput struct {
	Title       string
	Description string
	Status      string
	DueDate     string
}

// NewTask validates the input and builds an unsaved task for ownerID.
func NewTask(ownerID string, in TaskInput) (*Task, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, ErrTaskFieldsRequired
	}

	status := StatusToDo
	if strings.TrimSpace(in.Status) != "" {
		parsed, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	due, err := ParseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	return &Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     due,
	}, nil
}

// TaskPatch holds the raw fields supplied in an update. A nil field was not
// supplied; an empty DueDate clears the date.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *string
}

// Resolve applies the creation rules to every supplied field.
func (p TaskPatch) Resolve() (TaskChanges, error) {
	var changes TaskChanges
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return TaskChanges{}, ErrTaskFieldsRequired
		}
		changes.Title = &title
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		if description == "" {
			return TaskChanges{}, ErrTaskFieldsRequired
		}
		changes.Description = &description
	}
	if p.Status != nil {
		status, err := ParseStatus(*p.Status)
		if err != nil {
			return TaskChanges{}, err
		}
		changes.Status = &status
	}
	if p.DueDate != nil {
		due, err := ParseDueDate(*p.DueDate)
		if err != nil {
			return TaskChanges{}, err
		}
		if due == nil {
			changes.ClearDueDate = true
		} else {
			changes.DueDate = due
		}
	}
	return changes, nil
}

// TaskChanges is a validated TaskPatch, ready for the store.
type TaskChanges struct {
	Title        *string
	Description  *string
	Status       *TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// Empty reports whether the changes touch nothing.
func (c TaskChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil && c.DueDate == nil && !c.ClearDueDate
}

// Apply copies the changed fields onto the task.
func (c TaskChanges) Apply(t *Task) {
	if t == nil {
		return
	}
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.DueDate != nil {
		due := *c.DueDate
		t.DueDate = &due
	}
	if c.ClearDueDate {
		t.DueDate = nil
	}
}

// ParseDueDate accepts what a date input posts (YYYY-MM-DD) or RFC 3339.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		utc := parsed.UTC()
		return &utc, nil
	}
	return nil, ErrInvalidDueDate
}

// TaskFilter narrows a task listing. UserID is always set by the use case.
type TaskFilter struct {
	UserID string
	Status TaskStatus
	Query  string
	Limit  int
	Offset int
}
