package domain

import "time"

// Activity names recorded in the journal.
const (
	ActivityUserRegistered  = "user.registered"
	ActivityUserLogin       = "user.login"
	ActivityUserLoginFailed = "user.login_failed"
	ActivityTaskCreated     = "task.created"
	ActivityTaskUpdated     = "task.updated"
	ActivityTaskDeleted     = "task.deleted"
)

// Activity is an entry of a user's activity journal.
type Activity struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId,omitempty"`
	Name      string            `json:"name"`
	SubjectID string            `json:"subjectId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
