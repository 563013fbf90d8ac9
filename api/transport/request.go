package transport

import (
	"encoding/json"

	"github.com/fastygo/taskmanager/domain"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskCreateRequest mirrors the create form. Status and dueDate may be
// omitted, null or empty.
type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
}

func (r TaskCreateRequest) Input() domain.TaskInput {
	in := domain.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}
	if r.DueDate != nil {
		in.DueDate = *r.DueDate
	}
	return in
}

// DecodeTaskPatch reads an update body keeping track of which fields were
// sent. A null title, description or status counts as not sent; a null
// dueDate clears the date.
func DecodeTaskPatch(body []byte) (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	if len(body) == 0 {
		return patch, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return patch, domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}

	var err error
	if patch.Title, err = optionalString(fields, "title", false); err != nil {
		return patch, err
	}
	if patch.Description, err = optionalString(fields, "description", false); err != nil {
		return patch, err
	}
	if patch.Status, err = optionalString(fields, "status", false); err != nil {
		return patch, err
	}
	if patch.DueDate, err = optionalString(fields, "dueDate", true); err != nil {
		return patch, err
	}
	return patch, nil
}

func optionalString(fields map[string]json.RawMessage, key string, nullIsEmpty bool) (*string, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	if string(raw) == "null" {
		if nullIsEmpty {
			empty := ""
			return &empty, nil
		}
		return nil, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, key+" must be a string", err)
	}
	return &value, nil
}
