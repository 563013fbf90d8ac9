package transport

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskmanager/domain"
)

// ErrorBody is the payload of every failed request. Detail is only set for
// internal errors.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  string `json:"error,omitempty"`
}

// TaskResult wraps a created or updated task.
type TaskResult struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

// DeleteResult acknowledges a deletion.
type DeleteResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HealthResult reports dependency status.
type HealthResult struct {
	Status       string            `json:"status"`
	Online       bool              `json:"online"`
	Dependencies map[string]string `json:"dependencies"`
	JournalSize  int               `json:"journalSize"`
	CheckedAt    string            `json:"checkedAt,omitempty"`
}

// WriteJSON serializes payload as the response body.
func WriteJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = fasthttp.StatusInternalServerError
		body = []byte(`{"message":"failed to encode response","code":"INTERNAL"}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// WriteError writes an ErrorBody.
func WriteError(ctx *fasthttp.RequestCtx, status int, body ErrorBody) {
	WriteJSON(ctx, status, body)
}

