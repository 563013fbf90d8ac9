package client

import (
	"context"
	"errors"
	"sync"

	"github.com/fastygo/taskmanager/domain"
)

// Status tracks the outcome of the last action on a state holder.
type Status struct {
	Loading bool
	Success bool
	Failed  bool
	Message string
}

func (s *Status) begin() {
	s.Loading = true
}

func (s *Status) finish(err error) {
	s.Loading = false
	if err != nil {
		s.Failed = true
		s.Success = false
		s.Message = messageOf(err)
		return
	}
	s.Success = true
	s.Failed = false
	s.Message = ""
}

func messageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// AuthState holds the signed-in user. Its token authorizes the client.
type AuthState struct {
	client *Client

	mu     sync.RWMutex
	user   *AuthResult
	status Status
}

func NewAuthState(c *Client) *AuthState {
	return &AuthState{client: c}
}

// Register signs up and keeps the user on success; a failure clears it.
func (s *AuthState) Register(ctx context.Context, username, email, password string) error {
	s.mu.Lock()
	s.status.begin()
	s.mu.Unlock()

	result, err := s.client.Register(ctx, username, email, password)
	s.settle(result, err)
	return err
}

// Login signs in and keeps the user on success; a failure clears it.
func (s *AuthState) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.status.begin()
	s.mu.Unlock()

	result, err := s.client.Login(ctx, email, password)
	s.settle(result, err)
	return err
}

func (s *AuthState) settle(result *AuthResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.finish(err)
	if err != nil {
		s.user = nil
		s.client.SetToken("")
		return
	}
	s.user = result
	s.client.SetToken(result.Token)
}

// Logout forgets the user and token.
func (s *AuthState) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.client.SetToken("")
}

// Reset clears the status flags and keeps the user.
func (s *AuthState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{}
}

func (s *AuthState) User() *AuthResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *AuthState) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// TaskState mirrors the caller's task list: create appends, update replaces
// by id, delete filters by id, list replaces everything.
type TaskState struct {
	client *Client

	mu     sync.RWMutex
	tasks  []domain.Task
	status Status
}

func NewTaskState(c *Client) *TaskState {
	return &TaskState{client: c, tasks: []domain.Task{}}
}

func (s *TaskState) Fetch(ctx context.Context, opts ListOptions) error {
	s.start()
	tasks, err := s.client.ListTasks(ctx, opts)
	s.apply(err, func() {
		if tasks == nil {
			tasks = []domain.Task{}
		}
		s.tasks = tasks
	})
	return err
}

// Get loads a single task without touching the list.
func (s *TaskState) Get(ctx context.Context, id string) (*domain.Task, error) {
	s.start()
	task, err := s.client.GetTask(ctx, id)
	s.apply(err, func() {})
	return task, err
}

func (s *TaskState) Create(ctx context.Context, draft TaskDraft) (*domain.Task, error) {
	s.start()
	task, err := s.client.CreateTask(ctx, draft)
	s.apply(err, func() {
		if task != nil {
			s.tasks = append(s.tasks, *task)
		}
	})
	return task, err
}

func (s *TaskState) Update(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error) {
	s.start()
	task, err := s.client.UpdateTask(ctx, id, update)
	s.apply(err, func() {
		if task == nil {
			return
		}
		for i := range s.tasks {
			if s.tasks[i].ID == task.ID {
				s.tasks[i] = *task
			}
		}
	})
	return task, err
}

func (s *TaskState) Delete(ctx context.Context, id string) error {
	s.start()
	deleted, err := s.client.DeleteTask(ctx, id)
	s.apply(err, func() {
		kept := s.tasks[:0]
		for _, task := range s.tasks {
			if task.ID != deleted {
				kept = append(kept, task)
			}
		}
		s.tasks = kept
	})
	return err
}

// Reset clears the status flags and keeps the tasks.
func (s *TaskState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{}
}

// Tasks returns a copy of the held list.
func (s *TaskState) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TaskState) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *TaskState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.begin()
}

func (s *TaskState) apply(err error, reduce func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.finish(err)
	if err == nil {
		reduce()
	}
}
