package repository

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
)

// UserRepository is the credential store. Create reports domain.ErrEmailTaken
// when the unique email index rejects the row; lookups report
// domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
