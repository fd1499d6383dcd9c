package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the persistence operations for users.
// Lookups return ErrNotFound when no row matches.
type UserRepository interface {
	FindByIDAndStatus(ctx context.Context, id int64, status entity.UserStatus) (*entity.User, error)
	FindByEmailAndStatus(ctx context.Context, email string, status entity.UserStatus) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	// Save inserts u when u.ID is zero and updates it otherwise.
	// On insert it assigns ID, CreatedAt and UpdatedAt.
	Save(ctx context.Context, u *entity.User) error
}

// Transactor runs fn against a repository bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}
