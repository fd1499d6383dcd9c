package repository

import (
	"context"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

// VerificationMessage is what a user receives to prove control of their email.
type VerificationMessage struct {
	UserID            int64
	To                string
	Nickname          string
	CertificationCode string
	VerifyURL         string
}

// Notifier delivers verification messages.
type Notifier interface {
	SendVerification(ctx context.Context, msg VerificationMessage) error
}

// UserCache holds ACTIVE users keyed by id. A miss returns (nil, nil).
type UserCache interface {
	GetActive(ctx context.Context, id int64) (*entity.User, error)
	SetActive(ctx context.Context, u *entity.User) error
	Invalidate(ctx context.Context, id int64) error
}

// UserIndex is a searchable projection of ACTIVE users.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, query string, size int) ([]UserDocument, error)
}

// UserDocument is the indexed view of a user.
type UserDocument struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	Status      string `json:"status"`
	LastLoginAt int64  `json:"lastLoginAt"`
}
