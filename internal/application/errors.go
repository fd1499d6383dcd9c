package application

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound                = errors.New("user not found")
	ErrCertificationCodeNotMatched = errors.New("자격 증명에 실패하였습니다.")
	ErrEmailAlreadyRegistered      = errors.New("email already registered")
)

// NotFoundError reports a lookup that matched nothing visible to the caller.
// It matches ErrUserNotFound with errors.Is.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s에서 ID %v를 찾을 수 없습니다.", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}

func userNotFound(id any) error {
	return &NotFoundError{Resource: "Users", ID: id}
}

// ValidationError carries per-field messages for a rejected draft or patch.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}
