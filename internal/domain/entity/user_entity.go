package entity

import "time"

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusPending || s == UserStatusActive
}

// User is the aggregate root for the user domain.
// ID and Email never change once the user has been stored.
type User struct {
	ID                int64
	Email             string
	Nickname          string
	Address           string
	Status            UserStatus
	CertificationCode string
	// LastLoginAt is epoch milliseconds, 0 when the user never logged in.
	LastLoginAt int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Activate moves a pending user to ACTIVE. It reports whether the status changed.
func (u *User) Activate() bool {
	if u.Status == UserStatusActive {
		return false
	}
	u.Status = UserStatusActive
	return true
}

// UserDraft is the input for registering a user.
type UserDraft struct {
	Email    string `json:"email" validate:"required,max=255"`
	Nickname string `json:"nickname" validate:"required,nickname"`
	Address  string `json:"address" validate:"required,max=255"`
}

// UserPatch carries optional profile changes; nil fields are left untouched.
type UserPatch struct {
	Nickname *string `json:"nickname" validate:"omitempty,nickname"`
	Address  *string `json:"address" validate:"omitempty,min=1,max=255"`
}

// Apply copies the supplied fields onto u and reports whether anything changed.
func (p UserPatch) Apply(u *User) bool {
	changed := false
	if p.Nickname != nil && *p.Nickname != u.Nickname {
		u.Nickname = *p.Nickname
		changed = true
	}
	if p.Address != nil && *p.Address != u.Address {
		u.Address = *p.Address
		changed = true
	}
	return changed
}
