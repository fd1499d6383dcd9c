package handlers

import "github.com/oksasatya/go-user-lifecycle/internal/domain/entity"

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
	Address  string `json:"address" binding:"required"`
}

type updateUserRequest struct {
	Nickname *string `json:"nickname"`
	Address  *string `json:"address"`
}

// UserResponse is the public view of a user; address is omitted.
type UserResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	Status      string `json:"status"`
	LastLoginAt int64  `json:"lastLoginAt"`
}

// MyProfileResponse is what the owner sees about themselves.
type MyProfileResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	Address     string `json:"address"`
	Status      string `json:"status"`
	LastLoginAt int64  `json:"lastLoginAt"`
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
	}
}

func toMyProfileResponse(u *entity.User) MyProfileResponse {
	return MyProfileResponse{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Address:     u.Address,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
	}
}
