package rediscache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

// cachedUser is the stored JSON shape; the certification code is left out.
type cachedUser struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Nickname    string    `json:"nickname"`
	Address     string    `json:"address"`
	Status      string    `json:"status"`
	LastLoginAt int64     `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewUserCache(rdb redis.Cmdable, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

func activeKey(id int64) string {
	return "user:active:" + strconv.FormatInt(id, 10)
}

func (c *UserCache) GetActive(ctx context.Context, id int64) (*entity.User, error) {
	var cu cachedUser
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, activeKey(id), &cu)
	if err != nil || !ok {
		return nil, err
	}
	return &entity.User{
		ID:          cu.ID,
		Email:       cu.Email,
		Nickname:    cu.Nickname,
		Address:     cu.Address,
		Status:      entity.UserStatus(cu.Status),
		LastLoginAt: cu.LastLoginAt,
		CreatedAt:   cu.CreatedAt,
		UpdatedAt:   cu.UpdatedAt,
	}, nil
}

// SetActive ignores users that are not ACTIVE.
func (c *UserCache) SetActive(ctx context.Context, u *entity.User) error {
	if !u.IsActive() {
		return nil
	}
	return helpers.RedisSetJSON(ctx, c.rdb, activeKey(u.ID), cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Address:     u.Address,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}, c.ttl)
}

func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	return helpers.RedisDel(ctx, c.rdb, activeKey(id))
}

var _ repository.UserCache = (*UserCache)(nil)
