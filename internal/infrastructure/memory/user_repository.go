// Package memory is an in-process user store with the same contract as the
// postgres one. It backs tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

type UserRepository struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	nextID int64
	byID   map[int64]entity.User
	now    func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		nextID: 1,
		byID:   make(map[int64]entity.User),
		now:    time.Now,
	}
}

func (r *UserRepository) FindByIDAndStatus(_ context.Context, id int64, status entity.UserStatus) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok || u.Status != status {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmailAndStatus(_ context.Context, email string, status entity.UserStatus) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email && u.Status == status {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()

	if u.ID == 0 {
		for _, existing := range r.byID {
			if existing.Email == u.Email {
				return repository.ErrDuplicateEmail
			}
		}
		u.ID = r.nextID
		r.nextID++
		u.CreatedAt = now
		u.UpdatedAt = now
		r.byID[u.ID] = *u
		return nil
	}

	existing, ok := r.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// email and certification code are fixed at insert
	existing.Nickname = u.Nickname
	existing.Address = u.Address
	existing.Status = u.Status
	existing.LastLoginAt = u.LastLoginAt
	existing.UpdatedAt = now
	r.byID[u.ID] = existing
	u.UpdatedAt = now
	return nil
}

// Seed stores u as-is, keeping its ID. Used for fixtures.
func (r *UserRepository) Seed(u entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now().UTC()
		u.UpdatedAt = u.CreatedAt
	}
	r.byID[u.ID] = u
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
}

// WithinTx serializes transactions and restores the previous state when fn fails.
func (r *UserRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	snapshot := make(map[int64]entity.User, len(r.byID))
	for id, u := range r.byID {
		snapshot[id] = u
	}
	nextID := r.nextID
	r.mu.RUnlock()

	if err := fn(ctx, r); err != nil {
		r.mu.Lock()
		r.byID = snapshot
		r.nextID = nextID
		r.mu.Unlock()
		return err
	}
	return nil
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.Transactor     = (*UserRepository)(nil)
)
