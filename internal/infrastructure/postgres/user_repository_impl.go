package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, email, nickname, address, certification_code, status, COALESCE(last_login_at, 0), created_at, updated_at`

// DBTX is the subset of pgx shared by pools and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
	// lockRows appends FOR UPDATE to FindByID; only meaningful inside a transaction.
	lockRows bool
	now      func() time.Time
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

func (r *UserRepository) FindByIDAndStatus(ctx context.Context, id int64, status entity.UserStatus) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND status = $2
	`, id, string(status))
	return scanUser(row)
}

func (r *UserRepository) FindByEmailAndStatus(ctx context.Context, email string, status entity.UserStatus) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND status = $2
	`, email, string(status))
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	q := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	if r.lockRows {
		q += `
		FOR UPDATE`
	}
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	if u.ID == 0 {
		return r.insert(ctx, u)
	}
	return r.update(ctx, u)
}

func (r *UserRepository) insert(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, nickname, address, certification_code, status, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Nickname, u.Address, u.CertificationCode, string(u.Status), nullableMillis(u.LastLoginAt))

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapError(err)
	}
	return nil
}

// update never touches email or certification_code.
func (r *UserRepository) update(ctx context.Context, u *entity.User) error {
	updatedAt := r.now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET nickname = $1, address = $2, status = $3, last_login_at = $4, updated_at = $5
		WHERE id = $6
	`, u.Nickname, u.Address, string(u.Status), nullableMillis(u.LastLoginAt), updatedAt, u.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	u.UpdatedAt = updatedAt
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var status string
	if err := row.Scan(&u.ID, &u.Email, &u.Nickname, &u.Address, &u.CertificationCode,
		&status, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	u.Status = entity.UserStatus(status)
	return u, nil
}

func nullableMillis(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
