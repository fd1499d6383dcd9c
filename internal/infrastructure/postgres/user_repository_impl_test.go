package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

var userCols = []string{"id", "email", "nickname", "address", "certification_code", "status", "last_login_at", "created_at", "updated_at"}

func setupMockPool(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func TestFindByIDAndStatus_Active(t *testing.T) {
	mock, repo := setupMockPool(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = $2")).
		WithArgs(int64(1), "ACTIVE").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(1), "ziho1234567890@gmail.com", "asdf", "Seoul", "aaaaa-aaaa-aaaa", "ACTIVE", int64(0), created, created))

	u, err := repo.FindByIDAndStatus(context.Background(), 1, entity.UserStatusActive)

	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "asdf", u.Nickname)
	assert.Equal(t, entity.UserStatusActive, u.Status)
	assert.Equal(t, created, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDAndStatus_NoRowsIsNotFound(t *testing.T) {
	mock, repo := setupMockPool(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = $2")).
		WithArgs(int64(1), "PENDING").
		WillReturnRows(pgxmock.NewRows(userCols))

	u, err := repo.FindByIDAndStatus(context.Background(), 1, entity.UserStatusPending)

	assert.Nil(t, u)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailAndStatus(t *testing.T) {
	mock, repo := setupMockPool(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 AND status = $2")).
		WithArgs("ziho1234567890@gmail.com", "ACTIVE").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(1), "ziho1234567890@gmail.com", "asdf", "Seoul", "aaaaa-aaaa-aaaa", "ACTIVE", int64(1678530673958), now, now))

	u, err := repo.FindByEmailAndStatus(context.Background(), "ziho1234567890@gmail.com", entity.UserStatusActive)

	require.NoError(t, err)
	assert.Equal(t, int64(1678530673958), u.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailAndStatus_NotFound(t *testing.T) {
	mock, repo := setupMockPool(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 AND status = $2")).
		WithArgs("ziho1234567890@gmail.com", "PENDING").
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.FindByEmailAndStatus(context.Background(), "ziho1234567890@gmail.com", entity.UserStatusPending)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_InsertAssignsID(t *testing.T) {
	mock, repo := setupMockPool(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("zz@gmail.com", "asdf2", "gg", "code", "PENDING", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(3), now, now))

	u := &entity.User{Email: "zz@gmail.com", Nickname: "asdf2", Address: "gg", CertificationCode: "code", Status: entity.UserStatusPending}
	require.NoError(t, repo.Save(context.Background(), u))

	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_InsertDuplicateEmail(t *testing.T) {
	mock, repo := setupMockPool(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("zz@gmail.com", "asdf2", "gg", "code", "PENDING", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key value violates unique constraint"})

	u := &entity.User{Email: "zz@gmail.com", Nickname: "asdf2", Address: "gg", CertificationCode: "code", Status: entity.UserStatusPending}
	err := repo.Save(context.Background(), u)

	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.Zero(t, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Update(t *testing.T) {
	mock, repo := setupMockPool(t)
	fixed := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("asdf1", "gg", "ACTIVE", pgxmock.AnyArg(), fixed, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	u := &entity.User{ID: 1, Email: "ziho1234567890@gmail.com", Nickname: "asdf1", Address: "gg", Status: entity.UserStatusActive, LastLoginAt: 10}
	require.NoError(t, repo.Save(context.Background(), u))

	assert.Equal(t, fixed, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_UpdateMissingRow(t *testing.T) {
	mock, repo := setupMockPool(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("n", "a", "PENDING", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(111)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Save(context.Background(), &entity.User{ID: 111, Nickname: "n", Address: "a", Status: entity.UserStatusPending})

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_CommitsAndLocksRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(2), "ziho1234567891@gmail.com", "asdf", "Seoul", "aaaaa-aaaa-aaa1", "PENDING", int64(0), now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("asdf", "Seoul", "ACTIVE", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = NewTransactor(mock).WithinTx(context.Background(), func(ctx context.Context, repo repository.UserRepository) error {
		u, err := repo.FindByID(ctx, 2)
		if err != nil {
			return err
		}
		u.Activate()
		return repo.Save(ctx, u)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("notify failed")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = NewTransactor(mock).WithinTx(context.Background(), func(ctx context.Context, repo repository.UserRepository) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
