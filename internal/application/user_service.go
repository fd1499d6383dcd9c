package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/pkg/validation"
)

type Service struct {
	Repo          repository.UserRepository
	Tx            repository.Transactor
	Notifier      repository.Notifier
	CertGen       CertificationGenerator
	Cache         repository.UserCache
	Index         repository.UserIndex
	Logger        *logrus.Logger
	PublicBaseURL string

	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Service)

func WithCertificationGenerator(g CertificationGenerator) Option {
	return func(s *Service) { s.CertGen = g }
}

func WithCache(c repository.UserCache) Option { return func(s *Service) { s.Cache = c } }

func WithIndex(i repository.UserIndex) Option { return func(s *Service) { s.Index = i } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(repo repository.UserRepository, tx repository.Transactor, notifier repository.Notifier, logger *logrus.Logger, publicBaseURL string, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	s := &Service{
		Repo:          repo,
		Tx:            tx,
		Notifier:      notifier,
		CertGen:       UUIDCertificationGenerator{},
		Logger:        logger,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		validate:      validation.New(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a PENDING user and sends the verification message in the
// same transaction, so a failed send leaves no row behind.
func (s *Service) Create(ctx context.Context, draft entity.UserDraft) (*entity.User, error) {
	draft.Email = strings.TrimSpace(draft.Email)
	if err := s.validate.Struct(draft); err != nil {
		return nil, &ValidationError{Fields: validation.ToDetails(err)}
	}
	code, err := s.CertGen.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate certification code: %w", err)
	}

	var created *entity.User
	err = s.Tx.WithinTx(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		u := &entity.User{
			Email:             draft.Email,
			Nickname:          draft.Nickname,
			Address:           draft.Address,
			Status:            entity.UserStatusPending,
			CertificationCode: code,
		}
		if err := repo.Save(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("save user: %w", err)
		}
		msg := repository.VerificationMessage{
			UserID:            u.ID,
			To:                u.Email,
			Nickname:          u.Nickname,
			CertificationCode: u.CertificationCode,
			VerifyURL:         s.verifyURL(u),
		}
		if err := s.Notifier.SendVerification(ctx, msg); err != nil {
			return fmt.Errorf("send verification: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrEmailAlreadyRegistered) {
			s.Logger.WithError(err).WithField("email", draft.Email).Error("create user failed")
		}
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": created.ID, "email": created.Email}).Info("user created")
	return created, nil
}

// GetByEmail returns the user only when it is ACTIVE.
func (s *Service) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.FindByEmailAndStatus(ctx, email, entity.UserStatusActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(email)
		}
		return nil, err
	}
	return u, nil
}

// GetByID returns the user only when it is ACTIVE.
func (s *Service) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if s.Cache != nil {
		u, err := s.Cache.GetActive(ctx, id)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("user cache read failed")
		} else if u != nil {
			return u, nil
		}
	}

	u, err := s.Repo.FindByIDAndStatus(ctx, id, entity.UserStatusActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetActive(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("user cache write failed")
		}
	}
	return u, nil
}

// Update applies the supplied patch fields to the user with the given id, whatever its status.
func (s *Service) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, &ValidationError{Fields: validation.ToDetails(err)}
	}

	var updated *entity.User
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		u, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if patch.Apply(u) {
			if err := repo.Save(ctx, u); err != nil {
				return fmt.Errorf("save user: %w", err)
			}
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterChange(ctx, updated)
	s.Logger.WithField("user_id", id).Info("user profile updated")
	return updated, nil
}

// Login stamps LastLoginAt with the current time. It never moves the stamp backwards.
func (s *Service) Login(ctx context.Context, id int64) (*entity.User, error) {
	var user *entity.User
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		u, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if now := s.now().UnixMilli(); now > u.LastLoginAt {
			u.LastLoginAt = now
		}
		if err := repo.Save(ctx, u); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterChange(ctx, user)
	return user, nil
}

// VerifyEmail activates a PENDING user whose certification code matches exactly.
// Verifying an already ACTIVE user with the right code succeeds without a write.
func (s *Service) VerifyEmail(ctx context.Context, id int64, code string) (*entity.User, error) {
	var (
		user      *entity.User
		activated bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		u, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if u.CertificationCode != code {
			return ErrCertificationCodeNotMatched
		}
		if u.Activate() {
			if err := repo.Save(ctx, u); err != nil {
				return fmt.Errorf("save user: %w", err)
			}
			activated = true
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCertificationCodeNotMatched) {
			s.Logger.WithField("user_id", id).Warn("certification code mismatch")
		}
		return nil, err
	}

	if activated {
		s.afterChange(ctx, user)
		s.Logger.WithField("user_id", id).Info("user activated")
	}
	return user, nil
}

// Search queries the index of ACTIVE users.
func (s *Service) Search(ctx context.Context, q string, size int) ([]repository.UserDocument, error) {
	if s.Index == nil {
		return []repository.UserDocument{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, q, size)
}

func (s *Service) load(ctx context.Context, repo repository.UserRepository, id int64) (*entity.User, error) {
	u, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, err
	}
	return u, nil
}

// afterChange drops the cached copy and refreshes the search projection.
// Failures are logged; the write has already committed.
func (s *Service) afterChange(ctx context.Context, u *entity.User) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, u.ID); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("user cache invalidate failed")
		}
	}
	if s.Index != nil && u.IsActive() {
		if err := s.Index.Index(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("user index failed")
		}
	}
}

func (s *Service) verifyURL(u *entity.User) string {
	return fmt.Sprintf("%s/api/users/%d/verify?certificationCode=%s", s.PublicBaseURL, u.ID, url.QueryEscape(u.CertificationCode))
}
