// Package services contains the business logic of the back-office. This
// file implements UserService: registration with the atomic first-admin
// claim, credential authentication, OAuth provisioning, and session
// issue/refresh.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/auth"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/config"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/dbx"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/logging"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/repomanager"
)

// firstAdminLockKey serializes the "first user becomes admin" claim. Every
// registration takes this advisory xact lock before counting rows, so two
// concurrent first registrations cannot both observe an empty table.
const firstAdminLockKey int64 = 740031

// UserService provides identity operations:
//   - Register: create credential accounts
//   - Authenticate: verify email/password, failing closed
//   - EnsureOAuthUser: provision or link provider-authenticated accounts
//   - IssueSession / RefreshSession: mint and re-mint session tokens
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	cfg    *config.Config
	logger logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:     db,
		repos:  repos,
		cfg:    cfg,
		logger: logger.With("module", "users"),
	}
}

// Register creates a credential account. The caller is expected to have
// validated the payload; this method hashes the password and runs the
// role claim and insert in one transaction. A duplicate email yields
// common.ErrConflict.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, common.ErrInternal
	}
	hashStr := string(hash)

	user := &models.User{Name: name, Email: email, PasswordHash: &hashStr, Role: models.RoleUser}

	if err := s.createWithRoleClaim(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "id", user.ID, "role", user.Role)
	return user, nil
}

// Authenticate verifies email/password credentials. It fails closed: an
// unknown email, an OAuth-only account (no stored password), and a hash
// mismatch are all reported as common.ErrUnauthorized with no further
// detail. On success it returns the user row.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if user.PasswordHash == nil {
		// OAuth-only account; there is no password to match.
		return nil, common.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	return user, nil
}

// EnsureOAuthUser returns the account for a provider-authenticated identity,
// provisioning one on first sign-in. Linking is by email even when the
// address was not verified by the provider; that risk is accepted so a
// returning customer can use either sign-in path.
func (s *UserService) EnsureOAuthUser(ctx context.Context, name, email, image string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	user = &models.User{Name: name, Email: email, Role: models.RoleUser}
	if image != "" {
		user.Image = &image
	}

	if err := s.createWithRoleClaim(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// lost the race to a concurrent sign-in; the row exists now
			return s.repos.Users(s.db).GetByEmail(ctx, email)
		}
		return nil, err
	}

	s.logger.Info(ctx, "oauth user provisioned", "id", user.ID, "role", user.Role)
	return user, nil
}

// GetByID returns a user row or common.ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

// IssueSession mints a session token for the user with the configured
// validity.
func (s *UserService) IssueSession(user *models.User) (string, error) {
	return auth.IssueSessionToken(user, []byte(s.cfg.SessionSecret), s.cfg.SessionValidity)
}

// RefreshSession verifies the presented token, re-reads the user row, and
// re-issues the token with the current role, name, email, and image. This
// is the only way role changes reach an already-issued session without a
// full re-login.
func (s *UserService) RefreshSession(ctx context.Context, token string) (string, *models.User, error) {
	claims, err := auth.ParseSessionToken(token, []byte(s.cfg.SessionSecret))
	if err != nil {
		return "", nil, err
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, common.ErrInternal
	}

	fresh, err := s.IssueSession(user)
	if err != nil {
		return "", nil, common.ErrInternal
	}
	return fresh, user, nil
}

// EnsureAdmin creates an ADMIN account with the given credentials, or
// promotes an existing account and resets its password. Used by the
// operator CLI.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, common.ErrInternal
	}
	hashStr := string(hash)

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		existing, err := repo.GetByEmail(ctx, email)
		if err == nil {
			if err := repo.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				return err
			}
			if err := repo.SetPassword(ctx, existing.ID, hashStr); err != nil {
				return err
			}
			existing.Role = models.RoleAdmin
			existing.PasswordHash = &hashStr
			user = existing
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		user = &models.User{Name: name, Email: email, PasswordHash: &hashStr, Role: models.RoleAdmin}
		_, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring admin: %w", err)
	}
	return user, nil
}

// createWithRoleClaim inserts the user inside a transaction that first takes
// the first-admin advisory lock and counts existing rows: an empty table
// promotes the new account to ADMIN.
func (s *UserService) createWithRoleClaim(ctx context.Context, user *models.User) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, firstAdminLockKey); err != nil {
			return fmt.Errorf("taking admin claim lock: %w", err)
		}

		repo := s.repos.Users(tx)
		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			user.Role = models.RoleAdmin
		}

		_, err = repo.Create(ctx, user)
		return err
	})
}
