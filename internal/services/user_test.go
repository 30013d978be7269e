package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/auth"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/config"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/dbx"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/logging"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
	contactsrepo "github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/contacts"
	projectsrepo "github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/projects"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/repomanager"
	teamrepo "github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/team"
	usersrepo "github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func testLogger() logging.Logger {
	return logging.NewDiscardLogger()
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SessionSecret:   "k",
		SessionValidity: time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
	return NewUserService(db, rm, cfg, testLogger())
}

func mustHash(t *testing.T, password string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	s := string(h)
	return &s
}

type userResult struct {
	user *models.User
	err  error
}

type fakeUsersRepo struct {
	countOut int64
	countErr error

	createErr error
	created   []*models.User

	// getByEmail is consumed front to back; the last element repeats.
	getByEmail []userResult

	getByIDOut *models.User
	getByIDErr error

	updateRoleErr  error
	updatedRoles   map[string]models.Role
	setPasswordErr error
	setPasswords   map[string]string
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if len(f.getByEmail) == 0 {
		return nil, common.ErrNotFound
	}
	r := f.getByEmail[0]
	if len(f.getByEmail) > 1 {
		f.getByEmail = f.getByEmail[1:]
	}
	return r.user, r.err
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

func (f *fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	return f.countOut, f.countErr
}

func (f *fakeUsersRepo) UpdateRole(ctx context.Context, id string, role models.Role) error {
	if f.updateRoleErr != nil {
		return f.updateRoleErr
	}
	if f.updatedRoles == nil {
		f.updatedRoles = map[string]models.Role{}
	}
	f.updatedRoles[id] = role
	return nil
}

func (f *fakeUsersRepo) SetPassword(ctx context.Context, id string, passwordHash string) error {
	if f.setPasswordErr != nil {
		return f.setPasswordErr
	}
	if f.setPasswords == nil {
		f.setPasswords = map[string]string{}
	}
	f.setPasswords[id] = passwordHash
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	c *fakeContactsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Contacts(db dbx.DBTX) contactsrepo.Repository { return m.c }
func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository { return nil }
func (m *fakeRepoManager) Team(db dbx.DBTX) teamrepo.Repository         { return nil }

func expectRoleClaimTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(firstAdminLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

// --- Register ---

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	expectRoleClaimTx(mock, true)

	repo := &fakeUsersRepo{countOut: 0}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	u, err := s.Register(context.Background(), "Amara", "amara@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Fatalf("want ADMIN on empty table, got %v", u.Role)
	}
	if u.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("hunter22")) != nil {
		t.Fatalf("stored hash does not match the password")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRegister_SubsequentUserStaysUser(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	expectRoleClaimTx(mock, true)

	repo := &fakeUsersRepo{countOut: 3}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	u, err := s.Register(context.Background(), "Ben", "ben@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Fatalf("want USER, got %v", u.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	expectRoleClaimTx(mock, false)

	repo := &fakeUsersRepo{countOut: 1, createErr: common.ErrConflict}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	_, err := s.Register(context.Background(), "Ben", "ben@example.com", "hunter22")
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestRegister_CountErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	expectRoleClaimTx(mock, false)

	repo := &fakeUsersRepo{countErr: errBoom{}}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	if _, err := s.Register(context.Background(), "Ben", "ben@example.com", "hunter22"); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.created) != 0 {
		t.Fatalf("no insert expected after count failure")
	}
}

// --- Authenticate ---

func TestAuthenticate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	good := &models.User{ID: "u1", Email: "amara@example.com", PasswordHash: mustHash(t, "pw-ok"), Role: models.RoleAdmin}

	tests := []struct {
		name     string
		repo     *fakeUsersRepo
		email    string
		password string
		wantErr  error
	}{
		{"ok", &fakeUsersRepo{getByEmail: []userResult{{user: good}}}, "amara@example.com", "pw-ok", nil},
		{"empty email", &fakeUsersRepo{}, "", "pw-ok", common.ErrUnauthorized},
		{"empty password", &fakeUsersRepo{}, "amara@example.com", "", common.ErrUnauthorized},
		{"unknown email", &fakeUsersRepo{getByEmail: []userResult{{err: common.ErrNotFound}}}, "x@example.com", "pw-ok", common.ErrUnauthorized},
		{"oauth only account", &fakeUsersRepo{getByEmail: []userResult{{user: &models.User{ID: "u2"}}}}, "amara@example.com", "pw-ok", common.ErrUnauthorized},
		{"wrong password", &fakeUsersRepo{getByEmail: []userResult{{user: good}}}, "amara@example.com", "nope", common.ErrUnauthorized},
		{"lookup failure", &fakeUsersRepo{getByEmail: []userResult{{err: errBoom{}}}}, "amara@example.com", "pw-ok", common.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newUserService(t, db, &fakeRepoManager{u: tt.repo})
			u, err := s.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr == nil {
				if err != nil || u.ID != "u1" {
					t.Fatalf("got (%v, %v)", u, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// --- sessions ---

func TestIssueAndRefreshSession(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{getByIDOut: &models.User{ID: "u1", Name: "Amara", Email: "amara@example.com", Role: models.RoleAdmin}}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	// issued while the account was still a plain user
	tok, err := s.IssueSession(&models.User{ID: "u1", Name: "Amara", Email: "amara@example.com", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	fresh, u, err := s.RefreshSession(context.Background(), tok)
	if err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Fatalf("refresh must re-read the row, got role %v", u.Role)
	}

	claims, err := auth.ParseSessionToken(fresh, []byte("k"))
	if err != nil {
		t.Fatalf("parsing refreshed token: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != models.RoleAdmin {
		t.Fatalf("refreshed claims stale: %+v", claims)
	}
}

func TestRefreshSession_UserGone(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{getByIDErr: common.ErrNotFound}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	tok, err := s.IssueSession(&models.User{ID: "gone", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if _, _, err := s.RefreshSession(context.Background(), tok); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestRefreshSession_BadToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{}})
	if _, _, err := s.RefreshSession(context.Background(), "not-a-token"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

// --- OAuth provisioning ---

func TestEnsureOAuthUser_ExistingAccountLinksByEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	existing := &models.User{ID: "u1", Email: "amara@example.com", Role: models.RoleAdmin}
	repo := &fakeUsersRepo{getByEmail: []userResult{{user: existing}}}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	u, err := s.EnsureOAuthUser(context.Background(), "Amara", "amara@example.com", "")
	if err != nil || u.ID != "u1" {
		t.Fatalf("got (%v, %v)", u, err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("existing account must not be re-created")
	}
}

func TestEnsureOAuthUser_ProvisionsNewAccount(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	expectRoleClaimTx(mock, true)

	repo := &fakeUsersRepo{
		countOut:   4,
		getByEmail: []userResult{{err: common.ErrNotFound}},
	}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	u, err := s.EnsureOAuthUser(context.Background(), "Ben", "ben@example.com", "https://img.example.com/p.png")
	if err != nil {
		t.Fatalf("EnsureOAuthUser: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Fatalf("want USER, got %v", u.Role)
	}
	if u.PasswordHash != nil {
		t.Fatalf("provider accounts must not get a password hash")
	}
	if u.Image == nil || *u.Image != "https://img.example.com/p.png" {
		t.Fatalf("image not carried over: %+v", u.Image)
	}
}

func TestEnsureOAuthUser_RaceFallsBackToLookup(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	expectRoleClaimTx(mock, false)

	winner := &models.User{ID: "u9", Email: "ben@example.com", Role: models.RoleUser}
	repo := &fakeUsersRepo{
		countOut:   4,
		createErr:  common.ErrConflict,
		getByEmail: []userResult{{err: common.ErrNotFound}, {user: winner}},
	}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	u, err := s.EnsureOAuthUser(context.Background(), "Ben", "ben@example.com", "")
	if err != nil || u.ID != "u9" {
		t.Fatalf("got (%v, %v)", u, err)
	}
}

// --- EnsureAdmin ---

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	existing := &models.User{ID: "u1", Email: "ops@example.com", Role: models.RoleUser}
	repo := &fakeUsersRepo{getByEmail: []userResult{{user: existing}}}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	u, err := s.EnsureAdmin(context.Background(), "Ops", "ops@example.com", "new-pass")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if u.Role != models.RoleAdmin || repo.updatedRoles["u1"] != models.RoleAdmin {
		t.Fatalf("existing account not promoted: %+v", u)
	}
	if stored, ok := repo.setPasswords["u1"]; !ok || bcrypt.CompareHashAndPassword([]byte(stored), []byte("new-pass")) != nil {
		t.Fatalf("password not reset")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestEnsureAdmin_CreatesWhenMissing(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeUsersRepo{getByEmail: []userResult{{err: common.ErrNotFound}}}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	u, err := s.EnsureAdmin(context.Background(), "Ops", "ops@example.com", "new-pass")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if u.Role != models.RoleAdmin || len(repo.created) != 1 {
		t.Fatalf("admin not created: %+v", u)
	}
}
