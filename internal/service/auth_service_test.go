package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
	"github.com/hiraya-scholars/hiraya-api/pkg/password"
)

type mockUserRepo struct {
	findByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	findByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	createFn         func(ctx context.Context, user *models.User) error
	updatePasswordFn func(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findByEmailFn(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	return m.updatePasswordFn(ctx, id, passwordHash, updatedAt)
}

type mockAdminRepo struct {
	findByEmailFn func(ctx context.Context, email string) (*models.Admin, error)
	lastLoginFn   func(ctx context.Context, userID int64, ts time.Time) error
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return m.findByEmailFn(ctx, email)
}

func (m *mockAdminRepo) UpdateLastLogin(ctx context.Context, userID int64, ts time.Time) error {
	if m.lastLoginFn != nil {
		return m.lastLoginFn(ctx, userID, ts)
	}
	return nil
}

func newAuthService(users *mockUserRepo, admins *mockAdminRepo, numbers NumberSource) *AuthService {
	// Tokens are validated against the wall clock, so issue them at real now.
	clock := fixedClock{now: time.Now().UTC()}
	return NewAuthService(users, admins, nil, nil, clock, numbers, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "hiraya-api",
	})
}

func TestRegisterGeneratesUserCode(t *testing.T) {
	var created *models.User
	users := &mockUserRepo{createFn: func(ctx context.Context, user *models.User) error {
		user.ID = 7
		created = user
		return nil
	}}
	svc := newAuthService(users, &mockAdminRepo{}, &sequenceNumbers{values: []int{1234}})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Email:     "Juan@Example.COM",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "JUDE1234", created.UserCode)
	assert.Equal(t, "juan@example.com", created.Email)
	assert.Equal(t, models.RoleApplicant, created.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestRegisterShortNamePadsInitials(t *testing.T) {
	var created *models.User
	users := &mockUserRepo{createFn: func(ctx context.Context, user *models.User) error {
		created = user
		return nil
	}}
	svc := newAuthService(users, &mockAdminRepo{}, &sequenceNumbers{values: []int{7}})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "A",
		LastName:  "Li",
		Email:     "a@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "AXLI0007", created.UserCode)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	users := &mockUserRepo{createFn: func(ctx context.Context, user *models.User) error {
		return &pq.Error{Code: "23505"}
	}}
	svc := newAuthService(users, &mockAdminRepo{}, nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Email:     "juan@example.com",
		Password:  "secret123",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestLoginWithBcryptHash(t *testing.T) {
	hash, err := password.Hash("secret123")
	require.NoError(t, err)
	users := &mockUserRepo{findByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 3, Email: email, PasswordHash: hash, Role: models.RoleApplicant, Status: models.StatusActive}, nil
	}}
	svc := newAuthService(users, &mockAdminRepo{}, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "juan@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginWithLegacyHash(t *testing.T) {
	legacy, err := password.HashLegacy("secret123")
	require.NoError(t, err)
	users := &mockUserRepo{findByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 3, Email: email, PasswordHash: legacy, Role: models.RoleApplicant, Status: models.StatusActive}, nil
	}}
	svc := newAuthService(users, &mockAdminRepo{}, nil)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "juan@example.com", Password: "secret123"})
	assert.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "juan@example.com", Password: "wrong"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginUnknownEmail(t *testing.T) {
	users := &mockUserRepo{findByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
		return nil, sql.ErrNoRows
	}}
	svc := newAuthService(users, &mockAdminRepo{}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "missing@example.com", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginInactiveAccount(t *testing.T) {
	hash, err := password.Hash("secret123")
	require.NoError(t, err)
	users := &mockUserRepo{findByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 3, Email: email, PasswordHash: hash, Status: models.StatusInactive}, nil
	}}
	svc := newAuthService(users, &mockAdminRepo{}, nil)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "juan@example.com", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))
}

func adminAccount(t *testing.T, role models.UserRole, status models.UserStatus) *models.Admin {
	t.Helper()
	hash, err := password.Hash("secret123")
	require.NoError(t, err)
	return &models.Admin{
		User: models.User{
			ID:           5,
			Email:        "staff@example.com",
			PasswordHash: hash,
			Role:         role,
			Status:       status,
		},
		RoleLabel:  models.RoleLabelAdministrator,
		Department: "Scholarships",
	}
}

func TestAdminLoginIssuesRoleLabel(t *testing.T) {
	admins := &mockAdminRepo{findByEmailFn: func(ctx context.Context, email string) (*models.Admin, error) {
		return adminAccount(t, models.RoleAdmin, models.StatusActive), nil
	}}
	svc := newAuthService(&mockUserRepo{}, admins, nil)

	resp, err := svc.AdminLogin(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLabelAdministrator, resp.RoleLabel)
	assert.True(t, resp.Permissions.CanManageUsers)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLabelAdministrator, claims.RoleLabel)
	assert.True(t, claims.Permissions().CanExportData)
}

func TestAdminLoginRejectsNonAdminType(t *testing.T) {
	admins := &mockAdminRepo{findByEmailFn: func(ctx context.Context, email string) (*models.Admin, error) {
		return adminAccount(t, models.RoleApplicant, models.StatusActive), nil
	}}
	svc := newAuthService(&mockUserRepo{}, admins, nil)

	_, err := svc.AdminLogin(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAdminLoginRejectsInactive(t *testing.T) {
	admins := &mockAdminRepo{findByEmailFn: func(ctx context.Context, email string) (*models.Admin, error) {
		return adminAccount(t, models.RoleAdmin, models.StatusInactive), nil
	}}
	svc := newAuthService(&mockUserRepo{}, admins, nil)

	_, err := svc.AdminLogin(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestChangePasswordVerifiesOld(t *testing.T) {
	hash, err := password.Hash("oldpass123")
	require.NoError(t, err)
	updated := false
	users := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, PasswordHash: hash}, nil
		},
		updatePasswordFn: func(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
			updated = true
			assert.True(t, password.Verify("newpass123", passwordHash))
			return nil
		},
	}
	svc := newAuthService(users, &mockAdminRepo{}, nil)

	err = svc.ChangePassword(context.Background(), 3, models.ChangePasswordRequest{OldPassword: "oldpass123", NewPassword: "newpass123"})
	require.NoError(t, err)
	assert.True(t, updated)

	err = svc.ChangePassword(context.Background(), 3, models.ChangePasswordRequest{OldPassword: "wrong1", NewPassword: "newpass123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrPermissionDenied))
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	users := &mockUserRepo{createFn: func(ctx context.Context, user *models.User) error {
		user.ID = 7
		return nil
	}}
	svc := newAuthService(users, &mockAdminRepo{}, &sequenceNumbers{values: []int{1}})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Email:     "juan@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Empty(t, claims.RoleLabel)
	assert.False(t, claims.Permissions().CanReviewApplications)
}
