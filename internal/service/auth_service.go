package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/repository"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
	"github.com/hiraya-scholars/hiraya-api/pkg/password"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error
}

type authAdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, userID int64, ts time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// AuthService provides registration and authentication use cases.
type AuthService struct {
	users     authUserRepository
	admins    authAdminRepository
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
	numbers   NumberSource
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, admins authAdminRepository, validate *validator.Validate, logger *zap.Logger, clock Clock, numbers NumberSource, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if numbers == nil {
		numbers = SystemNumberSource()
	}
	return &AuthService{users: users, admins: admins, validator: validate, logger: logger, clock: clock, numbers: numbers, config: config}
}

// Register creates a new applicant account. The email is stored lowercased
// and a duplicate registration surfaces as a conflict no matter which casing
// the second attempt used.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		UserCode:     s.generateUserCode(req.FirstName, req.LastName),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         models.RoleApplicant,
		Status:       models.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create account")
	}

	s.logger.Info("applicant registered", zap.Int64("user_id", user.ID), zap.String("user_code", user.UserCode))
	return s.loginResponse(user, "")
}

// Login authenticates an applicant and returns an issued token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to fetch user")
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if user.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	return s.loginResponse(user, "")
}

// AdminLogin authenticates a staff member. The account must exist in the
// admins table, carry the admin user type and be active; failures all
// collapse to invalid credentials so probing cannot tell accounts apart.
func (s *AuthService) AdminLogin(ctx context.Context, req models.LoginRequest) (*models.AdminLoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to fetch admin")
	}

	if !password.Verify(req.Password, admin.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if admin.Role != models.RoleAdmin || admin.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if err := s.admins.UpdateLastLogin(ctx, admin.ID, s.clock.Now()); err != nil {
		s.logger.Warn("failed to update admin last login", zap.Error(err))
	}

	base, err := s.loginResponse(&admin.User, admin.RoleLabel)
	if err != nil {
		return nil, err
	}
	return &models.AdminLoginResponse{
		LoginResponse: *base,
		RoleLabel:     admin.RoleLabel,
		Department:    admin.Department,
		Permissions:   models.PermissionsFor(admin.RoleLabel),
	}, nil
}

// ChangePassword changes the password for the given user ID.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load user")
	}

	if !password.Verify(req.OldPassword, user.PasswordHash) {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "old password does not match")
	}

	newHash, err := password.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash, s.clock.Now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update password")
	}
	return nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load user")
	}
	return user, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) loginResponse(user *models.User, roleLabel string) (*models.LoginResponse, error) {
	issuedAt := s.clock.Now()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		FullName:  user.FullName(),
		RoleLabel: roleLabel,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User: models.UserInfo{
			ID:       user.ID,
			UserCode: user.UserCode,
			Email:    user.Email,
			FullName: user.FullName(),
			Role:     user.Role,
		},
	}, nil
}

// generateUserCode builds the external identifier shown to applicants: the
// first two letters of each name uppercased, padded with X, plus four
// random digits.
func (s *AuthService) generateUserCode(firstName, lastName string) string {
	code := initials(firstName) + initials(lastName)
	return fmt.Sprintf("%s%04d", code, s.numbers.Intn(10000))
}

func initials(name string) string {
	var letters []rune
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
		if len(letters) == 2 {
			break
		}
	}
	for len(letters) < 2 {
		letters = append(letters, 'X')
	}
	return string(letters)
}
