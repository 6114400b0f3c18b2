package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
)

const userColumns = `id, user_code, first_name, last_name, email, phone, password_hash, user_type, status, created_at, updated_at`

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address. Lookup is case insensitive:
// emails are stored lowercased and the argument is lowercased here too.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user and fills in the generated identifier. The email
// is lowercased before storage so uniqueness holds regardless of input case.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = strings.ToLower(user.Email)

	const query = `INSERT INTO users (user_code, first_name, last_name, email, phone, password_hash, user_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.GetContext(ctx, &user.ID, query,
		user.UserCode, user.FirstName, user.LastName, user.Email, user.Phone,
		user.PasswordHash, user.Role, user.Status, user.CreatedAt, user.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateStatus changes the account lifecycle status.
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	const query = `UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns users matching the filter with a total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("user_type = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(first_name || ' ' || last_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"email":      true,
		"created_at": true,
		"updated_at": true,
		"last_name":  true,
		"user_code":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", userColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}
