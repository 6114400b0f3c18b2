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

const adminColumns = `u.id, u.user_code, u.first_name, u.last_name, u.email, u.phone, u.password_hash, u.user_type, u.status, u.created_at, u.updated_at,
	a.admin_code, a.role_label, a.department, a.permissions, a.last_login`

// AdminRepository provides database access for staff accounts, which live in
// the users table joined with the admins role table.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByEmail returns the staff account for an email. Only rows that exist
// in both users and admins qualify; an applicant email falls through to
// sql.ErrNoRows even when the users row exists.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	const query = `SELECT ` + adminColumns + `
		FROM users u
		INNER JOIN admins a ON a.user_id = u.id
		WHERE u.email = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, strings.ToLower(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &admin, nil
}

// FindByUserID returns the staff account for a user identifier.
func (r *AdminRepository) FindByUserID(ctx context.Context, userID int64) (*models.Admin, error) {
	const query = `SELECT ` + adminColumns + `
		FROM users u
		INNER JOIN admins a ON a.user_id = u.id
		WHERE u.id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by user id: %w", err)
	}
	return &admin, nil
}

// UpdateLastLogin stamps the staff member's last successful login.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, userID int64, ts time.Time) error {
	const query = `UPDATE admins SET last_login = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, ts); err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	return nil
}

// DashboardStats computes the shared review-pipeline counters. All staff
// roles see these.
func (r *AdminRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	const query = `SELECT
		COUNT(*) FILTER (WHERE application_status = 'submitted') AS submitted_applications,
		COUNT(*) FILTER (WHERE application_status = 'under_review') AS under_review,
		COUNT(*) FILTER (WHERE application_status = 'interview') AS for_interview,
		COUNT(*) FILTER (WHERE application_status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE application_status = 'declined') AS declined,
		(SELECT COUNT(*) FROM documents WHERE upload_status IN ('uploaded', 'pending')) AS pending_documents
		FROM applications`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}

// AdminDashboardExtras computes the administrator-only counters and merges
// them into stats.
func (r *AdminRepository) AdminDashboardExtras(ctx context.Context, stats *models.DashboardStats) error {
	const query = `SELECT
		(SELECT COUNT(*) FROM users WHERE user_type = 'applicant') AS total_applicants,
		(SELECT COUNT(*) FROM users WHERE user_type = 'applicant' AND created_at >= CURRENT_DATE) AS new_applicants_today,
		(SELECT COUNT(*) FROM applications) AS total_applications,
		(SELECT COUNT(*) FROM applications WHERE application_status = 'draft') AS draft_applications,
		(SELECT COUNT(*) FROM applications WHERE created_at >= CURRENT_DATE) AS applications_today,
		(SELECT COUNT(*) FROM applications WHERE submission_date >= CURRENT_DATE) AS submissions_today`
	var extras struct {
		TotalApplicants    int `db:"total_applicants"`
		NewApplicantsToday int `db:"new_applicants_today"`
		TotalApplications  int `db:"total_applications"`
		DraftApplications  int `db:"draft_applications"`
		ApplicationsToday  int `db:"applications_today"`
		SubmissionsToday   int `db:"submissions_today"`
	}
	if err := r.db.GetContext(ctx, &extras, query); err != nil {
		return fmt.Errorf("admin dashboard extras: %w", err)
	}
	stats.TotalApplicants = &extras.TotalApplicants
	stats.NewApplicantsToday = &extras.NewApplicantsToday
	stats.TotalApplications = &extras.TotalApplications
	stats.DraftApplications = &extras.DraftApplications
	stats.ApplicationsToday = &extras.ApplicationsToday
	stats.SubmissionsToday = &extras.SubmissionsToday
	return nil
}
