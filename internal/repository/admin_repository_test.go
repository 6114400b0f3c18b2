package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
)

func adminRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_code", "first_name", "last_name", "email", "phone", "password_hash",
		"user_type", "status", "created_at", "updated_at",
		"admin_code", "role_label", "department", "permissions", "last_login",
	}).AddRow(
		int64(2), "MARO0001", "Maria", "Reyes", "maria@example.com", "", "hash",
		string(models.RoleAdmin), string(models.StatusActive), now, now,
		"ADM-001", models.RoleLabelReviewer, "Scholarship Office", "", nil,
	)
}

func TestAdminFindByEmailJoinsRoleRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users u\s+INNER JOIN admins a ON a\.user_id = u\.id\s+WHERE u\.email = \$1 LIMIT 1`).
		WithArgs("maria@example.com").
		WillReturnRows(adminRows(now))

	admin, err := repo.FindByEmail(context.Background(), "Maria@Example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.ID)
	assert.Equal(t, models.RoleLabelReviewer, admin.RoleLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminFindByEmailApplicantFallsThrough(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(`INNER JOIN admins a ON a\.user_id = u\.id`).
		WithArgs("juan@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "juan@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardStatsCounters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	rows := sqlmock.NewRows([]string{
		"submitted_applications", "under_review", "for_interview",
		"approved", "declined", "pending_documents",
	}).AddRow(12, 4, 2, 7, 3, 9)
	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE application_status = 'submitted'\)`).
		WillReturnRows(rows)

	stats, err := repo.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.SubmittedApplications)
	assert.Equal(t, 9, stats.PendingDocuments)
	assert.Nil(t, stats.TotalApplicants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminDashboardExtrasMergesCounters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	rows := sqlmock.NewRows([]string{
		"total_applicants", "new_applicants_today", "total_applications",
		"draft_applications", "applications_today", "submissions_today",
	}).AddRow(120, 5, 80, 30, 6, 4)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE user_type = 'applicant'`).
		WillReturnRows(rows)

	stats := &models.DashboardStats{}
	require.NoError(t, repo.AdminDashboardExtras(context.Background(), stats))
	require.NotNil(t, stats.TotalApplicants)
	assert.Equal(t, 120, *stats.TotalApplicants)
	require.NotNil(t, stats.DraftApplications)
	assert.Equal(t, 30, *stats.DraftApplications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	ts := time.Now()
	mock.ExpectExec(`UPDATE admins SET last_login = \$2 WHERE user_id = \$1`).
		WithArgs(int64(2), ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateLastLogin(context.Background(), int64(2), ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
