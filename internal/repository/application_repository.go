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

const applicationColumns = `id, user_id, reference_number, application_status,
	first_name, middle_name, last_name, sex, birthdate, age, place_of_birth, height, weight, mobile_number, email, facebook_url,
	present_region, present_province, present_municipality, present_barangay, present_house_number, present_street, present_zip_code,
	permanent_region, permanent_province, permanent_municipality, permanent_barangay, permanent_house_number, permanent_street, permanent_zip_code,
	jhs_name, jhs_school_id, jhs_type,
	shs_name, shs_school_id, shs_type, track, strand, grade_12_gwa, honors_received,
	college_first, college_second, college_third, program_first, program_second, program_third,
	essay, submission_date, last_saved, created_at, updated_at`

// ApplicationRepository provides database access for scholarship
// applications and their timeline.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// FindByID returns an application by identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 LIMIT 1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// FindDraftByUserID returns the user's single draft, if any. The partial
// unique index on (user_id) guarantees at most one row matches.
func (r *ApplicationRepository) FindDraftByUserID(ctx context.Context, userID int64) (*models.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 AND application_status = 'draft' LIMIT 1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find draft by user id: %w", err)
	}
	return &app, nil
}

// FindLatestByUserID returns the user's most recent application regardless
// of status.
func (r *ApplicationRepository) FindLatestByUserID(ctx context.Context, userID int64) (*models.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest application by user id: %w", err)
	}
	return &app, nil
}

// UpsertDraft inserts the user's draft or, if one already exists, replaces
// its form fields in place. The conflict target is the partial unique index
// on (user_id) WHERE application_status = 'draft', so concurrent saves
// serialize on the database rather than racing a read-then-write.
func (r *ApplicationRepository) UpsertDraft(ctx context.Context, app *models.Application) error {
	now := time.Now().UTC()
	app.Status = models.AppStatusDraft
	app.LastSaved = &now
	app.UpdatedAt = now
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}

	const query = `INSERT INTO applications (user_id, application_status,
		first_name, middle_name, last_name, sex, birthdate, age, place_of_birth, height, weight, mobile_number, email, facebook_url,
		present_region, present_province, present_municipality, present_barangay, present_house_number, present_street, present_zip_code,
		permanent_region, permanent_province, permanent_municipality, permanent_barangay, permanent_house_number, permanent_street, permanent_zip_code,
		jhs_name, jhs_school_id, jhs_type,
		shs_name, shs_school_id, shs_type, track, strand, grade_12_gwa, honors_received,
		college_first, college_second, college_third, program_first, program_second, program_third,
		essay, last_saved, created_at, updated_at)
	VALUES (:user_id, :application_status,
		:first_name, :middle_name, :last_name, :sex, :birthdate, :age, :place_of_birth, :height, :weight, :mobile_number, :email, :facebook_url,
		:present_region, :present_province, :present_municipality, :present_barangay, :present_house_number, :present_street, :present_zip_code,
		:permanent_region, :permanent_province, :permanent_municipality, :permanent_barangay, :permanent_house_number, :permanent_street, :permanent_zip_code,
		:jhs_name, :jhs_school_id, :jhs_type,
		:shs_name, :shs_school_id, :shs_type, :track, :strand, :grade_12_gwa, :honors_received,
		:college_first, :college_second, :college_third, :program_first, :program_second, :program_third,
		:essay, :last_saved, :created_at, :updated_at)
	ON CONFLICT (user_id) WHERE application_status = 'draft' DO UPDATE SET
		first_name = EXCLUDED.first_name, middle_name = EXCLUDED.middle_name, last_name = EXCLUDED.last_name,
		sex = EXCLUDED.sex, birthdate = EXCLUDED.birthdate, age = EXCLUDED.age, place_of_birth = EXCLUDED.place_of_birth,
		height = EXCLUDED.height, weight = EXCLUDED.weight, mobile_number = EXCLUDED.mobile_number,
		email = EXCLUDED.email, facebook_url = EXCLUDED.facebook_url,
		present_region = EXCLUDED.present_region, present_province = EXCLUDED.present_province,
		present_municipality = EXCLUDED.present_municipality, present_barangay = EXCLUDED.present_barangay,
		present_house_number = EXCLUDED.present_house_number, present_street = EXCLUDED.present_street,
		present_zip_code = EXCLUDED.present_zip_code,
		permanent_region = EXCLUDED.permanent_region, permanent_province = EXCLUDED.permanent_province,
		permanent_municipality = EXCLUDED.permanent_municipality, permanent_barangay = EXCLUDED.permanent_barangay,
		permanent_house_number = EXCLUDED.permanent_house_number, permanent_street = EXCLUDED.permanent_street,
		permanent_zip_code = EXCLUDED.permanent_zip_code,
		jhs_name = EXCLUDED.jhs_name, jhs_school_id = EXCLUDED.jhs_school_id, jhs_type = EXCLUDED.jhs_type,
		shs_name = EXCLUDED.shs_name, shs_school_id = EXCLUDED.shs_school_id, shs_type = EXCLUDED.shs_type,
		track = EXCLUDED.track, strand = EXCLUDED.strand, grade_12_gwa = EXCLUDED.grade_12_gwa,
		honors_received = EXCLUDED.honors_received,
		college_first = EXCLUDED.college_first, college_second = EXCLUDED.college_second, college_third = EXCLUDED.college_third,
		program_first = EXCLUDED.program_first, program_second = EXCLUDED.program_second, program_third = EXCLUDED.program_third,
		essay = EXCLUDED.essay, last_saved = EXCLUDED.last_saved, updated_at = EXCLUDED.updated_at
	RETURNING id`

	rows, err := r.db.NamedQueryContext(ctx, query, app)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&app.ID); err != nil {
			return fmt.Errorf("upsert draft scan id: %w", err)
		}
	}
	return rows.Err()
}

// Submit flips a draft to submitted and records the timeline entry in one
// transaction. The status guard in the UPDATE makes submission idempotent
// under races: only one caller moves the row out of draft. A unique
// violation on reference_number is returned unwrapped so the caller can
// regenerate and retry.
func (r *ApplicationRepository) Submit(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("submit begin tx: %w", err)
	}
	defer tx.Rollback()

	const update = `UPDATE applications
		SET application_status = 'submitted', reference_number = $3, submission_date = $4, updated_at = $4
		WHERE id = $1 AND user_id = $2 AND application_status = 'draft'`
	res, err := tx.ExecContext(ctx, update, id, userID, refNumber, submittedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("submit application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	const insert = `INSERT INTO application_timeline (application_id, user_id, action, description, status_before, status_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	description := "Application submitted with reference number " + refNumber
	before, after := string(models.AppStatusDraft), string(models.AppStatusSubmitted)
	if _, err := tx.ExecContext(ctx, insert, id, userID, models.TimelineActionSubmitted, description, before, after, submittedAt); err != nil {
		return fmt.Errorf("submit timeline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("submit commit: %w", err)
	}
	return nil
}

// DeleteDraft removes the caller's draft. The triple guard on id, owner and
// status means submitted applications can never be deleted through here.
func (r *ApplicationRepository) DeleteDraft(ctx context.Context, id, userID int64) error {
	const query = `DELETE FROM applications WHERE id = $1 AND user_id = $2 AND application_status = 'draft'`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an application in any status. Documents and timeline rows
// go with it via ON DELETE CASCADE. Staff only.
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM applications WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus moves a non-draft application to a new review status and
// appends the timeline entry in the same transaction. Returns the status the
// row held before the change.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("update status begin tx: %w", err)
	}
	defer tx.Rollback()

	var before models.ApplicationStatus
	const lock = `SELECT application_status FROM applications WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &before, lock, id); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("update status lock: %w", err)
	}
	if before == models.AppStatusDraft {
		return before, ErrDraftApplication
	}

	now := time.Now().UTC()
	const update = `UPDATE applications SET application_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, id, status, now); err != nil {
		return before, fmt.Errorf("update status: %w", err)
	}

	description := note
	if description == "" {
		description = fmt.Sprintf("Status changed from %s to %s", before, status)
	}
	const insert = `INSERT INTO application_timeline (application_id, user_id, action, description, status_before, status_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	b, a := string(before), string(status)
	if _, err := tx.ExecContext(ctx, insert, id, actorID, models.TimelineActionStatusUpdate, description, b, a, now); err != nil {
		return before, fmt.Errorf("update status timeline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return before, fmt.Errorf("update status commit: %w", err)
	}
	return before, nil
}

// InsertTimeline appends a standalone timeline entry.
func (r *ApplicationRepository) InsertTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO application_timeline (application_id, user_id, action, description, status_before, status_after, created_at)
		VALUES (:application_id, :user_id, :action, :description, :status_before, :status_after, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert timeline: %w", err)
	}
	return nil
}

// Timeline returns all entries for an application, newest first.
func (r *ApplicationRepository) Timeline(ctx context.Context, applicationID int64) ([]models.TimelineEntry, error) {
	const query = `SELECT id, application_id, user_id, action, description, status_before, status_after, created_at
		FROM application_timeline WHERE application_id = $1 ORDER BY created_at DESC, id DESC`
	var entries []models.TimelineEntry
	if err := r.db.SelectContext(ctx, &entries, query, applicationID); err != nil {
		return nil, fmt.Errorf("application timeline: %w", err)
	}
	return entries, nil
}

// List returns the staff review listing with total count. Drafts are
// excluded unless the filter asks for them explicitly.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationSummary, int, error) {
	baseQuery := `FROM applications ap INNER JOIN users u ON u.id = ap.user_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("ap.application_status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	} else {
		conditions = append(conditions, "ap.application_status <> 'draft'")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.first_name || ' ' || u.last_name) LIKE $%d OR LOWER(u.email) LIKE $%d OR ap.reference_number ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf(`SELECT ap.id, ap.reference_number, ap.application_status,
		u.first_name || ' ' || u.last_name AS applicant_name, u.email, u.phone,
		ap.program_first, ap.college_first, ap.grade_12_gwa, ap.submission_date, ap.created_at
		%s ORDER BY ap.submission_date DESC NULLS LAST, ap.created_at DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)

	var summaries []models.ApplicationSummary
	if err := r.db.SelectContext(ctx, &summaries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return summaries, total, nil
}

// ListForExport returns the full rows for every non-draft application,
// joined with the owning user, for CSV and PDF exports.
func (r *ApplicationRepository) ListForExport(ctx context.Context) ([]models.ApplicationSummary, error) {
	const query = `SELECT ap.id, ap.reference_number, ap.application_status,
		u.first_name || ' ' || u.last_name AS applicant_name, u.email, u.phone,
		ap.program_first, ap.college_first, ap.grade_12_gwa, ap.submission_date, ap.created_at
		FROM applications ap INNER JOIN users u ON u.id = ap.user_id
		WHERE ap.application_status <> 'draft'
		ORDER BY ap.submission_date DESC NULLS LAST, ap.created_at DESC`
	var summaries []models.ApplicationSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("list applications for export: %w", err)
	}
	return summaries, nil
}
