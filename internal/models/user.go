package models

import "time"

// UserRole is the role tag carried on the users table.
type UserRole string

const (
	RoleApplicant UserRole = "applicant"
	RoleAdmin     UserRole = "admin"
	RoleReviewer  UserRole = "reviewer"
	RoleScholar   UserRole = "scholar"
)

// UserStatus is the account lifecycle status.
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// User represents an account stored in the users table. UserCode is the
// external-facing identifier shown to applicants (initials + digits).
type User struct {
	ID           int64      `db:"id" json:"id"`
	UserCode     string     `db:"user_code" json:"user_code"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"user_type" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Status    *UserStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
