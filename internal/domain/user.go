package domain

import "time"

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

// Departments recognized by the asset desk. "Other" is the catch-all.
var Departments = []string{"IT", "HR", "Finance", "Operations", "Marketing", "Sales", "Other"}

func ValidDepartment(d string) bool {
	if d == "" {
		return true
	}
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

type User struct {
	ID           int32      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Department   string     `json:"department,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Status       UserStatus `json:"status"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	// Reset token is stored as a SHA-256 digest of the value mailed to the
	// user; the plaintext token never touches the database.
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedOn           time.Time  `json:"created_on"`
	UpdatedOn           time.Time  `json:"updated_on"`
}

// RoleCount and DepartmentCount back the /users/stats breakdowns.
type RoleCount struct {
	Role  Role  `json:"role"`
	Count int32 `json:"count"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int32  `json:"count"`
}

type UserStats struct {
	Total       int32             `json:"total"`
	ActiveUsers int32             `json:"active_users"`
	Roles       []RoleCount       `json:"roles"`
	Departments []DepartmentCount `json:"departments"`
}
