package model

import "time"

// User roles.  ADMIN manages facilities and can hard-delete bookings, STAFF
// can view all bookings, USER books for themselves.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
	RoleUser  = "USER"
)

// ValidRole reports whether s is one of the recognised roles.
func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users` table.
// The password hash never leaves the repository/handler boundary; responses
// use dedicated payload types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  Username     – unique login name; also the JWT subject.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN, STAFF or USER.
//  IsActive     – whether the account is active.
//  LastLogin    – most recent successful login (nil if never).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Name         string     // users.name
	Email        string     // users.email
	Username     string     // users.username
	PasswordHash string     // users.password_hash
	Role         string     // users.role
	IsActive     bool       // users.is_active
	LastLogin    *time.Time // users.last_login (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
