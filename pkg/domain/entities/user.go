package entities

import (
	"fmt"
	"strings"
	"time"
)

// Role is a user's access level inside their company
type Role int

const (
	Viewer Role = iota
	Analyst
	Manager
	Admin
)

// String method for Role enum
func (r Role) String() string {
	switch r {
	case Viewer:
		return "Viewer"
	case Analyst:
		return "Analyst"
	case Manager:
		return "Manager"
	case Admin:
		return "Admin"
	default:
		return "Unknown"
	}
}

// ParseRole parses the textual form of a Role
func ParseRole(s string) (Role, error) {
	return parseEnum("role", s, []Role{Viewer, Analyst, Manager, Admin})
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Permission is an action guarded by role
type Permission int

const (
	PermRead Permission = iota
	PermWrite
	PermManageUsers
)

// Can reports whether the role grants p
func (r Role) Can(p Permission) bool {
	switch p {
	case PermRead:
		return r >= Viewer && r <= Admin
	case PermWrite:
		return r == Manager || r == Admin
	case PermManageUsers:
		return r == Admin
	default:
		return false
	}
}

// User is a login belonging to a single company
type User struct {
	ID           UserID    `json:"id"`
	CompanyID    CompanyID `json:"company_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a validated User. Emails are stored lower-cased.
func NewUser(id UserID, companyID CompanyID, email, name string, role Role, passwordHash string, active bool, createdAt time.Time) (*User, error) {
	u := &User{
		ID:           id,
		CompanyID:    companyID,
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: passwordHash,
		Active:       active,
		CreatedAt:    createdAt,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the user invariants
func (u *User) Validate() error {
	if string(u.ID) == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if string(u.CompanyID) == "" {
		return fmt.Errorf("company id cannot be empty")
	}
	if strings.Count(u.Email, "@") != 1 || strings.HasPrefix(u.Email, "@") || strings.HasSuffix(u.Email, "@") {
		return fmt.Errorf("invalid email %q", u.Email)
	}
	if u.Name == "" {
		return fmt.Errorf("user name cannot be empty")
	}
	if u.Role < Viewer || u.Role > Admin {
		return fmt.Errorf("invalid role %d", u.Role)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
