package domain

import "time"

// Field names used in validation errors and uniqueness checks.
const (
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldEmail         = "email"
	FieldUsername      = "username"
	FieldPassword      = "password"
	FieldPhoneNumber   = "phoneNumber"
	FieldRole          = "role"
	FieldActive        = "active"
	FieldRoleName      = "name"
	FieldAccessModules = "accessModules"
	FieldID            = "id"
	FieldUserID        = "userId"
	FieldModule        = "module"
)

// MinPasswordLength is the shortest accepted plaintext password.
const MinPasswordLength = 6

// User models an account. RoleID always referenced an existing role at the
// time it was written.
type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordDigest string    `json:"-"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	RoleID         string    `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserChanges is a validated partial update. Nil pointers leave the stored
// value untouched.
type UserChanges struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Username       *string
	PasswordDigest *string
	PhoneNumber    *string
	RoleID         *string
	Active         *bool
}

// Empty reports whether the changes would not touch any field.
func (c UserChanges) Empty() bool {
	return c.FirstName == nil && c.LastName == nil && c.Email == nil && c.Username == nil &&
		c.PasswordDigest == nil && c.PhoneNumber == nil && c.RoleID == nil && c.Active == nil
}
