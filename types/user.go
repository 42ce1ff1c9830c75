package types

import (
	"strings"
	"time"
)

// Profile is the role-specific extension record attached to a user.
// Exactly one variant applies per user: no profile, a *Student, or a
// *Teacher, determined by the user's role at registration time.
type Profile interface {
	profileTag()
}

func (*Student) profileTag() {}
func (*Teacher) profileTag() {}

// User represents an account in the system.
// It contains identity, role, contact, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address, used for authentication.
	Email string `json:"email" db:"email"`

	// FirstName and LastName hold the user's name parts.
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	// Role indicates the user's authorization level
	// (student, teacher, admin, receptionist).
	Role Role `json:"role" db:"role"`

	// Optional contact and profile fields.
	PhoneNumber *string    `json:"phone_number,omitempty" db:"phone_number"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Address     *string    `json:"address,omitempty" db:"address"`
	AvatarURL   *string    `json:"avatar_url,omitempty" db:"avatar_url"`

	// Active gates authentication; deactivated users cannot log in.
	Active bool `json:"is_active" db:"is_active"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Profile is the role-specific extension, attached by the service layer.
	// Serialized explicitly by the API layer, never here.
	Profile Profile `json:"-" db:"-"`

	SoftDelete

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins the name parts, trimming when either is empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// OwnerID makes a user its own owning account for authorization checks.
func (u *User) OwnerID() int {
	return u.ID
}

// StudentProfile returns the attached student profile, or nil.
func (u *User) StudentProfile() *Student {
	s, _ := u.Profile.(*Student)
	return s
}

// TeacherProfile returns the attached teacher profile, or nil.
func (u *User) TeacherProfile() *Teacher {
	t, _ := u.Profile.(*Teacher)
	return t
}

// UserUpdate lists the account fields that may change through a profile
// update. Nil fields are left untouched. Identity, role, credentials, and
// activation state never move through this path.
type UserUpdate struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	PhoneNumber *string    `json:"phone_number"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Address     *string    `json:"address"`
	AvatarURL   *string    `json:"avatar_url"`
}

// Apply merges the non-nil fields into the user.
func (upd UserUpdate) Apply(u *User) {
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = upd.PhoneNumber
	}
	if upd.DateOfBirth != nil {
		u.DateOfBirth = upd.DateOfBirth
	}
	if upd.Address != nil {
		u.Address = upd.Address
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = upd.AvatarURL
	}
}
