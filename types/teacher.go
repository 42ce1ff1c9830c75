package types

import "time"

// Teacher is the role-specific profile for users with the teacher role.
type Teacher struct {
	ID int `json:"id" db:"id"`

	// UserID references the owning user account.
	UserID int `json:"user_id" db:"user_id"`

	// TeacherCode is generated once at registration and never changes.
	TeacherCode string `json:"teacher_code" db:"teacher_code"`

	Specialization  *string  `json:"specialization,omitempty" db:"specialization"`
	ExperienceYears int      `json:"experience_years" db:"experience_years"`
	Bio             *string  `json:"bio,omitempty" db:"bio"`
	Qualifications  *string  `json:"qualifications,omitempty" db:"qualifications"`
	HourlyRate      *float64 `json:"hourly_rate,omitempty" db:"hourly_rate"`

	SoftDelete

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// User is the owning account, attached by joined reads.
	User *User `json:"user,omitempty" db:"-"`
}

// OwnerID returns the owning account's id.
func (t *Teacher) OwnerID() int {
	return t.UserID
}

// TeacherUpdate lists the teacher fields that may change through a profile
// update. Nil fields are left untouched.
type TeacherUpdate struct {
	Specialization  *string  `json:"specialization"`
	ExperienceYears *int     `json:"experience_years"`
	Bio             *string  `json:"bio"`
	Qualifications  *string  `json:"qualifications"`
	HourlyRate      *float64 `json:"hourly_rate"`
}

// Apply merges the non-nil fields into the teacher.
func (upd TeacherUpdate) Apply(t *Teacher) {
	if upd.Specialization != nil {
		t.Specialization = upd.Specialization
	}
	if upd.ExperienceYears != nil {
		t.ExperienceYears = *upd.ExperienceYears
	}
	if upd.Bio != nil {
		t.Bio = upd.Bio
	}
	if upd.Qualifications != nil {
		t.Qualifications = upd.Qualifications
	}
	if upd.HourlyRate != nil {
		t.HourlyRate = upd.HourlyRate
	}
}
