package types

import "time"

// Student is the role-specific profile for users with the student role.
type Student struct {
	ID int `json:"id" db:"id"`

	// UserID references the owning user account.
	UserID int `json:"user_id" db:"user_id"`

	// StudentCode is generated once at registration and never changes.
	StudentCode string `json:"student_code" db:"student_code"`

	CurrentLevel *string `json:"current_level,omitempty" db:"current_level"`

	// JoinedDate is set at creation and immutable thereafter.
	JoinedDate time.Time `json:"joined_date" db:"joined_date"`

	TotalCoursesTaken int `json:"total_courses_taken" db:"total_courses_taken"`

	// AttendanceRate is a percentage between 0 and 100 with two decimal places.
	AttendanceRate float64 `json:"attendance_rate" db:"attendance_rate"`

	EmergencyContactName  *string `json:"emergency_contact_name,omitempty" db:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty" db:"emergency_contact_phone"`
	Notes                 *string `json:"notes,omitempty" db:"notes"`

	SoftDelete

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// User is the owning account, attached by joined reads.
	User *User `json:"user,omitempty" db:"-"`
}

// OwnerID returns the owning account's id.
func (s *Student) OwnerID() int {
	return s.UserID
}

// StudentOwnerID exposes the student relation for authorization checks.
func (s *Student) StudentOwnerID() (int, bool) {
	return s.UserID, true
}

// StudentUpdate lists the student fields that may change through a profile
// update. Nil fields are left untouched. The code, join date, and owning
// account never move through this path.
type StudentUpdate struct {
	CurrentLevel          *string  `json:"current_level"`
	TotalCoursesTaken     *int     `json:"total_courses_taken"`
	AttendanceRate        *float64 `json:"attendance_rate"`
	EmergencyContactName  *string  `json:"emergency_contact_name"`
	EmergencyContactPhone *string  `json:"emergency_contact_phone"`
	Notes                 *string  `json:"notes"`
}

// Apply merges the non-nil fields into the student.
func (upd StudentUpdate) Apply(s *Student) {
	if upd.CurrentLevel != nil {
		s.CurrentLevel = upd.CurrentLevel
	}
	if upd.TotalCoursesTaken != nil {
		s.TotalCoursesTaken = *upd.TotalCoursesTaken
	}
	if upd.AttendanceRate != nil {
		s.AttendanceRate = *upd.AttendanceRate
	}
	if upd.EmergencyContactName != nil {
		s.EmergencyContactName = upd.EmergencyContactName
	}
	if upd.EmergencyContactPhone != nil {
		s.EmergencyContactPhone = upd.EmergencyContactPhone
	}
	if upd.Notes != nil {
		s.Notes = upd.Notes
	}
}
