package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// DuplicateError is returned when an insert or update violates a unique
// constraint. Constraint carries the database constraint name so callers can
// tell a taken email apart from a code collision.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "duplicate value for " + e.Constraint
}

// Unique constraint names from the migrations.
const (
	ConstraintUserEmail    = "users_email_key"
	ConstraintUserUsername = "users_username_key"
	ConstraintStudentCode  = "students_student_code_key"
	ConstraintTeacherCode  = "teachers_teacher_code_key"
)

const uniqueViolation = pq.ErrorCode("23505")

// mapWriteErr converts postgres unique violations into DuplicateError and
// leaves every other error untouched.
func mapWriteErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &DuplicateError{Constraint: pqErr.Constraint}
	}
	return err
}

// IsDuplicate reports whether err is a unique violation on the given
// constraint.
func IsDuplicate(err error, constraint string) bool {
	var dup *DuplicateError
	return errors.As(err, &dup) && dup.Constraint == constraint
}
