package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linguacenter/apiserver/types"
)

const studentColumns = `s.id, s.user_id, s.student_code, s.current_level, s.joined_date, s.total_courses_taken, s.attendance_rate, s.emergency_contact_name, s.emergency_contact_phone, s.notes, s.is_deleted, s.deleted_at, s.created_at, s.updated_at`

// StudentRepository handles persistence for student profiles. Reads join the
// owning user so callers get the account alongside the profile.
type StudentRepository struct {
	db DBTX
}

func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

func scanStudent(row rowScanner) (types.Student, error) {
	var student types.Student
	var user types.User
	err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.StudentCode,
		&student.CurrentLevel,
		&student.JoinedDate,
		&student.TotalCoursesTaken,
		&student.AttendanceRate,
		&student.EmergencyContactName,
		&student.EmergencyContactPhone,
		&student.Notes,
		&student.IsDeleted,
		&student.DeletedAt,
		&student.CreatedAt,
		&student.UpdatedAt,
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.PhoneNumber,
		&user.DateOfBirth,
		&user.Address,
		&user.AvatarURL,
		&user.Active,
		&user.PasswordHash,
		&user.IsDeleted,
		&user.DeletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return types.Student{}, err
	}
	student.User = &user
	return student, nil
}

const studentSelect = `
	SELECT ` + studentColumns + `, ` + joinedUserColumns + `
	FROM students s
	JOIN users u ON u.id = s.user_id`

const joinedUserColumns = `u.id, u.username, u.email, u.first_name, u.last_name, u.role, u.phone_number, u.date_of_birth, u.address, u.avatar_url, u.is_active, u.password_hash, u.is_deleted, u.deleted_at, u.created_at, u.updated_at`

func (r *StudentRepository) getOne(ctx context.Context, condition string, arg any) (types.Student, error) {
	student, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+" WHERE "+condition, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, ErrNotFound
		}
		return types.Student{}, err
	}
	return student, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int) (types.Student, error) {
	return r.getOne(ctx, "s.id = $1", id)
}

func (r *StudentRepository) GetByUserID(ctx context.Context, userID int) (types.Student, error) {
	return r.getOne(ctx, "s.user_id = $1", userID)
}

func (r *StudentRepository) GetByCode(ctx context.Context, code string) (types.Student, error) {
	return r.getOne(ctx, "s.student_code = $1", code)
}

// ProfileFilter narrows profile listings. UserID restricts the result to a
// single owner, which is how non-privileged roles see only themselves.
type ProfileFilter struct {
	UserID         *int
	IncludeDeleted bool
}

func (r *StudentRepository) List(ctx context.Context, filter ProfileFilter) ([]types.Student, error) {
	conditions := []string{}
	args := []any{}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "s.is_deleted = FALSE")
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", len(args)))
	}

	query := studentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []types.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *StudentRepository) Create(ctx context.Context, student types.Student) (types.Student, error) {
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now
	if student.JoinedDate.IsZero() {
		student.JoinedDate = now
	}

	const query = `
		INSERT INTO students (user_id, student_code, current_level, joined_date, total_courses_taken, attendance_rate, emergency_contact_name, emergency_contact_phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		student.UserID,
		student.StudentCode,
		student.CurrentLevel,
		student.JoinedDate,
		student.TotalCoursesTaken,
		student.AttendanceRate,
		student.EmergencyContactName,
		student.EmergencyContactPhone,
		student.Notes,
		student.CreatedAt,
		student.UpdatedAt,
	).Scan(&student.ID); err != nil {
		return types.Student{}, mapWriteErr(err)
	}
	return student, nil
}

// Update persists the mutable profile fields. The code, join date, and
// owning account are never written.
func (r *StudentRepository) Update(ctx context.Context, student types.Student) (types.Student, error) {
	student.UpdatedAt = time.Now()

	const query = `
		UPDATE students
		SET current_level = $1,
			total_courses_taken = $2,
			attendance_rate = $3,
			emergency_contact_name = $4,
			emergency_contact_phone = $5,
			notes = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		student.CurrentLevel,
		student.TotalCoursesTaken,
		student.AttendanceRate,
		student.EmergencyContactName,
		student.EmergencyContactPhone,
		student.Notes,
		student.UpdatedAt,
		student.ID,
	)
	if err != nil {
		return types.Student{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, err
	}
	if affected == 0 {
		return types.Student{}, ErrNotFound
	}
	return student, nil
}

func (r *StudentRepository) SoftDelete(ctx context.Context, id int, now time.Time) error {
	const query = `
		UPDATE students
		SET is_deleted = TRUE, deleted_at = $2, updated_at = $2
		WHERE id = $1`
	return execAffectingOne(ctx, r.db, query, id, now)
}

func (r *StudentRepository) Restore(ctx context.Context, id int, now time.Time) error {
	const query = `
		UPDATE students
		SET is_deleted = FALSE, deleted_at = NULL, updated_at = $2
		WHERE id = $1`
	return execAffectingOne(ctx, r.db, query, id, now)
}
