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

const teacherColumns = `t.id, t.user_id, t.teacher_code, t.specialization, t.experience_years, t.bio, t.qualifications, t.hourly_rate, t.is_deleted, t.deleted_at, t.created_at, t.updated_at`

const teacherSelect = `
	SELECT ` + teacherColumns + `, ` + joinedUserColumns + `
	FROM teachers t
	JOIN users u ON u.id = t.user_id`

// TeacherRepository handles persistence for teacher profiles.
type TeacherRepository struct {
	db DBTX
}

func NewTeacherRepository(db DBTX) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func scanTeacher(row rowScanner) (types.Teacher, error) {
	var teacher types.Teacher
	var user types.User
	err := row.Scan(
		&teacher.ID,
		&teacher.UserID,
		&teacher.TeacherCode,
		&teacher.Specialization,
		&teacher.ExperienceYears,
		&teacher.Bio,
		&teacher.Qualifications,
		&teacher.HourlyRate,
		&teacher.IsDeleted,
		&teacher.DeletedAt,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
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
		return types.Teacher{}, err
	}
	teacher.User = &user
	return teacher, nil
}

func (r *TeacherRepository) getOne(ctx context.Context, condition string, arg any) (types.Teacher, error) {
	teacher, err := scanTeacher(r.db.QueryRowContext(ctx, teacherSelect+" WHERE "+condition, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Teacher{}, ErrNotFound
		}
		return types.Teacher{}, err
	}
	return teacher, nil
}

func (r *TeacherRepository) GetByID(ctx context.Context, id int) (types.Teacher, error) {
	return r.getOne(ctx, "t.id = $1", id)
}

func (r *TeacherRepository) GetByUserID(ctx context.Context, userID int) (types.Teacher, error) {
	return r.getOne(ctx, "t.user_id = $1", userID)
}

func (r *TeacherRepository) GetByCode(ctx context.Context, code string) (types.Teacher, error) {
	return r.getOne(ctx, "t.teacher_code = $1", code)
}

func (r *TeacherRepository) List(ctx context.Context, filter ProfileFilter) ([]types.Teacher, error) {
	conditions := []string{}
	args := []any{}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "t.is_deleted = FALSE")
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("t.user_id = $%d", len(args)))
	}

	query := teacherSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachers := []types.Teacher{}
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *TeacherRepository) Create(ctx context.Context, teacher types.Teacher) (types.Teacher, error) {
	now := time.Now()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	const query = `
		INSERT INTO teachers (user_id, teacher_code, specialization, experience_years, bio, qualifications, hourly_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		teacher.UserID,
		teacher.TeacherCode,
		teacher.Specialization,
		teacher.ExperienceYears,
		teacher.Bio,
		teacher.Qualifications,
		teacher.HourlyRate,
		teacher.CreatedAt,
		teacher.UpdatedAt,
	).Scan(&teacher.ID); err != nil {
		return types.Teacher{}, mapWriteErr(err)
	}
	return teacher, nil
}

// Update persists the mutable profile fields. The code and owning account
// are never written.
func (r *TeacherRepository) Update(ctx context.Context, teacher types.Teacher) (types.Teacher, error) {
	teacher.UpdatedAt = time.Now()

	const query = `
		UPDATE teachers
		SET specialization = $1,
			experience_years = $2,
			bio = $3,
			qualifications = $4,
			hourly_rate = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		teacher.Specialization,
		teacher.ExperienceYears,
		teacher.Bio,
		teacher.Qualifications,
		teacher.HourlyRate,
		teacher.UpdatedAt,
		teacher.ID,
	)
	if err != nil {
		return types.Teacher{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Teacher{}, err
	}
	if affected == 0 {
		return types.Teacher{}, ErrNotFound
	}
	return teacher, nil
}

func (r *TeacherRepository) SoftDelete(ctx context.Context, id int, now time.Time) error {
	const query = `
		UPDATE teachers
		SET is_deleted = TRUE, deleted_at = $2, updated_at = $2
		WHERE id = $1`
	return execAffectingOne(ctx, r.db, query, id, now)
}

func (r *TeacherRepository) Restore(ctx context.Context, id int, now time.Time) error {
	const query = `
		UPDATE teachers
		SET is_deleted = FALSE, deleted_at = NULL, updated_at = $2
		WHERE id = $1`
	return execAffectingOne(ctx, r.db, query, id, now)
}
