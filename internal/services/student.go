package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/linguacenter/apiserver/internal/apperr"
	"github.com/linguacenter/apiserver/internal/store"
	"github.com/linguacenter/apiserver/types"
)

// StudentService encapsulates student profile use-cases.
type StudentService struct {
	db    store.DBTX
	repos Repositories
}

func NewStudentService(db *sql.DB) *StudentService {
	return &StudentService{db: db, repos: NewRepositories()}
}

func (s *StudentService) Get(ctx context.Context, id int) (types.Student, error) {
	student, err := s.repos.Students(s.db).GetByID(ctx, id)
	if err != nil {
		return types.Student{}, mapStudentErr(err)
	}
	return student, nil
}

func (s *StudentService) GetByUserID(ctx context.Context, userID int) (types.Student, error) {
	student, err := s.repos.Students(s.db).GetByUserID(ctx, userID)
	if err != nil {
		return types.Student{}, mapStudentErr(err)
	}
	return student, nil
}

func (s *StudentService) GetByCode(ctx context.Context, code string) (types.Student, error) {
	student, err := s.repos.Students(s.db).GetByCode(ctx, code)
	if err != nil {
		return types.Student{}, mapStudentErr(err)
	}
	return student, nil
}

func (s *StudentService) List(ctx context.Context, filter store.ProfileFilter) ([]types.Student, error) {
	return s.repos.Students(s.db).List(ctx, filter)
}

// Update merges the given fields into the profile. The student code, join
// date, and owning account cannot change through this path.
func (s *StudentService) Update(ctx context.Context, id int, upd types.StudentUpdate) (types.Student, error) {
	repo := s.repos.Students(s.db)
	student, err := repo.GetByID(ctx, id)
	if err != nil {
		return types.Student{}, mapStudentErr(err)
	}
	upd.Apply(&student)
	updated, err := repo.Update(ctx, student)
	if err != nil {
		return types.Student{}, mapStudentErr(err)
	}
	updated.User = student.User
	return updated, nil
}

func (s *StudentService) SoftDelete(ctx context.Context, id int) error {
	return mapStudentErr(s.repos.Students(s.db).SoftDelete(ctx, id, time.Now()))
}

func (s *StudentService) Restore(ctx context.Context, id int) error {
	return mapStudentErr(s.repos.Students(s.db).Restore(ctx, id, time.Now()))
}

func mapStudentErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("student")
	}
	return err
}
