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

// TeacherService encapsulates teacher profile use-cases.
type TeacherService struct {
	db    store.DBTX
	repos Repositories
}

func NewTeacherService(db *sql.DB) *TeacherService {
	return &TeacherService{db: db, repos: NewRepositories()}
}

func (s *TeacherService) Get(ctx context.Context, id int) (types.Teacher, error) {
	teacher, err := s.repos.Teachers(s.db).GetByID(ctx, id)
	if err != nil {
		return types.Teacher{}, mapTeacherErr(err)
	}
	return teacher, nil
}

func (s *TeacherService) GetByUserID(ctx context.Context, userID int) (types.Teacher, error) {
	teacher, err := s.repos.Teachers(s.db).GetByUserID(ctx, userID)
	if err != nil {
		return types.Teacher{}, mapTeacherErr(err)
	}
	return teacher, nil
}

func (s *TeacherService) GetByCode(ctx context.Context, code string) (types.Teacher, error) {
	teacher, err := s.repos.Teachers(s.db).GetByCode(ctx, code)
	if err != nil {
		return types.Teacher{}, mapTeacherErr(err)
	}
	return teacher, nil
}

func (s *TeacherService) List(ctx context.Context, filter store.ProfileFilter) ([]types.Teacher, error) {
	return s.repos.Teachers(s.db).List(ctx, filter)
}

// Update merges the given fields into the profile. The teacher code and
// owning account cannot change through this path.
func (s *TeacherService) Update(ctx context.Context, id int, upd types.TeacherUpdate) (types.Teacher, error) {
	repo := s.repos.Teachers(s.db)
	teacher, err := repo.GetByID(ctx, id)
	if err != nil {
		return types.Teacher{}, mapTeacherErr(err)
	}
	upd.Apply(&teacher)
	updated, err := repo.Update(ctx, teacher)
	if err != nil {
		return types.Teacher{}, mapTeacherErr(err)
	}
	updated.User = teacher.User
	return updated, nil
}

func (s *TeacherService) SoftDelete(ctx context.Context, id int) error {
	return mapTeacherErr(s.repos.Teachers(s.db).SoftDelete(ctx, id, time.Now()))
}

func (s *TeacherService) Restore(ctx context.Context, id int) error {
	return mapTeacherErr(s.repos.Teachers(s.db).Restore(ctx, id, time.Now()))
}

func mapTeacherErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("teacher")
	}
	return err
}
