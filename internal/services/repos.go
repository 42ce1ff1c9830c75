package services

import (
	"context"
	"time"

	"github.com/linguacenter/apiserver/internal/store"
	"github.com/linguacenter/apiserver/types"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context, filter store.UserFilter) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SoftDelete(ctx context.Context, id int, now time.Time) error
	Restore(ctx context.Context, id int, now time.Time) error
	Delete(ctx context.Context, id int) error
}

// StudentRepository defines persistence operations for student profiles.
type StudentRepository interface {
	GetByID(ctx context.Context, id int) (types.Student, error)
	GetByUserID(ctx context.Context, userID int) (types.Student, error)
	GetByCode(ctx context.Context, code string) (types.Student, error)
	List(ctx context.Context, filter store.ProfileFilter) ([]types.Student, error)
	Create(ctx context.Context, student types.Student) (types.Student, error)
	Update(ctx context.Context, student types.Student) (types.Student, error)
	SoftDelete(ctx context.Context, id int, now time.Time) error
	Restore(ctx context.Context, id int, now time.Time) error
}

// TeacherRepository defines persistence operations for teacher profiles.
type TeacherRepository interface {
	GetByID(ctx context.Context, id int) (types.Teacher, error)
	GetByUserID(ctx context.Context, userID int) (types.Teacher, error)
	GetByCode(ctx context.Context, code string) (types.Teacher, error)
	List(ctx context.Context, filter store.ProfileFilter) ([]types.Teacher, error)
	Create(ctx context.Context, teacher types.Teacher) (types.Teacher, error)
	Update(ctx context.Context, teacher types.Teacher) (types.Teacher, error)
	SoftDelete(ctx context.Context, id int, now time.Time) error
	Restore(ctx context.Context, id int, now time.Time) error
}

// RefreshTokenRepository defines persistence operations for refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID int, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (types.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID int) error
}

// Repositories constructs repositories bound to a DBTX, so a service
// operation can run standalone or inside a transaction.
type Repositories interface {
	Users(db store.DBTX) UserRepository
	Students(db store.DBTX) StudentRepository
	Teachers(db store.DBTX) TeacherRepository
	RefreshTokens(db store.DBTX) RefreshTokenRepository
}

// TxRunner runs fn within a single storage transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(db store.DBTX) error) error
}

type storeRepositories struct{}

// NewRepositories returns the postgres-backed repository set.
func NewRepositories() Repositories {
	return storeRepositories{}
}

func (storeRepositories) Users(db store.DBTX) UserRepository {
	return store.NewUserRepository(db)
}

func (storeRepositories) Students(db store.DBTX) StudentRepository {
	return store.NewStudentRepository(db)
}

func (storeRepositories) Teachers(db store.DBTX) TeacherRepository {
	return store.NewTeacherRepository(db)
}

func (storeRepositories) RefreshTokens(db store.DBTX) RefreshTokenRepository {
	return store.NewRefreshTokenRepository(db)
}
