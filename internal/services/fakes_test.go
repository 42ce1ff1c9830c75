package services

import (
	"context"
	"strings"
	"time"

	"github.com/linguacenter/apiserver/internal/store"
	"github.com/linguacenter/apiserver/types"
)

// fakeState is an in-memory stand-in for the postgres store. The fake
// transaction runner snapshots it before running a function and rolls it
// back on error, so transactional service paths behave like the real thing.
type fakeState struct {
	users    map[int]types.User
	students map[int]types.Student
	teachers map[int]types.Teacher
	tokens   map[string]types.RefreshToken
	nextID   int

	// studentCreateErrs is drained one error per student Create call.
	studentCreateErrs []error

	// tokenDeleteErrs is drained one error per refresh token Delete call.
	tokenDeleteErrs []error
}

func newFakeState() *fakeState {
	return &fakeState{
		users:    make(map[int]types.User),
		students: make(map[int]types.Student),
		teachers: make(map[int]types.Teacher),
		tokens:   make(map[string]types.RefreshToken),
	}
}

func (s *fakeState) id() int {
	s.nextID++
	return s.nextID
}

func (s *fakeState) snapshot() *fakeState {
	copied := newFakeState()
	copied.nextID = s.nextID
	for k, v := range s.users {
		copied.users[k] = v
	}
	for k, v := range s.students {
		copied.students[k] = v
	}
	for k, v := range s.teachers {
		copied.teachers[k] = v
	}
	for k, v := range s.tokens {
		copied.tokens[k] = v
	}
	return copied
}

func (s *fakeState) restore(from *fakeState) {
	s.users = from.users
	s.students = from.students
	s.teachers = from.teachers
	s.tokens = from.tokens
	s.nextID = from.nextID
}

type fakeTxRunner struct {
	s *fakeState
}

func (r fakeTxRunner) WithTx(ctx context.Context, fn func(db store.DBTX) error) error {
	saved := r.s.snapshot()
	if err := fn(nil); err != nil {
		r.s.restore(saved)
		return err
	}
	return nil
}

type fakeRepositories struct {
	s *fakeState
}

func (f fakeRepositories) Users(store.DBTX) UserRepository {
	return fakeUserRepo{f.s}
}

func (f fakeRepositories) Students(store.DBTX) StudentRepository {
	return fakeStudentRepo{f.s}
}

func (f fakeRepositories) Teachers(store.DBTX) TeacherRepository {
	return fakeTeacherRepo{f.s}
}

func (f fakeRepositories) RefreshTokens(store.DBTX) RefreshTokenRepository {
	return fakeTokenRepo{f.s}
}

type fakeUserRepo struct {
	s *fakeState
}

func (r fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r fakeUserRepo) List(_ context.Context, filter store.UserFilter) ([]types.User, error) {
	users := []types.User{}
	for _, user := range r.s.users {
		if user.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		if filter.Search != "" {
			haystack := strings.ToLower(user.Username + " " + user.Email + " " + user.FirstName + " " + user.LastName)
			if !strings.Contains(haystack, strings.ToLower(filter.Search)) {
				continue
			}
		}
		users = append(users, user)
	}
	return users, nil
}

func (r fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return types.User{}, &store.DuplicateError{Constraint: store.ConstraintUserEmail}
		}
		if existing.Username == user.Username {
			return types.User{}, &store.DuplicateError{Constraint: store.ConstraintUserUsername}
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = user
	return user, nil
}

func (r fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	existing, ok := r.s.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = user
	return user, nil
}

func (r fakeUserRepo) SoftDelete(_ context.Context, id int, now time.Time) error {
	user, ok := r.s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.MarkDeleted(now)
	r.s.users[id] = user
	return nil
}

func (r fakeUserRepo) Restore(_ context.Context, id int, _ time.Time) error {
	user, ok := r.s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.SoftDelete.Restore()
	r.s.users[id] = user
	return nil
}

// Delete mirrors the foreign key cascade: profile rows vanish with the user.
func (r fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.users, id)
	for profileID, student := range r.s.students {
		if student.UserID == id {
			delete(r.s.students, profileID)
		}
	}
	for profileID, teacher := range r.s.teachers {
		if teacher.UserID == id {
			delete(r.s.teachers, profileID)
		}
	}
	return nil
}

type fakeStudentRepo struct {
	s *fakeState
}

func (r fakeStudentRepo) GetByID(_ context.Context, id int) (types.Student, error) {
	student, ok := r.s.students[id]
	if !ok {
		return types.Student{}, store.ErrNotFound
	}
	return student, nil
}

func (r fakeStudentRepo) GetByUserID(_ context.Context, userID int) (types.Student, error) {
	for _, student := range r.s.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return types.Student{}, store.ErrNotFound
}

func (r fakeStudentRepo) GetByCode(_ context.Context, code string) (types.Student, error) {
	for _, student := range r.s.students {
		if student.StudentCode == code {
			return student, nil
		}
	}
	return types.Student{}, store.ErrNotFound
}

func (r fakeStudentRepo) List(_ context.Context, filter store.ProfileFilter) ([]types.Student, error) {
	students := []types.Student{}
	for _, student := range r.s.students {
		if student.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.UserID != nil && student.UserID != *filter.UserID {
			continue
		}
		students = append(students, student)
	}
	return students, nil
}

func (r fakeStudentRepo) Create(_ context.Context, student types.Student) (types.Student, error) {
	if len(r.s.studentCreateErrs) > 0 {
		err := r.s.studentCreateErrs[0]
		r.s.studentCreateErrs = r.s.studentCreateErrs[1:]
		return types.Student{}, err
	}
	for _, existing := range r.s.students {
		if existing.StudentCode == student.StudentCode {
			return types.Student{}, &store.DuplicateError{Constraint: store.ConstraintStudentCode}
		}
	}
	student.ID = r.s.id()
	if student.JoinedDate.IsZero() {
		student.JoinedDate = time.Now()
	}
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	r.s.students[student.ID] = student
	return student, nil
}

func (r fakeStudentRepo) Update(_ context.Context, student types.Student) (types.Student, error) {
	existing, ok := r.s.students[student.ID]
	if !ok {
		return types.Student{}, store.ErrNotFound
	}
	student.UserID = existing.UserID
	student.StudentCode = existing.StudentCode
	student.JoinedDate = existing.JoinedDate
	student.CreatedAt = existing.CreatedAt
	student.UpdatedAt = time.Now()
	r.s.students[student.ID] = student
	return student, nil
}

func (r fakeStudentRepo) SoftDelete(_ context.Context, id int, now time.Time) error {
	student, ok := r.s.students[id]
	if !ok {
		return store.ErrNotFound
	}
	student.MarkDeleted(now)
	r.s.students[id] = student
	return nil
}

func (r fakeStudentRepo) Restore(_ context.Context, id int, _ time.Time) error {
	student, ok := r.s.students[id]
	if !ok {
		return store.ErrNotFound
	}
	student.SoftDelete.Restore()
	r.s.students[id] = student
	return nil
}

type fakeTeacherRepo struct {
	s *fakeState
}

func (r fakeTeacherRepo) GetByID(_ context.Context, id int) (types.Teacher, error) {
	teacher, ok := r.s.teachers[id]
	if !ok {
		return types.Teacher{}, store.ErrNotFound
	}
	return teacher, nil
}

func (r fakeTeacherRepo) GetByUserID(_ context.Context, userID int) (types.Teacher, error) {
	for _, teacher := range r.s.teachers {
		if teacher.UserID == userID {
			return teacher, nil
		}
	}
	return types.Teacher{}, store.ErrNotFound
}

func (r fakeTeacherRepo) GetByCode(_ context.Context, code string) (types.Teacher, error) {
	for _, teacher := range r.s.teachers {
		if teacher.TeacherCode == code {
			return teacher, nil
		}
	}
	return types.Teacher{}, store.ErrNotFound
}

func (r fakeTeacherRepo) List(_ context.Context, filter store.ProfileFilter) ([]types.Teacher, error) {
	teachers := []types.Teacher{}
	for _, teacher := range r.s.teachers {
		if teacher.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.UserID != nil && teacher.UserID != *filter.UserID {
			continue
		}
		teachers = append(teachers, teacher)
	}
	return teachers, nil
}

func (r fakeTeacherRepo) Create(_ context.Context, teacher types.Teacher) (types.Teacher, error) {
	for _, existing := range r.s.teachers {
		if existing.TeacherCode == teacher.TeacherCode {
			return types.Teacher{}, &store.DuplicateError{Constraint: store.ConstraintTeacherCode}
		}
	}
	teacher.ID = r.s.id()
	teacher.CreatedAt = time.Now()
	teacher.UpdatedAt = teacher.CreatedAt
	r.s.teachers[teacher.ID] = teacher
	return teacher, nil
}

func (r fakeTeacherRepo) Update(_ context.Context, teacher types.Teacher) (types.Teacher, error) {
	existing, ok := r.s.teachers[teacher.ID]
	if !ok {
		return types.Teacher{}, store.ErrNotFound
	}
	teacher.UserID = existing.UserID
	teacher.TeacherCode = existing.TeacherCode
	teacher.CreatedAt = existing.CreatedAt
	teacher.UpdatedAt = time.Now()
	r.s.teachers[teacher.ID] = teacher
	return teacher, nil
}

func (r fakeTeacherRepo) SoftDelete(_ context.Context, id int, now time.Time) error {
	teacher, ok := r.s.teachers[id]
	if !ok {
		return store.ErrNotFound
	}
	teacher.MarkDeleted(now)
	r.s.teachers[id] = teacher
	return nil
}

func (r fakeTeacherRepo) Restore(_ context.Context, id int, _ time.Time) error {
	teacher, ok := r.s.teachers[id]
	if !ok {
		return store.ErrNotFound
	}
	teacher.SoftDelete.Restore()
	r.s.teachers[id] = teacher
	return nil
}

type fakeTokenRepo struct {
	s *fakeState
}

func (r fakeTokenRepo) Create(_ context.Context, userID int, token string, validity time.Duration) error {
	r.s.tokens[token] = types.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (r fakeTokenRepo) Find(_ context.Context, token string) (types.RefreshToken, error) {
	stored, ok := r.s.tokens[token]
	if !ok {
		return types.RefreshToken{}, store.ErrNotFound
	}
	return stored, nil
}

func (r fakeTokenRepo) Delete(_ context.Context, token string) error {
	if len(r.s.tokenDeleteErrs) > 0 {
		err := r.s.tokenDeleteErrs[0]
		r.s.tokenDeleteErrs = r.s.tokenDeleteErrs[1:]
		return err
	}
	if _, ok := r.s.tokens[token]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.tokens, token)
	return nil
}

func (r fakeTokenRepo) DeleteForUser(_ context.Context, userID int) error {
	for token, stored := range r.s.tokens {
		if stored.UserID == userID {
			delete(r.s.tokens, token)
		}
	}
	return nil
}

// fakeHasher swaps bcrypt for a transparent scheme so tests can assert
// stored hashes without paying the hashing cost.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Verify(password, hash string) bool {
	return hash == "hashed:"+password
}

func newTestAccountService() (*AccountService, *fakeState) {
	state := newFakeState()
	svc := &AccountService{
		tx:         fakeTxRunner{state},
		repos:      fakeRepositories{state},
		hasher:     fakeHasher{},
		jwtSecret:  []byte("test-secret"),
		accessTTL:  time.Minute,
		refreshTTL: time.Hour,
	}
	return svc, state
}
