package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/linguacenter/apiserver/internal/apperr"
	"github.com/linguacenter/apiserver/internal/auth"
	"github.com/linguacenter/apiserver/internal/codes"
	"github.com/linguacenter/apiserver/internal/store"
	"github.com/linguacenter/apiserver/types"
)

// codeAttempts bounds registration retries when a freshly generated profile
// code collides with an existing one.
const codeAttempts = 3

// AccountService orchestrates the account lifecycle: registration,
// authentication, activation state, password changes, profile updates, and
// soft deletion.
type AccountService struct {
	db         store.DBTX
	tx         TxRunner
	repos      Repositories
	hasher     auth.PasswordHasher
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAccountService constructs an AccountService over the given database
// handle.
func NewAccountService(db *sql.DB, hasher auth.PasswordHasher, jwtSecret string, accessTTL, refreshTTL time.Duration) *AccountService {
	return &AccountService{
		db:         db,
		tx:         store.NewTxManager(db),
		repos:      NewRepositories(),
		hasher:     hasher,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        types.Role
	PhoneNumber *string
	DateOfBirth *time.Time
	Address     *string
}

// Register creates an active account and, for student and teacher roles, its
// profile with a freshly generated code, in one transaction. A taken email
// yields DuplicateEmail; the unique index is the authority when two
// registrations race past the existence check.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	role := input.Role
	if role == "" {
		role = types.DefaultRole
	}
	if !role.Valid() {
		return types.User{}, apperr.Validation("invalid role", nil)
	}

	// Fast path only; the store rejects duplicates under races.
	if _, err := s.repos.Users(s.db).GetByEmail(ctx, input.Email); err == nil {
		return types.User{}, apperr.DuplicateEmail()
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return types.User{}, err
	}

	user := types.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		PhoneNumber:  input.PhoneNumber,
		DateOfBirth:  input.DateOfBirth,
		Address:      input.Address,
		Active:       true,
		PasswordHash: hash,
	}

	// A code collision aborts the whole transaction, so the retry loop wraps
	// the transaction rather than the profile insert.
	var created types.User
	for attempt := 0; ; attempt++ {
		err = s.tx.WithTx(ctx, func(db store.DBTX) error {
			u, err := s.repos.Users(db).Create(ctx, user)
			if err != nil {
				return err
			}
			switch role {
			case types.RoleStudent:
				student, err := s.repos.Students(db).Create(ctx, types.Student{
					UserID:      u.ID,
					StudentCode: codes.Generate(codes.StudentPrefix, codes.DefaultLength),
				})
				if err != nil {
					return err
				}
				u.Profile = &student
			case types.RoleTeacher:
				teacher, err := s.repos.Teachers(db).Create(ctx, types.Teacher{
					UserID:      u.ID,
					TeacherCode: codes.Generate(codes.TeacherPrefix, codes.DefaultLength),
				})
				if err != nil {
					return err
				}
				u.Profile = &teacher
			}
			created = u
			return nil
		})
		if err == nil {
			return created, nil
		}
		if store.IsDuplicate(err, store.ConstraintUserEmail) {
			return types.User{}, apperr.DuplicateEmail()
		}
		codeCollision := store.IsDuplicate(err, store.ConstraintStudentCode) ||
			store.IsDuplicate(err, store.ConstraintTeacherCode)
		if !codeCollision || attempt+1 >= codeAttempts {
			return types.User{}, err
		}
	}
}

// Authenticate verifies the email/password pair and issues a token pair.
// Unknown email and wrong password are indistinguishable; a deactivated
// account fails with AccountDisabled even on correct credentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (types.User, *auth.TokenPair, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, nil, apperr.InvalidCredentials()
		}
		return types.User{}, nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return types.User{}, nil, apperr.InvalidCredentials()
	}
	if !user.Active {
		return types.User{}, nil, apperr.AccountDisabled()
	}

	pair, err := s.issueTokenPair(ctx, s.db, user.ID)
	if err != nil {
		return types.User{}, nil, err
	}

	if err := s.attachProfile(ctx, &user); err != nil {
		return types.User{}, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a stored refresh token and returns a fresh pair.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	token, err := s.repos.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &apperr.Error{Kind: apperr.KindInvalidCredentials, Message: "invalid refresh token"}
		}
		return nil, err
	}
	if token.ExpiresAt.Before(time.Now()) {
		return nil, &apperr.Error{Kind: apperr.KindInvalidCredentials, Message: "refresh token expired"}
	}

	// The delete claims the token. A concurrent rotation that got there
	// first leaves nothing to delete, and that caller loses.
	var pair *auth.TokenPair
	err = s.tx.WithTx(ctx, func(db store.DBTX) error {
		if err := s.repos.RefreshTokens(db).Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &apperr.Error{Kind: apperr.KindInvalidCredentials, Message: "invalid refresh token"}
			}
			return err
		}
		pair, err = s.issueTokenPair(ctx, db, token.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *AccountService) ChangePassword(ctx context.Context, user types.User, oldPassword, newPassword string) (types.User, error) {
	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return types.User{}, &apperr.Error{Kind: apperr.KindInvalidCredentials, Message: "old password is incorrect"}
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = hash
	return s.update(ctx, user)
}

// UpdateProfile merges the given fields into the account. Identity, role,
// credentials, and activation state cannot change through this path.
func (s *AccountService) UpdateProfile(ctx context.Context, user types.User, upd types.UserUpdate) (types.User, error) {
	upd.Apply(&user)
	return s.update(ctx, user)
}

// SetRole changes an account's role. This is the only path a role can change
// through, and it never creates or removes profiles retroactively.
func (s *AccountService) SetRole(ctx context.Context, id int, role types.Role) (types.User, error) {
	if !role.Valid() {
		return types.User{}, apperr.Validation("invalid role", nil)
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	user.Role = role
	return s.update(ctx, user)
}

// Activate enables authentication for the account. Idempotent.
func (s *AccountService) Activate(ctx context.Context, id int) (types.User, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate disables authentication for the account. Idempotent.
func (s *AccountService) Deactivate(ctx context.Context, id int) (types.User, error) {
	return s.setActive(ctx, id, false)
}

func (s *AccountService) setActive(ctx context.Context, id int, active bool) (types.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	user.Active = active
	updated, err := s.update(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	// A disabled account must not keep refreshing its way past the gate.
	if !active {
		if err := s.repos.RefreshTokens(s.db).DeleteForUser(ctx, id); err != nil {
			return types.User{}, err
		}
	}
	return updated, nil
}

// SoftDelete hides the account from default listings. Related profiles are
// not touched.
func (s *AccountService) SoftDelete(ctx context.Context, id int) error {
	if err := s.repos.Users(s.db).SoftDelete(ctx, id, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("user")
		}
		return err
	}
	return nil
}

// Delete permanently removes the account. Refresh tokens are revoked in the
// same transaction; profile rows go with the account via the foreign key
// cascade.
func (s *AccountService) Delete(ctx context.Context, id int) error {
	err := s.tx.WithTx(ctx, func(db store.DBTX) error {
		if err := s.repos.RefreshTokens(db).DeleteForUser(ctx, id); err != nil {
			return err
		}
		return s.repos.Users(db).Delete(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("user")
	}
	return err
}

// Restore clears the soft-delete marker.
func (s *AccountService) Restore(ctx context.Context, id int) error {
	if err := s.repos.Users(s.db).Restore(ctx, id, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("user")
		}
		return err
	}
	return nil
}

// Get fetches an account with its profile attached.
func (s *AccountService) Get(ctx context.Context, id int) (types.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.NotFound("user")
		}
		return types.User{}, err
	}
	if err := s.attachProfile(ctx, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// GetByEmail fetches an account by email with its profile attached.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.NotFound("user")
		}
		return types.User{}, err
	}
	if err := s.attachProfile(ctx, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// List returns accounts matching the filter, newest first.
func (s *AccountService) List(ctx context.Context, filter store.UserFilter) ([]types.User, error) {
	return s.repos.Users(s.db).List(ctx, filter)
}

func (s *AccountService) update(ctx context.Context, user types.User) (types.User, error) {
	updated, err := s.repos.Users(s.db).Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.NotFound("user")
		}
		return types.User{}, err
	}
	updated.Profile = user.Profile
	return updated, nil
}

// attachProfile loads the role-matching profile, if one exists. Accounts
// whose role changed after registration may legitimately have none.
func (s *AccountService) attachProfile(ctx context.Context, user *types.User) error {
	switch user.Role {
	case types.RoleStudent:
		student, err := s.repos.Students(s.db).GetByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		user.Profile = &student
	case types.RoleTeacher:
		teacher, err := s.repos.Teachers(s.db).GetByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		user.Profile = &teacher
	}
	return nil
}

func (s *AccountService) issueTokenPair(ctx context.Context, db store.DBTX, userID int) (*auth.TokenPair, error) {
	access, err := auth.GenerateAccessToken(userID, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.repos.RefreshTokens(db).Create(ctx, userID, refresh, s.refreshTTL); err != nil {
		return nil, err
	}
	return &auth.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
